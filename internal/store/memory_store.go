package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/fjod/go_cart/bookstore-orders/domain"
	"github.com/fjod/go_cart/bookstore-orders/internal/repository"
)

var (
	// ErrTxDone is returned when a finished transaction is used again
	ErrTxDone = errors.New("transaction has already been committed or rolled back")
)

type outboxRecord struct {
	event     repository.OutboxEvent
	processed bool
}

// MemoryStore implements repository.RepoInterface with in-memory storage.
// Writes made through a transaction stay private to it until Commit.
type MemoryStore struct {
	mu        sync.RWMutex
	books     map[int64]domain.Book
	customers map[int64]domain.Customer
	orders    map[int64]domain.Order
	lineItems map[int64][]domain.LineItem // orderID -> items in insertion order
	outbox    []*outboxRecord

	// sequences keep advancing on rollback, like database sequences do
	nextCustomerID int64
	nextOrderID    int64
	nextOutboxID   int64
}

// NewMemoryStore creates a new in-memory store holding the given books
func NewMemoryStore(books ...domain.Book) *MemoryStore {
	s := &MemoryStore{
		books:     make(map[int64]domain.Book),
		customers: make(map[int64]domain.Customer),
		orders:    make(map[int64]domain.Order),
		lineItems: make(map[int64][]domain.LineItem),
	}
	for _, b := range books {
		s.books[b.BookID] = b
	}
	return s
}

// SetBook adds or replaces a catalog entry
func (s *MemoryStore) SetBook(book domain.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books[book.BookID] = book
}

func (s *MemoryStore) GetBook(_ context.Context, bookID int64) (*domain.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, exists := s.books[bookID]
	if !exists {
		return nil, repository.ErrBookNotFound
	}
	return &b, nil
}

func (s *MemoryStore) GetOrder(_ context.Context, orderID int64) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, exists := s.orders[orderID]
	if !exists {
		return nil, repository.ErrOrderNotFound
	}
	return &o, nil
}

func (s *MemoryStore) GetCustomer(_ context.Context, customerID int64) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.customers[customerID]
	if !exists {
		return nil, repository.ErrCustomerNotFound
	}
	return &c, nil
}

func (s *MemoryStore) ListLineItems(_ context.Context, orderID int64) ([]domain.LineItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.lineItems[orderID]
	out := make([]domain.LineItem, len(items))
	copy(out, items)
	return out, nil
}

// CustomerCount, OrderCount and LineItemCount report committed rows
func (s *MemoryStore) CustomerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.customers)
}

func (s *MemoryStore) OrderCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

func (s *MemoryStore) LineItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, items := range s.lineItems {
		n += len(items)
	}
	return n
}

func (s *MemoryStore) GetUnprocessedEvents(_ context.Context, limit int) ([]*repository.OutboxEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var events []*repository.OutboxEvent
	for _, rec := range s.outbox {
		if rec.processed {
			continue
		}
		ev := rec.event
		events = append(events, &ev)
		if len(events) == limit {
			break
		}
	}
	return events, nil
}

func (s *MemoryStore) MarkEventAsProcessed(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.outbox {
		if rec.event.ID == id {
			rec.processed = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *MemoryStore) BeginTx(ctx context.Context) (repository.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &memoryTx{store: s}, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) allocateCustomerID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextCustomerID++
	return s.nextCustomerID
}

func (s *MemoryStore) allocateOrderID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextOrderID++
	return s.nextOrderID
}

func (s *MemoryStore) allocateOutboxID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextOutboxID++
	return s.nextOutboxID
}

// memoryTx stages writes and applies them atomically on Commit
type memoryTx struct {
	store     *MemoryStore
	done      bool
	customers []domain.Customer
	orders    []domain.Order
	lineItems []domain.LineItem
	outbox    []repository.OutboxEvent
}

func (t *memoryTx) CreateCustomer(_ context.Context, c *domain.Customer) (int64, error) {
	if t.done {
		return 0, ErrTxDone
	}
	staged := *c
	staged.CustomerID = t.store.allocateCustomerID()
	t.customers = append(t.customers, staged)
	return staged.CustomerID, nil
}

func (t *memoryTx) CreateOrder(_ context.Context, o *domain.Order) (int64, error) {
	if t.done {
		return 0, ErrTxDone
	}
	if !t.customerVisible(o.CustomerID) {
		return 0, repository.ErrCustomerNotFound
	}
	staged := *o
	staged.OrderID = t.store.allocateOrderID()
	t.orders = append(t.orders, staged)
	return staged.OrderID, nil
}

func (t *memoryTx) CreateLineItem(_ context.Context, li domain.LineItem) error {
	if t.done {
		return ErrTxDone
	}
	if !t.orderVisible(li.OrderID) {
		return repository.ErrOrderNotFound
	}
	if _, err := t.store.GetBook(context.Background(), li.BookID); err != nil {
		return err
	}
	t.lineItems = append(t.lineItems, li)
	return nil
}

func (t *memoryTx) InsertOutboxEvent(_ context.Context, ev *repository.OutboxEvent) error {
	if t.done {
		return ErrTxDone
	}
	staged := *ev
	staged.ID = t.store.allocateOutboxID()
	if staged.CreatedAt.IsZero() {
		staged.CreatedAt = time.Now().UTC()
	}
	t.outbox = append(t.outbox, staged)
	return nil
}

func (t *memoryTx) Commit() error {
	if t.done {
		return ErrTxDone
	}
	t.done = true

	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range t.customers {
		s.customers[c.CustomerID] = c
	}
	for _, o := range t.orders {
		s.orders[o.OrderID] = o
	}
	for _, li := range t.lineItems {
		s.lineItems[li.OrderID] = append(s.lineItems[li.OrderID], li)
	}
	for _, ev := range t.outbox {
		s.outbox = append(s.outbox, &outboxRecord{event: ev})
	}
	sort.Slice(s.outbox, func(i, j int) bool { return s.outbox[i].event.ID < s.outbox[j].event.ID })
	return nil
}

// Rollback discards staged writes. Rolling back a finished transaction is a no-op.
func (t *memoryTx) Rollback() error {
	t.done = true
	t.customers = nil
	t.orders = nil
	t.lineItems = nil
	t.outbox = nil
	return nil
}

func (t *memoryTx) customerVisible(id int64) bool {
	for _, c := range t.customers {
		if c.CustomerID == id {
			return true
		}
	}
	_, err := t.store.GetCustomer(context.Background(), id)
	return err == nil
}

func (t *memoryTx) orderVisible(id int64) bool {
	for _, o := range t.orders {
		if o.OrderID == id {
			return true
		}
	}
	_, err := t.store.GetOrder(context.Background(), id)
	return err == nil
}
