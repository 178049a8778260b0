package service

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/go_cart/bookstore-orders/domain"
	r "github.com/fjod/go_cart/bookstore-orders/internal/repository"
	"github.com/fjod/go_cart/bookstore-orders/internal/store"
	"github.com/shopspring/decimal"
)

var (
	testNow          = time.Date(2026, time.October, 19, 10, 30, 0, 0, time.UTC)
	errInjected      = errors.New("injected failure")
	errRollbackBroke = errors.New("connection lost during rollback")
)

func testBooks() []domain.Book {
	return []domain.Book{
		{BookID: 1001, Title: "Pride and Prejudice", Author: "Jane Austen", Price: decimal.RequireFromString("9.99"), IsPublic: true, CategoryID: 1001},
		{BookID: 1003, Title: "Dune", Author: "Frank Herbert", Price: decimal.RequireFromString("18.99"), IsPublic: true, CategoryID: 1002},
	}
}

func validForm() *domain.CustomerForm {
	return &domain.CustomerForm{
		Name:          "Ada Lovelace",
		Address:       "12 St James Square",
		Phone:         "555-123-4567",
		Email:         "ada@example.com",
		CCNumber:      "4111 1111 1111 1111",
		CCExpiryMonth: "12",
		CCExpiryYear:  "2027",
	}
}

func validCart() *domain.ShoppingCart {
	return &domain.ShoppingCart{
		Items: []domain.ShoppingCartItem{
			{BookID: 1001, Quantity: 2, Book: domain.BookSnapshot{Price: decimal.RequireFromString("9.99"), CategoryID: 1001}},
			{BookID: 1003, Quantity: 1, Book: domain.BookSnapshot{Price: decimal.RequireFromString("18.99"), CategoryID: 1002}},
		},
		Subtotal:  decimal.RequireFromString("38.97"),
		Surcharge: decimal.RequireFromString("5.00"),
	}
}

// fixedConfirmation always returns the same code
type fixedConfirmation int64

func (f fixedConfirmation) Next() int64 { return int64(f) }

func newTestOrderService(s *store.MemoryStore, opts ...Option) *OrderServiceImpl {
	base := []Option{
		WithClock(func() time.Time { return testNow }),
		WithConfirmationGenerator(fixedConfirmation(123456789)),
	}
	return NewOrderService(s, s, s, append(base, opts...)...)
}

// FaultyBeginner wraps a real TxBeginner and injects failures
type FaultyBeginner struct {
	Inner          r.TxBeginner
	BeginErr       error
	LineItemErr    error
	CommitErr      error
	RollbackErr    error
	BeginCount     int
	RollbackCount  int
	LineItemWrites int
}

func (f *FaultyBeginner) BeginTx(ctx context.Context) (r.Tx, error) {
	f.BeginCount++
	if f.BeginErr != nil {
		return nil, f.BeginErr
	}
	tx, err := f.Inner.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	return &faultyTx{Tx: tx, parent: f}, nil
}

type faultyTx struct {
	r.Tx
	parent *FaultyBeginner
}

func (t *faultyTx) CreateLineItem(ctx context.Context, li domain.LineItem) error {
	if t.parent.LineItemErr != nil {
		return t.parent.LineItemErr
	}
	t.parent.LineItemWrites++
	return t.Tx.CreateLineItem(ctx, li)
}

func (t *faultyTx) Commit() error {
	if t.parent.CommitErr != nil {
		return t.parent.CommitErr
	}
	return t.Tx.Commit()
}

func (t *faultyTx) Rollback() error {
	t.parent.RollbackCount++
	if err := t.Tx.Rollback(); err != nil {
		return err
	}
	return t.parent.RollbackErr
}

// MockBookReader implements r.BookReader for testing
type MockBookReader struct {
	Books map[int64]*domain.Book
	Err   error
	Calls int
}

func (m *MockBookReader) GetBook(_ context.Context, id int64) (*domain.Book, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	b, exists := m.Books[id]
	if !exists {
		return nil, r.ErrBookNotFound
	}
	return b, nil
}

// MockOrderReader implements r.OrderReader for testing
type MockOrderReader struct {
	Order       *domain.Order
	Customer    *domain.Customer
	LineItems   []domain.LineItem
	CustomerErr error
}

func (m *MockOrderReader) GetOrder(_ context.Context, id int64) (*domain.Order, error) {
	if m.Order == nil || m.Order.OrderID != id {
		return nil, r.ErrOrderNotFound
	}
	return m.Order, nil
}

func (m *MockOrderReader) GetCustomer(_ context.Context, _ int64) (*domain.Customer, error) {
	if m.CustomerErr != nil {
		return nil, m.CustomerErr
	}
	return m.Customer, nil
}

func (m *MockOrderReader) ListLineItems(_ context.Context, _ int64) ([]domain.LineItem, error) {
	return m.LineItems, nil
}
