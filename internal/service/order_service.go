package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/fjod/go_cart/bookstore-orders/domain"
	"github.com/fjod/go_cart/bookstore-orders/internal/metrics"
	r "github.com/fjod/go_cart/bookstore-orders/internal/repository"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/fjod/go_cart/bookstore-orders/internal/service")

type OrderService interface {
	PlaceOrder(ctx context.Context, form *domain.CustomerForm, cart *domain.ShoppingCart) (int64, error)
	GetOrderDetails(ctx context.Context, orderID int64) (*domain.OrderDetails, error)
}

type OrderServiceImpl struct {
	books         r.BookReader // authoritative, used for cart checks
	detailBooks   r.BookReader // may be cached, used on the read path
	orders        r.OrderReader
	txs           r.TxBeginner
	confirmations ConfirmationGenerator
	metrics       *metrics.Metrics
	log           *slog.Logger
	now           func() time.Time
}

type Option func(*OrderServiceImpl)

// WithDetailsBookReader sets the book lookup used when assembling order details.
func WithDetailsBookReader(books r.BookReader) Option {
	return func(s *OrderServiceImpl) { s.detailBooks = books }
}

func WithConfirmationGenerator(g ConfirmationGenerator) Option {
	return func(s *OrderServiceImpl) { s.confirmations = g }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *OrderServiceImpl) { s.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *OrderServiceImpl) { s.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *OrderServiceImpl) { s.now = now }
}

func NewOrderService(books r.BookReader, orders r.OrderReader, txs r.TxBeginner, opts ...Option) *OrderServiceImpl {
	s := &OrderServiceImpl{
		books:         books,
		detailBooks:   books,
		orders:        orders,
		txs:           txs,
		confirmations: RandomConfirmationGenerator{},
		log:           slog.Default(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *OrderServiceImpl) record(outcome string, started time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.Placements.WithLabelValues(outcome).Inc()
	s.metrics.PlacementDuration.Observe(time.Since(started).Seconds())
}
