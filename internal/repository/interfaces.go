package repository

import (
	"context"

	"github.com/fjod/go_cart/bookstore-orders/domain"
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

type BookReader interface {
	GetBook(ctx context.Context, bookID int64) (*domain.Book, error)
}

type OrderReader interface {
	GetOrder(ctx context.Context, orderID int64) (*domain.Order, error)
	GetCustomer(ctx context.Context, customerID int64) (*domain.Customer, error)
	// ListLineItems returns the items of an order in insertion order.
	ListLineItems(ctx context.Context, orderID int64) ([]domain.LineItem, error)
}

// Tx is a single placement's unit of work. It must not be shared between placements.
type Tx interface {
	CreateCustomer(ctx context.Context, customer *domain.Customer) (int64, error)
	CreateOrder(ctx context.Context, order *domain.Order) (int64, error)
	CreateLineItem(ctx context.Context, item domain.LineItem) error
	InsertOutboxEvent(ctx context.Context, event *OutboxEvent) error
	Commit() error
	Rollback() error
}

type TxBeginner interface {
	BeginTx(ctx context.Context) (Tx, error)
}

type OutboxStore interface {
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
}

type RepoInterface interface {
	BookReader
	OrderReader
	TxBeginner
	OutboxStore
	Close() error
}
