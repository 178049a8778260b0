package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/bookstore-orders/domain"
	"github.com/lib/pq"
)

// pq error code for foreign_key_violation
const pqForeignKeyViolation = "23503"

type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) CreateCustomer(ctx context.Context, c *domain.Customer) (int64, error) {
	query := `INSERT INTO customer (customer_name, address, phone, email, cc_number, cc_exp_date)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING customer_id`

	var id int64
	err := t.tx.QueryRowContext(ctx, query,
		c.Name,
		c.Address,
		c.Phone,
		c.Email,
		c.CCNumber,
		c.CCExpDate).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert customer: %w", err)
	}
	return id, nil
}

func (t *sqlTx) CreateOrder(ctx context.Context, o *domain.Order) (int64, error) {
	query := `INSERT INTO customer_order (amount, date_created, confirmation_number, customer_id)
	          VALUES ($1, $2, $3, $4) RETURNING customer_order_id`

	var id int64
	err := t.tx.QueryRowContext(ctx, query,
		o.Amount,
		o.DateCreated,
		o.ConfirmationNumber,
		o.CustomerID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}
	return id, nil
}

func (t *sqlTx) CreateLineItem(ctx context.Context, li domain.LineItem) error {
	query := `INSERT INTO customer_order_line_item (customer_order_id, book_id, quantity)
	          VALUES ($1, $2, $3)`

	_, err := t.tx.ExecContext(ctx, query, li.OrderID, li.BookID, li.Quantity)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
			return fmt.Errorf("insert line item for book %d: %w", li.BookID, ErrBookNotFound)
		}
		return fmt.Errorf("insert line item: %w", err)
	}
	return nil
}

func (t *sqlTx) InsertOutboxEvent(ctx context.Context, ev *OutboxEvent) error {
	query := `INSERT INTO outbox_events (event_id, aggregate_id, event_type, payload, created_at)
	          VALUES ($1, $2, $3, $4, $5)`

	// payload goes as text: lib/pq would encode []byte as bytea
	_, err := t.tx.ExecContext(ctx, query, ev.EventID, ev.AggregateID, ev.EventType, string(ev.Payload), ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

func (t *sqlTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Rollback treats an already finished transaction as rolled back: a failed
// COMMIT leaves nothing behind to undo.
func (t *sqlTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	return nil
}
