package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/bookstore-orders/domain"
)

func (r *Repository) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	query := `SELECT customer_order_id, amount, date_created, confirmation_number, customer_id
	          FROM customer_order WHERE customer_order_id = $1`

	var o domain.Order
	err := r.db.QueryRowContext(ctx, query, orderID).Scan(
		&o.OrderID,
		&o.Amount,
		&o.DateCreated,
		&o.ConfirmationNumber,
		&o.CustomerID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}
	return &o, nil
}

func (r *Repository) GetCustomer(ctx context.Context, customerID int64) (*domain.Customer, error) {
	query := `SELECT customer_id, customer_name, address, phone, email, cc_number, cc_exp_date
	          FROM customer WHERE customer_id = $1`

	var c domain.Customer
	err := r.db.QueryRowContext(ctx, query, customerID).Scan(
		&c.CustomerID,
		&c.Name,
		&c.Address,
		&c.Phone,
		&c.Email,
		&c.CCNumber,
		&c.CCExpDate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query customer by id: %w", err)
	}
	return &c, nil
}

func (r *Repository) ListLineItems(ctx context.Context, orderID int64) ([]domain.LineItem, error) {
	query := `SELECT customer_order_id, book_id, quantity
	          FROM customer_order_line_item WHERE customer_order_id = $1 ORDER BY line_item_id`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query line items by order id: %w", err)
	}
	defer rows.Close()

	var items []domain.LineItem
	for rows.Next() {
		var li domain.LineItem
		if err := rows.Scan(&li.OrderID, &li.BookID, &li.Quantity); err != nil {
			return nil, fmt.Errorf("scan line item row: %w", err)
		}
		items = append(items, li)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return items, nil
}
