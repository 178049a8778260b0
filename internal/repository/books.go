package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/bookstore-orders/domain"
)

func (r *Repository) GetBook(ctx context.Context, bookID int64) (*domain.Book, error) {
	query := `SELECT book_id, title, author, price, is_public, category_id
	          FROM book WHERE book_id = $1`

	var b domain.Book
	err := r.db.QueryRowContext(ctx, query, bookID).Scan(
		&b.BookID,
		&b.Title,
		&b.Author,
		&b.Price,
		&b.IsPublic,
		&b.CategoryID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query book by id: %w", err)
	}
	return &b, nil
}
