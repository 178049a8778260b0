package cache

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/bookstore-orders/domain"
)

type BookCache interface {
	Get(ctx context.Context, bookID int64) (*domain.Book, error)
	Set(ctx context.Context, book *domain.Book) error
	Delete(ctx context.Context, bookID int64) error
}

var ErrCacheMiss = errors.New("cache miss")
