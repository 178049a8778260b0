package cache

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/fjod/go_cart/bookstore-orders/domain"
	"github.com/fjod/go_cart/bookstore-orders/internal/repository"
	"golang.org/x/sync/singleflight"
)

// CachedBookReader is a cache-aside repository.BookReader. It serves the order
// details read path; cart checks go to the repository directly.
type CachedBookReader struct {
	repo  repository.BookReader
	cache BookCache
	log   *slog.Logger
	sfg   singleflight.Group // Prevents cache stampede
}

func NewCachedBookReader(repo repository.BookReader, cache BookCache, log *slog.Logger) *CachedBookReader {
	if log == nil {
		log = slog.Default()
	}
	return &CachedBookReader{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

func (c *CachedBookReader) GetBook(ctx context.Context, bookID int64) (*domain.Book, error) {
	v, err, _ := c.sfg.Do(strconv.FormatInt(bookID, 10), func() (interface{}, error) {
		book, err := c.cache.Get(ctx, bookID)
		if err == nil {
			return book, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			c.log.WarnContext(ctx, "book cache get error", "book_id", bookID, "error", err)
		}

		book, err = c.repo.GetBook(ctx, bookID)
		if err != nil {
			return nil, err
		}

		setCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		if errSet := c.cache.Set(setCtx, book); errSet != nil {
			c.log.WarnContext(ctx, "book cache set error", "book_id", bookID, "error", errSet)
		}
		return book, nil
	})
	if err != nil {
		return nil, err
	}

	book := *v.(*domain.Book)
	return &book, nil
}
