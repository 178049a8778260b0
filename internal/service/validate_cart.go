package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/bookstore-orders/domain"
	r "github.com/fjod/go_cart/bookstore-orders/internal/repository"
)

const (
	minQuantity = 0
	maxQuantity = 99
)

// validateCart re-checks every cart line against the catalog so that stale or
// tampered prices and categories are rejected at checkout. It never writes.
func (s *OrderServiceImpl) validateCart(ctx context.Context, cart *domain.ShoppingCart) error {
	if cart == nil || cart.IsEmpty() {
		return &ValidationError{Message: "Cart is empty."}
	}

	for _, item := range cart.Items {
		if item.Quantity < minQuantity || item.Quantity > maxQuantity {
			return &ValidationError{Message: "Invalid quantity"}
		}

		book, err := s.books.GetBook(ctx, item.BookID)
		if errors.Is(err, r.ErrBookNotFound) {
			return &ValidationError{Message: "Invalid book"}
		}
		if err != nil {
			return fmt.Errorf("failed to get book %d: %w", item.BookID, err)
		}

		if !book.Price.Equal(item.Book.Price) {
			return &ValidationError{Message: "Invalid price"}
		}
		if book.CategoryID != item.Book.CategoryID {
			return &ValidationError{Message: "Invalid category"}
		}
	}
	return nil
}
