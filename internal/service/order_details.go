package service

import (
	"context"
	"fmt"

	"github.com/fjod/go_cart/bookstore-orders/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// GetOrderDetails joins an order with its customer, line items and books.
// A missing order, customer or book is an error; nothing is defaulted.
func (s *OrderServiceImpl) GetOrderDetails(ctx context.Context, orderID int64) (*domain.OrderDetails, error) {
	ctx, span := tracer.Start(ctx, "OrderService.GetOrderDetails")
	defer span.End()
	span.SetAttributes(attribute.Int64("order.id", orderID))

	details, err := s.assembleOrderDetails(ctx, orderID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return details, nil
}

func (s *OrderServiceImpl) assembleOrderDetails(ctx context.Context, orderID int64) (*domain.OrderDetails, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order %d: %w", orderID, err)
	}

	customer, err := s.orders.GetCustomer(ctx, order.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer %d of order %d: %w", order.CustomerID, orderID, err)
	}

	lineItems, err := s.orders.ListLineItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get line items of order %d: %w", orderID, err)
	}

	items := make([]domain.LineItemDetail, 0, len(lineItems))
	for _, li := range lineItems {
		book, err := s.detailBooks.GetBook(ctx, li.BookID)
		if err != nil {
			return nil, fmt.Errorf("failed to get book %d of order %d: %w", li.BookID, orderID, err)
		}
		items = append(items, domain.LineItemDetail{LineItem: li, Book: *book})
	}

	return &domain.OrderDetails{
		Order:    *order,
		Customer: *customer,
		Items:    items,
	}, nil
}
