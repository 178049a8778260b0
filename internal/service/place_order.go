package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/fjod/go_cart/bookstore-orders/domain"
	"github.com/fjod/go_cart/bookstore-orders/internal/metrics"
	r "github.com/fjod/go_cart/bookstore-orders/internal/repository"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PlaceOrder validates the form and the cart, then stores the customer, the
// order, its line items and an OrderPlaced outbox event in one transaction.
// It returns the new order id.
func (s *OrderServiceImpl) PlaceOrder(
	ctx context.Context,
	form *domain.CustomerForm,
	cart *domain.ShoppingCart) (int64, error) {

	ctx, span := tracer.Start(ctx, "OrderService.PlaceOrder")
	defer span.End()
	started := time.Now()

	if err := ValidateCustomer(form, s.now()); err != nil {
		s.record(metrics.OutcomeInvalid, started)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	if err := s.validateCart(ctx, cart); err != nil {
		outcome := metrics.OutcomeInvalid
		var ve *ValidationError
		if !errors.As(err, &ve) {
			outcome = metrics.OutcomeFailed
		}
		s.record(outcome, started)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	// unreachable once ValidateCustomer passed; an expiry is never stored empty
	expDate, err := expiryDate(form.CCExpiryMonth, form.CCExpiryYear)
	if err != nil {
		s.record(metrics.OutcomeInvalid, started)
		return 0, err
	}

	customer := &domain.Customer{
		Name:      form.Name,
		Address:   form.Address,
		Phone:     form.Phone,
		Email:     form.Email,
		CCNumber:  form.CCNumber,
		CCExpDate: expDate,
	}

	// once begun, the transaction runs to commit or rollback regardless of the caller
	txCtx := context.WithoutCancel(ctx)
	tx, err := s.txs.BeginTx(txCtx)
	if err != nil {
		s.record(metrics.OutcomeFatal, started)
		span.SetStatus(codes.Error, err.Error())
		s.log.ErrorContext(ctx, "cannot begin placement transaction", "error", err)
		return 0, &PersistenceError{Op: "begin transaction", Err: err}
	}

	orderID, err := s.performPlaceOrderTransaction(txCtx, tx, customer, cart)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if rbErr := tx.Rollback(); rbErr != nil {
			s.record(metrics.OutcomeFatal, started)
			s.log.ErrorContext(ctx, "failed to roll back transaction", "error", rbErr, "cause", err)
			return 0, &PersistenceError{Op: "rollback", Err: rbErr}
		}
		s.record(metrics.OutcomeFailed, started)
		s.log.WarnContext(ctx, "order placement rolled back", "error", err)
		return 0, &PlacementFailedError{Cause: err}
	}

	s.record(metrics.OutcomePlaced, started)
	span.SetAttributes(attribute.Int64("order.id", orderID))
	s.log.InfoContext(ctx, "order placed", "order_id", orderID, "items", len(cart.Items))
	return orderID, nil
}

func (s *OrderServiceImpl) performPlaceOrderTransaction(
	ctx context.Context,
	tx r.Tx,
	customer *domain.Customer,
	cart *domain.ShoppingCart) (int64, error) {

	customerID, err := tx.CreateCustomer(ctx, customer)
	if err != nil {
		return 0, err
	}

	order := &domain.Order{
		Amount:             cart.Total(),
		DateCreated:        s.now().UTC(),
		ConfirmationNumber: s.confirmations.Next(),
		CustomerID:         customerID,
	}
	orderID, err := tx.CreateOrder(ctx, order)
	if err != nil {
		return 0, err
	}
	order.OrderID = orderID

	for _, item := range cart.Items {
		lineItem := domain.LineItem{
			OrderID:  orderID,
			BookID:   item.BookID,
			Quantity: item.Quantity,
		}
		if err := tx.CreateLineItem(ctx, lineItem); err != nil {
			return 0, err
		}
	}

	event, err := orderPlacedEvent(order, cart)
	if err != nil {
		return 0, err
	}
	if err := tx.InsertOutboxEvent(ctx, event); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return orderID, nil
}

func orderPlacedEvent(order *domain.Order, cart *domain.ShoppingCart) (*r.OutboxEvent, error) {
	items := make([]domain.OrderPlacedItem, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = domain.OrderPlacedItem{BookID: item.BookID, Quantity: item.Quantity}
	}

	payload, err := json.Marshal(domain.OrderPlacedEvent{
		OrderID:            order.OrderID,
		CustomerID:         order.CustomerID,
		ConfirmationNumber: order.ConfirmationNumber,
		Amount:             order.Amount,
		Items:              items,
		PlacedAt:           order.DateCreated,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order placed event: %w", err)
	}

	return &r.OutboxEvent{
		EventID:     uuid.NewString(),
		AggregateID: strconv.FormatInt(order.OrderID, 10),
		EventType:   domain.EventTypeOrderPlaced,
		Payload:     payload,
		CreatedAt:   order.DateCreated,
	}, nil
}
