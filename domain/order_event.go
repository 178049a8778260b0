package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const EventTypeOrderPlaced = "OrderPlaced"

type OrderPlacedItem struct {
	BookID   int64 `json:"book_id"`
	Quantity int   `json:"quantity"`
}

// OrderPlacedEvent is the outbox payload written in the same transaction as the order.
type OrderPlacedEvent struct {
	OrderID            int64             `json:"order_id"`
	CustomerID         int64             `json:"customer_id"`
	ConfirmationNumber int64             `json:"confirmation_number"`
	Amount             decimal.Decimal   `json:"amount"`
	Items              []OrderPlacedItem `json:"items"`
	PlacedAt           time.Time         `json:"placed_at"`
}
