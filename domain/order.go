package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	OrderID            int64           `json:"orderId"`
	Amount             decimal.Decimal `json:"amount"`
	DateCreated        time.Time       `json:"dateCreated"`
	ConfirmationNumber int64           `json:"confirmationNumber"`
	CustomerID         int64           `json:"customerId"`
}

type LineItem struct {
	OrderID  int64 `json:"orderId"`
	BookID   int64 `json:"bookId"`
	Quantity int   `json:"quantity"`
}

// LineItemDetail pairs a stored line item with the book it refers to.
type LineItemDetail struct {
	LineItem LineItem `json:"lineItem"`
	Book     Book     `json:"book"`
}

// OrderDetails is assembled on read and never stored.
type OrderDetails struct {
	Order    Order            `json:"order"`
	Customer Customer         `json:"customer"`
	Items    []LineItemDetail `json:"items"`
}
