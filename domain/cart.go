package domain

import "github.com/shopspring/decimal"

// BookSnapshot is the price and category a book had when it was put in the cart.
type BookSnapshot struct {
	Price      decimal.Decimal `json:"price"`
	CategoryID int64           `json:"categoryId"`
}

type ShoppingCartItem struct {
	BookID   int64        `json:"bookId"`
	Quantity int          `json:"quantity"`
	Book     BookSnapshot `json:"book"`
}

// ShoppingCart carries the subtotal and surcharge computed by the cart component.
// They are taken as given at checkout time.
type ShoppingCart struct {
	Items     []ShoppingCartItem `json:"items"`
	Subtotal  decimal.Decimal    `json:"subtotal"`
	Surcharge decimal.Decimal    `json:"surcharge"`
}

func (c *ShoppingCart) Total() decimal.Decimal {
	return c.Subtotal.Add(c.Surcharge)
}

func (c *ShoppingCart) IsEmpty() bool {
	return len(c.Items) == 0
}
