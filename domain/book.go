package domain

import "github.com/shopspring/decimal"

type Book struct {
	BookID     int64           `json:"bookId"`
	Title      string          `json:"title"`
	Author     string          `json:"author"`
	Price      decimal.Decimal `json:"price"`
	IsPublic   bool            `json:"isPublic"`
	CategoryID int64           `json:"categoryId"`
}
