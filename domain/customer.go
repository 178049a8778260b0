package domain

import "time"

// CustomerForm is the raw billing form as submitted at checkout.
type CustomerForm struct {
	Name          string `json:"name"`
	Address       string `json:"address"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	CCNumber      string `json:"ccNumber"`
	CCExpiryMonth string `json:"ccExpiryMonth"`
	CCExpiryYear  string `json:"ccExpiryYear"`
}

type Customer struct {
	CustomerID int64     `json:"customerId"`
	Name       string    `json:"customerName"`
	Address    string    `json:"address"`
	Phone      string    `json:"phone"`
	Email      string    `json:"email"`
	CCNumber   string    `json:"ccNumber"`
	CCExpDate  time.Time `json:"ccExpDate"`
}
