package service

import "math/rand/v2"

const (
	minConfirmationNumber = 100000000
	maxConfirmationNumber = 999999999
)

// ConfirmationGenerator hands out the customer-facing confirmation code of an
// order. Codes are not guaranteed unique across orders.
type ConfirmationGenerator interface {
	Next() int64
}

type RandomConfirmationGenerator struct{}

func (RandomConfirmationGenerator) Next() int64 {
	return minConfirmationNumber + rand.Int64N(maxConfirmationNumber-minConfirmationNumber+1)
}
