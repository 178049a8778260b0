package service

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fjod/go_cart/bookstore-orders/domain"
)

const (
	minFieldLength = 4
	maxFieldLength = 45
	phoneDigits    = 10
)

var (
	nonDigit     = regexp.MustCompile(`\D`)
	cardFillers  = regexp.MustCompile(`[\s-]+`)
	cardNumber   = regexp.MustCompile(`^[0-9]{14,16}$`)
	emailPattern = regexp.MustCompile(`^[^\s]+@\w+\.\w+[^.]$`)
)

// ValidateCustomer checks the billing form field by field and reports the
// first offending field. now is used for the card expiry check.
func ValidateCustomer(form *domain.CustomerForm, now time.Time) error {
	if !lengthInRange(form.Name) {
		return fieldError("name", "Invalid name field")
	}

	if !lengthInRange(form.Address) {
		return fieldError("address", "Invalid address field")
	}

	if form.Phone == "" || len(nonDigit.ReplaceAllString(form.Phone, "")) != phoneDigits {
		return fieldError("phone", "Invalid phone field")
	}

	if form.Email == "" || !emailPattern.MatchString(form.Email) {
		return fieldError("email", "Invalid email field")
	}

	if form.CCNumber == "" || !cardNumber.MatchString(cardFillers.ReplaceAllString(form.CCNumber, "")) {
		return fieldError("ccNumber", "Invalid ccNumber field")
	}

	if !expiryDateIsValid(form.CCExpiryMonth, form.CCExpiryYear, now) {
		return fieldError("ccExpiry", "Please enter a valid expiration date.")
	}

	return nil
}

func lengthInRange(s string) bool {
	n := utf8.RuneCountInString(s)
	return n >= minFieldLength && n <= maxFieldLength
}

// expiryDateIsValid accepts the current month and any later one.
func expiryDateIsValid(month, year string, now time.Time) bool {
	m, y, ok := parseExpiry(month, year)
	if !ok {
		return false
	}
	currentYear, currentMonth := now.Year(), int(now.Month())
	return y > currentYear || (y == currentYear && m >= currentMonth)
}

func parseExpiry(month, year string) (int, int, bool) {
	m, err := strconv.Atoi(strings.TrimSpace(month))
	if err != nil || m < 1 || m > 12 {
		return 0, 0, false
	}
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil || y < 1 {
		return 0, 0, false
	}
	return m, y, true
}

// expiryDate is the first day of the expiry month, as stored on the customer.
func expiryDate(month, year string) (time.Time, error) {
	m, y, ok := parseExpiry(month, year)
	if !ok {
		return time.Time{}, fieldError("ccExpiry", "Please enter a valid expiration date.")
	}
	return time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.UTC), nil
}
