package repository

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrObjectNotFound = errors.New("not found")
	ErrDuplicateKey   = errors.New("duplicate key")
	ErrValidation     = errors.New("validation failed")
)

// Order is one purchase transaction. Quantity and Price travel as numeric
// strings in the remote format; OrderDate is date-only and is never revised
// after creation.
type Order struct {
	ID           string
	CustomerName string
	CoffeeType   string
	Quantity     int
	Price        decimal.Decimal
	OrderDate    time.Time
}

// OrderPatch carries the revisable fields of an order. A nil field keeps the
// stored value. CustomerName and OrderDate are not revisable.
type OrderPatch struct {
	CoffeeType *string
	Quantity   *int
	Price      *decimal.Decimal
}

func (p OrderPatch) IsEmpty() bool {
	return p.CoffeeType == nil && p.Quantity == nil && p.Price == nil
}

// User is an account credential record keyed by UserName.
type User struct {
	UserName string
	Password string
}

// ParseQuantity validates a quantity supplied as text before any Order is
// constructed from it.
func ParseQuantity(s string) (int, error) {
	qty, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: quantity %q is not an integer", ErrValidation, s)
	}
	if qty < 0 {
		return 0, fmt.Errorf("%w: quantity must not be negative", ErrValidation)
	}
	return qty, nil
}

// ParsePrice validates a per-unit price supplied as text.
func ParsePrice(s string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: price %q is not a number", ErrValidation, s)
	}
	if price.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	return price, nil
}
