// Package inventory holds the stock and pricing invariants shared by order
// placement and product management. The checks are pure so both the
// transactional path and input validation at the HTTP boundary use the same
// rules.
package inventory

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrNonPositivePrice = errors.New("price must be positive")
	ErrNegativeStock    = errors.New("stock must not be negative")
)

// CanFulfill reports whether a product with the given stock level can satisfy
// a request for quantity units. quantity is assumed to be >= 1; callers
// validate that before reaching stock checks.
func CanFulfill(stock, quantity int) bool {
	return stock >= quantity
}

// Orderable reports whether a product may appear on an order at all: it needs
// a positive price. Zero-priced rows exist only as drafts and must not be
// sold.
func Orderable(price decimal.Decimal) bool {
	return price.IsPositive()
}

// ValidateProductInput guards product-management writes: price must be
// positive and stock must not start below zero.
func ValidateProductInput(price decimal.Decimal, stock int) error {
	if !price.IsPositive() {
		return ErrNonPositivePrice
	}
	if stock < 0 {
		return ErrNegativeStock
	}
	return nil
}
