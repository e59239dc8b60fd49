package meals

import "errors"

var (
	// ErrNotFound is returned when a meal or item id does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrZeroBaseline guards quantity scaling against an estimated quantity of 0.
	ErrZeroBaseline = errors.New("estimated quantity is zero, cannot scale")
	// ErrInvalidQuantity rejects non-positive new quantities.
	ErrInvalidQuantity = errors.New("quantity must be a positive number")
	// ErrNoChange means an update carried nothing to apply.
	ErrNoChange = errors.New("either newQuantity, newItem or nutrition must be provided")
)
