package orders

import "errors"

var (
	// ErrDuplicateOrder is returned when an order id is already in the history.
	ErrDuplicateOrder = errors.New("order already recorded")
	ErrNotFound       = errors.New("order not found")
)
