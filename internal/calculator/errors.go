package calculator

import "errors"

var (
	// ErrInvalidAmount is returned when an amount is not a base-10 integer or exceeds MaxAmount.
	ErrInvalidAmount = errors.New("amount must be a whole number")
	// ErrIndexOutOfRange is returned when an index does not address a selected entry.
	ErrIndexOutOfRange = errors.New("selection index out of range")
	// ErrItemNotSelected is returned by id-addressed operations when the item is not in the selection.
	ErrItemNotSelected = errors.New("item is not selected")
)
