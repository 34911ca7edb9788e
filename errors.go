package finbook

import "errors"

// The engine's error taxonomy. Every mutating operation wraps one of these
// sentinels, so callers can classify a failure with errors.Is without parsing
// messages.
var (
	// ErrValidation reports a non-positive amount, quantity or price, or a
	// missing required field.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound reports an id that does not resolve on an amend or delete.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientHolding reports a sell larger than the quantity held at
	// the time of the trade.
	ErrInsufficientHolding = errors.New("insufficient holding")

	// ErrReferentialIntegrity reports an account or party reference that does
	// not resolve.
	ErrReferentialIntegrity = errors.New("unknown reference")
)
