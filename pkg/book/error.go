package book

import (
	"errors"
	"fmt"
)

// ErrContractViolation is the root of every error this package returns.
// A violation means the event stream feeding the book is malformed;
// the book state is left untouched, but the caller should treat the
// stream as poisoned rather than continue.
var ErrContractViolation = errors.New("contract violation")

var (
	ErrInvalidOrderID   = fmt.Errorf("%w: order id must be non-negative", ErrContractViolation)
	ErrDuplicateOrderID = fmt.Errorf("%w: duplicate order id", ErrContractViolation)
	ErrUnknownOrderID   = fmt.Errorf("%w: unknown order id", ErrContractViolation)
	ErrInvalidPrice     = fmt.Errorf("%w: price must be positive", ErrContractViolation)
	ErrInvalidQuantity  = fmt.Errorf("%w: quantity must be positive", ErrContractViolation)
	ErrExcessiveFill    = fmt.Errorf("%w: fill exceeds resting quantity", ErrContractViolation)
	ErrBookFull         = fmt.Errorf("%w: side is at capacity", ErrContractViolation)
)
