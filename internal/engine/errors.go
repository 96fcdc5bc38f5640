package engine

import "errors"

// Allocation and generation failures are sentinels so the HTTP layer can map
// each kind to a distinct response instead of a generic 500.
var (
	ErrInvalidAmount            = errors.New("amount must be a positive value")
	ErrAmountExceedsBalance     = errors.New("amount exceeds outstanding balance")
	ErrNoSelectableInstallments = errors.New("no unpaid installments remain")
	ErrNonContiguousSelection   = errors.New("selected installments must be a contiguous run from the earliest unpaid one")
	ErrInvalidTerm              = errors.New("invalid loan terms")
)
