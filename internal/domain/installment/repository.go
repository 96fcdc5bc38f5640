package installment

import "context"

type Repository interface {
	// CreateBatch inserts a freshly generated schedule in one go. Schedules
	// are only ever created in bulk, never one row at a time.
	CreateBatch(ctx context.Context, insts []*Installment) error
	// ListByLoanID returns the schedule ordered by number ascending.
	ListByLoanID(ctx context.Context, loanID uint64) ([]*Installment, error)
	// ListByLoanIDForUpdate locks the whole installment set of a loan so the
	// balance read and the paid-amount writes happen under one lock.
	ListByLoanIDForUpdate(ctx context.Context, loanID uint64) ([]*Installment, error)
	SaveAll(ctx context.Context, insts []*Installment) error
}
