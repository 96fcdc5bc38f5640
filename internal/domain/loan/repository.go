package loan

import "context"

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	Save(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	// GetByID resolves a numeric FK, including superseded (soft-deleted) rows.
	GetByID(ctx context.Context, id uint64) (*Loan, error)
	// GetByLoanIDForUpdate locks the active row for the duration of the
	// surrounding transaction (SELECT ... FOR UPDATE).
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	GetByIDForUpdate(ctx context.Context, id uint64) (*Loan, error)
	ListByState(ctx context.Context, s State) ([]*Loan, error)
	// SoftDelete retires a version (used when a reprogramming supersedes it).
	SoftDelete(ctx context.Context, l *Loan, deletedBy string) error
}
