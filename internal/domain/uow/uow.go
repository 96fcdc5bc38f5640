package uow

import (
	"context"

	"credisol-backend/internal/domain/installment"
	"credisol-backend/internal/domain/loan"
	"credisol-backend/internal/domain/payment"
	"credisol-backend/internal/domain/reprogramming"
)

type Repos struct {
	Loans          loan.Repository
	Installments   installment.Repository
	Payments       payment.Repository
	Reprogrammings reprogramming.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the loan row first, then pass it in. All payment and
	// reprogramming mutations go through this so the balance read and the
	// allocation writes can never interleave across callers.
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
