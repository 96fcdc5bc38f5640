package paymentmock

import (
	"context"

	domain "credisol-backend/internal/domain/payment"
)

// Repo is a function-backed mock for the payment repository.
type Repo struct {
	CreateFn         func(ctx context.Context, p *domain.Payment) error
	ListByLoanIDFn   func(ctx context.Context, loanID uint64) ([]*domain.Payment, error)
	GetByPaymentIDFn func(ctx context.Context, paymentID string) (*domain.Payment, error)
}

func (m *Repo) Create(ctx context.Context, p *domain.Payment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}

func (m *Repo) ListByLoanID(ctx context.Context, loanID uint64) ([]*domain.Payment, error) {
	if m.ListByLoanIDFn != nil {
		return m.ListByLoanIDFn(ctx, loanID)
	}
	return nil, nil
}

func (m *Repo) GetByPaymentID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	if m.GetByPaymentIDFn != nil {
		return m.GetByPaymentIDFn(ctx, paymentID)
	}
	return nil, domain.ErrNotFound
}
