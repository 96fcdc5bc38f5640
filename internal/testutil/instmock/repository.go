package instmock

import (
	"context"

	domain "credisol-backend/internal/domain/installment"
)

// Repo is a function-backed mock for the installment repository.
type Repo struct {
	CreateBatchFn           func(ctx context.Context, insts []*domain.Installment) error
	ListByLoanIDFn          func(ctx context.Context, loanID uint64) ([]*domain.Installment, error)
	ListByLoanIDForUpdateFn func(ctx context.Context, loanID uint64) ([]*domain.Installment, error)
	SaveAllFn               func(ctx context.Context, insts []*domain.Installment) error
}

func (m *Repo) CreateBatch(ctx context.Context, insts []*domain.Installment) error {
	if m.CreateBatchFn != nil {
		return m.CreateBatchFn(ctx, insts)
	}
	return nil
}

func (m *Repo) ListByLoanID(ctx context.Context, loanID uint64) ([]*domain.Installment, error) {
	if m.ListByLoanIDFn != nil {
		return m.ListByLoanIDFn(ctx, loanID)
	}
	return nil, nil
}

func (m *Repo) ListByLoanIDForUpdate(ctx context.Context, loanID uint64) ([]*domain.Installment, error) {
	if m.ListByLoanIDForUpdateFn != nil {
		return m.ListByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, nil
}

func (m *Repo) SaveAll(ctx context.Context, insts []*domain.Installment) error {
	if m.SaveAllFn != nil {
		return m.SaveAllFn(ctx, insts)
	}
	return nil
}
