package reprogmock

import (
	"context"

	"gorm.io/gorm"

	domain "credisol-backend/internal/domain/reprogramming"
)

// Repo is a function-backed mock for the reprogramming repository.
type Repo struct {
	CreateFn                  func(ctx context.Context, r *domain.Request) error
	SaveFn                    func(ctx context.Context, r *domain.Request) error
	GetByRequestIDFn          func(ctx context.Context, requestID string) (*domain.Request, error)
	GetByRequestIDForUpdateFn func(ctx context.Context, requestID string) (*domain.Request, error)
	GetPendingByLoanIDFn      func(ctx context.Context, loanID uint64) (*domain.Request, error)
}

func (m *Repo) Create(ctx context.Context, r *domain.Request) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, r *domain.Request) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, r)
	}
	return nil
}

func (m *Repo) GetByRequestID(ctx context.Context, requestID string) (*domain.Request, error) {
	if m.GetByRequestIDFn != nil {
		return m.GetByRequestIDFn(ctx, requestID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) GetByRequestIDForUpdate(ctx context.Context, requestID string) (*domain.Request, error) {
	if m.GetByRequestIDForUpdateFn != nil {
		return m.GetByRequestIDForUpdateFn(ctx, requestID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) GetPendingByLoanID(ctx context.Context, loanID uint64) (*domain.Request, error) {
	if m.GetPendingByLoanIDFn != nil {
		return m.GetPendingByLoanIDFn(ctx, loanID)
	}
	return nil, gorm.ErrRecordNotFound
}
