package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	instDomain "credisol-backend/internal/domain/installment"
)

type InstallmentRepository struct{ db *gorm.DB }

func NewInstallmentRepository(db *gorm.DB) *InstallmentRepository {
	return &InstallmentRepository{db: db}
}

func (r *InstallmentRepository) CreateBatch(ctx context.Context, insts []*instDomain.Installment) error {
	if len(insts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&insts).Error
}

func (r *InstallmentRepository) ListByLoanID(ctx context.Context, loanID uint64) ([]*instDomain.Installment, error) {
	var out []*instDomain.Installment
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("number ASC").
		Find(&out)
	return out, res.Error
}

// ListByLoanIDForUpdate locks every installment row of the loan so the
// balance read and the paid-amount writes live under one lock.
func (r *InstallmentRepository) ListByLoanIDForUpdate(ctx context.Context, loanID uint64) ([]*instDomain.Installment, error) {
	var out []*instDomain.Installment
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("loan_id = ?", loanID).
		Order("number ASC").
		Find(&out)
	return out, res.Error
}

func (r *InstallmentRepository) SaveAll(ctx context.Context, insts []*instDomain.Installment) error {
	for _, i := range insts {
		if err := r.db.WithContext(ctx).Save(i).Error; err != nil {
			return err
		}
	}
	return nil
}
