package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	reprogDomain "credisol-backend/internal/domain/reprogramming"
)

type ReprogrammingRepository struct{ db *gorm.DB }

func NewReprogrammingRepository(db *gorm.DB) *ReprogrammingRepository {
	return &ReprogrammingRepository{db: db}
}

func (r *ReprogrammingRepository) Create(ctx context.Context, req *reprogDomain.Request) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *ReprogrammingRepository) Save(ctx context.Context, req *reprogDomain.Request) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *ReprogrammingRepository) GetByRequestID(ctx context.Context, requestID string) (*reprogDomain.Request, error) {
	var out reprogDomain.Request
	res := r.db.WithContext(ctx).Where("request_id = ?", requestID).First(&out)
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

func (r *ReprogrammingRepository) GetByRequestIDForUpdate(ctx context.Context, requestID string) (*reprogDomain.Request, error) {
	var out reprogDomain.Request
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("request_id = ?", requestID).
		First(&out)
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

func (r *ReprogrammingRepository) GetPendingByLoanID(ctx context.Context, loanID uint64) (*reprogDomain.Request, error) {
	var out reprogDomain.Request
	res := r.db.WithContext(ctx).
		Where("loan_id = ? AND state = ?", loanID, reprogDomain.StatePending).
		Order("id DESC").
		First(&out)
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}
