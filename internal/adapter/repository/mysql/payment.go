package mysql

import (
	"context"

	"gorm.io/gorm"

	paymentDomain "credisol-backend/internal/domain/payment"
)

type PaymentRepository struct{ db *gorm.DB }

func NewPaymentRepository(db *gorm.DB) *PaymentRepository { return &PaymentRepository{db: db} }

// Create inserts the payment and its allocation rows in one go; gorm cascades
// the association through the foreign key.
func (r *PaymentRepository) Create(ctx context.Context, p *paymentDomain.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepository) ListByLoanID(ctx context.Context, loanID uint64) ([]*paymentDomain.Payment, error) {
	var out []*paymentDomain.Payment
	res := r.db.WithContext(ctx).
		Preload("Allocations").
		Where("loan_id = ?", loanID).
		Order("paid_at ASC, id ASC").
		Find(&out)
	return out, res.Error
}

func (r *PaymentRepository) GetByPaymentID(ctx context.Context, paymentID string) (*paymentDomain.Payment, error) {
	var out paymentDomain.Payment
	res := r.db.WithContext(ctx).
		Preload("Allocations").
		Where("payment_id = ?", paymentID).
		First(&out)
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}
