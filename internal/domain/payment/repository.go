package payment

import "context"

type Repository interface {
	// Create stores the payment together with its allocation rows.
	Create(ctx context.Context, p *Payment) error
	ListByLoanID(ctx context.Context, loanID uint64) ([]*Payment, error)
	GetByPaymentID(ctx context.Context, paymentID string) (*Payment, error)
}
