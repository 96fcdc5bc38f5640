package payment

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("payment not found")

// Payment is immutable once recorded. Reversing one is a separate
// compensating operation, not a mutation of the row.
type Payment struct {
	ID        uint64 `gorm:"primaryKey;column:id" json:"-"`
	PaymentID string `gorm:"size:32;uniqueIndex" json:"payment_id"`
	LoanID    uint64 `gorm:"column:loan_id;index" json:"-"`

	Amount   decimal.Decimal `gorm:"type:decimal(18,2)" json:"amount"`
	Discount decimal.Decimal `gorm:"type:decimal(18,2)" json:"discount"`
	Strategy string          `gorm:"size:32" json:"strategy"`
	PaidAt   time.Time       `json:"paid_at"`

	Allocations []Allocation `gorm:"foreignKey:PaymentID;references:ID" json:"allocations"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Payment) TableName() string { return "payments" }

// Allocation records how much of a payment landed on one installment.
type Allocation struct {
	ID                uint64          `gorm:"primaryKey;column:id" json:"-"`
	PaymentID         uint64          `gorm:"column:payment_id;index" json:"-"`
	InstallmentID     uint64          `gorm:"column:installment_id;index" json:"-"`
	InstallmentNumber int             `gorm:"column:installment_number" json:"installment_number"`
	Amount            decimal.Decimal `gorm:"type:decimal(18,2)" json:"amount"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (Allocation) TableName() string { return "payment_allocations" }
