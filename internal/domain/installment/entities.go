package installment

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending       Status = "pending"
	StatusPartiallyPaid Status = "partially_paid"
	StatusPaid          Status = "paid"
)

// Epsilon absorbs denomination-rounding residue: an installment counts as
// paid once amount_paid is within one cent of amount_due.
var Epsilon = decimal.New(1, -2)

// Installment is one scheduled repayment (cuota). AmountDue is immutable once
// generated; AmountPaid only ever grows, via the payment allocator.
type Installment struct {
	ID     uint64 `gorm:"primaryKey;column:id" json:"-"`
	LoanID uint64 `gorm:"column:loan_id;index" json:"-"`
	Number int    `gorm:"column:number" json:"number"`

	DueDate    time.Time       `gorm:"type:date" json:"due_date"`
	AmountDue  decimal.Decimal `gorm:"type:decimal(18,2)" json:"amount_due"`
	AmountPaid decimal.Decimal `gorm:"type:decimal(18,2)" json:"amount_paid"`

	// Informational split of AmountDue, for statements. Allocation works on
	// whole installment amounts and never reads these.
	InterestPortion decimal.Decimal `gorm:"type:decimal(18,2)" json:"interest_portion"`
	CapitalPortion  decimal.Decimal `gorm:"type:decimal(18,2)" json:"capital_portion"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Installment) TableName() string { return "installments" }

// Remaining is the unpaid part of the installment, floored at zero.
func (i *Installment) Remaining() decimal.Decimal {
	r := i.AmountDue.Sub(i.AmountPaid)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// DerivedStatus is never stored; it follows AmountPaid.
func (i *Installment) DerivedStatus() Status {
	switch {
	case i.AmountPaid.GreaterThanOrEqual(i.AmountDue.Sub(Epsilon)):
		return StatusPaid
	case i.AmountPaid.IsPositive():
		return StatusPartiallyPaid
	default:
		return StatusPending
	}
}

// Overdue is computed at query time against an injected "today", never stored.
func (i *Installment) Overdue(today time.Time) bool {
	if i.DerivedStatus() == StatusPaid {
		return false
	}
	y1, m1, d1 := i.DueDate.Date()
	y2, m2, d2 := today.Date()
	due := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	now := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return due.Before(now)
}
