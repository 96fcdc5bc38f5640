package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"credisol-backend/internal/domain/installment"
	"credisol-backend/internal/domain/payment"
)

// Outstanding is Σ amount_due − Σ payment amounts − Σ payment discounts,
// floored at zero. It must agree, within epsilon, with RemainingDue over the
// same schedule; the test suite asserts both formulations reconcile.
func Outstanding(insts []*installment.Installment, payments []*payment.Payment) decimal.Decimal {
	due := decimal.Zero
	for _, i := range insts {
		due = due.Add(i.AmountDue)
	}
	settled := decimal.Zero
	for _, p := range payments {
		settled = settled.Add(p.Amount).Add(p.Discount)
	}
	out := due.Sub(settled)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// RemainingDue is the installment-side view of the same balance:
// Σ (amount_due − amount_paid) over unpaid and partially paid installments.
func RemainingDue(insts []*installment.Installment) decimal.Decimal {
	sum := decimal.Zero
	for _, i := range insts {
		sum = sum.Add(i.Remaining())
	}
	return sum
}

// OverdueInstallments filters the schedule against an injected "today" so the
// engine never reads the wall clock itself.
func OverdueInstallments(insts []*installment.Installment, today time.Time) []*installment.Installment {
	var out []*installment.Installment
	for _, i := range insts {
		if i.Overdue(today) {
			out = append(out, i)
		}
	}
	return out
}
