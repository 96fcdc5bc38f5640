package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"credisol-backend/internal/domain/installment"
	"credisol-backend/internal/domain/loan"
)

// InterestMethod selects how interest is spread across installments. Only the
// flat method exists today; a declining-balance method would slot in here
// without touching the date/count logic.
type InterestMethod string

const InterestFlat InterestMethod = "flat"

// Terms is everything schedule generation needs from a loan version.
type Terms struct {
	Principal  decimal.Decimal
	Rate       decimal.Decimal
	TermMonths int
	Frequency  loan.Frequency
	StartDate  time.Time
}

func TermsOf(l *loan.Loan) Terms {
	return Terms{
		Principal:  l.Principal,
		Rate:       l.Rate,
		TermMonths: l.TermMonths,
		Frequency:  l.Frequency,
		StartDate:  l.StartDate,
	}
}

func (t Terms) validate() error {
	if !t.Principal.IsPositive() {
		return fmt.Errorf("%w: principal must be positive", ErrInvalidTerm)
	}
	if !t.Rate.IsPositive() {
		return fmt.Errorf("%w: rate must be positive", ErrInvalidTerm)
	}
	if t.TermMonths <= 0 {
		return fmt.Errorf("%w: term months must be positive", ErrInvalidTerm)
	}
	if !t.Frequency.Valid() {
		return fmt.Errorf("%w: unsupported frequency %q", ErrInvalidTerm, t.Frequency)
	}
	return nil
}

// InstallmentCount approximates the number of business periods in the term.
// These multipliers are deliberately not calendar-exact.
func InstallmentCount(f loan.Frequency, termMonths int) int {
	switch f {
	case loan.FrequencyDaily:
		return termMonths * 26
	case loan.FrequencyWeekly:
		return termMonths * 4
	case loan.FrequencyBiweekly:
		return termMonths * 2
	default:
		return termMonths
	}
}

// periodDelta is the calendar-day gap between consecutive due dates.
func periodDelta(f loan.Frequency) int {
	switch f {
	case loan.FrequencyDaily:
		return 1
	case loan.FrequencyWeekly:
		return 7
	case loan.FrequencyBiweekly:
		return 15
	default:
		return 30
	}
}

// GenerateSchedule turns flat-interest terms into an ordered installment list.
//
// Total repayable = principal × (1 + rate × termMonths), split evenly over N
// installments, each independently snapped to the coin denominations. The
// residue this leaves against the theoretical total is bounded (≤ 0.30 per
// installment) and intentionally not folded into the final installment:
// adjusting it would change every schedule already in the field.
//
// Due dates start one period after StartDate and advance by the period delta;
// a date landing on Sunday shifts forward day by day until it leaves the
// non-business day, and the next date advances from the shifted one.
func GenerateSchedule(t Terms) ([]*installment.Installment, error) {
	return GenerateScheduleWithMethod(t, InterestFlat)
}

func GenerateScheduleWithMethod(t Terms, m InterestMethod) ([]*installment.Installment, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	if m != InterestFlat {
		return nil, fmt.Errorf("%w: unsupported interest method %q", ErrInvalidTerm, m)
	}

	n := InstallmentCount(t.Frequency, t.TermMonths)
	count := decimal.NewFromInt(int64(n))

	termFactor := one.Add(t.Rate.Mul(decimal.NewFromInt(int64(t.TermMonths))))
	totalRepayable := t.Principal.Mul(termFactor)
	amount := RoundDenomination(totalRepayable.Div(count))

	interestPortion := t.Principal.Mul(t.Rate).Div(count).Round(2)
	capitalPortion := amount.Sub(interestPortion)

	delta := periodDelta(t.Frequency)
	due := t.StartDate

	out := make([]*installment.Installment, 0, n)
	for i := 1; i <= n; i++ {
		due = due.AddDate(0, 0, delta)
		for due.Weekday() == time.Sunday {
			due = due.AddDate(0, 0, 1)
		}
		out = append(out, &installment.Installment{
			Number:          i,
			DueDate:         due,
			AmountDue:       amount,
			AmountPaid:      decimal.Zero,
			InterestPortion: interestPortion,
			CapitalPortion:  capitalPortion,
		})
	}
	return out, nil
}
