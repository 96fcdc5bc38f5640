package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"credisol-backend/internal/domain/installment"
	"credisol-backend/internal/domain/loan"
	"credisol-backend/internal/domain/payment"
)

// CarryPolicy decides what happens to the superseded schedule's unpaid
// balance when a reprogramming is applied. The source system never pinned
// this down, so it is an explicit configuration choice, recorded per request.
type CarryPolicy string

const (
	// CarryNone treats the proposed principal as authoritative; whatever was
	// left unpaid on the old schedule is considered renegotiated away.
	CarryNone CarryPolicy = "none"
	// CarryUnpaidBalance rolls the old schedule's outstanding balance into
	// the new principal on top of the proposed amount.
	CarryUnpaidBalance CarryPolicy = "unpaid_balance"
)

func ParseCarryPolicy(s string) (CarryPolicy, error) {
	switch CarryPolicy(s) {
	case CarryNone, CarryUnpaidBalance:
		return CarryPolicy(s), nil
	}
	return "", fmt.Errorf("unknown carry policy %q", s)
}

// Proposed is the negotiated replacement terms of a reprogramming request.
type Proposed struct {
	Principal  decimal.Decimal
	Rate       decimal.Decimal
	TermMonths int
	Frequency  loan.Frequency
}

// ApplyReprogramming builds the replacement loan version and its fresh
// schedule. The old loan and its installments are left untouched here: the
// caller freezes them (soft delete, history retained) inside the same
// transaction that persists the new version, so a generation failure changes
// nothing.
//
// Payments already recorded stay attributed to the superseded schedule; the
// new schedule starts with zero paid amounts and a start date equal to the
// approval date.
func ApplyReprogramming(l *loan.Loan, insts []*installment.Installment, payments []*payment.Payment, p Proposed, approvedAt time.Time, policy CarryPolicy) (*loan.Loan, []*installment.Installment, error) {
	principal := p.Principal
	if policy == CarryUnpaidBalance {
		principal = principal.Add(Outstanding(insts, payments))
	}

	next := &loan.Loan{
		LoanID:         l.LoanID,
		ClientID:       l.ClientID,
		Principal:      principal,
		Rate:           p.Rate,
		TermMonths:     p.TermMonths,
		Frequency:      p.Frequency,
		StartDate:      approvedAt,
		State:          loan.StateApproved,
		Version:        l.Version + 1,
		StateUpdatedAt: approvedAt,
	}

	schedule, err := GenerateSchedule(TermsOf(next))
	if err != nil {
		return nil, nil, err
	}
	return next, schedule, nil
}
