package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"credisol-backend/internal/domain/installment"
	"credisol-backend/internal/domain/payment"
)

// Strategy is the closed set of ways a payment can be spread over a schedule.
// The interface is sealed (unexported method) so the dispatch in Allocate is
// exhaustive at compile time; adding a strategy means adding a case there.
type Strategy interface {
	name() string
}

// SingleDue pays off exactly the earliest unpaid installment.
type SingleDue struct{}

// ContiguousMultiple pays off a caller-selected run of installments. The run
// must start at the earliest unpaid installment and have no gaps.
type ContiguousMultiple struct{ Numbers []int }

// PartialSingle puts an amount smaller than the earliest unpaid installment's
// remaining due onto that installment.
type PartialSingle struct{}

// GreedySequential spreads an arbitrary amount over installments in due-date
// order, filling each before touching the next.
type GreedySequential struct{}

// FullPayoff settles the whole outstanding balance. Discount is recorded on
// the payment, not attributed to any single installment; it forgives whatever
// tail the cash amount does not reach.
type FullPayoff struct{ Discount decimal.Decimal }

func (SingleDue) name() string          { return "single_due" }
func (ContiguousMultiple) name() string { return "contiguous_multiple" }
func (PartialSingle) name() string      { return "partial_single" }
func (GreedySequential) name() string   { return "greedy_sequential" }
func (FullPayoff) name() string         { return "full_payoff" }

type allocation struct {
	inst   *installment.Installment
	amount decimal.Decimal
}

// Allocate distributes amount over the schedule according to the strategy and
// returns the resulting payment with its allocation records.
//
// Installments are only mutated after every check has passed: on error the
// schedule is returned untouched, so a failed call leaves zero observable
// state change. AmountPaid only ever grows.
func Allocate(insts []*installment.Installment, amount decimal.Decimal, strat Strategy, paidAt time.Time) (*payment.Payment, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	ordered := make([]*installment.Installment, len(insts))
	copy(ordered, insts)
	sort.Slice(ordered, func(a, b int) bool { return ordered[a].Number < ordered[b].Number })

	var open []*installment.Installment
	for _, i := range ordered {
		if i.DerivedStatus() != installment.StatusPaid {
			open = append(open, i)
		}
	}
	if len(open) == 0 {
		return nil, ErrNoSelectableInstallments
	}

	outstanding := RemainingDue(ordered)
	discount := decimal.Zero

	var (
		allocs []allocation
		err    error
	)
	switch s := strat.(type) {
	case SingleDue:
		allocs, err = allocateSingleDue(open, amount)
	case ContiguousMultiple:
		allocs, err = allocateContiguous(open, s.Numbers, amount)
	case PartialSingle:
		allocs, err = allocatePartial(open, amount)
	case GreedySequential:
		if amount.GreaterThan(outstanding.Add(installment.Epsilon)) {
			return nil, ErrAmountExceedsBalance
		}
		allocs, err = allocateGreedy(open, amount)
	case FullPayoff:
		discount = s.Discount
		allocs, err = allocatePayoff(open, amount, discount, outstanding)
	default:
		return nil, fmt.Errorf("unknown allocation strategy %T", strat)
	}
	if err != nil {
		return nil, err
	}

	p := &payment.Payment{
		Amount:   amount,
		Discount: discount,
		Strategy: strat.name(),
		PaidAt:   paidAt,
	}
	for _, a := range allocs {
		a.inst.AmountPaid = a.inst.AmountPaid.Add(a.amount)
		p.Allocations = append(p.Allocations, payment.Allocation{
			InstallmentID:     a.inst.ID,
			InstallmentNumber: a.inst.Number,
			Amount:            a.amount,
		})
	}
	if _, ok := strat.(FullPayoff); ok {
		// The discount forgives whatever the cash did not reach; close every
		// installment so the schedule-side balance reads zero.
		for _, i := range open {
			if i.AmountPaid.LessThan(i.AmountDue) {
				i.AmountPaid = i.AmountDue
			}
		}
	}
	return p, nil
}

func allocateSingleDue(open []*installment.Installment, amount decimal.Decimal) ([]allocation, error) {
	target := open[0]
	if amount.Sub(target.Remaining()).Abs().GreaterThan(installment.Epsilon) {
		return nil, fmt.Errorf("%w: single-due payment must equal the remaining due %s", ErrInvalidAmount, target.Remaining().StringFixed(2))
	}
	return []allocation{{inst: target, amount: amount}}, nil
}

func allocateContiguous(open []*installment.Installment, numbers []int, amount decimal.Decimal) ([]allocation, error) {
	if len(numbers) == 0 {
		return nil, fmt.Errorf("%w: no installments selected", ErrNonContiguousSelection)
	}
	sel := make([]int, len(numbers))
	copy(sel, numbers)
	sort.Ints(sel)

	if sel[0] != open[0].Number {
		return nil, ErrNonContiguousSelection
	}
	for i := 1; i < len(sel); i++ {
		if sel[i] != sel[i-1]+1 {
			return nil, ErrNonContiguousSelection
		}
	}
	if len(sel) > len(open) {
		return nil, ErrNonContiguousSelection
	}

	targets := open[:len(sel)]
	// The open set can have holes (an installment settled out of order by a
	// compensating flow); positional slicing alone would route money past one.
	for i, t := range targets {
		if t.Number != sel[i] {
			return nil, ErrNonContiguousSelection
		}
	}
	total := decimal.Zero
	for _, t := range targets {
		total = total.Add(t.Remaining())
	}
	if amount.Sub(total).Abs().GreaterThan(installment.Epsilon) {
		return nil, fmt.Errorf("%w: selection requires exactly %s", ErrInvalidAmount, total.StringFixed(2))
	}

	allocs := make([]allocation, 0, len(targets))
	left := amount
	for i, t := range targets {
		a := t.Remaining()
		if i == len(targets)-1 {
			a = left // absorb the epsilon tolerance so the sum matches the amount
		}
		allocs = append(allocs, allocation{inst: t, amount: a})
		left = left.Sub(a)
	}
	return allocs, nil
}

func allocatePartial(open []*installment.Installment, amount decimal.Decimal) ([]allocation, error) {
	target := open[0]
	if amount.GreaterThanOrEqual(target.Remaining()) {
		return nil, fmt.Errorf("%w: partial payment must be below the remaining due %s", ErrInvalidAmount, target.Remaining().StringFixed(2))
	}
	return []allocation{{inst: target, amount: amount}}, nil
}

func allocateGreedy(open []*installment.Installment, amount decimal.Decimal) ([]allocation, error) {
	var allocs []allocation
	left := amount
	for _, t := range open {
		if !left.IsPositive() {
			break
		}
		a := decimal.Min(t.Remaining(), left)
		allocs = append(allocs, allocation{inst: t, amount: a})
		left = left.Sub(a)
	}
	if left.GreaterThan(installment.Epsilon) {
		return nil, ErrAmountExceedsBalance
	}
	return allocs, nil
}

func allocatePayoff(open []*installment.Installment, amount, discount, outstanding decimal.Decimal) ([]allocation, error) {
	if discount.IsNegative() {
		return nil, fmt.Errorf("%w: discount cannot be negative", ErrInvalidAmount)
	}
	diff := amount.Add(discount).Sub(outstanding)
	switch {
	case diff.GreaterThan(installment.Epsilon):
		return nil, ErrAmountExceedsBalance
	case diff.LessThan(installment.Epsilon.Neg()):
		return nil, fmt.Errorf("%w: payoff plus discount must settle the full balance %s", ErrInvalidAmount, outstanding.StringFixed(2))
	}

	var allocs []allocation
	left := amount
	for _, t := range open {
		if !left.IsPositive() {
			break
		}
		a := decimal.Min(t.Remaining(), left)
		allocs = append(allocs, allocation{inst: t, amount: a})
		left = left.Sub(a)
	}
	return allocs, nil
}
