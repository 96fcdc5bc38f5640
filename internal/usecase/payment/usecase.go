package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"credisol-backend/internal/domain/installment"
	domainLoan "credisol-backend/internal/domain/loan"
	domainPayment "credisol-backend/internal/domain/payment"
	"credisol-backend/internal/domain/uow"
	"credisol-backend/internal/engine"
	"credisol-backend/pkg/id"
)

var ErrUnknownStrategy = errors.New("unknown payment strategy")

type Usecase struct {
	loans    domainLoan.Repository
	insts    installment.Repository
	payments domainPayment.Repository
	uow      uow.UnitOfWork
	log      *logrus.Logger
	now      func() time.Time
}

func NewUsecase(loans domainLoan.Repository, insts installment.Repository, payments domainPayment.Repository, tx uow.UnitOfWork, log *logrus.Logger) *Usecase {
	return &Usecase{
		loans:    loans,
		insts:    insts,
		payments: payments,
		uow:      tx,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type RecordInput struct {
	LoanID       string          `json:"loan_id"`
	Amount       decimal.Decimal `json:"amount"`
	Strategy     string          `json:"strategy"`
	Installments []int           `json:"installments,omitempty"`
	Discount     decimal.Decimal `json:"discount,omitempty"`
}

type AllocationDTO struct {
	InstallmentNumber int             `json:"installment_number"`
	Amount            decimal.Decimal `json:"amount"`
}

type PaymentDTO struct {
	PaymentID   string          `json:"payment_id"`
	LoanID      string          `json:"loan_id"`
	Amount      decimal.Decimal `json:"amount"`
	Discount    decimal.Decimal `json:"discount"`
	Strategy    string          `json:"strategy"`
	PaidAt      time.Time       `json:"paid_at"`
	Allocations []AllocationDTO `json:"allocations"`
	LoanState   string          `json:"loan_state"`
}

type OutstandingDTO struct {
	LoanID      string          `json:"loan_id"`
	Outstanding decimal.Decimal `json:"outstanding"`
	AsOf        time.Time       `json:"as_of"`
}

func parseStrategy(in RecordInput) (engine.Strategy, error) {
	switch in.Strategy {
	case "single_due":
		return engine.SingleDue{}, nil
	case "contiguous_multiple":
		return engine.ContiguousMultiple{Numbers: in.Installments}, nil
	case "partial_single":
		return engine.PartialSingle{}, nil
	case "greedy_sequential":
		return engine.GreedySequential{}, nil
	case "full_payoff":
		return engine.FullPayoff{Discount: in.Discount}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, in.Strategy)
}

// Record runs the allocator inside a loan-level transaction. The installment
// set is read under the same row lock that covers the writes, so two
// concurrent payments against one loan cannot interleave their balance check
// with their allocation.
func (u *Usecase) Record(ctx context.Context, in RecordInput) (*PaymentDTO, error) {
	strat, err := parseStrategy(in)
	if err != nil {
		return nil, err
	}

	var dto *PaymentDTO
	err = u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if !l.Payable() {
			return domainLoan.ErrNotPayable
		}
		insts, err := r.Installments.ListByLoanIDForUpdate(ctx, l.ID)
		if err != nil {
			return err
		}

		pmt, err := engine.Allocate(insts, in.Amount, strat, u.now())
		if err != nil {
			return err
		}
		pmt.LoanID = l.ID
		pmt.PaymentID = id.New32()

		if err := r.Payments.Create(ctx, pmt); err != nil {
			return err
		}
		if err := r.Installments.SaveAll(ctx, insts); err != nil {
			return err
		}

		if engine.RemainingDue(insts).LessThanOrEqual(installment.Epsilon) {
			l.State = domainLoan.StatePaid
			l.StateUpdatedAt = u.now()
			if err := r.Loans.Save(ctx, l); err != nil {
				return err
			}
		}

		dto = paymentDTO(l, pmt)
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.WithFields(logrus.Fields{
		"loan_id":  in.LoanID,
		"amount":   in.Amount.StringFixed(2),
		"strategy": in.Strategy,
	}).Info("payment recorded")
	return dto, nil
}

func (u *Usecase) List(ctx context.Context, loanID string) ([]PaymentDTO, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainLoan.ErrNotFound
		}
		return nil, err
	}
	pays, err := u.payments.ListByLoanID(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	out := make([]PaymentDTO, 0, len(pays))
	for _, p := range pays {
		out = append(out, *paymentDTO(l, p))
	}
	return out, nil
}

// Outstanding reports the balance from the payment-history side of the model.
func (u *Usecase) Outstanding(ctx context.Context, loanID string) (*OutstandingDTO, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainLoan.ErrNotFound
		}
		return nil, err
	}
	insts, err := u.insts.ListByLoanID(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	pays, err := u.payments.ListByLoanID(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	return &OutstandingDTO{
		LoanID:      l.LoanID,
		Outstanding: engine.Outstanding(insts, pays),
		AsOf:        u.now(),
	}, nil
}

func paymentDTO(l *domainLoan.Loan, p *domainPayment.Payment) *PaymentDTO {
	dto := &PaymentDTO{
		PaymentID: p.PaymentID,
		LoanID:    l.LoanID,
		Amount:    p.Amount,
		Discount:  p.Discount,
		Strategy:  p.Strategy,
		PaidAt:    p.PaidAt,
		LoanState: string(l.State),
	}
	for _, a := range p.Allocations {
		dto.Allocations = append(dto.Allocations, AllocationDTO{
			InstallmentNumber: a.InstallmentNumber,
			Amount:            a.Amount,
		})
	}
	return dto
}
