package reprogramming

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	domainLoan "credisol-backend/internal/domain/loan"
	domainReprog "credisol-backend/internal/domain/reprogramming"
	"credisol-backend/internal/domain/uow"
	"credisol-backend/internal/engine"
	"credisol-backend/pkg/id"
)

type Usecase struct {
	requests domainReprog.Repository
	loans    domainLoan.Repository
	uow      uow.UnitOfWork
	carry    engine.CarryPolicy
	log      *logrus.Logger
	now      func() time.Time
}

func NewUsecase(requests domainReprog.Repository, loans domainLoan.Repository, tx uow.UnitOfWork, carry engine.CarryPolicy, log *logrus.Logger) *Usecase {
	return &Usecase{
		requests: requests,
		loans:    loans,
		uow:      tx,
		carry:    carry,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type RaiseInput struct {
	LoanID     string          `json:"loan_id"`
	Principal  decimal.Decimal `json:"principal"`
	Rate       decimal.Decimal `json:"rate"`
	TermMonths int             `json:"term_months"`
	Frequency  string          `json:"frequency"`
}

type RequestDTO struct {
	RequestID          string          `json:"request_id"`
	LoanID             string          `json:"loan_id"`
	CurrentPrincipal   decimal.Decimal `json:"current_principal"`
	CurrentRate        decimal.Decimal `json:"current_rate"`
	CurrentTermMonths  int             `json:"current_term_months"`
	CurrentFrequency   string          `json:"current_frequency"`
	ProposedPrincipal  decimal.Decimal `json:"proposed_principal"`
	ProposedRate       decimal.Decimal `json:"proposed_rate"`
	ProposedTermMonths int             `json:"proposed_term_months"`
	ProposedFrequency  string          `json:"proposed_frequency"`
	CarryPolicy        string          `json:"carry_policy"`
	State              string          `json:"state"`
}

func toDTO(loanID string, r *domainReprog.Request) *RequestDTO {
	return &RequestDTO{
		RequestID:          r.RequestID,
		LoanID:             loanID,
		CurrentPrincipal:   r.CurrentPrincipal,
		CurrentRate:        r.CurrentRate,
		CurrentTermMonths:  r.CurrentTermMonths,
		CurrentFrequency:   string(r.CurrentFrequency),
		ProposedPrincipal:  r.ProposedPrincipal,
		ProposedRate:       r.ProposedRate,
		ProposedTermMonths: r.ProposedTermMonths,
		ProposedFrequency:  string(r.ProposedFrequency),
		CarryPolicy:        r.CarryPolicy,
		State:              string(r.State),
	}
}

// Raise opens a reprogramming request against a loan in force, snapshotting
// the current terms next to the proposed ones for audit.
func (u *Usecase) Raise(ctx context.Context, in RaiseInput) (*RequestDTO, error) {
	freq := domainLoan.Frequency(in.Frequency)
	if !freq.Valid() {
		return nil, engine.ErrInvalidTerm
	}

	var dto *RequestDTO
	err := u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if !l.Payable() {
			return domainReprog.ErrLoanNotEligible
		}
		_, err := r.Reprogrammings.GetPendingByLoanID(ctx, l.ID)
		switch {
		case err == nil:
			return domainReprog.ErrPendingExists
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		req := &domainReprog.Request{
			RequestID:          id.New32(),
			LoanID:             l.ID,
			CurrentPrincipal:   l.Principal,
			CurrentRate:        l.Rate,
			CurrentTermMonths:  l.TermMonths,
			CurrentFrequency:   l.Frequency,
			ProposedPrincipal:  in.Principal,
			ProposedRate:       in.Rate,
			ProposedTermMonths: in.TermMonths,
			ProposedFrequency:  freq,
			CarryPolicy:        string(u.carry),
			State:              domainReprog.StatePending,
		}
		if err := r.Reprogrammings.Create(ctx, req); err != nil {
			return err
		}
		dto = toDTO(l.LoanID, req)
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.WithFields(logrus.Fields{"loan_id": in.LoanID, "request_id": dto.RequestID}).Info("reprogramming raised")
	return dto, nil
}

func (u *Usecase) Reject(ctx context.Context, requestID string) (*RequestDTO, error) {
	var dto *RequestDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		req, err := r.Reprogrammings.GetByRequestIDForUpdate(ctx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainReprog.ErrNotFound
			}
			return err
		}
		if req.State != domainReprog.StatePending {
			return domainReprog.ErrAlreadyDecided
		}
		now := u.now()
		req.State = domainReprog.StateRejected
		req.DecidedAt = &now
		if err := r.Reprogrammings.Save(ctx, req); err != nil {
			return err
		}
		l, err := r.Loans.GetByIDForUpdate(ctx, req.LoanID)
		if err != nil {
			return err
		}
		dto = toDTO(l.LoanID, req)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Approve applies the request in one transaction: it freezes the superseded
// loan version (soft delete, schedule and payments retained for audit),
// inserts the replacement version and its fresh schedule, and marks the
// request applied. A schedule-generation failure aborts the whole thing.
func (u *Usecase) Approve(ctx context.Context, requestID string) (*RequestDTO, error) {
	var dto *RequestDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		req, err := r.Reprogrammings.GetByRequestIDForUpdate(ctx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainReprog.ErrNotFound
			}
			return err
		}
		if req.State != domainReprog.StatePending {
			return domainReprog.ErrAlreadyDecided
		}

		l, err := r.Loans.GetByIDForUpdate(ctx, req.LoanID)
		if err != nil {
			return err
		}
		if !l.Payable() {
			return domainReprog.ErrLoanNotEligible
		}
		insts, err := r.Installments.ListByLoanIDForUpdate(ctx, l.ID)
		if err != nil {
			return err
		}
		pays, err := r.Payments.ListByLoanID(ctx, l.ID)
		if err != nil {
			return err
		}

		policy, err := engine.ParseCarryPolicy(req.CarryPolicy)
		if err != nil {
			return err
		}
		approvedAt := u.now().Truncate(24 * time.Hour)
		proposed := engine.Proposed{
			Principal:  req.ProposedPrincipal,
			Rate:       req.ProposedRate,
			TermMonths: req.ProposedTermMonths,
			Frequency:  req.ProposedFrequency,
		}
		next, schedule, err := engine.ApplyReprogramming(l, insts, pays, proposed, approvedAt, policy)
		if err != nil {
			return err
		}

		// retire the old version; its schedule and payment history stay put
		if err := r.Loans.SoftDelete(ctx, l, req.RequestID); err != nil {
			return err
		}
		if err := r.Loans.Create(ctx, next); err != nil {
			return err
		}
		for _, inst := range schedule {
			inst.LoanID = next.ID
		}
		if err := r.Installments.CreateBatch(ctx, schedule); err != nil {
			return err
		}

		now := u.now()
		req.State = domainReprog.StateApplied
		req.DecidedAt = &now
		if err := r.Reprogrammings.Save(ctx, req); err != nil {
			return err
		}
		dto = toDTO(next.LoanID, req)
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.WithField("request_id", requestID).Info("reprogramming applied")
	return dto, nil
}

func (u *Usecase) Get(ctx context.Context, requestID string) (*RequestDTO, error) {
	req, err := u.requests.GetByRequestID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainReprog.ErrNotFound
		}
		return nil, err
	}
	l, err := u.loans.GetByID(ctx, req.LoanID)
	if err != nil {
		return nil, err
	}
	return toDTO(l.LoanID, req), nil
}
