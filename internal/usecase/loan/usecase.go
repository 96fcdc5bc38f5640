package loan

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
	"credisol-backend/internal/domain/uow"
	"credisol-backend/internal/engine"
	"credisol-backend/pkg/id"
)

type Usecase struct {
	loans domainLoan.Repository
	insts installment.Repository
	uow   uow.UnitOfWork
	log   *logrus.Logger
	now   func() time.Time
}

func NewUsecase(loans domainLoan.Repository, insts installment.Repository, tx uow.UnitOfWork, log *logrus.Logger) *Usecase {
	return &Usecase{
		loans: loans,
		insts: insts,
		uow:   tx,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

type CreateLoanInput struct {
	ClientID   string          `json:"client_id"`
	Principal  decimal.Decimal `json:"principal"`
	Rate       decimal.Decimal `json:"rate"`
	TermMonths int             `json:"term_months"`
	Frequency  string          `json:"frequency"`
}

type LoanDTO struct {
	LoanID     string          `json:"loan_id"`
	ClientID   string          `json:"client_id"`
	Principal  decimal.Decimal `json:"principal"`
	Rate       decimal.Decimal `json:"rate"`
	TermMonths int             `json:"term_months"`
	Frequency  string          `json:"frequency"`
	StartDate  *time.Time      `json:"start_date,omitempty"`
	State      string          `json:"state"`
	Version    int             `json:"version"`
	CreatedAt  time.Time       `json:"created_at"`
}

type ScheduleEntryDTO struct {
	Number          int             `json:"number"`
	DueDate         time.Time       `json:"due_date"`
	AmountDue       decimal.Decimal `json:"amount_due"`
	AmountPaid      decimal.Decimal `json:"amount_paid"`
	InterestPortion decimal.Decimal `json:"interest_portion"`
	CapitalPortion  decimal.Decimal `json:"capital_portion"`
	Status          string          `json:"status"`
	Overdue         bool            `json:"overdue"`
}

func toDTO(l *domainLoan.Loan) *LoanDTO {
	dto := &LoanDTO{
		LoanID:     l.LoanID,
		ClientID:   l.ClientID,
		Principal:  l.Principal,
		Rate:       l.Rate,
		TermMonths: l.TermMonths,
		Frequency:  string(l.Frequency),
		State:      string(l.State),
		Version:    l.Version,
		CreatedAt:  l.CreatedAt,
	}
	if !l.StartDate.IsZero() {
		d := l.StartDate
		dto.StartDate = &d
	}
	return dto
}

func (u *Usecase) Create(ctx context.Context, in CreateLoanInput) (*LoanDTO, error) {
	if len(in.ClientID) != 32 {
		return nil, fmt.Errorf("%w: client id must be 32-char hex", engine.ErrInvalidTerm)
	}
	if !in.Principal.IsPositive() || !in.Rate.IsPositive() || in.TermMonths <= 0 {
		return nil, fmt.Errorf("%w: principal, rate and term must be positive", engine.ErrInvalidTerm)
	}
	freq := domainLoan.Frequency(in.Frequency)
	if !freq.Valid() {
		return nil, fmt.Errorf("%w: unsupported frequency %q", engine.ErrInvalidTerm, in.Frequency)
	}

	l := &domainLoan.Loan{
		LoanID:         id.New32(),
		ClientID:       in.ClientID,
		Principal:      in.Principal,
		Rate:           in.Rate,
		TermMonths:     in.TermMonths,
		Frequency:      freq,
		State:          domainLoan.StatePending,
		Version:        1,
		StateUpdatedAt: u.now(),
	}
	if err := u.loans.Create(ctx, l); err != nil {
		return nil, err
	}
	u.log.WithFields(logrus.Fields{"loan_id": l.LoanID, "client_id": l.ClientID}).Info("loan created")
	return toDTO(l), nil
}

func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainLoan.ErrNotFound
		}
		return nil, err
	}
	return toDTO(l), nil
}

// Approve flips a pending loan to approved and generates its installment
// schedule in the same transaction. Either both land or neither does.
func (u *Usecase) Approve(ctx context.Context, loanID string) (*LoanDTO, error) {
	var dto *LoanDTO
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if l.State != domainLoan.StatePending {
			if l.State == domainLoan.StateApproved {
				return domainLoan.ErrAlreadyDecided
			}
			return domainLoan.ErrInvalidTransition
		}

		if l.StartDate.IsZero() {
			l.StartDate = u.now().Truncate(24 * time.Hour)
		}
		schedule, err := engine.GenerateSchedule(engine.TermsOf(l))
		if err != nil {
			return err
		}
		for _, inst := range schedule {
			inst.LoanID = l.ID
		}
		if err := r.Installments.CreateBatch(ctx, schedule); err != nil {
			return err
		}

		l.State = domainLoan.StateApproved
		l.StateUpdatedAt = u.now()
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		dto = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.WithField("loan_id", loanID).Info("loan approved, schedule generated")
	return dto, nil
}

func (u *Usecase) Reject(ctx context.Context, loanID string) (*LoanDTO, error) {
	return u.transition(ctx, loanID, domainLoan.StateRejected, func(s domainLoan.State) bool {
		return s == domainLoan.StatePending
	})
}

func (u *Usecase) Cancel(ctx context.Context, loanID string) (*LoanDTO, error) {
	return u.transition(ctx, loanID, domainLoan.StateCancelled, func(s domainLoan.State) bool {
		return s == domainLoan.StateApproved || s == domainLoan.StateInArrears
	})
}

func (u *Usecase) transition(ctx context.Context, loanID string, to domainLoan.State, allowed func(domainLoan.State) bool) (*LoanDTO, error) {
	var dto *LoanDTO
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if !allowed(l.State) {
			return domainLoan.ErrInvalidTransition
		}
		l.State = to
		l.StateUpdatedAt = u.now()
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		dto = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// GetSchedule returns the schedule in force with derived per-installment
// status and overdue flags computed against the current date.
func (u *Usecase) GetSchedule(ctx context.Context, loanID string) ([]ScheduleEntryDTO, error) {
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

	today := u.now()
	out := make([]ScheduleEntryDTO, 0, len(insts))
	for _, i := range insts {
		out = append(out, ScheduleEntryDTO{
			Number:          i.Number,
			DueDate:         i.DueDate,
			AmountDue:       i.AmountDue,
			AmountPaid:      i.AmountPaid,
			InterestPortion: i.InterestPortion,
			CapitalPortion:  i.CapitalPortion,
			Status:          string(i.DerivedStatus()),
			Overdue:         i.Overdue(today),
		})
	}
	return out, nil
}
