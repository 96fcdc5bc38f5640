package tasks

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"credisol-backend/internal/domain/installment"
	domainLoan "credisol-backend/internal/domain/loan"
	"credisol-backend/internal/domain/uow"
	"credisol-backend/internal/engine"
)

// ArrearsSweeper is the daily job that flips approved loans with overdue
// installments to in_arrears. Overdue itself stays a query-time computation;
// the sweep only refreshes the derived loan state so lists and dashboards can
// filter on it.
type ArrearsSweeper struct {
	loans domainLoan.Repository
	insts installment.Repository
	uow   uow.UnitOfWork
	log   *logrus.Logger
	now   func() time.Time
}

func NewArrearsSweeper(loans domainLoan.Repository, insts installment.Repository, tx uow.UnitOfWork, log *logrus.Logger) *ArrearsSweeper {
	return &ArrearsSweeper{
		loans: loans,
		insts: insts,
		uow:   tx,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Run scans loans one at a time; a failure on one loan does not stop the
// sweep for the rest.
func (s *ArrearsSweeper) Run() {
	ctx := context.Background()
	today := s.now()

	active, err := s.loans.ListByState(ctx, domainLoan.StateApproved)
	if err != nil {
		s.log.WithError(err).Error("arrears sweep: listing approved loans failed")
		return
	}

	flagged := 0
	for _, l := range active {
		insts, err := s.insts.ListByLoanID(ctx, l.ID)
		if err != nil {
			s.log.WithError(err).WithField("loan_id", l.LoanID).Error("arrears sweep: listing installments failed")
			continue
		}
		if len(engine.OverdueInstallments(insts, today)) == 0 {
			continue
		}

		err = s.uow.WithinLoanTx(ctx, l.LoanID, func(r uow.Repos, locked *domainLoan.Loan) error {
			if locked.State != domainLoan.StateApproved {
				return nil // changed under us, leave it alone
			}
			locked.State = domainLoan.StateInArrears
			locked.StateUpdatedAt = s.now()
			return r.Loans.Save(ctx, locked)
		})
		if err != nil {
			s.log.WithError(err).WithField("loan_id", l.LoanID).Error("arrears sweep: state update failed")
			continue
		}
		flagged++
	}
	s.log.WithFields(logrus.Fields{"scanned": len(active), "flagged": flagged}).Info("arrears sweep finished")
}
