package tasks

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"credisol-backend/internal/domain/installment"
	domainLoan "credisol-backend/internal/domain/loan"
	"credisol-backend/internal/domain/uow"
	"credisol-backend/internal/testutil/instmock"
	"credisol-backend/internal/testutil/loanmock"
	"credisol-backend/internal/testutil/uowmock"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func activeLoan(rowID uint64, loanID string) *domainLoan.Loan {
	return &domainLoan.Loan{
		ID:         rowID,
		LoanID:     loanID,
		ClientID:   strings.Repeat("b", 32),
		Principal:  decimal.NewFromInt(500),
		Rate:       decimal.NewFromFloat(0.04),
		TermMonths: 1,
		Frequency:  domainLoan.FrequencyWeekly,
		State:      domainLoan.StateApproved,
		Version:    1,
	}
}

func scheduleDue(rowID uint64, firstDue time.Time) []*installment.Installment {
	due := decimal.NewFromFloat(130.00)
	out := make([]*installment.Installment, 0, 4)
	for n := 1; n <= 4; n++ {
		out = append(out, &installment.Installment{
			ID:        uint64(n),
			LoanID:    rowID,
			Number:    n,
			DueDate:   firstDue.AddDate(0, 0, 7*(n-1)),
			AmountDue: due,
		})
	}
	return out
}

func TestRun_FlagsOverdueLoans(t *testing.T) {
	overdue := activeLoan(1, strings.Repeat("a", 32))
	current := activeLoan(2, strings.Repeat("c", 32))

	firstDue := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	byRow := map[uint64][]*installment.Installment{
		1: scheduleDue(1, firstDue),                  // first due already past
		2: scheduleDue(2, firstDue.AddDate(0, 1, 0)), // nothing due yet
	}
	byPublic := map[string]*domainLoan.Loan{
		overdue.LoanID: overdue,
		current.LoanID: current,
	}

	var saved []*domainLoan.Loan
	loans := &loanmock.Repo{
		ListByStateFn: func(ctx context.Context, st domainLoan.State) ([]*domainLoan.Loan, error) {
			return []*domainLoan.Loan{overdue, current}, nil
		},
		GetByLoanIDForUpdateFn: func(ctx context.Context, loanID string) (*domainLoan.Loan, error) {
			return byPublic[loanID], nil
		},
		SaveFn: func(ctx context.Context, l *domainLoan.Loan) error {
			saved = append(saved, l)
			return nil
		},
	}
	insts := &instmock.Repo{
		ListByLoanIDFn: func(ctx context.Context, loanID uint64) ([]*installment.Installment, error) {
			return byRow[loanID], nil
		},
	}
	tx := &uowmock.UoW{Repos: uow.Repos{Loans: loans, Installments: insts}}

	s := NewArrearsSweeper(loans, insts, tx, testLogger())
	s.now = func() time.Time { return time.Date(2025, 3, 5, 0, 30, 0, 0, time.UTC) }

	s.Run()

	if len(saved) != 1 {
		t.Fatalf("flagged %d loans, want 1", len(saved))
	}
	if saved[0].LoanID != overdue.LoanID || saved[0].State != domainLoan.StateInArrears {
		t.Fatalf("unexpected flagged loan: %+v", saved[0])
	}
	if current.State != domainLoan.StateApproved {
		t.Fatalf("current loan must stay approved, got %s", current.State)
	}
}

func TestRun_SkipsLoanChangedUnderLock(t *testing.T) {
	l := activeLoan(1, strings.Repeat("a", 32))
	firstDue := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

	// between the scan and the lock the loan got paid off
	paidCopy := activeLoan(1, l.LoanID)
	paidCopy.State = domainLoan.StatePaid

	loans := &loanmock.Repo{
		ListByStateFn: func(ctx context.Context, st domainLoan.State) ([]*domainLoan.Loan, error) {
			return []*domainLoan.Loan{l}, nil
		},
		GetByLoanIDForUpdateFn: func(ctx context.Context, loanID string) (*domainLoan.Loan, error) {
			return paidCopy, nil
		},
		SaveFn: func(ctx context.Context, l *domainLoan.Loan) error {
			t.Fatal("loan changed under lock must not be saved")
			return nil
		},
	}
	insts := &instmock.Repo{
		ListByLoanIDFn: func(ctx context.Context, loanID uint64) ([]*installment.Installment, error) {
			return scheduleDue(1, firstDue), nil
		},
	}
	tx := &uowmock.UoW{Repos: uow.Repos{Loans: loans, Installments: insts}}

	s := NewArrearsSweeper(loans, insts, tx, testLogger())
	s.now = func() time.Time { return time.Date(2025, 3, 5, 0, 30, 0, 0, time.UTC) }

	s.Run()
}
