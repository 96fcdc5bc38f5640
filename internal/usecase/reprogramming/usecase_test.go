package reprogramming

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"credisol-backend/internal/domain/installment"
	domainLoan "credisol-backend/internal/domain/loan"
	domainPayment "credisol-backend/internal/domain/payment"
	domainReprog "credisol-backend/internal/domain/reprogramming"
	"credisol-backend/internal/domain/uow"
	"credisol-backend/internal/engine"
	"credisol-backend/internal/testutil/instmock"
	"credisol-backend/internal/testutil/loanmock"
	"credisol-backend/internal/testutil/paymentmock"
	"credisol-backend/internal/testutil/reprogmock"
	"credisol-backend/internal/testutil/uowmock"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.PanicLevel)
	return log
}

type fixture struct {
	loans    *loanmock.Repo
	insts    *instmock.Repo
	payments *paymentmock.Repo
	requests *reprogmock.Repo
	uc       *Usecase
}

func newFixture(carry engine.CarryPolicy) *fixture {
	f := &fixture{
		loans:    &loanmock.Repo{},
		insts:    &instmock.Repo{},
		payments: &paymentmock.Repo{},
		requests: &reprogmock.Repo{},
	}
	tx := &uowmock.UoW{Repos: uow.Repos{
		Loans:          f.loans,
		Installments:   f.insts,
		Payments:       f.payments,
		Reprogrammings: f.requests,
	}}
	f.uc = NewUsecase(f.requests, f.loans, tx, carry, testLogger())
	return f
}

func activeLoan() *domainLoan.Loan {
	return &domainLoan.Loan{
		ID:         11,
		LoanID:     strings.Repeat("a", 32),
		ClientID:   strings.Repeat("b", 32),
		Principal:  decimal.NewFromInt(1000),
		Rate:       decimal.NewFromFloat(0.10),
		TermMonths: 12,
		Frequency:  domainLoan.FrequencyMonthly,
		State:      domainLoan.StateInArrears,
		Version:    1,
		StartDate:  time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
	}
}

func monthlySchedule(paid int) []*installment.Installment {
	due := decimal.NewFromFloat(183.20)
	out := make([]*installment.Installment, 0, 12)
	for n := 1; n <= 12; n++ {
		inst := &installment.Installment{
			ID:        uint64(n),
			LoanID:    11,
			Number:    n,
			DueDate:   time.Date(2025, 1+time.Month(n), 6, 0, 0, 0, 0, time.UTC),
			AmountDue: due,
		}
		if n <= paid {
			inst.AmountPaid = due
		}
		out = append(out, inst)
	}
	return out
}

func raiseInput() RaiseInput {
	return RaiseInput{
		LoanID:     strings.Repeat("a", 32),
		Principal:  decimal.NewFromInt(1000),
		Rate:       decimal.NewFromFloat(0.08),
		TermMonths: 24,
		Frequency:  "monthly",
	}
}

func TestRaise_SnapshotsCurrentTerms(t *testing.T) {
	f := newFixture(engine.CarryNone)
	l := activeLoan()

	var created *domainReprog.Request
	f.loans.GetByLoanIDForUpdateFn = func(ctx context.Context, loanID string) (*domainLoan.Loan, error) {
		return l, nil
	}
	f.requests.CreateFn = func(ctx context.Context, r *domainReprog.Request) error {
		created = r
		return nil
	}

	dto, err := f.uc.Raise(context.Background(), raiseInput())
	if err != nil {
		t.Fatalf("Raise err: %v", err)
	}
	if len(dto.RequestID) != 32 {
		t.Fatalf("request id length: %d", len(dto.RequestID))
	}
	if dto.State != string(domainReprog.StatePending) {
		t.Fatalf("state=%s", dto.State)
	}
	if created == nil {
		t.Fatal("request not stored")
	}
	if !created.CurrentRate.Equal(l.Rate) || created.CurrentTermMonths != l.TermMonths {
		t.Fatalf("current terms not snapshotted: %+v", created)
	}
	if created.ProposedTermMonths != 24 {
		t.Fatalf("proposed term=%d", created.ProposedTermMonths)
	}
	if created.CarryPolicy != string(engine.CarryNone) {
		t.Fatalf("carry policy=%s", created.CarryPolicy)
	}
}

func TestRaise_RejectsSecondPendingRequest(t *testing.T) {
	f := newFixture(engine.CarryNone)
	l := activeLoan()
	f.loans.GetByLoanIDForUpdateFn = func(ctx context.Context, loanID string) (*domainLoan.Loan, error) {
		return l, nil
	}
	f.requests.GetPendingByLoanIDFn = func(ctx context.Context, loanID uint64) (*domainReprog.Request, error) {
		return &domainReprog.Request{State: domainReprog.StatePending}, nil
	}
	f.requests.CreateFn = func(ctx context.Context, r *domainReprog.Request) error {
		t.Fatal("second pending request must not be created")
		return nil
	}

	_, err := f.uc.Raise(context.Background(), raiseInput())
	if !errors.Is(err, domainReprog.ErrPendingExists) {
		t.Fatalf("want ErrPendingExists, got %v", err)
	}
}

func TestRaise_LoanMustBeActive(t *testing.T) {
	f := newFixture(engine.CarryNone)
	l := activeLoan()
	l.State = domainLoan.StatePaid
	f.loans.GetByLoanIDForUpdateFn = func(ctx context.Context, loanID string) (*domainLoan.Loan, error) {
		return l, nil
	}
	_, err := f.uc.Raise(context.Background(), raiseInput())
	if !errors.Is(err, domainReprog.ErrLoanNotEligible) {
		t.Fatalf("want ErrLoanNotEligible, got %v", err)
	}
}

func pendingRequest(l *domainLoan.Loan) *domainReprog.Request {
	return &domainReprog.Request{
		ID:                 1,
		RequestID:          strings.Repeat("c", 32),
		LoanID:             l.ID,
		CurrentPrincipal:   l.Principal,
		CurrentRate:        l.Rate,
		CurrentTermMonths:  l.TermMonths,
		CurrentFrequency:   l.Frequency,
		ProposedPrincipal:  l.Principal,
		ProposedRate:       decimal.NewFromFloat(0.08),
		ProposedTermMonths: 24,
		ProposedFrequency:  domainLoan.FrequencyMonthly,
		CarryPolicy:        string(engine.CarryNone),
		State:              domainReprog.StatePending,
	}
}

func TestApprove_SupersedesLoanAndRebuildsSchedule(t *testing.T) {
	f := newFixture(engine.CarryNone)
	l := activeLoan()
	req := pendingRequest(l)
	insts := monthlySchedule(2)

	var softDeletedBy string
	var nextLoan *domainLoan.Loan
	var newSchedule []*installment.Installment

	f.requests.GetByRequestIDForUpdateFn = func(ctx context.Context, requestID string) (*domainReprog.Request, error) {
		return req, nil
	}
	f.loans.GetByIDForUpdateFn = func(ctx context.Context, id uint64) (*domainLoan.Loan, error) {
		return l, nil
	}
	f.insts.ListByLoanIDForUpdateFn = func(ctx context.Context, loanID uint64) ([]*installment.Installment, error) {
		return insts, nil
	}
	f.payments.ListByLoanIDFn = func(ctx context.Context, loanID uint64) ([]*domainPayment.Payment, error) {
		return []*domainPayment.Payment{{Amount: decimal.NewFromFloat(366.40)}}, nil
	}
	f.loans.SoftDeleteFn = func(ctx context.Context, dl *domainLoan.Loan, deletedBy string) error {
		softDeletedBy = deletedBy
		return nil
	}
	f.loans.CreateFn = func(ctx context.Context, nl *domainLoan.Loan) error {
		nl.ID = 12
		nextLoan = nl
		return nil
	}
	f.insts.CreateBatchFn = func(ctx context.Context, b []*installment.Installment) error {
		newSchedule = b
		return nil
	}
	f.uc.now = func() time.Time { return time.Date(2025, 4, 7, 10, 0, 0, 0, time.UTC) }

	dto, err := f.uc.Approve(context.Background(), req.RequestID)
	if err != nil {
		t.Fatalf("Approve err: %v", err)
	}
	if dto.State != string(domainReprog.StateApplied) {
		t.Fatalf("state=%s", dto.State)
	}
	if softDeletedBy != req.RequestID {
		t.Fatalf("superseded version tagged with %q", softDeletedBy)
	}
	if nextLoan == nil {
		t.Fatal("replacement version not created")
	}
	if nextLoan.LoanID != l.LoanID || nextLoan.Version != 2 {
		t.Fatalf("replacement identity: loan_id=%s version=%d", nextLoan.LoanID, nextLoan.Version)
	}
	if nextLoan.TermMonths != 24 || !nextLoan.Rate.Equal(decimal.NewFromFloat(0.08)) {
		t.Fatalf("replacement terms: %+v", nextLoan)
	}
	if !nextLoan.StartDate.Equal(time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start date=%s", nextLoan.StartDate)
	}
	if len(newSchedule) != 24 {
		t.Fatalf("want 24 installments, got %d", len(newSchedule))
	}
	for i, inst := range newSchedule {
		if inst.LoanID != 12 {
			t.Fatalf("installment %d bound to %d", i, inst.LoanID)
		}
	}
	if req.DecidedAt == nil {
		t.Fatal("decision time not recorded")
	}
}

func TestApprove_AlreadyDecided(t *testing.T) {
	f := newFixture(engine.CarryNone)
	l := activeLoan()
	req := pendingRequest(l)
	req.State = domainReprog.StateApplied
	f.requests.GetByRequestIDForUpdateFn = func(ctx context.Context, requestID string) (*domainReprog.Request, error) {
		return req, nil
	}
	f.loans.SoftDeleteFn = func(ctx context.Context, dl *domainLoan.Loan, deletedBy string) error {
		t.Fatal("loan must not be touched")
		return nil
	}
	_, err := f.uc.Approve(context.Background(), req.RequestID)
	if !errors.Is(err, domainReprog.ErrAlreadyDecided) {
		t.Fatalf("want ErrAlreadyDecided, got %v", err)
	}
}

func TestApprove_CarryUnpaidBalance(t *testing.T) {
	f := newFixture(engine.CarryUnpaidBalance)
	l := activeLoan()
	req := pendingRequest(l)
	req.CarryPolicy = string(engine.CarryUnpaidBalance)
	insts := monthlySchedule(2)

	var nextLoan *domainLoan.Loan
	f.requests.GetByRequestIDForUpdateFn = func(ctx context.Context, requestID string) (*domainReprog.Request, error) {
		return req, nil
	}
	f.loans.GetByIDForUpdateFn = func(ctx context.Context, id uint64) (*domainLoan.Loan, error) {
		return l, nil
	}
	f.insts.ListByLoanIDForUpdateFn = func(ctx context.Context, loanID uint64) ([]*installment.Installment, error) {
		return insts, nil
	}
	f.payments.ListByLoanIDFn = func(ctx context.Context, loanID uint64) ([]*domainPayment.Payment, error) {
		return []*domainPayment.Payment{{Amount: decimal.NewFromFloat(366.40)}}, nil
	}
	f.loans.CreateFn = func(ctx context.Context, nl *domainLoan.Loan) error {
		nextLoan = nl
		return nil
	}

	if _, err := f.uc.Approve(context.Background(), req.RequestID); err != nil {
		t.Fatalf("Approve err: %v", err)
	}
	if nextLoan == nil {
		t.Fatal("replacement version not created")
	}
	// 12 x 183.20 due minus 366.40 paid, added on top of the proposed principal
	want := decimal.NewFromInt(1000).Add(decimal.NewFromFloat(1832.00))
	if !nextLoan.Principal.Equal(want) {
		t.Fatalf("carried principal=%s want %s", nextLoan.Principal, want)
	}
}

func TestReject_MarksDecided(t *testing.T) {
	f := newFixture(engine.CarryNone)
	l := activeLoan()
	req := pendingRequest(l)
	f.requests.GetByRequestIDForUpdateFn = func(ctx context.Context, requestID string) (*domainReprog.Request, error) {
		return req, nil
	}
	f.loans.GetByIDForUpdateFn = func(ctx context.Context, id uint64) (*domainLoan.Loan, error) {
		return l, nil
	}

	dto, err := f.uc.Reject(context.Background(), req.RequestID)
	if err != nil {
		t.Fatalf("Reject err: %v", err)
	}
	if dto.State != string(domainReprog.StateRejected) {
		t.Fatalf("state=%s", dto.State)
	}
	if req.DecidedAt == nil {
		t.Fatal("decision time not recorded")
	}
}

func TestGet_NotFound(t *testing.T) {
	f := newFixture(engine.CarryNone)
	_, err := f.uc.Get(context.Background(), strings.Repeat("c", 32))
	if !errors.Is(err, domainReprog.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
