package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	instDomain "credisol-backend/internal/domain/installment"
	loanDomain "credisol-backend/internal/domain/loan"
	paymentDomain "credisol-backend/internal/domain/payment"
	reprogDomain "credisol-backend/internal/domain/reprogramming"
	"credisol-backend/pkg/id"
)

// openTestDB migrates the full schema into in-memory sqlite. The domain models
// carry no MySQL-only column types, so they migrate as-is.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&loanDomain.Loan{},
		&instDomain.Installment{},
		&paymentDomain.Payment{},
		&paymentDomain.Allocation{},
		&reprogDomain.Request{},
	); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func makeLoan(loanID, clientID string) *loanDomain.Loan {
	return &loanDomain.Loan{
		LoanID:         loanID,
		ClientID:       clientID,
		Principal:      decimal.NewFromInt(1000),
		Rate:           decimal.NewFromFloat(0.10),
		TermMonths:     12,
		Frequency:      loanDomain.FrequencyMonthly,
		State:          loanDomain.StatePending,
		Version:        1,
		StateUpdatedAt: time.Now().UTC(),
	}
}

func TestLoanCreateAndGetByLoanID(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	loanID := id.New32()
	client := id.New32()

	l := makeLoan(loanID, client)
	if err := repo.Create(ctx, l); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if l.ID == 0 {
		t.Fatalf("Create did not set auto-increment ID")
	}

	got, err := repo.GetByLoanID(ctx, loanID)
	if err != nil {
		t.Fatalf("GetByLoanID: %v", err)
	}
	if got.LoanID != loanID || got.ClientID != client {
		t.Errorf("unexpected loan: %+v", got)
	}
	if !got.Principal.Equal(l.Principal) {
		t.Errorf("principal round-trip: got %s want %s", got.Principal, l.Principal)
	}
}

func TestLoanSaveUpdatesState(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	loanID := id.New32()
	l := makeLoan(loanID, id.New32())
	if err := repo.Create(ctx, l); err != nil {
		t.Fatalf("Create: %v", err)
	}

	l.State = loanDomain.StateApproved
	l.StartDate = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	if err := repo.Save(ctx, l); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.GetByLoanID(ctx, loanID)
	if err != nil {
		t.Fatalf("GetByLoanID: %v", err)
	}
	if got.State != loanDomain.StateApproved {
		t.Errorf("state not updated, got=%s", got.State)
	}
}

func TestLoanGetByLoanID_NotFound(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)

	_, err := repo.GetByLoanID(context.Background(), id.New32())
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestLoanListByState(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	approved := makeLoan(id.New32(), id.New32())
	approved.State = loanDomain.StateApproved
	pending := makeLoan(id.New32(), id.New32())
	for _, l := range []*loanDomain.Loan{approved, pending} {
		if err := repo.Create(ctx, l); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := repo.ListByState(ctx, loanDomain.StateApproved)
	if err != nil {
		t.Fatalf("ListByState: %v", err)
	}
	if len(got) != 1 || got[0].LoanID != approved.LoanID {
		t.Fatalf("unexpected result: %+v", got)
	}
}

// Reprogramming supersedes a version: the old row is soft-deleted and a new
// row with the same loan_id takes over. The public id must resolve to the new
// row, while numeric FKs still reach the retired one.
func TestLoanSoftDeleteAndVersioning(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	loanID := id.New32()
	requestID := id.New32()

	v1 := makeLoan(loanID, id.New32())
	v1.State = loanDomain.StateApproved
	if err := repo.Create(ctx, v1); err != nil {
		t.Fatalf("Create v1: %v", err)
	}
	if err := repo.SoftDelete(ctx, v1, requestID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	v2 := makeLoan(loanID, v1.ClientID)
	v2.State = loanDomain.StateApproved
	v2.Version = 2
	if err := repo.Create(ctx, v2); err != nil {
		t.Fatalf("Create v2: %v", err)
	}

	got, err := repo.GetByLoanID(ctx, loanID)
	if err != nil {
		t.Fatalf("GetByLoanID: %v", err)
	}
	if got.ID != v2.ID || got.Version != 2 {
		t.Fatalf("public id resolves to %+v, want version 2", got)
	}

	old, err := repo.GetByID(ctx, v1.ID)
	if err != nil {
		t.Fatalf("GetByID retired version: %v", err)
	}
	if old.DeletedBy != requestID {
		t.Errorf("deleted_by=%q want %q", old.DeletedBy, requestID)
	}
	if !old.DeletedAt.Valid {
		t.Error("retired version should carry a deletion timestamp")
	}
}
