package loan

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type State string

const (
	StatePending   State = "pending"
	StateApproved  State = "approved"
	StateRejected  State = "rejected"
	StateInArrears State = "in_arrears"
	StatePaid      State = "paid"
	StateCancelled State = "cancelled"
)

type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

var (
	ErrNotFound          = errors.New("loan not found")
	ErrInvalidTransition = errors.New("invalid loan state transition")
	ErrAlreadyDecided    = errors.New("loan already approved or rejected")
	ErrNotPayable        = errors.New("loan is not in a payable state")
)

// Loan is one version of a credit. Reprogramming soft-deletes the current
// version and inserts a new row with the same loan_id and version+1, so the
// public id always resolves to the schedule in force.
type Loan struct {
	ID       uint64 `gorm:"primaryKey;column:id" json:"-"`
	LoanID   string `gorm:"size:32;uniqueIndex:ux_loans_loan_id_active" json:"loan_id"`
	ClientID string `gorm:"size:32;index:idx_loans_client" json:"client_id"`

	Principal  decimal.Decimal `gorm:"type:decimal(18,2)" json:"principal"`
	Rate       decimal.Decimal `gorm:"type:decimal(8,4)" json:"rate"`
	TermMonths int             `gorm:"column:term_months" json:"term_months"`
	Frequency  Frequency       `gorm:"size:16" json:"frequency"`
	StartDate  time.Time       `gorm:"type:date" json:"start_date"`

	State   State `gorm:"size:16;default:'pending'" json:"state"`
	Version int   `gorm:"default:1" json:"version"`

	StateUpdatedAt time.Time `gorm:"autoCreateTime" json:"state_updated_at"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	// DeletedAt is part of the unique index so a superseded version frees the
	// loan_id for its replacement row.
	DeletedAt gorm.DeletedAt `gorm:"uniqueIndex:ux_loans_loan_id_active" json:"-"`
	DeletedBy string         `gorm:"size:32" json:"-"`
}

func (Loan) TableName() string { return "loans" }

// Payable reports whether payments may still be recorded against this version.
func (l *Loan) Payable() bool {
	return l.State == StateApproved || l.State == StateInArrears
}
