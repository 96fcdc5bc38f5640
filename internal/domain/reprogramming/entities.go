package reprogramming

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"credisol-backend/internal/domain/loan"
)

type State string

const (
	StatePending  State = "pending"
	StateApproved State = "approved"
	StateRejected State = "rejected"
	StateApplied  State = "applied"
)

var (
	ErrNotFound        = errors.New("reprogramming request not found")
	ErrAlreadyDecided  = errors.New("reprogramming request already decided")
	ErrPendingExists   = errors.New("loan already has a pending reprogramming request")
	ErrLoanNotEligible = errors.New("only approved loans can be reprogrammed")
)

// Request snapshots the loan's terms at raise time next to the proposed ones,
// so the negotiation stays auditable after the loan row is superseded.
type Request struct {
	ID        uint64 `gorm:"primaryKey;column:id" json:"-"`
	RequestID string `gorm:"size:32;uniqueIndex" json:"request_id"`
	LoanID    uint64 `gorm:"column:loan_id;index" json:"-"`

	CurrentPrincipal  decimal.Decimal `gorm:"type:decimal(18,2)" json:"current_principal"`
	CurrentRate       decimal.Decimal `gorm:"type:decimal(8,4)" json:"current_rate"`
	CurrentTermMonths int             `json:"current_term_months"`
	CurrentFrequency  loan.Frequency  `gorm:"size:16" json:"current_frequency"`

	ProposedPrincipal  decimal.Decimal `gorm:"type:decimal(18,2)" json:"proposed_principal"`
	ProposedRate       decimal.Decimal `gorm:"type:decimal(8,4)" json:"proposed_rate"`
	ProposedTermMonths int             `json:"proposed_term_months"`
	ProposedFrequency  loan.Frequency  `gorm:"size:16" json:"proposed_frequency"`

	// CarryPolicy fixes, per request, what happens to the superseded
	// schedule's unpaid balance when the new schedule is generated.
	CarryPolicy string `gorm:"size:32" json:"carry_policy"`

	State     State      `gorm:"size:16;default:'pending'" json:"state"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Request) TableName() string { return "reprogramming_requests" }
