package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// SettlementStatus is the settlement state machine's state label as stored in
// the settlements table.
type SettlementStatus string

const (
	SettlementPending              SettlementStatus = "pending"
	SettlementPartial              SettlementStatus = "partial"
	SettlementAwaitingConfirmation SettlementStatus = "awaiting_confirmation"
	SettlementCancelRequest        SettlementStatus = "cancel_request"
	SettlementPaid                 SettlementStatus = "paid"
	SettlementCancelled            SettlementStatus = "cancelled"
)

// Active reports whether the settlement still participates in netting and
// lifecycle transitions. Terminal rows (paid, cancelled) are immutable history.
func (s SettlementStatus) Active() bool {
	switch s {
	case SettlementPending, SettlementPartial, SettlementAwaitingConfirmation, SettlementCancelRequest:
		return true
	}
	return false
}

func (s SettlementStatus) Terminal() bool {
	return s == SettlementPaid || s == SettlementCancelled
}

// ActiveSettlementStatuses lists the non-terminal statuses for SQL IN clauses.
var ActiveSettlementStatuses = []SettlementStatus{
	SettlementPending,
	SettlementPartial,
	SettlementAwaitingConfirmation,
	SettlementCancelRequest,
}

// Settlement is the pairwise debt instrument between a debtor (PaidBy) and a
// creditor (PaidTo) within a group. At most one active row exists per ordered
// pair per group; the ledger merge rules enforce that, not a DB constraint.
type Settlement struct {
	ID                int              `json:"id,omitempty" db:"id,omitempty"`
	GroupID           int              `json:"group_id,omitempty" db:"group_id,omitempty"`
	PaidBy            int              `json:"paid_by,omitempty" db:"paid_by,omitempty"`
	PaidTo            int              `json:"paid_to,omitempty" db:"paid_to,omitempty"`
	Amount            decimal.Decimal  `json:"amount,omitempty" db:"amount,omitempty"`
	PartialPaidAmount decimal.Decimal  `json:"partial_paid_amount,omitempty" db:"partial_paid_amount,omitempty"`
	Status            SettlementStatus `json:"status,omitempty" db:"status,omitempty"`
	CreatedAt         sql.NullString   `json:"created_at,omitempty" db:"created_at,omitempty"`
	UpdatedAt         sql.NullString   `json:"updated_at,omitempty" db:"updated_at,omitempty"`
	SettledAt         sql.NullString   `json:"settled_at,omitempty" db:"settled_at,omitempty"`
}

// Remaining is the unpaid balance on an active settlement.
func (s *Settlement) Remaining() decimal.Decimal {
	return s.Amount.Sub(s.PartialPaidAmount)
}

// IsParty reports whether the user is the debtor or the creditor of this row.
func (s *Settlement) IsParty(userID int) bool {
	return userID == s.PaidBy || userID == s.PaidTo
}
