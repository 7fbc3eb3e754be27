package settlement

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"splitease/internal/models"
)

// ErrNotFound covers both a settlement that does not exist and a settlement
// the acting user is not a party to. Using the same error for both keeps
// outsiders from probing whether a settlement exists.
var ErrNotFound = errors.New("settlement not found")

// OverpaymentError is returned when a payment would push the paid amount past
// the settlement total plus tolerance.
type OverpaymentError struct {
	Remaining decimal.Decimal
	Attempted decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment amount (%s) exceeds remaining balance (%s)",
		e.Attempted.StringFixed(2), e.Remaining.StringFixed(2))
}

// PermissionError is returned when a party to the settlement attempts an
// action reserved for the other party.
type PermissionError struct {
	Action string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("only the payment receiver can %s this settlement", e.Action)
}

// StaleStateError is returned when the settlement's status, re-read under a
// row lock, no longer allows the requested transition. This is the only
// retryable error: the caller should re-read the settlement and retry.
type StaleStateError struct {
	SettlementID int
	Status       models.SettlementStatus
}

func (e *StaleStateError) Error() string {
	return fmt.Sprintf("settlement %d was modified concurrently, current status is %q",
		e.SettlementID, e.Status)
}
