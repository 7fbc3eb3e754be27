package settlement

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"splitease/internal/models"
	"splitease/internal/money"
)

// Event is a notification the caller should deliver after the surrounding
// transaction commits. The engine never sends anything itself.
type Event struct {
	UserID  int
	Message string
	Link    string
}

// Transition is the result of a lifecycle action: the settlement as written,
// plus the notifications it produced.
type Transition struct {
	Settlement *models.Settlement
	// Completed is set by RecordPayment when the payment filled the balance
	// and the settlement moved to awaiting_confirmation.
	Completed bool
	Events    []Event
}

// Lifecycle drives settlement state transitions. Every action re-reads the
// row under a lock and checks the status before writing, so two concurrent
// actions on the same settlement serialize and the loser gets a
// StaleStateError instead of silently clobbering the first write.
type Lifecycle struct {
	store Store
}

func NewLifecycle(store Store) *Lifecycle {
	return &Lifecycle{store: store}
}

// load fetches the settlement under lock and verifies the actor is a party.
// Non-parties get ErrNotFound, same as a missing row.
func (lc *Lifecycle) load(ctx context.Context, dbtx DBTX, actorID, settlementID int) (*models.Settlement, error) {
	s, err := lc.store.GetForUpdate(ctx, dbtx, settlementID)
	if err != nil {
		return nil, fmt.Errorf("loading settlement %d: %w", settlementID, err)
	}
	if s == nil || !s.IsParty(actorID) {
		return nil, ErrNotFound
	}
	return s, nil
}

// RecordPayment applies a partial payment toward the debt. Either party may
// record one (the creditor can log money received outside the app) while the
// settlement is pending or partial. A payment that lands within tolerance of
// the total is clamped to it exactly and the settlement moves to
// awaiting_confirmation for the creditor to confirm.
func (lc *Lifecycle) RecordPayment(ctx context.Context, dbtx DBTX, actorID, settlementID int, amount decimal.Decimal) (*Transition, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("payment amount must be greater than zero")
	}
	s, err := lc.load(ctx, dbtx, actorID, settlementID)
	if err != nil {
		return nil, err
	}
	if s.Status != models.SettlementPending && s.Status != models.SettlementPartial {
		return nil, &StaleStateError{SettlementID: s.ID, Status: s.Status}
	}

	amount = money.Round(amount)
	newPaid := s.PartialPaidAmount.Add(amount)
	if newPaid.GreaterThan(s.Amount.Add(money.Tolerance)) {
		return nil, &OverpaymentError{Remaining: s.Remaining(), Attempted: amount}
	}

	status := models.SettlementPartial
	completed := false
	if money.Equal(newPaid, s.Amount) {
		newPaid = s.Amount
		status = models.SettlementAwaitingConfirmation
		completed = true
	}
	if err := lc.store.UpdateState(ctx, dbtx, s.ID, newPaid, status, false); err != nil {
		return nil, err
	}
	s.PartialPaidAmount = newPaid
	s.Status = status

	tr := &Transition{Settlement: s, Completed: completed}
	if completed {
		tr.Events = append(tr.Events, Event{
			UserID:  s.PaidTo,
			Message: fmt.Sprintf("Payment of %s completed a settlement of %s. Please confirm receipt.", amount.StringFixed(2), s.Amount.StringFixed(2)),
			Link:    "/settlements",
		})
	} else {
		tr.Events = append(tr.Events, Event{
			UserID:  s.PaidTo,
			Message: fmt.Sprintf("Partial payment of %s received, %s remaining.", amount.StringFixed(2), s.Remaining().StringFixed(2)),
			Link:    "/settlements",
		})
	}
	return tr, nil
}

// MarkPaid declares the full outstanding balance paid in one step. Either
// party may do this; the settlement still needs the creditor's confirmation.
func (lc *Lifecycle) MarkPaid(ctx context.Context, dbtx DBTX, actorID, settlementID int) (*Transition, error) {
	s, err := lc.load(ctx, dbtx, actorID, settlementID)
	if err != nil {
		return nil, err
	}
	if s.Status != models.SettlementPending && s.Status != models.SettlementPartial {
		return nil, &StaleStateError{SettlementID: s.ID, Status: s.Status}
	}
	if err := lc.store.UpdateState(ctx, dbtx, s.ID, s.Amount, models.SettlementAwaitingConfirmation, false); err != nil {
		return nil, err
	}
	s.PartialPaidAmount = s.Amount
	s.Status = models.SettlementAwaitingConfirmation

	return &Transition{Settlement: s, Events: []Event{{
		UserID:  s.PaidTo,
		Message: fmt.Sprintf("A settlement of %s was marked as paid. Please confirm receipt.", s.Amount.StringFixed(2)),
		Link:    "/settlements",
	}}}, nil
}

// Confirm is the creditor acknowledging receipt of the full amount. It is the
// only transition into paid.
func (lc *Lifecycle) Confirm(ctx context.Context, dbtx DBTX, actorID, settlementID int) (*Transition, error) {
	s, err := lc.load(ctx, dbtx, actorID, settlementID)
	if err != nil {
		return nil, err
	}
	if actorID != s.PaidTo {
		return nil, &PermissionError{Action: "confirm"}
	}
	if s.Status != models.SettlementAwaitingConfirmation {
		return nil, &StaleStateError{SettlementID: s.ID, Status: s.Status}
	}
	if err := lc.store.UpdateState(ctx, dbtx, s.ID, s.Amount, models.SettlementPaid, true); err != nil {
		return nil, err
	}
	s.PartialPaidAmount = s.Amount
	s.Status = models.SettlementPaid

	return &Transition{Settlement: s, Events: []Event{{
		UserID:  s.PaidBy,
		Message: fmt.Sprintf("Your payment of %s was confirmed. The settlement is complete.", s.Amount.StringFixed(2)),
		Link:    "/settlements",
	}}}, nil
}

// RequestCancel asks the other party to agree to cancelling the debt. Either
// party may request while the settlement is pending or partial.
func (lc *Lifecycle) RequestCancel(ctx context.Context, dbtx DBTX, actorID, settlementID int) (*Transition, error) {
	s, err := lc.load(ctx, dbtx, actorID, settlementID)
	if err != nil {
		return nil, err
	}
	if s.Status != models.SettlementPending && s.Status != models.SettlementPartial {
		return nil, &StaleStateError{SettlementID: s.ID, Status: s.Status}
	}
	if err := lc.store.UpdateState(ctx, dbtx, s.ID, s.PartialPaidAmount, models.SettlementCancelRequest, false); err != nil {
		return nil, err
	}
	s.Status = models.SettlementCancelRequest

	other := s.PaidBy
	if actorID == s.PaidBy {
		other = s.PaidTo
	}
	return &Transition{Settlement: s, Events: []Event{{
		UserID:  other,
		Message: fmt.Sprintf("Cancellation requested on a settlement of %s.", s.Amount.StringFixed(2)),
		Link:    "/settlements",
	}}}, nil
}

// ApproveCancel is the creditor agreeing to drop the debt.
func (lc *Lifecycle) ApproveCancel(ctx context.Context, dbtx DBTX, actorID, settlementID int) (*Transition, error) {
	s, err := lc.load(ctx, dbtx, actorID, settlementID)
	if err != nil {
		return nil, err
	}
	if actorID != s.PaidTo {
		return nil, &PermissionError{Action: "approve cancellation of"}
	}
	if s.Status != models.SettlementCancelRequest {
		return nil, &StaleStateError{SettlementID: s.ID, Status: s.Status}
	}
	if err := lc.store.UpdateState(ctx, dbtx, s.ID, s.PartialPaidAmount, models.SettlementCancelled, true); err != nil {
		return nil, err
	}
	s.Status = models.SettlementCancelled

	return &Transition{Settlement: s, Events: []Event{{
		UserID:  s.PaidBy,
		Message: fmt.Sprintf("A settlement of %s was cancelled.", s.Amount.StringFixed(2)),
		Link:    "/settlements",
	}}}, nil
}

// RejectCancel is the creditor refusing a cancellation request. The
// settlement returns to partial if any payment was already recorded,
// otherwise to pending.
func (lc *Lifecycle) RejectCancel(ctx context.Context, dbtx DBTX, actorID, settlementID int) (*Transition, error) {
	s, err := lc.load(ctx, dbtx, actorID, settlementID)
	if err != nil {
		return nil, err
	}
	if actorID != s.PaidTo {
		return nil, &PermissionError{Action: "reject cancellation of"}
	}
	if s.Status != models.SettlementCancelRequest {
		return nil, &StaleStateError{SettlementID: s.ID, Status: s.Status}
	}
	status := models.SettlementPending
	if s.PartialPaidAmount.GreaterThan(decimal.Zero) {
		status = models.SettlementPartial
	}
	if err := lc.store.UpdateState(ctx, dbtx, s.ID, s.PartialPaidAmount, status, false); err != nil {
		return nil, err
	}
	s.Status = status

	return &Transition{Settlement: s, Events: []Event{{
		UserID:  s.PaidBy,
		Message: fmt.Sprintf("Your cancellation request on a settlement of %s was rejected.", s.Amount.StringFixed(2)),
		Link:    "/settlements",
	}}}, nil
}

// Remind lets the creditor nudge the debtor about an unpaid balance. It
// writes no state, only produces an event for the debtor.
func (lc *Lifecycle) Remind(ctx context.Context, dbtx DBTX, actorID, settlementID int) (*Transition, error) {
	s, err := lc.load(ctx, dbtx, actorID, settlementID)
	if err != nil {
		return nil, err
	}
	if actorID != s.PaidTo {
		return nil, &PermissionError{Action: "send a reminder for"}
	}
	if s.Status != models.SettlementPending && s.Status != models.SettlementPartial {
		return nil, &StaleStateError{SettlementID: s.ID, Status: s.Status}
	}
	return &Transition{Settlement: s, Events: []Event{{
		UserID:  s.PaidBy,
		Message: fmt.Sprintf("Reminder: you still owe %s on a settlement.", s.Remaining().StringFixed(2)),
		Link:    "/settlements",
	}}}, nil
}
