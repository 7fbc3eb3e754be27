package settlement

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splitease/internal/models"
)

const (
	debtorID   = 2
	creditorID = 3
	outsiderID = 99
)

func seedPending(store *fakeStore, amount string) *models.Settlement {
	return store.seed(models.Settlement{
		GroupID: 1,
		PaidBy:  debtorID,
		PaidTo:  creditorID,
		Amount:  d(amount),
		Status:  models.SettlementPending,
	})
}

func TestRecordPaymentPartial(t *testing.T) {
	store := newFakeStore()
	s := seedPending(store, "50.00")
	lc := NewLifecycle(store)

	tr, err := lc.RecordPayment(context.Background(), nil, debtorID, s.ID, d("30.00"))
	require.NoError(t, err)

	assert.False(t, tr.Completed)
	assert.Equal(t, models.SettlementPartial, tr.Settlement.Status)
	assert.True(t, d("30.00").Equal(tr.Settlement.PartialPaidAmount))
	assert.True(t, d("20.00").Equal(tr.Settlement.Remaining()))
	require.Len(t, tr.Events, 1)
	assert.Equal(t, creditorID, tr.Events[0].UserID)
}

func TestRecordPaymentCompletesWithinTolerance(t *testing.T) {
	store := newFakeStore()
	s := seedPending(store, "50.00")
	lc := NewLifecycle(store)

	_, err := lc.RecordPayment(context.Background(), nil, debtorID, s.ID, d("30.00"))
	require.NoError(t, err)

	// 49.99 of 50.00 total: clamped up and moved to awaiting_confirmation
	tr, err := lc.RecordPayment(context.Background(), nil, debtorID, s.ID, d("19.99"))
	require.NoError(t, err)

	assert.True(t, tr.Completed)
	assert.Equal(t, models.SettlementAwaitingConfirmation, tr.Settlement.Status)
	assert.True(t, tr.Settlement.PartialPaidAmount.Equal(tr.Settlement.Amount))
}

func TestRecordPaymentOverpayment(t *testing.T) {
	store := newFakeStore()
	s := seedPending(store, "50.00")
	lc := NewLifecycle(store)

	_, err := lc.RecordPayment(context.Background(), nil, debtorID, s.ID, d("30.00"))
	require.NoError(t, err)

	_, err = lc.RecordPayment(context.Background(), nil, debtorID, s.ID, d("25.00"))

	var overpay *OverpaymentError
	require.ErrorAs(t, err, &overpay)
	assert.True(t, d("20.00").Equal(overpay.Remaining))
	assert.True(t, d("25.00").Equal(overpay.Attempted))

	// the failed attempt must not have written anything
	assert.True(t, d("30.00").Equal(store.rows[s.ID].PartialPaidAmount))
	assert.Equal(t, models.SettlementPartial, store.rows[s.ID].Status)
}

func TestRecordPaymentAllowedForEitherParty(t *testing.T) {
	store := newFakeStore()
	s := seedPending(store, "50.00")
	lc := NewLifecycle(store)

	// the creditor logging money received outside the app
	tr, err := lc.RecordPayment(context.Background(), nil, creditorID, s.ID, d("15.00"))
	require.NoError(t, err)
	assert.Equal(t, models.SettlementPartial, tr.Settlement.Status)
	assert.True(t, d("15.00").Equal(tr.Settlement.PartialPaidAmount))
}

func TestRecordPaymentRejectsNonPositiveAmount(t *testing.T) {
	store := newFakeStore()
	s := seedPending(store, "50.00")
	lc := NewLifecycle(store)

	_, err := lc.RecordPayment(context.Background(), nil, debtorID, s.ID, d("0.00"))
	assert.Error(t, err)
	_, err = lc.RecordPayment(context.Background(), nil, debtorID, s.ID, d("-5.00"))
	assert.Error(t, err)
}

func TestRecordPaymentHidesSettlementFromOutsiders(t *testing.T) {
	store := newFakeStore()
	s := seedPending(store, "50.00")
	lc := NewLifecycle(store)

	_, err := lc.RecordPayment(context.Background(), nil, outsiderID, s.ID, d("10.00"))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = lc.RecordPayment(context.Background(), nil, debtorID, 12345, d("10.00"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordPaymentStaleState(t *testing.T) {
	store := newFakeStore()
	s := store.seed(models.Settlement{
		GroupID: 1,
		PaidBy:  debtorID,
		PaidTo:  creditorID,
		Amount:  d("50.00"),
		Status:  models.SettlementCancelRequest,
	})
	lc := NewLifecycle(store)

	_, err := lc.RecordPayment(context.Background(), nil, debtorID, s.ID, d("10.00"))

	var stale *StaleStateError
	require.ErrorAs(t, err, &stale)
	assert.Equal(t, models.SettlementCancelRequest, stale.Status)
}

func TestMarkPaidThenConfirm(t *testing.T) {
	store := newFakeStore()
	s := seedPending(store, "50.00")
	lc := NewLifecycle(store)

	tr, err := lc.MarkPaid(context.Background(), nil, debtorID, s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SettlementAwaitingConfirmation, tr.Settlement.Status)
	assert.True(t, tr.Settlement.PartialPaidAmount.Equal(tr.Settlement.Amount))

	tr, err = lc.Confirm(context.Background(), nil, creditorID, s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SettlementPaid, tr.Settlement.Status)
	assert.True(t, store.rows[s.ID].SettledAt.Valid)
	require.Len(t, tr.Events, 1)
	assert.Equal(t, debtorID, tr.Events[0].UserID)
}

func TestMarkPaidAllowedForEitherParty(t *testing.T) {
	store := newFakeStore()
	s := seedPending(store, "50.00")
	lc := NewLifecycle(store)

	_, err := lc.MarkPaid(context.Background(), nil, creditorID, s.ID)
	require.NoError(t, err)
}

func TestConfirmRequiresCreditor(t *testing.T) {
	store := newFakeStore()
	s := store.seed(models.Settlement{
		GroupID:           1,
		PaidBy:            debtorID,
		PaidTo:            creditorID,
		Amount:            d("50.00"),
		PartialPaidAmount: d("50.00"),
		Status:            models.SettlementAwaitingConfirmation,
	})
	lc := NewLifecycle(store)

	_, err := lc.Confirm(context.Background(), nil, debtorID, s.ID)

	var perm *PermissionError
	require.ErrorAs(t, err, &perm)
	assert.Equal(t, models.SettlementAwaitingConfirmation, store.rows[s.ID].Status)
}

func TestConfirmRequiresAwaitingConfirmation(t *testing.T) {
	store := newFakeStore()
	s := seedPending(store, "50.00")
	lc := NewLifecycle(store)

	_, err := lc.Confirm(context.Background(), nil, creditorID, s.ID)

	var stale *StaleStateError
	require.ErrorAs(t, err, &stale)
}

func TestCancelFlowApproved(t *testing.T) {
	store := newFakeStore()
	s := seedPending(store, "50.00")
	lc := NewLifecycle(store)

	tr, err := lc.RequestCancel(context.Background(), nil, debtorID, s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SettlementCancelRequest, tr.Settlement.Status)
	require.Len(t, tr.Events, 1)
	assert.Equal(t, creditorID, tr.Events[0].UserID)

	tr, err = lc.ApproveCancel(context.Background(), nil, creditorID, s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SettlementCancelled, tr.Settlement.Status)
	assert.True(t, store.rows[s.ID].SettledAt.Valid)
}

func TestCancelRequestNotifiesTheOtherParty(t *testing.T) {
	store := newFakeStore()
	s := seedPending(store, "50.00")
	lc := NewLifecycle(store)

	tr, err := lc.RequestCancel(context.Background(), nil, creditorID, s.ID)
	require.NoError(t, err)
	require.Len(t, tr.Events, 1)
	assert.Equal(t, debtorID, tr.Events[0].UserID)
}

func TestApproveCancelRequiresCreditor(t *testing.T) {
	store := newFakeStore()
	s := store.seed(models.Settlement{
		GroupID: 1,
		PaidBy:  debtorID,
		PaidTo:  creditorID,
		Amount:  d("50.00"),
		Status:  models.SettlementCancelRequest,
	})
	lc := NewLifecycle(store)

	_, err := lc.ApproveCancel(context.Background(), nil, debtorID, s.ID)

	var perm *PermissionError
	require.ErrorAs(t, err, &perm)
}

func TestRejectCancelReturnsToPending(t *testing.T) {
	store := newFakeStore()
	s := store.seed(models.Settlement{
		GroupID: 1,
		PaidBy:  debtorID,
		PaidTo:  creditorID,
		Amount:  d("50.00"),
		Status:  models.SettlementCancelRequest,
	})
	lc := NewLifecycle(store)

	tr, err := lc.RejectCancel(context.Background(), nil, creditorID, s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SettlementPending, tr.Settlement.Status)
}

func TestRejectCancelReturnsToPartialWhenPaymentsExist(t *testing.T) {
	store := newFakeStore()
	s := store.seed(models.Settlement{
		GroupID:           1,
		PaidBy:            debtorID,
		PaidTo:            creditorID,
		Amount:            d("50.00"),
		PartialPaidAmount: d("10.00"),
		Status:            models.SettlementCancelRequest,
	})
	lc := NewLifecycle(store)

	tr, err := lc.RejectCancel(context.Background(), nil, creditorID, s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SettlementPartial, tr.Settlement.Status)
	assert.True(t, d("10.00").Equal(tr.Settlement.PartialPaidAmount))
}

func TestRemind(t *testing.T) {
	store := newFakeStore()
	s := store.seed(models.Settlement{
		GroupID:           1,
		PaidBy:            debtorID,
		PaidTo:            creditorID,
		Amount:            d("50.00"),
		PartialPaidAmount: d("30.00"),
		Status:            models.SettlementPartial,
	})
	lc := NewLifecycle(store)

	tr, err := lc.Remind(context.Background(), nil, creditorID, s.ID)
	require.NoError(t, err)
	require.Len(t, tr.Events, 1)
	assert.Equal(t, debtorID, tr.Events[0].UserID)
	assert.Contains(t, tr.Events[0].Message, "20.00")

	// no state changed
	assert.Equal(t, models.SettlementPartial, store.rows[s.ID].Status)
}

func TestRemindRequiresCreditor(t *testing.T) {
	store := newFakeStore()
	s := seedPending(store, "50.00")
	lc := NewLifecycle(store)

	_, err := lc.Remind(context.Background(), nil, debtorID, s.ID)

	var perm *PermissionError
	require.ErrorAs(t, err, &perm)
}

func TestTerminalStatesAreImmutable(t *testing.T) {
	store := newFakeStore()
	lc := NewLifecycle(store)

	for _, status := range []models.SettlementStatus{models.SettlementPaid, models.SettlementCancelled} {
		s := store.seed(models.Settlement{
			GroupID: 1,
			PaidBy:  debtorID,
			PaidTo:  creditorID,
			Amount:  d("50.00"),
			Status:  status,
		})

		var stale *StaleStateError
		_, err := lc.RecordPayment(context.Background(), nil, debtorID, s.ID, d("10.00"))
		assert.ErrorAs(t, err, &stale)
		_, err = lc.MarkPaid(context.Background(), nil, debtorID, s.ID)
		assert.ErrorAs(t, err, &stale)
		_, err = lc.Confirm(context.Background(), nil, creditorID, s.ID)
		assert.ErrorAs(t, err, &stale)
		_, err = lc.RequestCancel(context.Background(), nil, debtorID, s.ID)
		assert.ErrorAs(t, err, &stale)
	}
}
