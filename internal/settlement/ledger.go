package settlement

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"splitease/internal/models"
	"splitease/internal/money"
	"splitease/internal/split"
)

// Ledger merges newly computed transfers into the group's persistent
// settlement rows, netting against debts that already exist in the opposite
// direction so the group never carries offsetting rows between the same pair.
type Ledger struct {
	store Store
}

func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// Apply folds one transfer into the ledger. It must run inside the same
// transaction as the expense insert so the expense and its settlement effects
// commit or roll back together.
//
// Merge rules, with R the reverse row's remaining balance and amt the new
// transfer amount:
//   - a same-direction active row exists: add amt to its total; a row that was
//     awaiting_confirmation or cancel_request drops back to partial (pending if
//     nothing was paid yet) because the new debt still has to be paid and
//     confirmed
//   - a reverse active row exists and R > amt: shrink the reverse total by amt
//   - reverse exists and R < amt: delete the reverse row, insert a fresh
//     pending row for amt-R
//   - reverse exists and R equals amt within tolerance: delete the reverse row
//   - no active row either way: insert a fresh pending row
//
// Netting never marks anything paid. A reduced or replaced reverse row keeps
// its own payment history out of the new row, which always starts pending.
func (l *Ledger) Apply(ctx context.Context, dbtx DBTX, groupID int, t split.Transfer) error {
	forward, reverse, err := l.store.GetActivePair(ctx, dbtx, groupID, t.Debtor, t.Creditor)
	if err != nil {
		return fmt.Errorf("loading settlement pair: %w", err)
	}

	if forward != nil {
		if err := l.store.UpdateAmount(ctx, dbtx, forward.ID, forward.Amount.Add(t.Amount)); err != nil {
			return err
		}
		// A row mid-confirmation or mid-cancellation no longer covers its full
		// balance once debt is added; without the demotion a later confirm
		// would stamp the new debt paid without any payment recorded.
		if forward.Status == models.SettlementAwaitingConfirmation || forward.Status == models.SettlementCancelRequest {
			status := models.SettlementPartial
			if !forward.PartialPaidAmount.GreaterThan(decimal.Zero) {
				status = models.SettlementPending
			}
			return l.store.UpdateState(ctx, dbtx, forward.ID, forward.PartialPaidAmount, status, false)
		}
		return nil
	}

	if reverse != nil {
		remaining := reverse.Remaining()
		switch {
		case money.Equal(remaining, t.Amount):
			return l.store.Delete(ctx, dbtx, reverse.ID)
		case remaining.GreaterThan(t.Amount):
			return l.store.UpdateAmount(ctx, dbtx, reverse.ID, reverse.Amount.Sub(t.Amount))
		default:
			if err := l.store.Delete(ctx, dbtx, reverse.ID); err != nil {
				return err
			}
			return l.insertPending(ctx, dbtx, groupID, t.Debtor, t.Creditor, t.Amount.Sub(remaining))
		}
	}

	return l.insertPending(ctx, dbtx, groupID, t.Debtor, t.Creditor, t.Amount)
}

func (l *Ledger) insertPending(ctx context.Context, dbtx DBTX, groupID, debtor, creditor int, amount decimal.Decimal) error {
	return l.store.Insert(ctx, dbtx, &models.Settlement{
		GroupID: groupID,
		PaidBy:  debtor,
		PaidTo:  creditor,
		Amount:  money.Round(amount),
		Status:  models.SettlementPending,
	})
}
