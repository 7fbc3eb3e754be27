package settlement

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"splitease/internal/models"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx. Methods documented as
// locking rows only do so when the caller passes a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the narrow persistence contract the engine needs from the
// settlements table. The MySQL implementation lives in internal/repositories;
// tests use an in-memory fake.
type Store interface {
	// GetForUpdate loads one settlement by id, locking the row for the
	// duration of the transaction. Returns (nil, nil) when no row exists.
	GetForUpdate(ctx context.Context, dbtx DBTX, id int) (*models.Settlement, error)

	// GetActivePair loads and locks the active settlement rows between the
	// two users in either direction, in a single statement so concurrent
	// appliers acquire the pair's locks in one canonical order. forward is
	// the row with paid_by=debtor, reverse the opposite direction; either
	// may be nil.
	GetActivePair(ctx context.Context, dbtx DBTX, groupID, debtor, creditor int) (forward, reverse *models.Settlement, err error)

	// Insert creates a new settlement row and fills in its id.
	Insert(ctx context.Context, dbtx DBTX, s *models.Settlement) error

	// UpdateAmount sets a new total on an active row and refreshes updated_at.
	UpdateAmount(ctx context.Context, dbtx DBTX, id int, amount decimal.Decimal) error

	// UpdateState writes partial_paid_amount and status, refreshes
	// updated_at, and stamps settled_at when settled is true.
	UpdateState(ctx context.Context, dbtx DBTX, id int, paid decimal.Decimal, status models.SettlementStatus, settled bool) error

	// Delete removes a settlement row (used when opposite debts cancel out).
	Delete(ctx context.Context, dbtx DBTX, id int) error
}
