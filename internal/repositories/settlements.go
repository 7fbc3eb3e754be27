package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"splitease/internal/models"
	"splitease/internal/settlement"
)

const settlementColumns = "id, group_id, paid_by, paid_to, amount, partial_paid_amount, status, created_at, updated_at, settled_at"

// SettlementRepo is the MySQL implementation of settlement.Store plus the
// read queries the HTTP layer needs.
type SettlementRepo struct{}

func NewSettlementRepo() *SettlementRepo {
	return &SettlementRepo{}
}

func scanSettlement(row interface{ Scan(...any) error }) (*models.Settlement, error) {
	var s models.Settlement
	err := row.Scan(&s.ID, &s.GroupID, &s.PaidBy, &s.PaidTo, &s.Amount, &s.PartialPaidAmount,
		&s.Status, &s.CreatedAt, &s.UpdatedAt, &s.SettledAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// activeStatusIn expands to an "status IN (...)" clause plus its args.
func activeStatusIn() (string, []any) {
	placeholders := make([]string, len(models.ActiveSettlementStatuses))
	args := make([]any, len(models.ActiveSettlementStatuses))
	for i, st := range models.ActiveSettlementStatuses {
		placeholders[i] = "?"
		args[i] = string(st)
	}
	return "status IN (" + strings.Join(placeholders, ", ") + ")", args
}

func (r *SettlementRepo) GetForUpdate(ctx context.Context, dbtx settlement.DBTX, id int) (*models.Settlement, error) {
	query := "SELECT " + settlementColumns + " FROM settlements WHERE id = ? FOR UPDATE"
	s, err := scanSettlement(dbtx.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying settlement %d: %w", id, err)
	}
	return s, nil
}

// GetActivePair locks both directions between the pair in one statement. The
// OR over both orderings means every caller touching this pair contends on
// the same row set, so two concurrent appliers cannot deadlock on it.
func (r *SettlementRepo) GetActivePair(ctx context.Context, dbtx settlement.DBTX, groupID, debtor, creditor int) (*models.Settlement, *models.Settlement, error) {
	in, inArgs := activeStatusIn()
	query := "SELECT " + settlementColumns + ` FROM settlements
		WHERE group_id = ? AND ((paid_by = ? AND paid_to = ?) OR (paid_by = ? AND paid_to = ?))
		AND ` + in + " ORDER BY id FOR UPDATE"

	args := append([]any{groupID, debtor, creditor, creditor, debtor}, inArgs...)
	rows, err := dbtx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("querying settlement pair: %w", err)
	}
	defer rows.Close()

	var forward, reverse *models.Settlement
	for rows.Next() {
		s, err := scanSettlement(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("scanning settlement: %w", err)
		}
		if s.PaidBy == debtor {
			forward = s
		} else {
			reverse = s
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return forward, reverse, nil
}

func (r *SettlementRepo) Insert(ctx context.Context, dbtx settlement.DBTX, s *models.Settlement) error {
	res, err := dbtx.ExecContext(ctx,
		`INSERT INTO settlements (group_id, paid_by, paid_to, amount, partial_paid_amount, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0.00, ?, NOW(), NOW())`,
		s.GroupID, s.PaidBy, s.PaidTo, s.Amount.StringFixed(2), string(s.Status))
	if err != nil {
		return fmt.Errorf("inserting settlement: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading settlement id: %w", err)
	}
	s.ID = int(id)
	return nil
}

func (r *SettlementRepo) UpdateAmount(ctx context.Context, dbtx settlement.DBTX, id int, amount decimal.Decimal) error {
	_, err := dbtx.ExecContext(ctx,
		"UPDATE settlements SET amount = ?, updated_at = NOW() WHERE id = ?",
		amount.StringFixed(2), id)
	if err != nil {
		return fmt.Errorf("updating settlement %d amount: %w", id, err)
	}
	return nil
}

func (r *SettlementRepo) UpdateState(ctx context.Context, dbtx settlement.DBTX, id int, paid decimal.Decimal, status models.SettlementStatus, settled bool) error {
	query := "UPDATE settlements SET partial_paid_amount = ?, status = ?, updated_at = NOW() WHERE id = ?"
	if settled {
		query = "UPDATE settlements SET partial_paid_amount = ?, status = ?, updated_at = NOW(), settled_at = NOW() WHERE id = ?"
	}
	_, err := dbtx.ExecContext(ctx, query, paid.StringFixed(2), string(status), id)
	if err != nil {
		return fmt.Errorf("updating settlement %d state: %w", id, err)
	}
	return nil
}

func (r *SettlementRepo) Delete(ctx context.Context, dbtx settlement.DBTX, id int) error {
	_, err := dbtx.ExecContext(ctx, "DELETE FROM settlements WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting settlement %d: %w", id, err)
	}
	return nil
}

// ListForUser returns every settlement the user is a party to, open ones
// before finished ones, newest first within each. groupID 0 means all groups.
func (r *SettlementRepo) ListForUser(ctx context.Context, dbtx settlement.DBTX, userID, groupID int) ([]models.Settlement, error) {
	query := "SELECT " + settlementColumns + ` FROM settlements
		WHERE (paid_by = ? OR paid_to = ?)`
	args := []any{userID, userID}
	if groupID > 0 {
		query += " AND group_id = ?"
		args = append(args, groupID)
	}
	query += " ORDER BY (status IN ('paid', 'cancelled')), updated_at DESC"

	rows, err := dbtx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing settlements for user %d: %w", userID, err)
	}
	defer rows.Close()

	var list []models.Settlement
	for rows.Next() {
		s, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning settlement: %w", err)
		}
		list = append(list, *s)
	}
	return list, rows.Err()
}

// ListOpen returns every active settlement in the system, used by the daily
// reminder job.
func (r *SettlementRepo) ListOpen(ctx context.Context, dbtx settlement.DBTX) ([]models.Settlement, error) {
	in, inArgs := activeStatusIn()
	query := "SELECT " + settlementColumns + " FROM settlements WHERE " + in + " ORDER BY id"

	rows, err := dbtx.QueryContext(ctx, query, inArgs...)
	if err != nil {
		return nil, fmt.Errorf("listing open settlements: %w", err)
	}
	defer rows.Close()

	var list []models.Settlement
	for rows.Next() {
		s, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning settlement: %w", err)
		}
		list = append(list, *s)
	}
	return list, rows.Err()
}

// UserBalance sums what the user owes and is owed across active settlements.
// groupID 0 means all groups.
func (r *SettlementRepo) UserBalance(ctx context.Context, dbtx settlement.DBTX, userID, groupID int) (youOwe, owedToYou decimal.Decimal, err error) {
	in, inArgs := activeStatusIn()
	query := `SELECT
		COALESCE(SUM(CASE WHEN paid_by = ? THEN amount - partial_paid_amount ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN paid_to = ? THEN amount - partial_paid_amount ELSE 0 END), 0)
		FROM settlements WHERE (paid_by = ? OR paid_to = ?) AND ` + in

	args := append([]any{userID, userID, userID, userID}, inArgs...)
	if groupID > 0 {
		query += " AND group_id = ?"
		args = append(args, groupID)
	}
	err = dbtx.QueryRowContext(ctx, query, args...).Scan(&youOwe, &owedToYou)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("summing balances for user %d: %w", userID, err)
	}
	return youOwe, owedToYou, nil
}
