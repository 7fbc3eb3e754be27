package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"splitease/internal/models"
	"splitease/internal/settlement"
)

type ExpenseRepo struct{}

func NewExpenseRepo() *ExpenseRepo {
	return &ExpenseRepo{}
}

func (r *ExpenseRepo) Insert(ctx context.Context, dbtx settlement.DBTX, e *models.Expense) error {
	res, err := dbtx.ExecContext(ctx,
		`INSERT INTO expenses (group_id, title, description, total_amount, expense_date, created_at)
		VALUES (?, ?, ?, ?, ?, NOW())`,
		e.GroupID, e.Title, e.Description, e.TotalAmount.StringFixed(2), e.ExpenseDate)
	if err != nil {
		return fmt.Errorf("inserting expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading expense id: %w", err)
	}
	e.ID = int(id)
	return nil
}

func (r *ExpenseRepo) InsertPayer(ctx context.Context, dbtx settlement.DBTX, p *models.ExpensePayer) error {
	_, err := dbtx.ExecContext(ctx,
		"INSERT INTO expense_payers (expense_id, user_id, amount_paid) VALUES (?, ?, ?)",
		p.ExpenseID, p.UserID, p.AmountPaid.StringFixed(2))
	if err != nil {
		return fmt.Errorf("inserting expense payer: %w", err)
	}
	return nil
}

func (r *ExpenseRepo) InsertSplit(ctx context.Context, dbtx settlement.DBTX, s *models.ExpenseSplit) error {
	_, err := dbtx.ExecContext(ctx,
		"INSERT INTO expense_splits (expense_id, user_id, amount_owed) VALUES (?, ?, ?)",
		s.ExpenseID, s.UserID, s.AmountOwed.StringFixed(2))
	if err != nil {
		return fmt.Errorf("inserting expense split: %w", err)
	}
	return nil
}

func (r *ExpenseRepo) ListByGroup(ctx context.Context, dbtx settlement.DBTX, groupID int) ([]models.Expense, error) {
	rows, err := dbtx.QueryContext(ctx,
		`SELECT id, group_id, title, description, total_amount, expense_date, created_at
		FROM expenses WHERE group_id = ? ORDER BY expense_date DESC, id DESC`, groupID)
	if err != nil {
		return nil, fmt.Errorf("listing expenses for group %d: %w", groupID, err)
	}
	defer rows.Close()

	var list []models.Expense
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.GroupID, &e.Title, &e.Description, &e.TotalAmount, &e.ExpenseDate, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning expense: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// GetByID loads one expense with its payers and splits. Returns
// sql.ErrNoRows when the expense does not exist.
func (r *ExpenseRepo) GetByID(ctx context.Context, dbtx settlement.DBTX, id int) (*models.Expense, []models.ExpensePayer, []models.ExpenseSplit, error) {
	var e models.Expense
	err := dbtx.QueryRowContext(ctx,
		`SELECT id, group_id, title, description, total_amount, expense_date, created_at
		FROM expenses WHERE id = ?`, id).
		Scan(&e.ID, &e.GroupID, &e.Title, &e.Description, &e.TotalAmount, &e.ExpenseDate, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil, nil, err
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("querying expense %d: %w", id, err)
	}

	payers, err := r.listPayers(ctx, dbtx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	splits, err := r.listSplits(ctx, dbtx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	return &e, payers, splits, nil
}

func (r *ExpenseRepo) listPayers(ctx context.Context, dbtx settlement.DBTX, expenseID int) ([]models.ExpensePayer, error) {
	rows, err := dbtx.QueryContext(ctx,
		"SELECT expense_id, user_id, amount_paid FROM expense_payers WHERE expense_id = ? ORDER BY user_id", expenseID)
	if err != nil {
		return nil, fmt.Errorf("listing payers for expense %d: %w", expenseID, err)
	}
	defer rows.Close()

	var list []models.ExpensePayer
	for rows.Next() {
		var p models.ExpensePayer
		if err := rows.Scan(&p.ExpenseID, &p.UserID, &p.AmountPaid); err != nil {
			return nil, fmt.Errorf("scanning expense payer: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *ExpenseRepo) listSplits(ctx context.Context, dbtx settlement.DBTX, expenseID int) ([]models.ExpenseSplit, error) {
	rows, err := dbtx.QueryContext(ctx,
		"SELECT expense_id, user_id, amount_owed FROM expense_splits WHERE expense_id = ? ORDER BY user_id", expenseID)
	if err != nil {
		return nil, fmt.Errorf("listing splits for expense %d: %w", expenseID, err)
	}
	defer rows.Close()

	var list []models.ExpenseSplit
	for rows.Next() {
		var s models.ExpenseSplit
		if err := rows.Scan(&s.ExpenseID, &s.UserID, &s.AmountOwed); err != nil {
			return nil, fmt.Errorf("scanning expense split: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
