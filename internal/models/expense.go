package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

type Expense struct {
	ID          int             `json:"id,omitempty" db:"id,omitempty"`
	GroupID     int             `json:"group_id,omitempty" db:"group_id,omitempty"`
	Title       string          `json:"title,omitempty" db:"title,omitempty"`
	Description string          `json:"description,omitempty" db:"description,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount,omitempty" db:"total_amount,omitempty"`
	ExpenseDate string          `json:"expense_date,omitempty" db:"expense_date,omitempty"`
	CreatedAt   sql.NullString  `json:"created_at,omitempty" db:"created_at,omitempty"`
}
