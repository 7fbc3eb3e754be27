package models

import "github.com/shopspring/decimal"

type ExpensePayer struct {
	ExpenseID  int             `json:"expense_id,omitempty" db:"expense_id,omitempty"`
	UserID     int             `json:"user_id,omitempty" db:"user_id,omitempty"`
	AmountPaid decimal.Decimal `json:"amount_paid,omitempty" db:"amount_paid,omitempty"`
}
