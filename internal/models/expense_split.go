package models

import "github.com/shopspring/decimal"

type ExpenseSplit struct {
	ExpenseID  int             `json:"expense_id,omitempty" db:"expense_id,omitempty"`
	UserID     int             `json:"user_id,omitempty" db:"user_id,omitempty"`
	AmountOwed decimal.Decimal `json:"amount_owed,omitempty" db:"amount_owed,omitempty"`
}
