package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"splitease/internal/models"
	"splitease/internal/money"
	"splitease/internal/notify"
	"splitease/internal/repositories"
	"splitease/internal/settlement"
	"splitease/internal/split"
	"splitease/pkg/utils"
)

// ErrNotGroupMember is returned when the submitting user, a payer, or a
// custom-split participant is not a member of the group.
var ErrNotGroupMember = fmt.Errorf("user is not a member of this group")

// ErrGroupNotFound is returned when the target group does not exist.
var ErrGroupNotFound = fmt.Errorf("group not found")

type CreateExpenseInput struct {
	GroupID      int
	ActorID      int
	Title        string
	Description  string
	TotalAmount  decimal.Decimal
	ExpenseDate  string
	SplitMode    split.Mode
	Payers       map[int]decimal.Decimal
	CustomShares map[int]decimal.Decimal
}

// ExpenseService records expenses and folds their settlement effects into the
// group ledger, all in one transaction.
type ExpenseService struct {
	db       *DB
	expenses *repositories.ExpenseRepo
	groups   *repositories.GroupRepo
	members  *repositories.MemberRepo
	ledger   *settlement.Ledger
	notifier notify.Notifier
}

func NewExpenseService(db *DB, notifier notify.Notifier) *ExpenseService {
	return &ExpenseService{
		db:       db,
		expenses: repositories.NewExpenseRepo(),
		groups:   repositories.NewGroupRepo(),
		members:  repositories.NewMemberRepo(),
		ledger:   settlement.NewLedger(repositories.NewSettlementRepo()),
		notifier: notifier,
	}
}

// CreateExpense validates the submission, computes the split, stores the
// expense with its payers and splits, and merges the resulting transfers into
// the settlement ledger. Everything commits atomically; a failure anywhere
// leaves no trace of the expense.
func (s *ExpenseService) CreateExpense(ctx context.Context, in CreateExpenseInput) (*models.Expense, error) {
	if in.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("total amount must be greater than zero")
	}
	if len(in.Payers) == 0 {
		return nil, fmt.Errorf("at least one payer is required")
	}

	paidSum := decimal.Zero
	for _, amt := range in.Payers {
		paidSum = paidSum.Add(amt)
	}
	if !money.Equal(paidSum, in.TotalAmount) {
		return nil, &split.SplitMismatchError{Expected: in.TotalAmount, Provided: paidSum}
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.groups.GetByID(ctx, tx, in.GroupID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}

	members, err := s.members.GroupMemberIDs(ctx, tx, in.GroupID)
	if err != nil {
		return nil, err
	}
	memberSet := make(map[int]bool, len(members))
	for _, id := range members {
		memberSet[id] = true
	}
	if !memberSet[in.ActorID] {
		return nil, ErrNotGroupMember
	}
	for id := range in.Payers {
		if !memberSet[id] {
			return nil, ErrNotGroupMember
		}
	}
	if in.SplitMode == split.ModeCustom {
		for id := range in.CustomShares {
			if !memberSet[id] {
				return nil, ErrNotGroupMember
			}
		}
	}

	shares, err := split.Compute(in.TotalAmount, in.SplitMode, members, in.CustomShares)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		GroupID:     in.GroupID,
		Title:       in.Title,
		Description: in.Description,
		TotalAmount: money.Round(in.TotalAmount),
		ExpenseDate: in.ExpenseDate,
	}
	if err := s.expenses.Insert(ctx, tx, expense); err != nil {
		return nil, err
	}
	for _, id := range sortedKeys(in.Payers) {
		err := s.expenses.InsertPayer(ctx, tx, &models.ExpensePayer{
			ExpenseID:  expense.ID,
			UserID:     id,
			AmountPaid: money.Round(in.Payers[id]),
		})
		if err != nil {
			return nil, err
		}
	}
	for _, id := range sortedKeys(shares) {
		err := s.expenses.InsertSplit(ctx, tx, &models.ExpenseSplit{
			ExpenseID:  expense.ID,
			UserID:     id,
			AmountOwed: shares[id],
		})
		if err != nil {
			return nil, err
		}
	}

	net := split.Aggregate(in.Payers, shares)
	transfers := split.Match(net)
	for _, t := range transfers {
		if err := s.ledger.Apply(ctx, tx, in.GroupID, t); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing expense: %w", err)
	}

	go s.notifyExpense(expense, transfers)

	return expense, nil
}

func (s *ExpenseService) notifyExpense(e *models.Expense, transfers []split.Transfer) {
	defer func() {
		if r := recover(); r != nil {
			utils.Logger.WithField("panic", r).Error("expense notification goroutine panicked")
		}
	}()
	events := make([]settlement.Event, 0, len(transfers))
	for _, t := range transfers {
		events = append(events, settlement.Event{
			UserID:  t.Debtor,
			Message: fmt.Sprintf("New expense %q added. You owe %s.", e.Title, t.Amount.StringFixed(2)),
			Link:    "/settlements",
		})
	}
	s.notifier.Notify(events)
}

// ListGroupExpenses returns the group's expenses, newest first. The caller
// must be a member of the group.
func (s *ExpenseService) ListGroupExpenses(ctx context.Context, actorID, groupID int) ([]models.Expense, error) {
	ok, err := s.members.IsMember(ctx, s.db.Conn(), groupID, actorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotGroupMember
	}
	return s.expenses.ListByGroup(ctx, s.db.Conn(), groupID)
}

// GetExpense loads one expense with payers and splits, enforcing group
// membership.
func (s *ExpenseService) GetExpense(ctx context.Context, actorID, expenseID int) (*models.Expense, []models.ExpensePayer, []models.ExpenseSplit, error) {
	expense, payers, splits, err := s.expenses.GetByID(ctx, s.db.Conn(), expenseID)
	if err != nil {
		return nil, nil, nil, err
	}
	ok, err := s.members.IsMember(ctx, s.db.Conn(), expense.GroupID, actorID)
	if err != nil {
		return nil, nil, nil, err
	}
	if !ok {
		return nil, nil, nil, ErrNotGroupMember
	}
	return expense, payers, splits, nil
}
