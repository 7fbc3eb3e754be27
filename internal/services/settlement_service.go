package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"splitease/internal/models"
	"splitease/internal/notify"
	"splitease/internal/repositories"
	"splitease/internal/settlement"
	"splitease/pkg/utils"
)

// PaymentResult is what the API returns after a recorded payment.
type PaymentResult struct {
	Settlement *models.Settlement
	Reference  string
	Completed  bool
}

// SettlementService wraps each lifecycle action in its own transaction and
// delivers the resulting notifications after commit.
type SettlementService struct {
	db          *DB
	settlements *repositories.SettlementRepo
	users       *repositories.UserRepo
	lifecycle   *settlement.Lifecycle
	notifier    notify.Notifier
}

func NewSettlementService(db *DB, notifier notify.Notifier) *SettlementService {
	settlements := repositories.NewSettlementRepo()
	return &SettlementService{
		db:          db,
		settlements: settlements,
		users:       repositories.NewUserRepo(),
		lifecycle:   settlement.NewLifecycle(settlements),
		notifier:    notifier,
	}
}

// run executes one lifecycle action inside a transaction and emits its events
// once the transaction commits.
func (s *SettlementService) run(ctx context.Context, action func(dbtx settlement.DBTX) (*settlement.Transition, error)) (*settlement.Transition, error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	tr, err := action(tx)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing settlement update: %w", err)
	}

	if len(tr.Events) > 0 {
		go s.notifier.Notify(tr.Events)
	}
	return tr, nil
}

func (s *SettlementService) RecordPayment(ctx context.Context, actorID, settlementID int, amount decimal.Decimal) (*PaymentResult, error) {
	tr, err := s.run(ctx, func(dbtx settlement.DBTX) (*settlement.Transition, error) {
		return s.lifecycle.RecordPayment(ctx, dbtx, actorID, settlementID, amount)
	})
	if err != nil {
		return nil, err
	}
	if tr.Completed {
		go s.sendPaymentReceivedEmail(tr.Settlement)
	}
	return &PaymentResult{
		Settlement: tr.Settlement,
		Reference:  GenerateReference("stl"),
		Completed:  tr.Completed,
	}, nil
}

func (s *SettlementService) MarkPaid(ctx context.Context, actorID, settlementID int) (*models.Settlement, error) {
	tr, err := s.run(ctx, func(dbtx settlement.DBTX) (*settlement.Transition, error) {
		return s.lifecycle.MarkPaid(ctx, dbtx, actorID, settlementID)
	})
	if err != nil {
		return nil, err
	}
	go s.sendPaymentReceivedEmail(tr.Settlement)
	return tr.Settlement, nil
}

func (s *SettlementService) Confirm(ctx context.Context, actorID, settlementID int) (*models.Settlement, error) {
	tr, err := s.run(ctx, func(dbtx settlement.DBTX) (*settlement.Transition, error) {
		return s.lifecycle.Confirm(ctx, dbtx, actorID, settlementID)
	})
	if err != nil {
		return nil, err
	}
	return tr.Settlement, nil
}

func (s *SettlementService) RequestCancel(ctx context.Context, actorID, settlementID int) (*models.Settlement, error) {
	tr, err := s.run(ctx, func(dbtx settlement.DBTX) (*settlement.Transition, error) {
		return s.lifecycle.RequestCancel(ctx, dbtx, actorID, settlementID)
	})
	if err != nil {
		return nil, err
	}
	return tr.Settlement, nil
}

func (s *SettlementService) ApproveCancel(ctx context.Context, actorID, settlementID int) (*models.Settlement, error) {
	tr, err := s.run(ctx, func(dbtx settlement.DBTX) (*settlement.Transition, error) {
		return s.lifecycle.ApproveCancel(ctx, dbtx, actorID, settlementID)
	})
	if err != nil {
		return nil, err
	}
	return tr.Settlement, nil
}

func (s *SettlementService) RejectCancel(ctx context.Context, actorID, settlementID int) (*models.Settlement, error) {
	tr, err := s.run(ctx, func(dbtx settlement.DBTX) (*settlement.Transition, error) {
		return s.lifecycle.RejectCancel(ctx, dbtx, actorID, settlementID)
	})
	if err != nil {
		return nil, err
	}
	return tr.Settlement, nil
}

// SendReminder nudges the debtor by notification and email. No state changes.
func (s *SettlementService) SendReminder(ctx context.Context, actorID, settlementID int) error {
	tr, err := s.run(ctx, func(dbtx settlement.DBTX) (*settlement.Transition, error) {
		return s.lifecycle.Remind(ctx, dbtx, actorID, settlementID)
	})
	if err != nil {
		return err
	}
	go s.sendReminderEmail(tr.Settlement)
	return nil
}

// ListForUser returns the user's settlements together with their aggregate
// open balances, optionally scoped to one group.
func (s *SettlementService) ListForUser(ctx context.Context, userID, groupID int) ([]models.Settlement, decimal.Decimal, decimal.Decimal, error) {
	list, err := s.settlements.ListForUser(ctx, s.db.Conn(), userID, groupID)
	if err != nil {
		return nil, decimal.Zero, decimal.Zero, err
	}
	youOwe, owedToYou, err := s.settlements.UserBalance(ctx, s.db.Conn(), userID, groupID)
	if err != nil {
		return nil, decimal.Zero, decimal.Zero, err
	}
	return list, youOwe, owedToYou, nil
}

func (s *SettlementService) sendPaymentReceivedEmail(st *models.Settlement) {
	defer func() {
		if r := recover(); r != nil {
			utils.Logger.WithField("panic", r).Error("payment email goroutine panicked")
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	email, err := s.users.GetEmail(ctx, s.db.Conn(), st.PaidTo)
	if err != nil {
		utils.Logger.WithError(err).Error("failed to resolve creditor email")
		return
	}
	payer, err := s.users.GetUsername(ctx, s.db.Conn(), st.PaidBy)
	if err != nil {
		utils.Logger.WithError(err).Error("failed to resolve payer username")
		return
	}
	if err := utils.SendPaymentReceivedEmail(email, payer, st.Amount.StringFixed(2)); err != nil {
		utils.Logger.WithError(err).Error("failed to send payment received email")
	}
}

func (s *SettlementService) sendReminderEmail(st *models.Settlement) {
	defer func() {
		if r := recover(); r != nil {
			utils.Logger.WithField("panic", r).Error("reminder email goroutine panicked")
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	email, err := s.users.GetEmail(ctx, s.db.Conn(), st.PaidBy)
	if err != nil {
		utils.Logger.WithError(err).Error("failed to resolve debtor email")
		return
	}
	creditor, err := s.users.GetUsername(ctx, s.db.Conn(), st.PaidTo)
	if err != nil {
		utils.Logger.WithError(err).Error("failed to resolve creditor username")
		return
	}
	if err := utils.SendDebtorReminderEmail(email, creditor, st.Remaining().StringFixed(2)); err != nil {
		utils.Logger.WithError(err).Error("failed to send reminder email")
	}
}
