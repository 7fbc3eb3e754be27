package cron

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"splitease/internal/models"
	"splitease/internal/repositories"
	"splitease/pkg/utils"
)

func StartCronJob(db *sql.DB) *cron.Cron {
	c := cron.New()

	// Runs daily at midnight — remind debtors with open settlements
	_, err := c.AddFunc("0 0 * * *", func() {
		err := SendReminderEmailsToDebtors(db)
		if err != nil {
			utils.Logger.Errorf("Cron job failed to send reminder emails: %v", err)
		}
	})
	if err != nil {
		utils.Logger.Errorf("Failed to schedule debtor reminder job: %v", err)
	}

	c.Start()
	utils.Logger.Info("Cron jobs started (debtor reminders daily at midnight)")
	return c
}

// -------------------------------------------------------------
// Send daily reminders to debtors with open settlements
// -------------------------------------------------------------
func SendReminderEmailsToDebtors(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	settlements := repositories.NewSettlementRepo()
	users := repositories.NewUserRepo()
	notifications := repositories.NewNotificationRepo()

	open, err := settlements.ListOpen(ctx, db)
	if err != nil {
		return utils.ErrorHandler(err, "failed to list open settlements")
	}

	var wg sync.WaitGroup
	errChan := make(chan error, 10)

	for _, s := range open {
		remaining := s.Remaining()
		if remaining.LessThanOrEqual(decimal.Zero) {
			continue
		}

		email, err := users.GetEmail(ctx, db, s.PaidBy)
		if err != nil {
			utils.Logger.Errorf("Failed to resolve email for user %d: %v", s.PaidBy, err)
			continue
		}
		creditor, err := users.GetUsername(ctx, db, s.PaidTo)
		if err != nil {
			utils.Logger.Errorf("Failed to resolve username for user %d: %v", s.PaidTo, err)
			continue
		}

		if err := notifications.Insert(ctx, db, &models.Notification{
			UserID:  s.PaidBy,
			Message: fmt.Sprintf("Reminder: you still owe %s to %s.", remaining.StringFixed(2), creditor),
			Link:    "/settlements",
		}); err != nil {
			utils.Logger.Errorf("Failed to insert reminder notification for user %d: %v", s.PaidBy, err)
		}

		wg.Add(1)
		go func(email, creditor, amount string) {
			defer wg.Done()

			if err := utils.SendDebtorReminderEmail(email, creditor, amount); err != nil {
				errChan <- fmt.Errorf("failed to send reminder email to %s: %v", email, err)
				return
			}

			utils.Logger.Infof("📧 Sent reminder to %s — ₦%s owed to %s", email, amount, creditor)
		}(email, creditor, remaining.StringFixed(2))
	}

	wg.Wait()
	close(errChan)

	for e := range errChan {
		utils.Logger.Error(e)
	}

	utils.Logger.Info("✅ Finished sending all debtor reminder emails.")
	return nil
}
