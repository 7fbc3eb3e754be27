package notify

import (
	"context"
	"time"

	"splitease/internal/models"
	"splitease/internal/repositories"
	"splitease/internal/settlement"
	"splitease/pkg/utils"
)

// Notifier delivers in-app notifications. Delivery is best effort and must
// never fail the business operation that produced the events.
type Notifier interface {
	Notify(events []settlement.Event)
}

// DBNotifier writes notification rows outside the business transaction, after
// commit, each on its own short-lived context.
type DBNotifier struct {
	db   settlement.DBTX
	repo *repositories.NotificationRepo
}

func NewDBNotifier(db settlement.DBTX) *DBNotifier {
	return &DBNotifier{db: db, repo: repositories.NewNotificationRepo()}
}

func (n *DBNotifier) Notify(events []settlement.Event) {
	for _, ev := range events {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := n.repo.Insert(ctx, n.db, &models.Notification{
			UserID:  ev.UserID,
			Message: ev.Message,
			Link:    ev.Link,
		})
		cancel()
		if err != nil {
			utils.Logger.WithError(err).WithField("user_id", ev.UserID).Error("failed to insert notification")
		}
	}
}
