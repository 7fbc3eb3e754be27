package repositories

import (
	"context"
	"fmt"

	"splitease/internal/models"
	"splitease/internal/settlement"
)

type NotificationRepo struct{}

func NewNotificationRepo() *NotificationRepo {
	return &NotificationRepo{}
}

func (r *NotificationRepo) Insert(ctx context.Context, dbtx settlement.DBTX, n *models.Notification) error {
	_, err := dbtx.ExecContext(ctx,
		"INSERT INTO notifications (user_id, message, link, is_read, created_at) VALUES (?, ?, ?, 0, NOW())",
		n.UserID, n.Message, n.Link)
	if err != nil {
		return fmt.Errorf("inserting notification for user %d: %w", n.UserID, err)
	}
	return nil
}
