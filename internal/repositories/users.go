package repositories

import (
	"context"
	"fmt"

	"splitease/internal/settlement"
)

type UserRepo struct{}

func NewUserRepo() *UserRepo {
	return &UserRepo{}
}

func (r *UserRepo) GetUsername(ctx context.Context, dbtx settlement.DBTX, userID int) (string, error) {
	var username string
	err := dbtx.QueryRowContext(ctx, "SELECT username FROM users WHERE id = ?", userID).Scan(&username)
	if err != nil {
		return "", fmt.Errorf("looking up username for user %d: %w", userID, err)
	}
	return username, nil
}

func (r *UserRepo) GetEmail(ctx context.Context, dbtx settlement.DBTX, userID int) (string, error) {
	var email string
	err := dbtx.QueryRowContext(ctx, "SELECT email FROM users WHERE id = ?", userID).Scan(&email)
	if err != nil {
		return "", fmt.Errorf("looking up email for user %d: %w", userID, err)
	}
	return email, nil
}
