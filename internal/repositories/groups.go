package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"splitease/internal/models"
	"splitease/internal/settlement"
)

type GroupRepo struct{}

func NewGroupRepo() *GroupRepo {
	return &GroupRepo{}
}

// GetByID loads a group's metadata. Returns sql.ErrNoRows when the group does
// not exist.
func (r *GroupRepo) GetByID(ctx context.Context, dbtx settlement.DBTX, id int) (*models.Group, error) {
	var g models.Group
	err := dbtx.QueryRowContext(ctx,
		"SELECT id, name, description, created_by, created_at FROM groups WHERE id = ?", id).
		Scan(&g.ID, &g.Name, &g.Description, &g.CreatedBy, &g.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("querying group %d: %w", id, err)
	}
	return &g, nil
}
