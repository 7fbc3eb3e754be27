package repositories

import (
	"context"
	"fmt"

	"splitease/internal/settlement"
)

type MemberRepo struct{}

func NewMemberRepo() *MemberRepo {
	return &MemberRepo{}
}

// GroupMemberIDs returns the user ids of every member of the group in
// ascending order. The split engine depends on this ordering to keep
// rounding-remainder assignment stable.
func (r *MemberRepo) GroupMemberIDs(ctx context.Context, dbtx settlement.DBTX, groupID int) ([]int, error) {
	rows, err := dbtx.QueryContext(ctx,
		"SELECT user_id FROM group_members WHERE group_id = ? ORDER BY user_id", groupID)
	if err != nil {
		return nil, fmt.Errorf("listing members of group %d: %w", groupID, err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning member id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *MemberRepo) IsMember(ctx context.Context, dbtx settlement.DBTX, groupID, userID int) (bool, error) {
	var n int
	err := dbtx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM group_members WHERE group_id = ? AND user_id = ?", groupID, userID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking membership of user %d in group %d: %w", userID, groupID, err)
	}
	return n > 0, nil
}
