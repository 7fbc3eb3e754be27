package settlement

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"splitease/internal/models"
)

// fakeStore is an in-memory Store for engine tests. It ignores the DBTX
// argument entirely; locking semantics are the MySQL implementation's
// concern.
type fakeStore struct {
	nextID int
	rows   map[int]*models.Settlement
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1, rows: map[int]*models.Settlement{}}
}

func (f *fakeStore) seed(s models.Settlement) *models.Settlement {
	s.ID = f.nextID
	f.nextID++
	copied := s
	f.rows[copied.ID] = &copied
	return &copied
}

func (f *fakeStore) GetForUpdate(ctx context.Context, dbtx DBTX, id int) (*models.Settlement, error) {
	s, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (f *fakeStore) GetActivePair(ctx context.Context, dbtx DBTX, groupID, debtor, creditor int) (*models.Settlement, *models.Settlement, error) {
	var forward, reverse *models.Settlement
	for _, id := range f.sortedIDs() {
		s := f.rows[id]
		if s.GroupID != groupID || !s.Status.Active() {
			continue
		}
		if s.PaidBy == debtor && s.PaidTo == creditor {
			copied := *s
			forward = &copied
		}
		if s.PaidBy == creditor && s.PaidTo == debtor {
			copied := *s
			reverse = &copied
		}
	}
	return forward, reverse, nil
}

func (f *fakeStore) Insert(ctx context.Context, dbtx DBTX, s *models.Settlement) error {
	s.ID = f.nextID
	f.nextID++
	copied := *s
	copied.CreatedAt = nowString()
	f.rows[copied.ID] = &copied
	return nil
}

func (f *fakeStore) UpdateAmount(ctx context.Context, dbtx DBTX, id int, amount decimal.Decimal) error {
	f.rows[id].Amount = amount
	f.rows[id].UpdatedAt = nowString()
	return nil
}

func (f *fakeStore) UpdateState(ctx context.Context, dbtx DBTX, id int, paid decimal.Decimal, status models.SettlementStatus, settled bool) error {
	s := f.rows[id]
	s.PartialPaidAmount = paid
	s.Status = status
	s.UpdatedAt = nowString()
	if settled {
		s.SettledAt = nowString()
	}
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, dbtx DBTX, id int) error {
	delete(f.rows, id)
	return nil
}

func (f *fakeStore) sortedIDs() []int {
	ids := make([]int, 0, len(f.rows))
	for id := range f.rows {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func nowString() sql.NullString {
	return sql.NullString{String: time.Now().Format("2006-01-02 15:04:05"), Valid: true}
}
