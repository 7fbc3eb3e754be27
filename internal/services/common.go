package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"splitease/internal/settlement"
)

// DB wraps the shared connection pool so services can hand out either the
// pool itself or a transaction where the repositories expect a DBTX.
type DB struct {
	conn *sql.DB
}

func NewDB(conn *sql.DB) *DB {
	return &DB{conn: conn}
}

func (d *DB) Conn() settlement.DBTX {
	return d.conn
}

func (d *DB) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return d.conn.BeginTx(ctx, nil)
}

// GenerateReference produces an opaque payment reference for audit trails.
func GenerateReference(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
