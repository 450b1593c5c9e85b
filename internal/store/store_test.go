package store

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"inventory/internal/db"
	"inventory/internal/model"
)

// plainHasher keeps store tests independent of bcrypt's cost.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "plain:" + password, nil }

func newTestConn(t *testing.T) (*db.Conn, *sqlx.DB) {
	t.Helper()
	database := db.NewTestDB(t)
	c := db.NewConn(database)
	t.Cleanup(func() { c.Release() })
	return c, database
}

func createTestUser(t *testing.T, c *db.Conn, name string) int64 {
	t.Helper()
	id, err := CreateUser(context.Background(), c, plainHasher{}, name, "password123", false)
	require.NoError(t, err)
	return id
}

func createTestItem(t *testing.T, c *db.Conn, userID int64, name string, quantity int64) int64 {
	t.Helper()
	id, err := CreateItem(context.Background(), c, userID, model.ItemInput{Name: name, Quantity: quantity})
	require.NoError(t, err)
	return id
}

// failInsertsInto makes every insert into table abort, simulating a revision
// write that fails after the primary write succeeded.
func failInsertsInto(t *testing.T, database *sqlx.DB, table string) {
	t.Helper()
	_, err := database.Exec(`CREATE TRIGGER fail_` + table + ` BEFORE INSERT ON ` + table + `
		BEGIN SELECT RAISE(ABORT, 'induced failure'); END`)
	require.NoError(t, err)
}

func countRows(t *testing.T, database *sqlx.DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, database.Get(&n, query, args...))
	return n
}

func strPtr(s string) *string { return &s }
