package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// pragmas are applied by the driver to every pooled connection, so a
// connection handed out to a unit-of-work always has foreign keys enabled.
var pragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"foreign_keys(1)",
	"synchronous(NORMAL)",
}

func init() {
	sqlx.BindDriver(DriverName, sqlx.QUESTION)
}

// DSN builds the driver connection string for a database file.
// Write transactions use BEGIN IMMEDIATE so the write lock is taken up front.
func DSN(path string) string {
	params := make([]string, 0, len(pragmas)+1)
	for _, p := range pragmas {
		params = append(params, "_pragma="+p)
	}
	params = append(params, "_txlock=immediate")
	return path + "?" + strings.Join(params, "&")
}

// Open opens the SQLite database pool and checks that it is reachable.
func Open(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open(DriverName, DSN(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, &ConnectionError{Err: err}
	}

	return db, nil
}
