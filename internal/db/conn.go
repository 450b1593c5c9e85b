package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// Conn is a unit-of-work handle: it holds at most one pooled connection and at
// most one open transaction. A Conn is not safe for concurrent use; create one
// per request or task and Release it when the work is done.
type Conn struct {
	db   *sqlx.DB
	conn *sqlx.Conn
	tx   *sqlx.Tx
}

// NewConn returns a unit-of-work handle backed by the pool. No connection is
// taken from the pool until the first statement runs.
func NewConn(db *sqlx.DB) *Conn {
	return &Conn{db: db}
}

// Acquire returns the unit-of-work connection, taking it from the pool on first use.
func (c *Conn) Acquire(ctx context.Context) (*sqlx.Conn, error) {
	if c.conn != nil {
		return c.conn, nil
	}

	conn, err := c.db.Connx(ctx)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	c.conn = conn
	return conn, nil
}

// InTransaction reports whether a transaction scope is currently open.
func (c *Conn) InTransaction() bool {
	return c.tx != nil
}

// Transaction runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back when fn returns an error or panics; the error is
// returned unchanged and a panic is re-raised after the rollback.
//
// Calls nested inside an open scope join it: fn runs directly and the
// outermost call decides whether to commit.
func (c *Conn) Transaction(ctx context.Context, fn func() error) error {
	if c.tx != nil {
		return fn()
	}

	conn, err := c.Acquire(ctx)
	if err != nil {
		return err
	}

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	c.tx = tx

	defer func() {
		if p := recover(); p != nil {
			c.tx = nil
			rollback(tx, fmt.Errorf("panic: %v", p))
			panic(p)
		}
	}()

	if err := fn(); err != nil {
		c.tx = nil
		rollback(tx, err)
		return err
	}

	c.tx = nil
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func rollback(tx *sqlx.Tx, cause error) {
	// A cancelled context has already rolled the transaction back.
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		slog.Error("failed to roll back transaction", "error", err, "cause", cause)
	}
}

// Release rolls back a dangling transaction and returns the connection to the
// pool. Calling Release more than once is a no-op.
func (c *Conn) Release() error {
	if c.tx != nil {
		rollback(c.tx, fmt.Errorf("released with open transaction"))
		c.tx = nil
	}
	if c.conn == nil {
		return nil
	}

	err := c.conn.Close()
	c.conn = nil
	if err != nil {
		return fmt.Errorf("releasing connection: %w", err)
	}
	return nil
}
