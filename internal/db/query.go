package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Mode is the result shape a statement produces.
type Mode int

const (
	// One fetches a single row.
	One Mode = iota + 1
	// All fetches every matching row.
	All
	// Mutate runs an INSERT, UPDATE or DELETE.
	Mutate
)

func (m Mode) String() string {
	switch m {
	case One:
		return "one"
	case All:
		return "all"
	case Mutate:
		return "mutate"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Statement describes one parameterized SQL statement and how its result is read.
// Repositories declare their statements once, next to the code that runs them.
type Statement struct {
	Name string
	Mode Mode
	SQL  string
}

// Result is what a Mutate statement reports.
type Result struct {
	LastInsertID int64
	RowsAffected int64
}

// queryer is satisfied by both *sqlx.Conn and *sqlx.Tx.
type queryer interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// target returns the open transaction if there is one, otherwise the
// unit-of-work connection, which autocommits each statement.
func (c *Conn) target(ctx context.Context) (queryer, error) {
	if c.tx != nil {
		return c.tx, nil
	}
	conn, err := c.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (s Statement) check(want Mode) error {
	if s.Mode != want {
		return fmt.Errorf("%s: statement mode is %s, not %s", s.Name, s.Mode, want)
	}
	return nil
}

// One scans a single row into dest. It returns ErrNotFound when no row matches.
func (c *Conn) One(ctx context.Context, stmt Statement, dest any, args ...any) error {
	if err := stmt.check(One); err != nil {
		return err
	}
	q, err := c.target(ctx)
	if err != nil {
		return err
	}
	return classify(stmt.Name, q.GetContext(ctx, dest, stmt.SQL, args...))
}

// All scans every matching row into dest, which must point to a slice.
// The slice is left untouched when nothing matches.
func (c *Conn) All(ctx context.Context, stmt Statement, dest any, args ...any) error {
	if err := stmt.check(All); err != nil {
		return err
	}
	q, err := c.target(ctx)
	if err != nil {
		return err
	}
	return classify(stmt.Name, q.SelectContext(ctx, dest, stmt.SQL, args...))
}

// Mutate executes a write. Inside a transaction scope the commit is deferred
// to the scope; otherwise the statement commits on its own.
func (c *Conn) Mutate(ctx context.Context, stmt Statement, args ...any) (Result, error) {
	if err := stmt.check(Mutate); err != nil {
		return Result{}, err
	}
	q, err := c.target(ctx)
	if err != nil {
		return Result{}, err
	}

	res, err := q.ExecContext(ctx, stmt.SQL, args...)
	if err != nil {
		return Result{}, classify(stmt.Name, err)
	}

	var out Result
	if out.LastInsertID, err = res.LastInsertId(); err != nil {
		return Result{}, fmt.Errorf("%s: getting last insert id: %w", stmt.Name, err)
	}
	if out.RowsAffected, err = res.RowsAffected(); err != nil {
		return Result{}, fmt.Errorf("%s: getting affected rows: %w", stmt.Name, err)
	}
	return out, nil
}
