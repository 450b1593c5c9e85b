package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrNotFound is returned when a requested row does not exist or when an
// update or delete matched zero rows.
var ErrNotFound = errors.New("not found")

// ValidationError reports a caller-supplied value that breaks a domain rule.
// It is always returned before any statement is executed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validation returns a *ValidationError for field.
func Validation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ConnectionError is returned when the database cannot be reached.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("database connection: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// IntegrityKind classifies a constraint violation.
type IntegrityKind int

const (
	IntegrityOther IntegrityKind = iota
	IntegrityUnique
	IntegrityForeignKey
	IntegrityCheck
	IntegrityNotNull
)

func (k IntegrityKind) String() string {
	switch k {
	case IntegrityUnique:
		return "unique"
	case IntegrityForeignKey:
		return "foreign key"
	case IntegrityCheck:
		return "check"
	case IntegrityNotNull:
		return "not null"
	default:
		return "constraint"
	}
}

// IntegrityError wraps a constraint violation reported by the database.
// The driver error stays in the chain.
type IntegrityError struct {
	Kind IntegrityKind
	Op   string
	Err  error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s: %s violation: %v", e.Op, e.Kind, e.Err)
}

func (e *IntegrityError) Unwrap() error { return e.Err }

// IsUniqueViolation reports whether err is a unique or primary key violation.
func IsUniqueViolation(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie) && ie.Kind == IntegrityUnique
}

// IsForeignKeyViolation reports whether err is a foreign key violation.
func IsForeignKeyViolation(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie) && ie.Kind == IntegrityForeignKey
}

// classify converts driver errors into the package taxonomy. Errors that are
// not constraint violations are wrapped with the operation name only.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	if kind, ok := constraintKind(err); ok {
		return &IntegrityError{Kind: kind, Op: op, Err: err}
	}

	return fmt.Errorf("%s: %w", op, err)
}

func constraintKind(err error) (IntegrityKind, bool) {
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		switch serr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return IntegrityUnique, true
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return IntegrityForeignKey, true
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			return IntegrityCheck, true
		case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return IntegrityNotNull, true
		}
		if serr.Code()&0xff != sqlite3.SQLITE_CONSTRAINT {
			return IntegrityOther, false
		}
	}

	// Fall back to the message for errors without an extended code.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"),
		strings.Contains(msg, "PRIMARY KEY constraint failed"):
		return IntegrityUnique, true
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return IntegrityForeignKey, true
	case strings.Contains(msg, "CHECK constraint failed"):
		return IntegrityCheck, true
	case strings.Contains(msg, "NOT NULL constraint failed"):
		return IntegrityNotNull, true
	case strings.Contains(msg, "constraint failed"):
		return IntegrityOther, true
	}
	return IntegrityOther, false
}
