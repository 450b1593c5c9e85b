package model

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// User is an account that can sign in and edit the inventory.
type User struct {
	ID                    int64      `json:"id" db:"id"`
	Username              string     `json:"username" db:"username"`
	PasswordHash          string     `json:"-" db:"password_hash"`
	CreatedAt             time.Time  `json:"created_at" db:"created_at"`
	LastLogin             *time.Time `json:"last_login,omitempty" db:"last_login"`
	PasswordResetRequired bool       `json:"password_reset_required" db:"password_reset_required"`
}

const (
	// MinPasswordLength is the shortest password accepted, in characters.
	MinPasswordLength = 8
	// MaxPasswordBytes is the longest password bcrypt can hash.
	MaxPasswordBytes = 72
)

// ValidatePassword checks a new password against the length policy.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("password must be at most %d bytes", MaxPasswordBytes)
	}
	return nil
}
