package store

import (
	"context"
	"time"

	"inventory/internal/db"
)

var (
	insertRevokedSession = db.Statement{
		Name: "revoking session",
		Mode: db.Mutate,
		SQL:  `INSERT OR IGNORE INTO revoked_sessions (jti, expires_at) VALUES (?, ?)`,
	}
	purgeRevokedSessions = db.Statement{
		Name: "purging revoked sessions",
		Mode: db.Mutate,
		SQL:  `DELETE FROM revoked_sessions WHERE expires_at < ?`,
	}
	countRevokedSession = db.Statement{
		Name: "checking session revocation",
		Mode: db.One,
		SQL:  `SELECT COUNT(*) FROM revoked_sessions WHERE jti = ?`,
	}
)

// RevokeSession adds a session ID to the revocation list. Revoking the same
// session twice is not an error.
func RevokeSession(ctx context.Context, c *db.Conn, jti string, expiresAt time.Time) error {
	if _, err := c.Mutate(ctx, insertRevokedSession, jti, expiresAt.UTC()); err != nil {
		return err
	}

	// Opportunistically clean up expired revocations.
	_, _ = c.Mutate(ctx, purgeRevokedSessions, time.Now().UTC())

	return nil
}

// IsSessionRevoked reports whether a session ID has been revoked.
func IsSessionRevoked(ctx context.Context, c *db.Conn, jti string) (bool, error) {
	var count int
	if err := c.One(ctx, countRevokedSession, &count, jti); err != nil {
		return false, err
	}
	return count > 0, nil
}
