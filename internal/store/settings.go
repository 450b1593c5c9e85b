package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"inventory/internal/db"
)

var (
	insertSettingIfAbsent = db.Statement{
		Name: "storing setting",
		Mode: db.Mutate,
		SQL:  `INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`,
	}
	selectSetting = db.Statement{
		Name: "getting setting",
		Mode: db.One,
		SQL:  `SELECT value FROM settings WHERE key = ?`,
	}
)

const sessionSecretKey = "session_secret"

// GetSessionSecret returns the session signing secret, generating and storing
// one on first use. Insert-or-ignore followed by a read keeps concurrent
// first starts agreeing on a single value.
func GetSessionSecret(ctx context.Context, c *db.Conn) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating session secret: %w", err)
	}

	if _, err := c.Mutate(ctx, insertSettingIfAbsent, sessionSecretKey, hex.EncodeToString(buf)); err != nil {
		return "", err
	}

	var secret string
	if err := c.One(ctx, selectSetting, &secret, sessionSecretKey); err != nil {
		return "", err
	}
	return secret, nil
}
