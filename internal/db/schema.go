package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS user (
    id                      INTEGER PRIMARY KEY,
    username                TEXT NOT NULL UNIQUE,
    password_hash           TEXT NOT NULL,
    created_at              DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    last_login              DATETIME,
    password_reset_required INTEGER NOT NULL DEFAULT 1 CHECK (password_reset_required IN (0, 1))
);

CREATE TABLE IF NOT EXISTS item (
    id          INTEGER PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT,
    quantity    INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
    unit        TEXT,
    is_deleted  INTEGER NOT NULL DEFAULT 0 CHECK (is_deleted IN (0, 1))
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_item_name_active
    ON item(name) WHERE is_deleted = 0;

CREATE TABLE IF NOT EXISTS item_revision (
    id          INTEGER PRIMARY KEY,
    user_id     INTEGER NOT NULL REFERENCES user(id),
    created_at  DATETIME NOT NULL,
    item_id     INTEGER NOT NULL REFERENCES item(id) ON DELETE CASCADE,
    name        TEXT NOT NULL,
    description TEXT,
    quantity    INTEGER NOT NULL,
    unit        TEXT,
    is_deleted  INTEGER NOT NULL CHECK (is_deleted IN (0, 1))
);

CREATE INDEX IF NOT EXISTS idx_item_revision_item ON item_revision(item_id);

CREATE TABLE IF NOT EXISTS item_comment (
    id         INTEGER PRIMARY KEY,
    user_id    INTEGER NOT NULL REFERENCES user(id),
    item_id    INTEGER NOT NULL REFERENCES item(id) ON DELETE CASCADE,
    text       TEXT NOT NULL,
    is_deleted INTEGER NOT NULL DEFAULT 0 CHECK (is_deleted IN (0, 1))
);

CREATE INDEX IF NOT EXISTS idx_item_comment_item ON item_comment(item_id);

CREATE TABLE IF NOT EXISTS item_comment_revision (
    id              INTEGER PRIMARY KEY,
    user_id         INTEGER NOT NULL REFERENCES user(id),
    created_at      DATETIME NOT NULL,
    item_comment_id INTEGER NOT NULL REFERENCES item_comment(id) ON DELETE CASCADE,
    text            TEXT NOT NULL,
    is_deleted      INTEGER NOT NULL CHECK (is_deleted IN (0, 1))
);

CREATE INDEX IF NOT EXISTS idx_item_comment_revision_comment
    ON item_comment_revision(item_comment_id);

CREATE TABLE IF NOT EXISTS item_tag (
    id   INTEGER PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS item_tag_junction (
    item_id     INTEGER NOT NULL REFERENCES item(id) ON DELETE CASCADE,
    item_tag_id INTEGER NOT NULL REFERENCES item_tag(id) ON DELETE CASCADE,
    PRIMARY KEY (item_id, item_tag_id)
);

CREATE TABLE IF NOT EXISTS item_image (
    item_id    INTEGER PRIMARY KEY REFERENCES item(id) ON DELETE CASCADE,
    data       BLOB NOT NULL,
    mime       TEXT NOT NULL,
    width      INTEGER NOT NULL,
    height     INTEGER NOT NULL,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_sessions (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
