package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"inventory/internal/db"
	"inventory/internal/model"
)

// PasswordHasher turns a plaintext password into a storable hash.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

const userColumns = `id, username, password_hash, created_at, last_login, password_reset_required`

var (
	insertUser = db.Statement{
		Name: "inserting user",
		Mode: db.Mutate,
		SQL: `INSERT INTO user (username, password_hash, created_at, password_reset_required)
		      VALUES (?, ?, ?, ?)`,
	}
	selectUserByName = db.Statement{
		Name: "getting user by name",
		Mode: db.One,
		SQL:  `SELECT ` + userColumns + ` FROM user WHERE username = ?`,
	}
	selectUserByID = db.Statement{
		Name: "getting user",
		Mode: db.One,
		SQL:  `SELECT ` + userColumns + ` FROM user WHERE id = ?`,
	}
	selectUsers = db.Statement{
		Name: "listing users",
		Mode: db.All,
		SQL:  `SELECT ` + userColumns + ` FROM user ORDER BY id`,
	}
	deleteUserByName = db.Statement{
		Name: "deleting user",
		Mode: db.Mutate,
		SQL:  `DELETE FROM user WHERE username = ?`,
	}
	updateUserPassword = db.Statement{
		Name: "updating user password",
		Mode: db.Mutate,
		SQL:  `UPDATE user SET password_hash = ? WHERE id = ?`,
	}
	clearPasswordReset = db.Statement{
		Name: "clearing password reset flag",
		Mode: db.Mutate,
		SQL:  `UPDATE user SET password_reset_required = 0 WHERE id = ?`,
	}
	updateUserLastLogin = db.Statement{
		Name: "updating last login",
		Mode: db.Mutate,
		SQL:  `UPDATE user SET last_login = ? WHERE id = ?`,
	}
)

func hashNewPassword(h PasswordHasher, password string) (string, error) {
	if err := model.ValidatePassword(password); err != nil {
		return "", db.Validation("password", "%v", err)
	}
	return h.Hash(password)
}

// CreateUser validates and hashes the password and inserts the account.
// A taken username surfaces as a unique *db.IntegrityError.
func CreateUser(ctx context.Context, c *db.Conn, h PasswordHasher, username, password string, resetRequired bool) (int64, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return 0, db.Validation("username", "must not be empty")
	}

	hash, err := hashNewPassword(h, password)
	if err != nil {
		return 0, err
	}

	res, err := c.Mutate(ctx, insertUser, username, hash, time.Now().UTC(), resetRequired)
	if err != nil {
		return 0, err
	}
	return res.LastInsertID, nil
}

// GetUserByName returns the account with the given username.
func GetUserByName(ctx context.Context, c *db.Conn, username string) (*model.User, error) {
	u := &model.User{}
	if err := c.One(ctx, selectUserByName, u, username); err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByID returns the account with the given ID.
func GetUserByID(ctx context.Context, c *db.Conn, id int64) (*model.User, error) {
	u := &model.User{}
	if err := c.One(ctx, selectUserByID, u, id); err != nil {
		return nil, err
	}
	return u, nil
}

// ListUsers returns all accounts ordered by ID.
func ListUsers(ctx context.Context, c *db.Conn) ([]model.User, error) {
	users := []model.User{}
	if err := c.All(ctx, selectUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteUserByName removes an account. Accounts that authored revisions or
// comments cannot be removed and surface a foreign key *db.IntegrityError.
func DeleteUserByName(ctx context.Context, c *db.Conn, username string) error {
	res, err := c.Mutate(ctx, deleteUserByName, username)
	if err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %q: %w", username, db.ErrNotFound)
	}
	return nil
}

// UpdateUserPassword validates, hashes and stores a new password.
func UpdateUserPassword(ctx context.Context, c *db.Conn, h PasswordHasher, id int64, password string) error {
	hash, err := hashNewPassword(h, password)
	if err != nil {
		return err
	}
	return updateByID(ctx, c, updateUserPassword, hash, id)
}

// ClearPasswordResetRequired marks that the user has chosen their own password.
func ClearPasswordResetRequired(ctx context.Context, c *db.Conn, id int64) error {
	return updateByID(ctx, c, clearPasswordReset, id)
}

// UpdateUserLastLogin records a successful sign-in.
func UpdateUserLastLogin(ctx context.Context, c *db.Conn, id int64) error {
	return updateByID(ctx, c, updateUserLastLogin, time.Now().UTC(), id)
}

func updateByID(ctx context.Context, c *db.Conn, stmt db.Statement, args ...any) error {
	res, err := c.Mutate(ctx, stmt, args...)
	if err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", stmt.Name, db.ErrNotFound)
	}
	return nil
}
