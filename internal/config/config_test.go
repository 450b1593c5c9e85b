package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp runs the test from an empty directory so no stray inventory.yaml
// or .env is picked up.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("INVENTORY_CONFIG", "")
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, path, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAML(t *testing.T) {
	dir := chdirTemp(t)
	file := filepath.Join(dir, "custom.yaml")
	writeFile(t, file, `
database:
  path: /var/lib/inventory/db.sqlite3
server:
  addr: 127.0.0.1:9000
session:
  ttl: 12h
  secure_cookie: true
password:
  bcrypt_cost: 10
`)

	cfg, path, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, file, path)
	assert.Equal(t, "/var/lib/inventory/db.sqlite3", cfg.Database.Path)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 12*time.Hour, cfg.Session.TTL)
	assert.True(t, cfg.Session.SecureCookie)
	assert.Equal(t, 10, cfg.Password.BcryptCost)
}

func TestLoadFindsDefaultFile(t *testing.T) {
	dir := chdirTemp(t)
	writeFile(t, filepath.Join(dir, DefaultPath), "server:\n  addr: :7000\n")

	cfg, path, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPath, path)
	assert.Equal(t, ":7000", cfg.Server.Addr)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	chdirTemp(t)

	_, _, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := chdirTemp(t)
	writeFile(t, filepath.Join(dir, DefaultPath), "server:\n  addr: :7000\n")
	t.Setenv("INVENTORY_ADDR", ":7100")
	t.Setenv("INVENTORY_DB", "env.sqlite3")
	t.Setenv("INVENTORY_SECURE_COOKIE", "true")

	cfg, _, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7100", cfg.Server.Addr)
	assert.Equal(t, "env.sqlite3", cfg.Database.Path)
	assert.True(t, cfg.Session.SecureCookie)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv("INVENTORY_SESSION_SECRET", "")
	os.Unsetenv("INVENTORY_SESSION_SECRET")
	writeFile(t, filepath.Join(dir, ".env"), "INVENTORY_SESSION_SECRET=from-dotenv\n")

	cfg, _, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Session.Secret)
}

func TestLoadInvalid(t *testing.T) {
	dir := chdirTemp(t)
	file := filepath.Join(dir, "bad.yaml")

	writeFile(t, file, "session:\n  ttl: -1h\n")
	_, _, err := Load(file)
	assert.ErrorContains(t, err, "session.ttl")

	writeFile(t, file, "server: [not, a, map]\n")
	_, _, err = Load(file)
	assert.Error(t, err)

	t.Setenv("INVENTORY_SECURE_COOKIE", "maybe")
	_, _, err = Load("")
	assert.ErrorContains(t, err, "INVENTORY_SECURE_COOKIE")
}
