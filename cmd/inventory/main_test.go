package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the root command against a temporary database with a cheap
// bcrypt cost.
func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cfgPath := filepath.Join(dir, "inventory.yaml")
	if _, err := os.Stat(cfgPath); err != nil {
		require.NoError(t, os.WriteFile(cfgPath, []byte("password:\n  bcrypt_cost: 4\n"), 0o600))
	}

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfgPath, "--db", filepath.Join(dir, "test.sqlite3")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestUserLifecycle(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "db", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Database ready")

	out, err = runCLI(t, dir, "user", "create", "alice", "password123")
	require.NoError(t, err)
	assert.Contains(t, out, "User created: alice")
	assert.NotContains(t, out, "Password:")

	out, err = runCLI(t, dir, "user", "create", "bob")
	require.NoError(t, err)
	assert.Contains(t, out, "Password: ")

	_, err = runCLI(t, dir, "user", "create", "alice", "password123")
	assert.ErrorContains(t, err, "already exists")

	_, err = runCLI(t, dir, "user", "create", "carol", "short")
	assert.Error(t, err)

	out, err = runCLI(t, dir, "user", "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	var rows []string
	for _, l := range lines {
		if strings.Contains(l, "alice") || strings.Contains(l, "bob") {
			rows = append(rows, l)
		}
	}
	require.Len(t, rows, 2)
	assert.Contains(t, rows[0], "false")
	assert.Contains(t, rows[1], "true")

	_, err = runCLI(t, dir, "user", "delete", "alice")
	require.NoError(t, err)
	_, err = runCLI(t, dir, "user", "delete", "alice")
	assert.Error(t, err)
}

func TestGeneratePassword(t *testing.T) {
	seen := map[string]bool{}
	for range 10 {
		pw, err := generatePassword(16)
		require.NoError(t, err)
		assert.Len(t, pw, 16)
		assert.False(t, seen[pw], "duplicate password %q", pw)
		seen[pw] = true
	}
}
