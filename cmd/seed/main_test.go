package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runSeed(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSeed_DryRunBuiltIn(t *testing.T) {
	out, err := runSeed(t, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "fixtures valid: 2 users, 4 categories, 4 posts")
}

func TestSeed_DryRunRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("users:\n  - username: a\n    password: b\n    colour: red\n"), 0o600))

	_, err := runSeed(t, "--dry-run", "--file", path)
	assert.Error(t, err)
}

func TestSeed_MemoryDriverRefused(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")

	_, err := runSeed(t)
	assert.ErrorIs(t, err, errVolatileStore)
}

func TestSeed_SQLiteIsIdempotent(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "seed.db"))
	t.Setenv("RESET_DB", "false")

	out, err := runSeed(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Posts created: 4")

	out, err = runSeed(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Posts created: 0")
	assert.Contains(t, out, "Existing records skipped: 10")
}
