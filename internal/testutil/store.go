package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/memberreg/internal/store"
)

// DatabasePath returns a fresh database path under t.TempDir.
func DatabasePath(t testing.TB) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "memberreg.db")
}

// OpenStore opens the file-backed store at path and closes it on cleanup.
// Several stores may be opened on one path to act as separate processes.
func OpenStore(t testing.TB, path string) *store.Store {
	t.Helper()
	s, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// OpenMemoryStore opens an in-memory store and closes it on cleanup.
func OpenMemoryStore(t testing.TB) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}
