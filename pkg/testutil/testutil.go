// Package testutil provides shared helpers for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/sor/pkg/generate"
)

// WriteSorFile writes content to a temp file and returns its path. The file
// is removed when the test finishes.
func WriteSorFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.sor")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// GenerateSorFile writes a deterministic synthetic file and returns its path.
func GenerateSorFile(t *testing.T, rows, cols int, seed int64) string {
	t.Helper()
	opts := generate.Defaults()
	opts.Rows = rows
	opts.Cols = cols
	opts.Seed = seed

	path := filepath.Join(t.TempDir(), "generated.sor")
	require.NoError(t, generate.WriteFile(path, opts))
	return path
}
