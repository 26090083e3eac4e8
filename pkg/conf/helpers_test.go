package conf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/PolarWolf314/conf/internal/codec"
	logger "github.com/PolarWolf314/conf/internal/logging"
	"github.com/stretchr/testify/require"
)

// newStore opens a store in a fresh temp directory.
func newStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := New(append([]Option{WithCwd(t.TempDir()), WithLogger(logger.Quiet())}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// openAt opens a store on an existing path.
func openAt(t *testing.T, path string, opts ...Option) (*Store, error) {
	t.Helper()
	s, err := New(append([]Option{WithPath(path), WithLogger(logger.Quiet())}, opts...)...)
	if err == nil {
		t.Cleanup(func() { s.Close() })
	}
	return s, err
}

func storePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "config.json")
}

func writeRaw(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

// readFile decodes the JSON document currently on disk.
func readFile(t *testing.T, path string) Document {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc, err := codec.JSON{}.Unmarshal(data)
	require.NoError(t, err)
	return doc
}
