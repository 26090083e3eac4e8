package migrate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/PolarWolf314/conf/internal/document"
	kerrors "github.com/PolarWolf314/conf/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type docAccessor struct {
	doc document.Document
}

func (a *docAccessor) Get(key string) (any, error) {
	v, _ := document.Get(a.doc, document.SplitPath(key))
	return v, nil
}

func (a *docAccessor) Has(key string) (bool, error) {
	_, ok := document.Get(a.doc, document.SplitPath(key))
	return ok, nil
}

func (a *docAccessor) Set(key string, value any) error {
	document.Set(a.doc, document.SplitPath(key), value)
	return nil
}

func (a *docAccessor) Delete(key string) error {
	document.Delete(a.doc, document.SplitPath(key))
	return nil
}

const samplePlan = `
migrations:
  "1.0.0":
    - op: rename
      key: colour
      to: ui.color
    - op: set
      key: ui.size
      value: 12
  "<2.0.0":
    - op: delete
      key: legacy
`

func TestParsePlan(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		p, err := ParsePlan([]byte(samplePlan))
		require.NoError(t, err)
		assert.Equal(t, []string{"1.0.0", "<2.0.0"}, p.Descriptors())
		assert.Equal(t, int64(12), p.Migrations["1.0.0"][1].Value)
	})

	t.Run("UnknownOperation", func(t *testing.T) {
		_, err := ParsePlan([]byte("migrations:\n  \"1.0.0\":\n    - op: copy\n      key: a\n"))
		assert.ErrorIs(t, err, kerrors.ErrInputType)
	})

	t.Run("RenameWithoutTarget", func(t *testing.T) {
		_, err := ParsePlan([]byte("migrations:\n  \"1.0.0\":\n    - op: rename\n      key: a\n"))
		assert.ErrorIs(t, err, kerrors.ErrInputType)
	})

	t.Run("BadDescriptor", func(t *testing.T) {
		_, err := ParsePlan([]byte("migrations:\n  \"soon\":\n    - op: delete\n      key: a\n"))
		assert.ErrorIs(t, err, kerrors.ErrInvalidVersion)
	})

	t.Run("MalformedYAML", func(t *testing.T) {
		_, err := ParsePlan([]byte("migrations: ["))
		assert.Error(t, err)
	})
}

func TestPlanApply(t *testing.T) {
	p, err := ParsePlan([]byte(samplePlan))
	require.NoError(t, err)

	acc := &docAccessor{doc: document.Document{"colour": "red", "legacy": true}}
	require.NoError(t, p.Apply("1.0.0", acc))
	require.NoError(t, p.Apply("<2.0.0", acc))

	assert.Equal(t, document.Document{
		"ui": map[string]any{"color": "red", "size": int64(12)},
	}, acc.doc)

	t.Run("RenameOfMissingKeyIsNoop", func(t *testing.T) {
		acc := &docAccessor{doc: document.Document{}}
		require.NoError(t, p.Apply("1.0.0", acc))
		assert.Equal(t, document.Document{"ui": map[string]any{"size": int64(12)}}, acc.doc)
	})
}

func TestLoadPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	if err := os.WriteFile(path, []byte(samplePlan), 0600); err != nil {
		t.Fatalf("Failed to write plan: %v", err)
	}
	p, err := LoadPlan(path)
	require.NoError(t, err)
	assert.Len(t, p.Migrations, 2)

	_, err = LoadPlan(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
