package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"Simple", "foo", []string{"foo"}},
		{"Nested", "foo.bar.baz", []string{"foo", "bar", "baz"}},
		{"EscapedDot", `foo\.bar`, []string{"foo.bar"}},
		{"MixedEscapes", `a.b\.c.d`, []string{"a", "b.c", "d"}},
		{"Reserved", VersionKey, VersionPath},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SplitPath(tc.input))
		})
	}
}

func TestGetSetDelete(t *testing.T) {
	t.Run("SetCreatesIntermediates", func(t *testing.T) {
		doc := Document{}
		Set(doc, []string{"a", "b", "c"}, int64(1))
		v, ok := Get(doc, []string{"a", "b", "c"})
		require.True(t, ok)
		assert.Equal(t, int64(1), v)
	})

	t.Run("SetReplacesNonObjectIntermediate", func(t *testing.T) {
		doc := Document{"a": "scalar"}
		Set(doc, []string{"a", "b"}, true)
		assert.Equal(t, Document{"a": map[string]any{"b": true}}, doc)
	})

	t.Run("GetThroughScalarFails", func(t *testing.T) {
		doc := Document{"a": "scalar"}
		_, ok := Get(doc, []string{"a", "b"})
		assert.False(t, ok)
	})

	t.Run("DeleteNested", func(t *testing.T) {
		doc := Document{"a": map[string]any{"b": int64(1), "c": int64(2)}}
		assert.True(t, Delete(doc, []string{"a", "b"}))
		assert.False(t, Delete(doc, []string{"a", "b"}))
		assert.Equal(t, Document{"a": map[string]any{"c": int64(2)}}, doc)
	})

	t.Run("NullIsPresent", func(t *testing.T) {
		doc := Document{"a": nil}
		v, ok := Get(doc, []string{"a"})
		assert.True(t, ok)
		assert.Nil(t, v)
	})
}

func TestTouchesReserved(t *testing.T) {
	assert.True(t, TouchesReserved([]string{ReservedKey}, "x"))
	assert.True(t, TouchesReserved(VersionPath, "1.0.0"))
	assert.False(t, TouchesReserved([]string{"a", ReservedKey}, "x"))
	assert.True(t, TouchesReserved(nil, map[string]any{ReservedKey: map[string]any{}}))
	assert.False(t, TouchesReserved(nil, map[string]any{"a": map[string]any{ReservedKey: 1}}))
	assert.False(t, TouchesReserved(SplitPath(`__internal__\.x`), "x"))
}

func TestCloneIsIndependent(t *testing.T) {
	orig := Document{"a": map[string]any{"b": []any{int64(1)}}}
	clone := Clone(orig)
	clone["a"].(map[string]any)["b"] = []any{int64(2)}

	assert.Equal(t, []any{int64(1)}, orig["a"].(map[string]any)["b"])
	assert.NotNil(t, Clone(nil))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(map[string]any{"a": []any{int64(1)}}, map[string]any{"a": []any{int64(1)}}))
	assert.False(t, Equal(int64(1), 1.5))
	assert.True(t, Equal(map[string]any{}, map[string]any(nil)))
	assert.True(t, Equal(nil, nil))
}

func TestKeysSkipsReserved(t *testing.T) {
	doc := Document{"b": 1, "a": 2, ReservedKey: map[string]any{}}
	assert.Equal(t, []string{"a", "b"}, Keys(doc))
}
