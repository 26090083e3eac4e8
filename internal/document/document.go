package document

import (
	"sort"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/mitchellh/copystructure"
)

// Document is the root object of a stored configuration.
type Document = map[string]any

const (
	// ReservedKey is the top-level namespace owned by the migration engine.
	ReservedKey = "__internal__"

	// VersionKey is the dot path holding the last applied migration version.
	VersionKey = ReservedKey + ".migrations.version"
)

// VersionPath is VersionKey split into segments.
var VersionPath = []string{ReservedKey, "migrations", "version"}

// Clone returns a deep, independent copy of doc. A nil doc clones to an
// empty one.
func Clone(doc Document) Document {
	if doc == nil {
		return Document{}
	}
	return copystructure.Must(copystructure.Copy(doc)).(map[string]any)
}

// CloneValue returns a deep copy of a normalized value.
func CloneValue(v any) any {
	if v == nil {
		return nil
	}
	return copystructure.Must(copystructure.Copy(v))
}

// Equal reports whether two normalized values are deeply equal. Empty and
// nil containers compare equal.
func Equal(a, b any) bool {
	return cmp.Equal(a, b, cmpopts.EquateEmpty())
}

// Keys returns the top-level keys of doc in sorted order, without ReservedKey.
func Keys(doc Document) []string {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		if k == ReservedKey {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
