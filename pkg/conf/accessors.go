package conf

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"

	"github.com/PolarWolf314/conf/internal/audit"
	"github.com/PolarWolf314/conf/internal/document"
	kerrors "github.com/PolarWolf314/conf/internal/errors"
	"github.com/imdario/mergo"
)

// maxMutateAttempts bounds how often Mutate recomputes a value that keeps
// changing underneath it.
const maxMutateAttempts = 16

func (s *Store) segments(key string) []string {
	if s.opts.dotNotation {
		return document.SplitPath(key)
	}
	return []string{key}
}

func (s *Store) checkWritable(key string, segs []string) error {
	if key == document.ReservedKey || strings.HasPrefix(key, document.ReservedKey+".") || document.TouchesReserved(segs, nil) {
		return fmt.Errorf("%w: %q", kerrors.ErrReservedKey, key)
	}
	return nil
}

// update runs fn on a private copy of the document and writes it back when fn
// reports a change. Subscribers are notified after the lock is released.
func (s *Store) update(fn func(doc Document) (bool, error)) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	s.opMu.Lock()
	doc, err := s.read()
	changed := false
	if err == nil {
		changed, err = fn(doc)
		if err == nil && changed {
			err = s.write(doc)
		}
	}
	s.opMu.Unlock()

	if err != nil {
		return err
	}
	if changed {
		s.emit()
	}
	return nil
}

// Get returns the value at key, or nil when it is missing.
func (s *Store) Get(key string) (any, error) {
	v, _, err := s.lookup(key)
	return v, err
}

// GetOr returns the value at key, or def when it is missing. A stored null is
// not missing.
func (s *Store) GetOr(key string, def any) (any, error) {
	v, ok, err := s.lookup(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// Has reports whether key exists. A stored null exists.
func (s *Store) Has(key string) (bool, error) {
	_, ok, err := s.lookup(key)
	return ok, err
}

func (s *Store) lookup(key string) (any, bool, error) {
	if err := s.checkOpen(); err != nil {
		return nil, false, err
	}
	doc, err := s.read()
	if err != nil {
		return nil, false, err
	}
	v, ok := document.Get(doc, s.segments(key))
	return v, ok, nil
}

// Set stores value at key, creating intermediate objects as needed.
func (s *Store) Set(key string, value any) error {
	segs := s.segments(key)
	if err := s.checkWritable(key, segs); err != nil {
		return err
	}
	v, err := document.Normalize(value)
	if err != nil {
		return err
	}
	return s.update(func(doc Document) (bool, error) {
		document.Set(doc, segs, v)
		return true, nil
	})
}

// SetMany stores several keys in one write.
func (s *Store) SetMany(values map[string]any) error {
	type entry struct {
		segs  []string
		value any
	}
	entries := make([]entry, 0, len(values))
	for _, key := range sortedKeys(values) {
		segs := s.segments(key)
		if err := s.checkWritable(key, segs); err != nil {
			return err
		}
		v, err := document.Normalize(values[key])
		if err != nil {
			return err
		}
		entries = append(entries, entry{segs: segs, value: v})
	}
	return s.update(func(doc Document) (bool, error) {
		for _, e := range entries {
			document.Set(doc, e.segs, e.value)
		}
		return true, nil
	})
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	segs := s.segments(key)
	if err := s.checkWritable(key, segs); err != nil {
		return err
	}
	return s.update(func(doc Document) (bool, error) {
		return document.Delete(doc, segs), nil
	})
}

// Clear replaces the document with the defaults. Migration state is kept.
func (s *Store) Clear() error {
	err := s.update(func(doc Document) (bool, error) {
		reserved, hasReserved := doc[document.ReservedKey]
		for k := range doc {
			delete(doc, k)
		}
		for k, v := range document.Clone(s.defaults) {
			doc[k] = v
		}
		if hasReserved {
			doc[document.ReservedKey] = reserved
		}
		return true, nil
	})
	if err == nil {
		s.journal.Log(audit.Entry{Operation: audit.OpClear, Store: s.path})
	}
	return err
}

// Reset restores keys to their defaults. Keys without a default are left
// alone.
func (s *Store) Reset(keys ...string) error {
	var reset []string
	err := s.update(func(doc Document) (bool, error) {
		for _, key := range keys {
			def, ok := s.defaults[key]
			if !ok || key == document.ReservedKey {
				continue
			}
			document.Set(doc, s.segments(key), document.CloneValue(def))
			reset = append(reset, key)
		}
		return len(reset) > 0, nil
	})
	if err == nil && len(reset) > 0 {
		s.journal.Log(audit.Entry{Operation: audit.OpReset, Store: s.path, Keys: reset})
	}
	return err
}

// AppendToArray appends value to the array at key. A missing key starts a
// new array.
func (s *Store) AppendToArray(key string, value any) error {
	segs := s.segments(key)
	if err := s.checkWritable(key, segs); err != nil {
		return err
	}
	v, err := document.Normalize(value)
	if err != nil {
		return err
	}
	return s.update(func(doc Document) (bool, error) {
		current, ok := document.Get(doc, segs)
		if !ok {
			document.Set(doc, segs, []any{v})
			return true, nil
		}
		arr, isArray := current.([]any)
		if !isArray {
			return false, fmt.Errorf("%w: %q holds %T", kerrors.ErrNotArray, key, current)
		}
		document.Set(doc, segs, append(arr, v))
		return true, nil
	})
}

// Merge merges obj into the object at key; values in obj win. A missing key
// is set to obj.
func (s *Store) Merge(key string, obj map[string]any) error {
	segs := s.segments(key)
	if err := s.checkWritable(key, segs); err != nil {
		return err
	}
	normalized, err := document.NormalizeDocument(obj)
	if err != nil {
		return err
	}
	return s.update(func(doc Document) (bool, error) {
		current, ok := document.Get(doc, segs)
		if !ok {
			document.Set(doc, segs, map[string]any(normalized))
			return true, nil
		}
		target, isObject := current.(map[string]any)
		if !isObject {
			return false, fmt.Errorf("%w: %q holds %T", kerrors.ErrNotObject, key, current)
		}
		if err := mergo.Merge(&target, map[string]any(normalized), mergo.WithOverride); err != nil {
			return false, fmt.Errorf("failed to merge into %q: %w", key, err)
		}
		document.Set(doc, segs, target)
		return true, nil
	})
}

// Mutate replaces the value at key with fn's result. fn receives a copy of
// the current value (nil when missing) and may be called again if another
// writer changes the value while fn runs.
func (s *Store) Mutate(key string, fn func(current any) (any, error)) error {
	segs := s.segments(key)
	if err := s.checkWritable(key, segs); err != nil {
		return err
	}

	for attempt := 0; attempt < maxMutateAttempts; attempt++ {
		before, err := s.Get(key)
		if err != nil {
			return err
		}
		next, err := fn(document.CloneValue(before))
		if err != nil {
			return err
		}
		v, err := document.Normalize(next)
		if err != nil {
			return err
		}

		stale := false
		err = s.update(func(doc Document) (bool, error) {
			current, _ := document.Get(doc, segs)
			if !document.Equal(current, before) {
				stale = true
				return false, nil
			}
			document.Set(doc, segs, v)
			return true, nil
		})
		if err != nil || !stale {
			return err
		}
	}
	return fmt.Errorf("%w: %q", kerrors.ErrConflict, key)
}

// Store returns a copy of the whole document, migration state included.
func (s *Store) Store() (Document, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	return s.read()
}

// SetStore replaces the whole document. When doc has no migration state, the
// state already on disk is carried over.
func (s *Store) SetStore(doc map[string]any) error {
	next, err := document.NormalizeDocument(doc)
	if err != nil {
		return err
	}
	if err := s.checkOpen(); err != nil {
		return err
	}

	if _, ok := next[document.ReservedKey]; !ok {
		reserved, ok, err := s.persistedReserved()
		if err != nil {
			return err
		}
		if ok {
			next[document.ReservedKey] = reserved
		}
	}

	return s.update(func(current Document) (bool, error) {
		for k := range current {
			delete(current, k)
		}
		for k, v := range next {
			current[k] = v
		}
		return true, nil
	})
}

// persistedReserved reads the migration state from the file, or from memory
// while a coalesced flush has not reached the file yet.
func (s *Store) persistedReserved() (any, bool, error) {
	s.mu.Lock()
	if s.pending && s.cache != nil {
		v, ok := s.cache[document.ReservedKey]
		s.mu.Unlock()
		return document.CloneValue(v), ok, nil
	}
	s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, false, err
	}
	v, ok := doc[document.ReservedKey]
	return v, ok, nil
}

// All iterates over the top-level entries in key order, skipping migration
// state. The values are a snapshot taken when All is called.
func (s *Store) All() (iter.Seq2[string, any], error) {
	doc, err := s.Store()
	if err != nil {
		return nil, err
	}
	keys := document.Keys(doc)
	return func(yield func(string, any) bool) {
		for _, k := range keys {
			if !yield(k, doc[k]) {
				return
			}
		}
	}, nil
}

// Size returns the number of top-level entries, skipping migration state.
func (s *Store) Size() (int, error) {
	doc, err := s.Store()
	if err != nil {
		return 0, err
	}
	return len(document.Keys(doc)), nil
}

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}
