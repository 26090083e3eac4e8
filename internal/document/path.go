package document

import "strings"

// SplitPath splits a dot-notation key into segments. `\.` is a literal dot.
func SplitPath(key string) []string {
	if !strings.Contains(key, ".") {
		return []string{key}
	}
	var (
		segs []string
		b    strings.Builder
	)
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c == '\\' && i+1 < len(key) && key[i+1] == '.' {
			b.WriteByte('.')
			i++
			continue
		}
		if c == '.' {
			segs = append(segs, b.String())
			b.Reset()
			continue
		}
		b.WriteByte(c)
	}
	return append(segs, b.String())
}

// Get returns the value at segs. Missing keys and non-object intermediates
// report false.
func Get(doc Document, segs []string) (any, bool) {
	var cur any = doc
	for _, seg := range segs {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Set stores value at segs, creating intermediate objects and replacing any
// non-object value found on the way.
func Set(doc Document, segs []string, value any) {
	cur := doc
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[seg] = next
		}
		cur = next
	}
	cur[segs[len(segs)-1]] = value
}

// Delete removes the value at segs and reports whether it existed.
func Delete(doc Document, segs []string) bool {
	cur := doc
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			return false
		}
		cur = next
	}
	last := segs[len(segs)-1]
	if _, ok := cur[last]; !ok {
		return false
	}
	delete(cur, last)
	return true
}

// TouchesReserved reports whether writing value at segs would modify the
// reserved namespace. An empty segs means a root-level write of value, in
// which case every top-level key of value is checked.
func TouchesReserved(segs []string, value any) bool {
	if len(segs) > 0 {
		return segs[0] == ReservedKey
	}
	m, ok := value.(map[string]any)
	if !ok {
		return false
	}
	for k := range m {
		if k == ReservedKey {
			return true
		}
	}
	return false
}
