package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"

	kerrors "github.com/PolarWolf314/conf/internal/errors"
)

// maxDepth bounds recursion so self-referencing maps fail instead of
// overflowing the stack.
const maxDepth = 512

// maxSafeInteger is the largest integer a float64 holds exactly (2^53).
const maxSafeInteger = 1 << 53

// Normalize converts v into the canonical JSON value set: nil, bool, string,
// int64, float64, []any and map[string]any. Integral numbers become int64,
// everything else numeric becomes float64.
func Normalize(v any) (any, error) {
	return normalize(v, "", 0)
}

// NormalizeDocument normalizes every value of doc into a new Document.
func NormalizeDocument(doc map[string]any) (Document, error) {
	out := make(Document, len(doc))
	for k, v := range doc {
		n, err := normalize(v, k, 1)
		if err != nil {
			return nil, err
		}
		out[k] = n
	}
	return out, nil
}

// DecodeJSON decodes a JSON value with numbers kept exact, then normalizes it.
func DecodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return Normalize(v)
}

func normalize(v any, path string, depth int) (any, error) {
	if depth > maxDepth {
		return nil, typeError(path, "value is nested too deeply (cyclic?)")
	}

	switch x := v.(type) {
	case nil:
		return nil, nil
	case bool:
		return x, nil
	case string:
		return x, nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i, nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, typeError(path, fmt.Sprintf("invalid number %q", x.String()))
		}
		return normalizeFloat(f, path)
	case float64:
		return normalizeFloat(x, path)
	case float32:
		return normalizeFloat(float64(x), path)
	case int:
		return int64(x), nil
	case int64:
		return x, nil
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			n, err := normalize(e, joinPath(path, k), depth+1)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			n, err := normalize(e, fmt.Sprintf("%s[%d]", path, i), depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case json.Marshaler:
		return viaJSON(x, path)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return normalize(rv.Elem().Interface(), path, depth+1)
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return float64(u), nil
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		return normalizeFloat(rv.Float(), path)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, typeError(path, fmt.Sprintf("map keys must be strings, got %s", rv.Type().Key()))
		}
		if rv.IsNil() {
			return nil, nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key().String()
			n, err := normalize(iter.Value().Interface(), joinPath(path, k), depth+1)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case reflect.Slice:
		if rv.IsNil() {
			return nil, nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			// []byte encodes as a base64 string, same as encoding/json.
			return viaJSON(v, path)
		}
		fallthrough
	case reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			n, err := normalize(rv.Index(i).Interface(), fmt.Sprintf("%s[%d]", path, i), depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case reflect.Struct:
		return viaJSON(v, path)
	default:
		return nil, typeError(path, fmt.Sprintf("values of type %T cannot be stored", v))
	}
}

func normalizeFloat(f float64, path string) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, typeError(path, fmt.Sprintf("%v is not a valid JSON number", f))
	}
	if f == math.Trunc(f) && math.Abs(f) <= maxSafeInteger {
		return int64(f), nil
	}
	return f, nil
}

func viaJSON(v any, path string) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, typeError(path, err.Error())
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, typeError(path, err.Error())
	}
	return normalize(decoded, path, 0)
}

func typeError(path, msg string) error {
	if path == "" {
		return fmt.Errorf("%w: %s", kerrors.ErrInputType, msg)
	}
	return fmt.Errorf("%w: `%s`: %s", kerrors.ErrInputType, path, msg)
}

func joinPath(prefix, key string) string {
	key = strings.ReplaceAll(key, ".", `\.`)
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
