package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/PolarWolf314/conf/internal/document"
	kerrors "github.com/PolarWolf314/conf/internal/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const resourceName = "conf-schema.json"

// JSONSchema validates documents against a JSON Schema whose root is always
// an object.
type JSONSchema struct {
	compiled   *jsonschema.Schema
	properties map[string]any
}

// NewJSONSchema compiles properties (the schema of each top-level key) into a
// root object schema. root may add further keywords such as required or
// additionalProperties; its type is forced to object.
func NewJSONSchema(properties, root map[string]any) (*JSONSchema, error) {
	decl := map[string]any{}
	for k, v := range root {
		decl[k] = v
	}
	decl["type"] = "object"
	if properties != nil {
		decl["properties"] = properties
	}

	raw, err := json.Marshal(decl)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidSchema, err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(resourceName, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidSchema, err)
	}
	compiled, err := compiler.Compile(resourceName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidSchema, err)
	}

	return &JSONSchema{compiled: compiled, properties: properties}, nil
}

func (s *JSONSchema) Validate(doc document.Document) ([]Violation, error) {
	instance, err := toInstance(doc)
	if err != nil {
		return nil, err
	}

	err = s.compiled.Validate(instance)
	if err == nil {
		return nil, nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return nil, err
	}

	var violations []Violation
	collectLeaves(verr, &violations)
	sort.SliceStable(violations, func(i, j int) bool {
		return violations[i].Path < violations[j].Path
	})
	return violations, nil
}

// Defaults returns the default of every top-level property that declares one.
func (s *JSONSchema) Defaults() (document.Document, error) {
	out := document.Document{}
	for key, prop := range s.properties {
		m, ok := prop.(map[string]any)
		if !ok {
			continue
		}
		def, ok := m["default"]
		if !ok {
			continue
		}
		v, err := document.Normalize(def)
		if err != nil {
			return nil, fmt.Errorf("%w: default of %q: %v", kerrors.ErrInvalidSchema, key, err)
		}
		out[key] = v
	}
	return out, nil
}

// toInstance re-encodes doc the way the validator expects: plain
// encoding/json values with numbers as json.Number.
func toInstance(doc document.Document) (any, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func collectLeaves(e *jsonschema.ValidationError, out *[]Violation) {
	if len(e.Causes) == 0 {
		*out = append(*out, Violation{
			Path:    strings.TrimPrefix(e.InstanceLocation, "/"),
			Message: e.Message,
		})
		return
	}
	for _, c := range e.Causes {
		collectLeaves(c, out)
	}
}
