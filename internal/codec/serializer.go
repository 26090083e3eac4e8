package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PolarWolf314/conf/internal/document"
)

// Serializer converts between a Document and its on-disk text.
type Serializer interface {
	Marshal(doc document.Document) ([]byte, error)
	Unmarshal(data []byte) (document.Document, error)
}

// Format names accepted by ByName.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// JSON is the default serializer: tab-indented, sorted keys, HTML left
// unescaped.
type JSON struct{}

func (JSON) Marshal(doc document.Document) ([]byte, error) {
	if doc == nil {
		doc = document.Document{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "\t")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func (JSON) Unmarshal(data []byte) (document.Document, error) {
	v, err := document.DecodeJSON(data)
	if err != nil {
		return nil, err
	}
	return asDocument(v)
}

// ByName returns the serializer for a format name or file extension.
func ByName(name string) (Serializer, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "", FormatJSON:
		return JSON{}, nil
	case FormatYAML, "yml":
		return YAML{}, nil
	case FormatTOML:
		return TOML{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (expected json, yaml or toml)", name)
	}
}

func asDocument(v any) (document.Document, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("top-level value must be an object, got %T", v)
	}
	return m, nil
}
