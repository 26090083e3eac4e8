package codec

import (
	"github.com/PolarWolf314/conf/internal/document"
	"gopkg.in/yaml.v3"
)

// YAML stores the document as a YAML mapping. An empty file decodes to an
// empty document.
type YAML struct{}

func (YAML) Marshal(doc document.Document) ([]byte, error) {
	if doc == nil {
		doc = document.Document{}
	}
	return yaml.Marshal(doc)
}

func (YAML) Unmarshal(data []byte) (document.Document, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return document.Document{}, nil
	}
	v, err := document.Normalize(raw)
	if err != nil {
		return nil, err
	}
	return asDocument(v)
}
