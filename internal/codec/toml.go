package codec

import (
	"bytes"

	"github.com/BurntSushi/toml"
	"github.com/PolarWolf314/conf/internal/document"
)

// TOML stores the document as a TOML table. TOML has no null, so null
// values are dropped on write.
type TOML struct{}

func (TOML) Marshal(doc document.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(dropNulls(doc)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (TOML) Unmarshal(data []byte) (document.Document, error) {
	raw := map[string]any{}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return document.NormalizeDocument(raw)
}

func dropNulls(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch x := v.(type) {
		case nil:
			continue
		case map[string]any:
			out[k] = dropNulls(x)
		case []any:
			items := make([]any, 0, len(x))
			for _, item := range x {
				if item == nil {
					continue
				}
				if sub, ok := item.(map[string]any); ok {
					item = dropNulls(sub)
				}
				items = append(items, item)
			}
			out[k] = items
		default:
			out[k] = v
		}
	}
	return out
}
