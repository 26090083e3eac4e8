package schema

import (
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/PolarWolf314/conf/internal/document"
	kerrors "github.com/PolarWolf314/conf/internal/errors"
)

// CUE validates documents by unifying them with a CUE value. Marked defaults
// (`port: int | *8080`) are reported by Defaults.
type CUE struct {
	// cue.Context is not safe for concurrent use.
	mu     sync.Mutex
	ctx    *cue.Context
	schema cue.Value
}

// NewCUE compiles src.
func NewCUE(src string) (*CUE, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidSchema, err)
	}
	if v.IncompleteKind() != cue.StructKind {
		return nil, fmt.Errorf("%w: root must be a struct", kerrors.ErrInvalidSchema)
	}
	return &CUE{ctx: ctx, schema: v}, nil
}

func (c *CUE) Validate(doc document.Document) ([]Violation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data := c.ctx.Encode(map[string]any(doc))
	if err := data.Err(); err != nil {
		return nil, err
	}
	err := c.schema.Unify(data).Validate(cue.Concrete(true))
	if err == nil {
		return nil, nil
	}

	var violations []Violation
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		violations = append(violations, Violation{
			Path:    strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
		})
	}
	return violations, nil
}

func (c *CUE) Defaults() (document.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, err := c.schema.Fields(cue.Optional(true))
	if err != nil {
		return nil, err
	}
	out := document.Document{}
	for it.Next() {
		def, ok := it.Value().Default()
		if !ok || !def.IsConcrete() {
			continue
		}
		var raw any
		if err := def.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: default of %q: %v", kerrors.ErrInvalidSchema, it.Selector().Unquoted(), err)
		}
		v, err := document.Normalize(raw)
		if err != nil {
			return nil, err
		}
		out[it.Selector().Unquoted()] = v
	}
	return out, nil
}
