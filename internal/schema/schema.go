package schema

import (
	"fmt"
	"strings"

	"github.com/PolarWolf314/conf/internal/document"
	kerrors "github.com/PolarWolf314/conf/internal/errors"
	"github.com/imdario/mergo"
)

// Violation is one reason a document was rejected.
type Violation struct {
	// Path locates the offending value, empty for the document root.
	Path    string
	Message string
}

// Validator checks a whole document. A nil slice means the document is valid;
// a non-nil error means validation itself could not run.
type Validator interface {
	Validate(doc document.Document) ([]Violation, error)
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(doc document.Document) ([]Violation, error)

func (f ValidatorFunc) Validate(doc document.Document) ([]Violation, error) {
	return f(doc)
}

// DefaultsProvider is implemented by validators whose schema declares
// default values.
type DefaultsProvider interface {
	Defaults() (document.Document, error)
}

// ViolationError carries every violation found in a single validation pass.
type ViolationError struct {
	Violations []Violation
}

func (e *ViolationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("`%s` %s", v.Path, v.Message))
	}
	return kerrors.ErrSchemaViolation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ViolationError) Is(target error) bool {
	return target == kerrors.ErrSchemaViolation
}

// Gate runs a Validator, turning violations into a *ViolationError. The zero
// Gate accepts everything.
type Gate struct {
	validator Validator
}

// NewGate returns a Gate around v. v may be nil.
func NewGate(v Validator) *Gate {
	return &Gate{validator: v}
}

// Enabled reports whether the gate has a validator.
func (g *Gate) Enabled() bool {
	return g != nil && g.validator != nil
}

// Validate returns nil when doc passes.
func (g *Gate) Validate(doc document.Document) error {
	if !g.Enabled() {
		return nil
	}
	violations, err := g.validator.Validate(doc)
	if err != nil {
		return fmt.Errorf("failed to run validator: %w", err)
	}
	if len(violations) == 0 {
		return nil
	}
	return &ViolationError{Violations: violations}
}

// CaptureDefaults returns the defaults declared by v (if it is a
// DefaultsProvider) overlaid with the caller's defaults. Caller values win.
func CaptureDefaults(v Validator, caller document.Document) (document.Document, error) {
	out := document.Document{}
	if p, ok := v.(DefaultsProvider); ok && p != nil {
		declared, err := p.Defaults()
		if err != nil {
			return nil, err
		}
		out = document.Clone(declared)
	}
	if len(caller) == 0 {
		return out, nil
	}
	if err := mergo.Merge(&out, document.Clone(caller), mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("failed to merge defaults: %w", err)
	}
	return out, nil
}
