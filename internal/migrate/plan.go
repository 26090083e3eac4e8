package migrate

import (
	"fmt"
	"os"
	"sort"

	"github.com/PolarWolf314/conf/internal/document"
	kerrors "github.com/PolarWolf314/conf/internal/errors"
	"gopkg.in/yaml.v3"
)

// Operation kinds in a plan.
const (
	OpSet    = "set"
	OpDelete = "delete"
	OpRename = "rename"
)

// Accessor is the key-level view of a store that plans operate on.
type Accessor interface {
	Get(key string) (any, error)
	Has(key string) (bool, error)
	Set(key string, value any) error
	Delete(key string) error
}

// Operation is one declarative edit.
type Operation struct {
	Op    string `yaml:"op"`
	Key   string `yaml:"key"`
	To    string `yaml:"to,omitempty"`
	Value any    `yaml:"value,omitempty"`
}

// Plan is a set of declarative migrations loaded from YAML:
//
//	migrations:
//	  "1.0.0":
//	    - op: rename
//	      key: colour
//	      to: color
//	  "<2.0.0":
//	    - op: set
//	      key: theme
//	      value: dark
type Plan struct {
	Migrations map[string][]Operation `yaml:"migrations"`
}

// LoadPlan reads and checks a plan file.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration plan: %w", err)
	}
	return ParsePlan(data)
}

// ParsePlan decodes and checks a plan.
func ParsePlan(data []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse migration plan: %w", err)
	}
	for desc, ops := range p.Migrations {
		if _, err := ParseDescriptor(desc); err != nil {
			return nil, err
		}
		for i := range ops {
			if err := ops[i].check(); err != nil {
				return nil, fmt.Errorf("migration %q, operation %d: %w", desc, i+1, err)
			}
			v, err := document.Normalize(ops[i].Value)
			if err != nil {
				return nil, fmt.Errorf("migration %q, operation %d: %w", desc, i+1, err)
			}
			ops[i].Value = v
		}
	}
	return &p, nil
}

// Descriptors returns the plan's version descriptors, sorted.
func (p *Plan) Descriptors() []string {
	out := make([]string, 0, len(p.Migrations))
	for desc := range p.Migrations {
		out = append(out, desc)
	}
	sort.Strings(out)
	return out
}

// Apply runs the operations of one migration against acc.
func (p *Plan) Apply(desc string, acc Accessor) error {
	for _, op := range p.Migrations[desc] {
		if err := op.apply(acc); err != nil {
			return fmt.Errorf("%s %s: %w", op.Op, op.Key, err)
		}
	}
	return nil
}

func (o Operation) check() error {
	if o.Key == "" {
		return fmt.Errorf("%w: operation has no key", kerrors.ErrInputType)
	}
	switch o.Op {
	case OpSet, OpDelete:
		return nil
	case OpRename:
		if o.To == "" {
			return fmt.Errorf("%w: rename of %q has no target", kerrors.ErrInputType, o.Key)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown operation %q", kerrors.ErrInputType, o.Op)
	}
}

func (o Operation) apply(acc Accessor) error {
	switch o.Op {
	case OpSet:
		return acc.Set(o.Key, o.Value)
	case OpDelete:
		return acc.Delete(o.Key)
	case OpRename:
		ok, err := acc.Has(o.Key)
		if err != nil || !ok {
			return err
		}
		v, err := acc.Get(o.Key)
		if err != nil {
			return err
		}
		if err := acc.Set(o.To, v); err != nil {
			return err
		}
		return acc.Delete(o.Key)
	}
	return nil
}
