package conf

import (
	"errors"

	"github.com/PolarWolf314/conf/internal/audit"
	"github.com/PolarWolf314/conf/internal/document"
	"github.com/PolarWolf314/conf/internal/migrate"
)

// runMigrations is called by New with validation suppressed.
func (s *Store) runMigrations() error {
	steps := make([]migrate.Step, 0, len(s.opts.migrations))
	for desc, fn := range s.opts.migrations {
		fn := fn
		steps = append(steps, migrate.Step{
			Descriptor: desc,
			Run:        func() error { return fn(s) },
		})
	}

	engine := &migrate.Engine{Target: storeTarget{s}, Logger: s.log}
	if s.opts.beforeEach != nil {
		engine.Hook = func(ctx migrate.Context) error {
			return s.opts.beforeEach(s, ctx)
		}
	}

	result, err := engine.Run(s.opts.projectVersion, steps)

	var merr *migrate.MigrationError
	switch {
	case errors.As(err, &merr):
		s.journal.Log(audit.Entry{
			Operation:   audit.OpMigrateFailed,
			Store:       s.path,
			FromVersion: result.FromVersion,
			ToVersion:   result.ToVersion,
			Applied:     result.Applied,
			Failed:      merr.Version,
			Error:       merr.Err.Error(),
		})
	case err == nil && len(result.Applied) > 0:
		s.journal.Log(audit.Entry{
			Operation:   audit.OpMigrate,
			Store:       s.path,
			FromVersion: result.FromVersion,
			ToVersion:   result.ToVersion,
			Applied:     result.Applied,
		})
	}
	return err
}

// PlanMigrations turns a declarative plan into Migrations.
func PlanMigrations(p *migrate.Plan) Migrations {
	out := make(Migrations, len(p.Migrations))
	for _, desc := range p.Descriptors() {
		desc := desc
		out[desc] = func(s *Store) error {
			return p.Apply(desc, s)
		}
	}
	return out
}

// LoadMigrationPlan reads a YAML migration plan file.
func LoadMigrationPlan(path string) (Migrations, error) {
	p, err := migrate.LoadPlan(path)
	if err != nil {
		return nil, err
	}
	return PlanMigrations(p), nil
}

// storeTarget lets the engine drive the store through its own accessors.
type storeTarget struct {
	s *Store
}

func (t storeTarget) Snapshot() (any, error) {
	return t.s.read()
}

func (t storeTarget) Restore(snapshot any) error {
	doc, _ := snapshot.(Document)
	return t.s.update(func(current Document) (bool, error) {
		for k := range current {
			delete(current, k)
		}
		for k, v := range document.Clone(doc) {
			current[k] = v
		}
		return true, nil
	})
}

func (t storeTarget) RecordedVersion() (string, bool, error) {
	doc, err := t.s.read()
	if err != nil {
		return "", false, err
	}
	v, ok := document.Get(doc, document.VersionPath)
	if !ok {
		return "", false, nil
	}
	str, _ := v.(string)
	return str, true, nil
}

func (t storeTarget) RecordVersion(v string) error {
	return t.s.update(func(doc Document) (bool, error) {
		document.Set(doc, document.VersionPath, v)
		return true, nil
	})
}
