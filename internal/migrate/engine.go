package migrate

import (
	"fmt"

	kerrors "github.com/PolarWolf314/conf/internal/errors"
	logger "github.com/PolarWolf314/conf/internal/logging"
)

// Step is one migration: a descriptor and the body that runs it.
type Step struct {
	Descriptor string
	Run        func() error
}

// Context is handed to the before-each hook.
type Context struct {
	FromVersion  string
	ToVersion    string
	FinalVersion string
	Versions     []string
}

// Hook runs before every selected migration. An error aborts the run
// exactly like a failing migration.
type Hook func(Context) error

// Target is the document the engine migrates.
type Target interface {
	// Snapshot returns a deep copy of the current document.
	Snapshot() (any, error)
	// Restore replaces the document with a snapshot and persists it.
	Restore(snapshot any) error
	// RecordedVersion returns the stored version and whether one exists.
	RecordedVersion() (string, bool, error)
	// RecordVersion stores v as the migrated version.
	RecordVersion(v string) error
}

// Result describes a completed run.
type Result struct {
	FromVersion string
	ToVersion   string
	Applied     []string
}

// MigrationError reports a failed migration. Changes made by migrations that
// completed before it are kept.
type MigrationError struct {
	Version string
	Err     error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration %s failed; changes from earlier migrations were preserved: %v", e.Version, e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}

func (e *MigrationError) Is(target error) bool {
	return target == kerrors.ErrMigration
}

// Engine applies migration steps to a Target.
type Engine struct {
	Target Target
	Hook   Hook
	Logger logger.Logger
}

// Run migrates the target towards version. Descriptors are all parsed before
// anything runs, so a bad descriptor leaves the document untouched.
func (e *Engine) Run(version string, steps []Step) (*Result, error) {
	target, err := ParseTarget(version)
	if err != nil {
		return nil, err
	}

	bodies := make(map[string]func() error, len(steps))
	descs := make([]Descriptor, 0, len(steps))
	for _, s := range steps {
		d, err := ParseDescriptor(s.Descriptor)
		if err != nil {
			return nil, err
		}
		if _, dup := bodies[s.Descriptor]; dup {
			return nil, fmt.Errorf("%w: duplicate migration %q", kerrors.ErrInvalidVersion, s.Descriptor)
		}
		bodies[s.Descriptor] = s.Run
		descs = append(descs, d)
	}

	recorded, hadRecord, err := e.Target.RecordedVersion()
	if err != nil {
		return nil, err
	}
	if !hadRecord {
		recorded = ZeroVersion
	}

	candidates := selectCandidates(descs, recordedBaseline(recorded), target)
	versions := make([]string, len(candidates))
	for i, c := range candidates {
		versions[i] = c.Raw
	}
	e.Logger.Debugf("Migrating from %s to %s, selected %v", recorded, version, versions)

	result := &Result{FromVersion: recorded, ToVersion: version}

	snapshot, err := e.Target.Snapshot()
	if err != nil {
		return nil, err
	}

	from := recorded
	for _, c := range candidates {
		if err := e.apply(bodies[c.Raw], Context{
			FromVersion:  from,
			ToVersion:    c.Raw,
			FinalVersion: version,
			Versions:     versions,
		}); err != nil {
			if rerr := e.Target.Restore(snapshot); rerr != nil {
				e.Logger.Warnf("Failed to persist state restored after migration %s: %v", c.Raw, rerr)
			}
			return result, &MigrationError{Version: c.Raw, Err: err}
		}

		if err := e.Target.RecordVersion(c.Raw); err != nil {
			return result, err
		}
		if snapshot, err = e.Target.Snapshot(); err != nil {
			return result, err
		}
		result.Applied = append(result.Applied, c.Raw)
		from = c.Raw
		e.Logger.Infof("Applied migration %s", c.Raw)
	}

	if !hadRecord && len(result.Applied) == 0 {
		return result, nil
	}

	final, _, err := e.Target.RecordedVersion()
	if err != nil {
		return result, err
	}
	if IsRange(final) || final != version {
		if err := e.Target.RecordVersion(version); err != nil {
			return result, err
		}
	}
	return result, nil
}

func (e *Engine) apply(body func() error, ctx Context) error {
	if e.Hook != nil {
		if err := e.Hook(ctx); err != nil {
			return err
		}
	}
	if body == nil {
		return nil
	}
	return body()
}
