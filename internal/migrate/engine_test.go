package migrate

import (
	"errors"
	"testing"

	"github.com/PolarWolf314/conf/internal/document"
	kerrors "github.com/PolarWolf314/conf/internal/errors"
	logger "github.com/PolarWolf314/conf/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memTarget struct {
	doc      document.Document
	restores int
}

func newTarget(recorded string) *memTarget {
	m := &memTarget{doc: document.Document{}}
	if recorded != "" {
		document.Set(m.doc, document.VersionPath, recorded)
	}
	return m
}

func (m *memTarget) Snapshot() (any, error) { return document.Clone(m.doc), nil }

func (m *memTarget) Restore(s any) error {
	m.doc = document.Clone(s.(document.Document))
	m.restores++
	return nil
}

func (m *memTarget) RecordedVersion() (string, bool, error) {
	v, ok := document.Get(m.doc, document.VersionPath)
	if !ok {
		return "", false, nil
	}
	s, _ := v.(string)
	return s, true, nil
}

func (m *memTarget) RecordVersion(v string) error {
	document.Set(m.doc, document.VersionPath, v)
	return nil
}

func (m *memTarget) recorded(t *testing.T) string {
	t.Helper()
	v, ok, err := m.RecordedVersion()
	require.NoError(t, err)
	require.True(t, ok, "expected a recorded version")
	return v
}

// recordingSteps builds steps that append their descriptor to ran.
func recordingSteps(ran *[]string, descs ...string) []Step {
	steps := make([]Step, 0, len(descs))
	for _, d := range descs {
		d := d
		steps = append(steps, Step{Descriptor: d, Run: func() error {
			*ran = append(*ran, d)
			return nil
		}})
	}
	return steps
}

func newEngine(target Target) *Engine {
	return &Engine{Target: target, Logger: logger.Quiet()}
}

func TestRunSelection(t *testing.T) {
	tests := []struct {
		name     string
		recorded string
		target   string
		descs    []string
		expected []string
		final    string
	}{
		{
			name:     "FreshRunsUpToTarget",
			target:   "1.0.0",
			descs:    []string{"1.0.1", "1.0.0", "0.0.3"},
			expected: []string{"0.0.3", "1.0.0"},
			final:    "1.0.0",
		},
		{
			name:     "SkipsAlreadyApplied",
			recorded: "1.0.0",
			target:   "2.0.0",
			descs:    []string{"1.0.0", "3.0.0", "2.0.0", "1.5.0"},
			expected: []string{"1.5.0", "2.0.0"},
			final:    "2.0.0",
		},
		{
			name:     "RangeOnFreshDocument",
			target:   "1.0.0",
			descs:    []string{"<2.0.0"},
			expected: []string{"<2.0.0"},
			final:    "1.0.0",
		},
		{
			name:     "RangeAlreadySatisfiedByRecorded",
			recorded: "1.0.0",
			target:   "1.2.0",
			descs:    []string{"<2.0.0", "1.1.0"},
			expected: []string{"1.1.0"},
			final:    "1.2.0",
		},
		{
			name:     "RangeNotMatchingTarget",
			target:   "1.0.0",
			descs:    []string{">=2.0.0"},
			expected: nil,
		},
		{
			name:     "ExactBeforeRangeOnTie",
			target:   "1.0.0",
			descs:    []string{">=1.0.0", "1.0.0"},
			expected: []string{"1.0.0", ">=1.0.0"},
			final:    "1.0.0",
		},
		{
			name:     "RangesOrderedByLowestBound",
			target:   "3.0.0",
			descs:    []string{">=2.0.0", ">=1.0.0 <4.0.0", "1.5.0"},
			expected: []string{">=1.0.0 <4.0.0", "1.5.0", ">=2.0.0"},
			final:    "3.0.0",
		},
		{
			name:     "FinalRecordsTargetVerbatim",
			target:   "1.0.0",
			descs:    []string{"0.5.0"},
			expected: []string{"0.5.0"},
			final:    "1.0.0",
		},
		{
			name:     "LeadingV",
			target:   "2.0.0",
			descs:    []string{"v1.0.0"},
			expected: []string{"v1.0.0"},
			final:    "2.0.0",
		},
		{
			name:     "RecordedRangeComparesByLowestBound",
			recorded: ">=1.0.0",
			target:   "2.0.0",
			descs:    []string{"1.0.0", "1.5.0"},
			expected: []string{"1.5.0"},
			final:    "2.0.0",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pending, err := Pending(tc.recorded, tc.target, tc.descs)
			require.NoError(t, err)
			if len(tc.expected) == 0 {
				assert.Empty(t, pending)
			} else {
				assert.Equal(t, tc.expected, pending)
			}

			target := newTarget(tc.recorded)
			var ran []string
			result, err := newEngine(target).Run(tc.target, recordingSteps(&ran, tc.descs...))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, ran)
			assert.Equal(t, tc.expected, result.Applied)
			if tc.final != "" {
				assert.Equal(t, tc.final, target.recorded(t))
			}
		})
	}
}

func TestRunRecording(t *testing.T) {
	t.Run("NothingRanOnFreshDocumentLeavesNoReservedKey", func(t *testing.T) {
		target := newTarget("")
		_, err := newEngine(target).Run("1.0.0", recordingSteps(new([]string), "2.0.0"))
		require.NoError(t, err)
		_, ok := target.doc[document.ReservedKey]
		assert.False(t, ok)
	})

	t.Run("ExistingRecordMovesToTarget", func(t *testing.T) {
		target := newTarget("1.0.0")
		_, err := newEngine(target).Run("1.1.0", nil)
		require.NoError(t, err)
		assert.Equal(t, "1.1.0", target.recorded(t))
	})

	t.Run("VersionRecordedAfterEachStep", func(t *testing.T) {
		target := newTarget("")
		var seen []string
		steps := []Step{
			{Descriptor: "1.0.0", Run: func() error { return nil }},
			{Descriptor: "2.0.0", Run: func() error {
				seen = append(seen, target.recorded(t))
				return nil
			}},
		}
		_, err := newEngine(target).Run("2.0.0", steps)
		require.NoError(t, err)
		assert.Equal(t, []string{"1.0.0"}, seen)
	})
}

func TestRunFailure(t *testing.T) {
	boom := errors.New("boom")

	t.Run("RollsBackToLastSuccess", func(t *testing.T) {
		target := newTarget("")
		steps := []Step{
			{Descriptor: "1.0.0", Run: func() error {
				target.doc["a"] = int64(1)
				return nil
			}},
			{Descriptor: "1.1.0", Run: func() error {
				target.doc["b"] = int64(2)
				return boom
			}},
		}
		result, err := newEngine(target).Run("2.0.0", steps)
		require.Error(t, err)
		assert.ErrorIs(t, err, kerrors.ErrMigration)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "preserved")
		assert.Contains(t, err.Error(), "boom")

		var merr *MigrationError
		require.True(t, errors.As(err, &merr))
		assert.Equal(t, "1.1.0", merr.Version)

		assert.Equal(t, []string{"1.0.0"}, result.Applied)
		assert.Equal(t, int64(1), target.doc["a"])
		assert.NotContains(t, target.doc, "b")
		assert.Equal(t, "1.0.0", target.recorded(t))
		assert.Equal(t, 1, target.restores)
	})

	t.Run("FirstFailureRestoresPristine", func(t *testing.T) {
		target := newTarget("")
		target.doc["keep"] = "me"
		steps := []Step{{Descriptor: "1.0.0", Run: func() error {
			delete(target.doc, "keep")
			return boom
		}}}
		_, err := newEngine(target).Run("1.0.0", steps)
		require.ErrorIs(t, err, kerrors.ErrMigration)
		assert.Equal(t, document.Document{"keep": "me"}, target.doc)
	})

	t.Run("InvalidDescriptorRunsNothing", func(t *testing.T) {
		target := newTarget("")
		var ran []string
		_, err := newEngine(target).Run("1.0.0", recordingSteps(&ran, "0.5.0", "not a version"))
		require.ErrorIs(t, err, kerrors.ErrInvalidVersion)
		assert.Empty(t, ran)
		assert.Empty(t, target.doc)
	})

	t.Run("InvalidTarget", func(t *testing.T) {
		_, err := newEngine(newTarget("")).Run("^1.0.0", nil)
		assert.ErrorIs(t, err, kerrors.ErrInvalidVersion)
	})
}

func TestRunHook(t *testing.T) {
	t.Run("ReceivesContext", func(t *testing.T) {
		target := newTarget("")
		var contexts []Context
		e := newEngine(target)
		e.Hook = func(c Context) error {
			contexts = append(contexts, c)
			return nil
		}
		_, err := e.Run("1.0.0", recordingSteps(new([]string), "0.0.3", "1.0.0"))
		require.NoError(t, err)

		versions := []string{"0.0.3", "1.0.0"}
		assert.Equal(t, []Context{
			{FromVersion: "0.0.0", ToVersion: "0.0.3", FinalVersion: "1.0.0", Versions: versions},
			{FromVersion: "0.0.3", ToVersion: "1.0.0", FinalVersion: "1.0.0", Versions: versions},
		}, contexts)
	})

	t.Run("FailureSkipsBodyAndRollsBack", func(t *testing.T) {
		target := newTarget("")
		var ran []string
		e := newEngine(target)
		e.Hook = func(c Context) error {
			if c.ToVersion == "1.0.0" {
				return errors.New("hook refused")
			}
			return nil
		}
		_, err := e.Run("1.0.0", recordingSteps(&ran, "0.0.3", "1.0.0"))
		require.ErrorIs(t, err, kerrors.ErrMigration)
		assert.Equal(t, []string{"0.0.3"}, ran)
		assert.Equal(t, "0.0.3", target.recorded(t))
	})
}
