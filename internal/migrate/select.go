package migrate

import (
	"sort"

	"github.com/Masterminds/semver/v3"
)

// selectCandidates returns the descriptors that apply when moving from the
// recorded version to target, in execution order.
//
// A range applies when the target satisfies it, unless the document was
// already migrated (recorded != 0.0.0) to a version that satisfies it too.
// An exact version applies when recorded < v <= target.
func selectCandidates(descs []Descriptor, recorded, target *semver.Version) []Descriptor {
	var out []Descriptor
	for _, d := range descs {
		if d.IsRange() {
			if !recorded.Equal(zero) && d.rng.Check(recorded) {
				continue
			}
			if d.rng.Check(target) {
				out = append(out, d)
			}
			continue
		}
		if !d.exact.GreaterThan(recorded) {
			continue
		}
		if d.exact.GreaterThan(target) {
			continue
		}
		out = append(out, d)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if c := a.low.Compare(b.low); c != 0 {
			return c < 0
		}
		if a.IsRange() != b.IsRange() {
			return !a.IsRange()
		}
		return a.Raw < b.Raw
	})
	return out
}

// Pending returns the descriptors a run from recorded to version would
// execute, in order. An empty recorded means the document was never
// migrated.
func Pending(recorded, version string, descriptors []string) ([]string, error) {
	target, err := ParseTarget(version)
	if err != nil {
		return nil, err
	}
	descs := make([]Descriptor, 0, len(descriptors))
	for _, raw := range descriptors {
		d, err := ParseDescriptor(raw)
		if err != nil {
			return nil, err
		}
		descs = append(descs, d)
	}
	if recorded == "" {
		recorded = ZeroVersion
	}

	selected := selectCandidates(descs, recordedBaseline(recorded), target)
	out := make([]string, len(selected))
	for i, d := range selected {
		out[i] = d.Raw
	}
	return out, nil
}
