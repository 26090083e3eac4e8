package migrate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	kerrors "github.com/PolarWolf314/conf/internal/errors"
)

// ZeroVersion is the recorded version of a document that was never migrated.
const ZeroVersion = "0.0.0"

var (
	zero = semver.MustParse(ZeroVersion)

	// versionLiteral finds the version operands inside a range expression.
	versionLiteral = regexp.MustCompile(`v?\d+(\.(\d+|[xX*]))?(\.(\d+|[xX*]))?(-[0-9A-Za-z.-]+)?`)
)

// Descriptor is a parsed version descriptor.
type Descriptor struct {
	Raw   string
	exact *semver.Version
	rng   *semver.Constraints
	// low is the exact version, or the lowest version literal of a range.
	low *semver.Version
}

// ParseDescriptor accepts an exact semantic version or a range expression.
func ParseDescriptor(raw string) (Descriptor, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Descriptor{}, fmt.Errorf("%w: empty version descriptor", kerrors.ErrInvalidVersion)
	}
	if v, err := parseExact(s); err == nil {
		return Descriptor{Raw: raw, exact: v, low: v}, nil
	}
	c, err := semver.NewConstraint(s)
	if err != nil {
		return Descriptor{}, fmt.Errorf("%w: %q is neither a version nor a range: %v", kerrors.ErrInvalidVersion, raw, err)
	}
	return Descriptor{Raw: raw, rng: c, low: lowestLiteral(s)}, nil
}

// IsRange reports whether the descriptor is a range expression.
func (d Descriptor) IsRange() bool {
	return d.rng != nil
}

func parseExact(s string) (*semver.Version, error) {
	return semver.StrictNewVersion(strings.TrimPrefix(s, "v"))
}

// ParseTarget parses the program version migrations run towards. It must be
// an exact version.
func ParseTarget(raw string) (*semver.Version, error) {
	v, err := parseExact(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: project version %q must be an exact semantic version", kerrors.ErrInvalidVersion, raw)
	}
	return v, nil
}

// IsRange reports whether raw is a range expression rather than an exact
// version. Unparseable strings count as ranges.
func IsRange(raw string) bool {
	_, err := parseExact(strings.TrimSpace(raw))
	return err != nil
}

// lowestLiteral returns the smallest version operand of a range, treating
// wildcards as zero. Ranges without operands sort as 0.0.0.
func lowestLiteral(expr string) *semver.Version {
	var low *semver.Version
	for _, lit := range versionLiteral.FindAllString(expr, -1) {
		lit = strings.NewReplacer("x", "0", "X", "0", "*", "0").Replace(lit)
		v, err := semver.NewVersion(lit)
		if err != nil {
			continue
		}
		if low == nil || v.LessThan(low) {
			low = v
		}
	}
	if low == nil {
		return zero
	}
	return low
}

// recordedBaseline turns the stored version into something comparable. A
// stored range (or garbage) compares as its lowest literal.
func recordedBaseline(raw string) *semver.Version {
	if v, err := parseExact(strings.TrimSpace(raw)); err == nil {
		return v
	}
	return lowestLiteral(raw)
}
