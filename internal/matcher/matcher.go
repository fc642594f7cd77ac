// Package matcher identifies the closest roster identity to a probe
// descriptor. It is pure and side-effect free: safe to call repeatedly and
// concurrently with the same roster snapshot.
package matcher

import (
	"math"

	"github.com/aulavista/facemark/internal/domain"
)

// DefaultThreshold is the maximum acceptable Euclidean distance for a match.
// Lower is stricter.
const DefaultThreshold = 0.6

// Distance computes the Euclidean distance between two descriptors of equal
// length. Distance(a, a) == 0 and Distance(a, b) == Distance(b, a).
func Distance(a, b domain.Descriptor) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Match compares the probe against every roster entry and returns the
// closest identity under the threshold, or NoMatch if none qualifies.
//
// Roster entries with no stored descriptor, or with a descriptor whose
// length differs from the probe's, are skipped rather than failing the
// whole pass. A structurally invalid probe returns ErrDimensionMismatch.
//
// On an exact distance tie the first-seen entry wins; callers should treat
// this as deterministic for a given roster ordering, not as a policy.
func Match(probe domain.Descriptor, roster []domain.RosterEntry, threshold float64) (domain.MatchResult, error) {
	if !probe.Valid() {
		return domain.NoMatch(), domain.ErrDimensionMismatch
	}

	best := domain.NoMatch()
	for i := range roster {
		entry := &roster[i]
		if !entry.HasDescriptor() || len(entry.Descriptor) != len(probe) {
			continue
		}

		distance := Distance(probe, entry.Descriptor)
		if distance >= threshold {
			continue
		}
		if best.Matched && distance >= best.Distance {
			continue
		}

		best = domain.Matched(entry.Identity, distance)
	}

	return best, nil
}
