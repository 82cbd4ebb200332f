package scoring

import (
	"github.com/institutodpc/idc-soul-compass/internal/catalog"
)

// Normalize converts a raw score to a 0-100 scale against the profile's
// theoretical maximum, then applies the dominance multiplier and clamps at
// 100. A profile with no weighted questions (max <= 0) normalizes to 0 and
// can never be matched.
//
// There is deliberately no floor at 0: a negative weight produces a negative
// normalized score, which ranks the profile last. Observed catalog data only
// carries non-negative weights.
func (p Params) Normalize(raw, max float64, dominance catalog.DominanceLevel) float64 {
	if max <= 0 {
		return 0
	}
	score := (raw / max) * 100 * p.multiplier(dominance)
	if score > 100 {
		return 100
	}
	return score
}
