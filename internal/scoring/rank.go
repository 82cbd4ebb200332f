package scoring

import (
	"math"
	"sort"

	"github.com/institutodpc/idc-soul-compass/internal/catalog"
)

// ProfileScore is the full scoring breakdown for one profile. Recomputed on
// every run, never persisted as-is.
type ProfileScore struct {
	Profile           catalog.Profile        `json:"profile"`
	RawScore          float64                `json:"raw_score"`
	MaxPossibleScore  float64                `json:"max_possible_score"`
	NormalizedScore   float64                `json:"normalized_score"`
	HierarchyPosition int                    `json:"hierarchy_position"`
	Dominance         catalog.DominanceLevel `json:"dominance_level"`
}

// Rank orders profile scores for selection. Profiles whose normalized scores
// differ by less than the near-tie threshold are ordered by ascending
// hierarchy position; otherwise by descending score.
//
// The near-tie comparator is not transitive across all triples (A near B,
// B near C, but A and C far apart), so the result depends on the input
// order. The sort is stable and callers pass profiles in catalog order,
// which keeps the outcome deterministic and matches the historical behavior
// respondents have seen.
func (p Params) Rank(scores []ProfileScore) []ProfileScore {
	ranked := make([]ProfileScore, len(scores))
	copy(ranked, scores)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if math.Abs(a.NormalizedScore-b.NormalizedScore) < p.NearTieThreshold {
			return a.HierarchyPosition < b.HierarchyPosition
		}
		return a.NormalizedScore > b.NormalizedScore
	})
	return ranked
}

// Select picks the primary profile and the qualifying secondaries from a
// ranked list. The primary is always rank[0], even when every score is zero.
// Secondaries come from the remainder, must clear the cutoff, and are capped
// at MaxSecondary.
func (p Params) Select(ranked []ProfileScore) (primary ProfileScore, secondary []ProfileScore) {
	primary = ranked[0]
	for _, s := range ranked[1:] {
		if len(secondary) == p.MaxSecondary {
			break
		}
		if s.NormalizedScore >= p.SecondaryCutoff {
			secondary = append(secondary, s)
		}
	}
	return primary, secondary
}
