package scoring

import (
	"fmt"

	"github.com/institutodpc/idc-soul-compass/internal/catalog"
)

// Params defines the tunable constants of the selection algorithm.
type Params struct {
	// NearTieThreshold is the normalized-score gap under which two profiles
	// are ordered by hierarchy position instead of score.
	NearTieThreshold float64
	// SecondaryCutoff is the minimum normalized score a profile needs to
	// qualify as a secondary match.
	SecondaryCutoff float64
	// MaxSecondary caps how many secondary profiles a result carries.
	MaxSecondary int
	// HighMultiplier and MediumMultiplier boost profiles flagged as more
	// doctrinally significant so they surface ahead of superficially
	// higher-scoring but less central ones.
	HighMultiplier   float64
	MediumMultiplier float64
}

// DefaultParams returns the production constants.
func DefaultParams() Params {
	return Params{
		NearTieThreshold: 15,
		SecondaryCutoff:  50,
		MaxSecondary:     2,
		HighMultiplier:   1.25,
		MediumMultiplier: 1.15,
	}
}

// Validate checks that the parameters describe a usable algorithm.
func (p Params) Validate() error {
	if p.NearTieThreshold < 0 {
		return fmt.Errorf("near-tie threshold must be non-negative, got %f", p.NearTieThreshold)
	}
	if p.SecondaryCutoff < 0 || p.SecondaryCutoff > 100 {
		return fmt.Errorf("secondary cutoff must be in [0,100], got %f", p.SecondaryCutoff)
	}
	if p.MaxSecondary < 0 {
		return fmt.Errorf("max secondary must be non-negative, got %d", p.MaxSecondary)
	}
	if p.HighMultiplier < 1 || p.MediumMultiplier < 1 {
		return fmt.Errorf("dominance multipliers must be >= 1, got high=%f medium=%f", p.HighMultiplier, p.MediumMultiplier)
	}
	return nil
}

func (p Params) multiplier(d catalog.DominanceLevel) float64 {
	switch d {
	case catalog.DominanceHigh:
		return p.HighMultiplier
	case catalog.DominanceMedium:
		return p.MediumMultiplier
	default:
		return 1.0
	}
}
