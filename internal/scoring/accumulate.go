package scoring

import (
	"github.com/institutodpc/idc-soul-compass/internal/catalog"
)

// dedupeAnswers collapses the answer list to one value per question, last
// write wins. Values outside the ordinal scale are clamped rather than
// rejected; range validation belongs to the input boundary.
func dedupeAnswers(answers []catalog.UserAnswer) map[int]int {
	byQuestion := make(map[int]int, len(answers))
	for _, a := range answers {
		v := a.Value
		if v < 0 {
			v = 0
		}
		if v > catalog.MaxAnswerValue {
			v = catalog.MaxAnswerValue
		}
		byQuestion[a.QuestionID] = v
	}
	return byQuestion
}

// Accumulate computes the raw weighted score per profile. Pure: no side
// effects, deterministic for fixed inputs. Profiles with no matching weights
// (and weights referencing unknown profiles or questions) contribute zeros.
func Accumulate(answers []catalog.UserAnswer, weights []catalog.QuestionWeight, profiles []catalog.Profile) map[int]float64 {
	raw := make(map[int]float64, len(profiles))
	for _, p := range profiles {
		raw[p.ID] = 0
	}

	byQuestion := dedupeAnswers(answers)
	for _, w := range weights {
		value, answered := byQuestion[w.QuestionID]
		if !answered {
			continue
		}
		if _, known := raw[w.ProfileID]; !known {
			continue // dangling profile reference
		}
		raw[w.ProfileID] += w.Weight * float64(value)
	}
	return raw
}
