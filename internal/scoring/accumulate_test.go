package scoring

import (
	"testing"

	"github.com/institutodpc/idc-soul-compass/internal/catalog"
)

func TestAccumulateWeightedSum(t *testing.T) {
	profiles := []catalog.Profile{{ID: 1}, {ID: 2}}
	weights := []catalog.QuestionWeight{
		{QuestionID: 1, ProfileID: 1, Weight: 2},
		{QuestionID: 2, ProfileID: 1, Weight: 1},
		{QuestionID: 1, ProfileID: 2, Weight: 0.5},
	}
	answers := []catalog.UserAnswer{
		{QuestionID: 1, Value: 3},
		{QuestionID: 2, Value: 1},
	}

	raw := Accumulate(answers, weights, profiles)

	if raw[1] != 7 { // 2*3 + 1*1
		t.Errorf("profile 1: expected 7, got %f", raw[1])
	}
	if raw[2] != 1.5 { // 0.5*3
		t.Errorf("profile 2: expected 1.5, got %f", raw[2])
	}
}

func TestAccumulateDuplicateAnswersLastWins(t *testing.T) {
	profiles := []catalog.Profile{{ID: 1}}
	weights := []catalog.QuestionWeight{{QuestionID: 1, ProfileID: 1, Weight: 1}}
	answers := []catalog.UserAnswer{
		{QuestionID: 1, Value: 3},
		{QuestionID: 1, Value: 1},
	}

	raw := Accumulate(answers, weights, profiles)
	if raw[1] != 1 {
		t.Errorf("expected later answer to win, got %f", raw[1])
	}
}

func TestAccumulateZeroWeightProfile(t *testing.T) {
	profiles := []catalog.Profile{{ID: 1}, {ID: 2}}
	weights := []catalog.QuestionWeight{{QuestionID: 1, ProfileID: 1, Weight: 1}}
	answers := []catalog.UserAnswer{{QuestionID: 1, Value: 3}}

	raw := Accumulate(answers, weights, profiles)
	if raw[2] != 0 {
		t.Errorf("profile without weights must stay at 0, got %f", raw[2])
	}
	if _, ok := raw[2]; !ok {
		t.Error("profile without weights must still appear in the map")
	}
}

func TestAccumulateIgnoresUnknownReferences(t *testing.T) {
	profiles := []catalog.Profile{{ID: 1}}
	weights := []catalog.QuestionWeight{
		{QuestionID: 1, ProfileID: 1, Weight: 1},
		{QuestionID: 1, ProfileID: 99, Weight: 10}, // dangling profile
	}
	answers := []catalog.UserAnswer{
		{QuestionID: 1, Value: 2},
		{QuestionID: 42, Value: 3}, // question not in weight matrix
	}

	raw := Accumulate(answers, weights, profiles)
	if len(raw) != 1 {
		t.Errorf("expected 1 profile entry, got %d", len(raw))
	}
	if raw[1] != 2 {
		t.Errorf("expected 2, got %f", raw[1])
	}
}

func TestAccumulateEmptyInputs(t *testing.T) {
	profiles := []catalog.Profile{{ID: 1}, {ID: 2}}

	raw := Accumulate(nil, nil, profiles)
	for id, v := range raw {
		if v != 0 {
			t.Errorf("profile %d: expected 0, got %f", id, v)
		}
	}
	if len(raw) != 2 {
		t.Errorf("expected all-zero map of size 2, got %d", len(raw))
	}

	if got := Accumulate(nil, nil, nil); len(got) != 0 {
		t.Errorf("expected empty map for empty profiles, got %v", got)
	}
}

func TestDedupeClampsOutOfRangeValues(t *testing.T) {
	byQuestion := dedupeAnswers([]catalog.UserAnswer{
		{QuestionID: 1, Value: -2},
		{QuestionID: 2, Value: 7},
		{QuestionID: 3, Value: 2},
	})

	if byQuestion[1] != 0 {
		t.Errorf("expected clamp to 0, got %d", byQuestion[1])
	}
	if byQuestion[2] != catalog.MaxAnswerValue {
		t.Errorf("expected clamp to %d, got %d", catalog.MaxAnswerValue, byQuestion[2])
	}
	if byQuestion[3] != 2 {
		t.Errorf("expected 2, got %d", byQuestion[3])
	}
}
