package catalog

// QuestionCategory labels the questionnaire section a question belongs to.
type QuestionCategory string

const (
	CategoryPersonalBehavior  QuestionCategory = "personal_behavior"
	CategorySpiritualPractice QuestionCategory = "spiritual_practice"
	CategoryAttitudes         QuestionCategory = "attitudes_toward_others"
	CategoryEmotionalHealth   QuestionCategory = "emotional_health"
	CategoryRelationships     QuestionCategory = "relationships"
)

// MaxAnswerValue is the top of the ordinal answer scale (never/sometimes/often/always).
const MaxAnswerValue = 3

type Question struct {
	ID       int              `json:"id"`
	Text     string           `json:"text"`
	Category QuestionCategory `json:"category"`
}

// Profile is a spiritual-profile definition. Everything past Description is
// narrative copy for the results page and is opaque to scoring.
type Profile struct {
	ID                int      `json:"id"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Refuge            string   `json:"refuge,omitempty"`
	BiblicalCharacter string   `json:"biblical_character,omitempty"`
	Exaltation        string   `json:"exaltation,omitempty"`
	Formation         string   `json:"formation,omitempty"`
	CommonPains       []string `json:"common_pains,omitempty"`
	ExitSteps         []string `json:"exit_steps,omitempty"`
	PropheticSummary  string   `json:"prophetic_summary,omitempty"`
}

// QuestionWeight links one question to one profile. The matrix is sparse:
// absent pairs carry implicit weight 0.
type QuestionWeight struct {
	QuestionID int     `json:"question_id"`
	ProfileID  int     `json:"profile_id"`
	Weight     float64 `json:"weight"`
}

type DominanceLevel string

const (
	DominanceHigh   DominanceLevel = "HIGH"
	DominanceMedium DominanceLevel = "MEDIUM"
	DominanceLow    DominanceLevel = "LOW"
)

// UnrankedPosition is the hierarchy position assigned to profiles without a
// hierarchy row. It sorts after every real position.
const UnrankedPosition = int(^uint32(0) >> 1)

// HierarchyEntry biases profile selection when scores are close.
// Lower Position means more dominant.
type HierarchyEntry struct {
	ProfileID int            `json:"profile_id"`
	Position  int            `json:"hierarchy_position"`
	Dominance DominanceLevel `json:"dominance_level"`
}

type UserAnswer struct {
	QuestionID int `json:"question_id"`
	Value      int `json:"value"`
}

// Catalog is one immutable generation of reference data. Build it with New;
// lookups never mutate it, so a single instance is safe to share across
// scoring runs.
type Catalog struct {
	Questions []Question
	Profiles  []Profile
	Weights   []QuestionWeight

	questionsByID map[int]Question
	hierarchyByID map[int]HierarchyEntry
	maxScores     map[int]float64
}

func New(questions []Question, profiles []Profile, weights []QuestionWeight, hierarchy []HierarchyEntry) *Catalog {
	c := &Catalog{
		Questions:     questions,
		Profiles:      profiles,
		Weights:       weights,
		questionsByID: make(map[int]Question, len(questions)),
		hierarchyByID: make(map[int]HierarchyEntry, len(hierarchy)),
		maxScores:     make(map[int]float64, len(profiles)),
	}
	for _, q := range questions {
		c.questionsByID[q.ID] = q
	}
	for _, h := range hierarchy {
		c.hierarchyByID[h.ProfileID] = h
	}
	for _, p := range profiles {
		c.maxScores[p.ID] = 0
	}
	for _, w := range weights {
		if _, ok := c.maxScores[w.ProfileID]; !ok {
			continue // dangling profile reference
		}
		c.maxScores[w.ProfileID] += w.Weight * MaxAnswerValue
	}
	return c
}

func (c *Catalog) QuestionByID(id int) (Question, bool) {
	q, ok := c.questionsByID[id]
	return q, ok
}

func (c *Catalog) TotalQuestions() int {
	return len(c.Questions)
}

// Hierarchy returns the hierarchy entry for a profile, or the default
// (unranked, LOW dominance) when the profile has no row.
func (c *Catalog) Hierarchy(profileID int) HierarchyEntry {
	if h, ok := c.hierarchyByID[profileID]; ok {
		return h
	}
	return HierarchyEntry{ProfileID: profileID, Position: UnrankedPosition, Dominance: DominanceLow}
}

// MaxPossibleScore is the theoretical ceiling for a profile: the sum of its
// weights times the top answer value. Independent of any respondent.
func (c *Catalog) MaxPossibleScore(profileID int) float64 {
	return c.maxScores[profileID]
}
