package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/institutodpc/idc-soul-compass/internal/catalog"
	"github.com/institutodpc/idc-soul-compass/internal/scoring"
)

// SeedData is the full catalog payload accepted by the admin seed endpoint.
type SeedData struct {
	Questions []catalog.Question       `json:"questions"`
	Profiles  []catalog.Profile        `json:"profiles"`
	Weights   []catalog.QuestionWeight `json:"weights"`
	Hierarchy []catalog.HierarchyEntry `json:"hierarchy,omitempty"`
}

// Store is the persistence boundary: read-only catalog fetches, respondent
// score writes, and catalog seeding. Implementations exist for Postgres and
// SQLite. It satisfies catalog.Source and scoring.ScoreWriter.
type Store interface {
	FetchQuestions(ctx context.Context) ([]catalog.Question, error)
	FetchProfiles(ctx context.Context) ([]catalog.Profile, error)
	FetchProfileWeights(ctx context.Context) ([]catalog.QuestionWeight, error)
	FetchProfileHierarchy(ctx context.Context) ([]catalog.HierarchyEntry, error)

	// SaveUserProfileScores replaces the respondent's previous run, so
	// repeated scorings never accumulate duplicate rows.
	SaveUserProfileScores(ctx context.Context, respondentID uuid.UUID, scores []scoring.RankedScore) error
	GetUserProfileScores(ctx context.Context, respondentID uuid.UUID) ([]scoring.RankedScore, error)

	// ReplaceCatalog swaps the entire reference data set in one transaction.
	ReplaceCatalog(ctx context.Context, data *SeedData) error

	Close() error
}
