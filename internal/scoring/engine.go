package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/institutodpc/idc-soul-compass/internal/catalog"
	"github.com/institutodpc/idc-soul-compass/internal/events"
)

// ErrNoProfiles is returned when the catalog holds no profiles at all; a
// primary profile cannot be selected from nothing.
var ErrNoProfiles = errors.New("profile catalog is empty")

// RankedScore is the persisted/displayed form of one profile's result: the
// normalized score rounded to the nearest integer.
type RankedScore struct {
	ProfileID int `json:"profile_id"`
	Score     int `json:"score"`
}

// QuizResult is the outcome of one scoring run.
type QuizResult struct {
	PrimaryProfile    catalog.Profile   `json:"primary_profile"`
	SecondaryProfiles []catalog.Profile `json:"secondary_profiles"`
	ProfileScores     []RankedScore     `json:"profile_scores"`
}

// ScoreWriter persists a respondent's rounded per-profile scores. The write
// replaces any previous run for the same respondent.
type ScoreWriter interface {
	SaveUserProfileScores(ctx context.Context, respondentID uuid.UUID, scores []RankedScore) error
}

// Engine runs the full scoring pipeline: catalog load, accumulation,
// normalization, ranking, selection, and best-effort persistence.
type Engine struct {
	params  Params
	catalog *catalog.Cache
	scores  ScoreWriter
	events  events.Client
	logger  *slog.Logger
}

// NewEngine creates an Engine. scores and ev may be nil to disable
// persistence and event publishing respectively.
func NewEngine(params Params, cache *catalog.Cache, scores ScoreWriter, ev events.Client, logger *slog.Logger) *Engine {
	return &Engine{
		params:  params,
		catalog: cache,
		scores:  scores,
		events:  ev,
		logger:  logger,
	}
}

// CalculateResults scores a respondent's answers and selects the primary and
// secondary profiles. Catalog failure is fatal; persistence failure is not,
// and the computed result is returned either way.
func (e *Engine) CalculateResults(ctx context.Context, respondentID uuid.UUID, answers []catalog.UserAnswer) (*QuizResult, error) {
	ranked, err := e.scoreBreakdown(ctx, answers)
	if err != nil {
		return nil, err
	}

	primary, secondary := e.params.Select(ranked)

	result := &QuizResult{
		PrimaryProfile:    primary.Profile,
		SecondaryProfiles: make([]catalog.Profile, 0, len(secondary)),
		ProfileScores:     make([]RankedScore, 0, len(ranked)),
	}
	for _, s := range secondary {
		result.SecondaryProfiles = append(result.SecondaryProfiles, s.Profile)
	}
	for _, s := range ranked {
		result.ProfileScores = append(result.ProfileScores, RankedScore{
			ProfileID: s.Profile.ID,
			Score:     int(math.Round(s.NormalizedScore)),
		})
	}

	e.persist(ctx, respondentID, result.ProfileScores)

	if e.events != nil {
		secondaryIDs := make([]int, 0, len(secondary))
		for _, s := range secondary {
			secondaryIDs = append(secondaryIDs, s.Profile.ID)
		}
		scores := make([]events.ProfileScoreEntry, 0, len(result.ProfileScores))
		for _, s := range result.ProfileScores {
			scores = append(scores, events.ProfileScoreEntry{ProfileID: s.ProfileID, Score: s.Score})
		}
		_ = e.events.Publish(events.SubjectQuizCompleted(respondentID.String()), events.QuizCompletedEvent{
			RespondentID:        respondentID.String(),
			PrimaryProfileID:    primary.Profile.ID,
			SecondaryProfileIDs: secondaryIDs,
			Scores:              scores,
			CompletedAt:         time.Now().UTC(),
		})
	}

	return result, nil
}

// ScoreBreakdown returns the full ranked per-profile breakdown without
// persisting anything. Used by the explain endpoint.
func (e *Engine) ScoreBreakdown(ctx context.Context, answers []catalog.UserAnswer) ([]ProfileScore, error) {
	return e.scoreBreakdown(ctx, answers)
}

func (e *Engine) scoreBreakdown(ctx context.Context, answers []catalog.UserAnswer) ([]ProfileScore, error) {
	cat, err := e.catalog.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if len(cat.Profiles) == 0 {
		return nil, ErrNoProfiles
	}

	raw := Accumulate(answers, cat.Weights, cat.Profiles)

	scores := make([]ProfileScore, 0, len(cat.Profiles))
	for _, p := range cat.Profiles {
		h := cat.Hierarchy(p.ID)
		max := cat.MaxPossibleScore(p.ID)
		scores = append(scores, ProfileScore{
			Profile:           p,
			RawScore:          raw[p.ID],
			MaxPossibleScore:  max,
			NormalizedScore:   e.params.Normalize(raw[p.ID], max, h.Dominance),
			HierarchyPosition: h.Position,
			Dominance:         h.Dominance,
		})
	}
	return e.params.Rank(scores), nil
}

// persist writes the rounded scores. A failure is logged and published, never
// propagated: the respondent still gets their result.
func (e *Engine) persist(ctx context.Context, respondentID uuid.UUID, scores []RankedScore) {
	if e.scores == nil {
		return
	}
	if err := e.scores.SaveUserProfileScores(ctx, respondentID, scores); err != nil {
		e.logger.Warn("failed to persist profile scores",
			"respondent_id", respondentID,
			"error", err,
		)
		if e.events != nil {
			_ = e.events.Publish(events.SubjectScoresPersistFailed(respondentID.String()), events.ScoresPersistFailedEvent{
				RespondentID: respondentID.String(),
				Error:        err.Error(),
			})
		}
	}
}

// QuestionByID looks one question up in the cached catalog.
func (e *Engine) QuestionByID(ctx context.Context, id int) (catalog.Question, bool, error) {
	cat, err := e.catalog.Get(ctx)
	if err != nil {
		return catalog.Question{}, false, fmt.Errorf("load catalog: %w", err)
	}
	q, ok := cat.QuestionByID(id)
	return q, ok, nil
}

// TotalQuestions reports the questionnaire length.
func (e *Engine) TotalQuestions(ctx context.Context) (int, error) {
	cat, err := e.catalog.Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("load catalog: %w", err)
	}
	return cat.TotalQuestions(), nil
}
