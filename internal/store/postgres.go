package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/institutodpc/idc-soul-compass/internal/catalog"
	"github.com/institutodpc/idc-soul-compass/internal/scoring"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) FetchQuestions(ctx context.Context) ([]catalog.Question, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, COALESCE(text, ''), COALESCE(category, '')
		FROM questions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []catalog.Question
	for rows.Next() {
		var q catalog.Question
		var category string
		if err := rows.Scan(&q.ID, &q.Text, &category); err != nil {
			return nil, err
		}
		q.Category = catalog.QuestionCategory(category)
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *PostgresStore) FetchProfiles(ctx context.Context) ([]catalog.Profile, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, COALESCE(name, ''), COALESCE(description, ''),
			COALESCE(refuge, ''), COALESCE(biblical_character, ''),
			COALESCE(exaltation, ''), COALESCE(formation, ''),
			common_pains, exit_steps,
			COALESCE(prophetic_summary, '')
		FROM profiles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []catalog.Profile
	for rows.Next() {
		var p catalog.Profile
		var pains, steps []byte
		if err := rows.Scan(&p.ID, &p.Name, &p.Description,
			&p.Refuge, &p.BiblicalCharacter,
			&p.Exaltation, &p.Formation,
			&pains, &steps,
			&p.PropheticSummary,
		); err != nil {
			return nil, err
		}
		if pains != nil {
			_ = json.Unmarshal(pains, &p.CommonPains)
		}
		if steps != nil {
			_ = json.Unmarshal(steps, &p.ExitSteps)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (s *PostgresStore) FetchProfileWeights(ctx context.Context) ([]catalog.QuestionWeight, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT question_id, profile_id, weight
		FROM profile_weights
		WHERE profile_id IS NOT NULL AND weight IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var weights []catalog.QuestionWeight
	for rows.Next() {
		var w catalog.QuestionWeight
		if err := rows.Scan(&w.QuestionID, &w.ProfileID, &w.Weight); err != nil {
			return nil, err
		}
		weights = append(weights, w)
	}
	return weights, rows.Err()
}

func (s *PostgresStore) FetchProfileHierarchy(ctx context.Context) ([]catalog.HierarchyEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT profile_id, hierarchy_position, dominance_level
		FROM profile_hierarchy ORDER BY hierarchy_position`)
	if err != nil {
		// A deployment without the hierarchy table degrades to defaults.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "42P01" { // undefined_table
			return nil, nil
		}
		return nil, err
	}
	defer rows.Close()

	var entries []catalog.HierarchyEntry
	for rows.Next() {
		var h catalog.HierarchyEntry
		var dominance string
		if err := rows.Scan(&h.ProfileID, &h.Position, &dominance); err != nil {
			return nil, err
		}
		h.Dominance = catalog.DominanceLevel(dominance)
		entries = append(entries, h)
	}
	return entries, rows.Err()
}

func (s *PostgresStore) SaveUserProfileScores(ctx context.Context, respondentID uuid.UUID, scores []scoring.RankedScore) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM user_profile_scores WHERE user_id = $1`, respondentID); err != nil {
		return fmt.Errorf("clear previous scores: %w", err)
	}
	for _, sc := range scores {
		if _, err := tx.Exec(ctx, `
			INSERT INTO user_profile_scores (user_id, profile_id, score)
			VALUES ($1, $2, $3)`, respondentID, sc.ProfileID, sc.Score); err != nil {
			return fmt.Errorf("insert score for profile %d: %w", sc.ProfileID, err)
		}
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) GetUserProfileScores(ctx context.Context, respondentID uuid.UUID) ([]scoring.RankedScore, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT profile_id, score FROM user_profile_scores
		WHERE user_id = $1 ORDER BY score DESC, profile_id`, respondentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []scoring.RankedScore
	for rows.Next() {
		var sc scoring.RankedScore
		if err := rows.Scan(&sc.ProfileID, &sc.Score); err != nil {
			return nil, err
		}
		scores = append(scores, sc)
	}
	return scores, rows.Err()
}

func (s *PostgresStore) ReplaceCatalog(ctx context.Context, data *SeedData) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{"profile_hierarchy", "profile_weights", "questions", "profiles"} {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, q := range data.Questions {
		if _, err := tx.Exec(ctx, `
			INSERT INTO questions (id, text, category) VALUES ($1, $2, $3)`,
			q.ID, q.Text, string(q.Category)); err != nil {
			return fmt.Errorf("insert question %d: %w", q.ID, err)
		}
	}
	for _, p := range data.Profiles {
		pains, _ := json.Marshal(p.CommonPains)
		steps, _ := json.Marshal(p.ExitSteps)
		if _, err := tx.Exec(ctx, `
			INSERT INTO profiles (id, name, description, refuge, biblical_character,
				exaltation, formation, common_pains, exit_steps, prophetic_summary)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			p.ID, p.Name, p.Description, p.Refuge, p.BiblicalCharacter,
			p.Exaltation, p.Formation, pains, steps, p.PropheticSummary); err != nil {
			return fmt.Errorf("insert profile %d: %w", p.ID, err)
		}
	}
	if err := s.copyWeights(ctx, tx, data.Weights); err != nil {
		return err
	}
	for _, h := range data.Hierarchy {
		if _, err := tx.Exec(ctx, `
			INSERT INTO profile_hierarchy (profile_id, hierarchy_position, dominance_level)
			VALUES ($1, $2, $3)`, h.ProfileID, h.Position, string(h.Dominance)); err != nil {
			return fmt.Errorf("insert hierarchy for profile %d: %w", h.ProfileID, err)
		}
	}
	return tx.Commit(ctx)
}

// copyWeights bulk-inserts the weight matrix; it is by far the largest seed
// table.
func (s *PostgresStore) copyWeights(ctx context.Context, tx pgx.Tx, weights []catalog.QuestionWeight) error {
	if len(weights) == 0 {
		return nil
	}
	rows := make([][]interface{}, 0, len(weights))
	for _, w := range weights {
		rows = append(rows, []interface{}{w.QuestionID, w.ProfileID, w.Weight})
	}
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"profile_weights"},
		[]string{"question_id", "profile_id", "weight"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copy weights: %w", err)
	}
	return nil
}
