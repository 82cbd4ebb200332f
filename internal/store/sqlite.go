package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // driver: sqlite

	"github.com/institutodpc/idc-soul-compass/internal/catalog"
	"github.com/institutodpc/idc-soul-compass/internal/scoring"
)

// SQLiteStore backs local and single-node deployments. Schema is ensured on
// open, so a fresh file (or :memory:) is immediately usable.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(ctx context.Context, dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		dsn = "file:soulcompass.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaSQLite); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS questions (
  id INTEGER PRIMARY KEY,
  text TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS profiles (
  id INTEGER PRIMARY KEY,
  name TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  refuge TEXT NOT NULL DEFAULT '',
  biblical_character TEXT NOT NULL DEFAULT '',
  exaltation TEXT NOT NULL DEFAULT '',
  formation TEXT NOT NULL DEFAULT '',
  common_pains TEXT,   -- JSON array
  exit_steps TEXT,     -- JSON array
  prophetic_summary TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS profile_weights (
  question_id INTEGER NOT NULL,
  profile_id INTEGER,
  weight REAL
);

CREATE TABLE IF NOT EXISTS profile_hierarchy (
  profile_id INTEGER PRIMARY KEY,
  hierarchy_position INTEGER NOT NULL,
  dominance_level TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS user_profile_scores (
  user_id TEXT NOT NULL,
  profile_id INTEGER NOT NULL,
  score INTEGER NOT NULL,
  created_at INTEGER NOT NULL DEFAULT (unixepoch()),
  PRIMARY KEY (user_id, profile_id)
);
`

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) FetchQuestions(ctx context.Context) ([]catalog.Question, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, text, category FROM questions ORDER BY id`)
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

func (s *SQLiteStore) FetchProfiles(ctx context.Context) ([]catalog.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, refuge, biblical_character,
			exaltation, formation, common_pains, exit_steps, prophetic_summary
		FROM profiles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []catalog.Profile
	for rows.Next() {
		var p catalog.Profile
		var pains, steps sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Refuge, &p.BiblicalCharacter,
			&p.Exaltation, &p.Formation, &pains, &steps, &p.PropheticSummary); err != nil {
			return nil, err
		}
		if pains.Valid && pains.String != "" {
			_ = json.Unmarshal([]byte(pains.String), &p.CommonPains)
		}
		if steps.Valid && steps.String != "" {
			_ = json.Unmarshal([]byte(steps.String), &p.ExitSteps)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (s *SQLiteStore) FetchProfileWeights(ctx context.Context) ([]catalog.QuestionWeight, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT question_id, profile_id, weight FROM profile_weights
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

func (s *SQLiteStore) FetchProfileHierarchy(ctx context.Context) ([]catalog.HierarchyEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT profile_id, hierarchy_position, dominance_level
		FROM profile_hierarchy ORDER BY hierarchy_position`)
	if err != nil {
		if strings.Contains(err.Error(), "no such table") {
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

func (s *SQLiteStore) SaveUserProfileScores(ctx context.Context, respondentID uuid.UUID, scores []scoring.RankedScore) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_profile_scores WHERE user_id = ?`, respondentID.String()); err != nil {
		return fmt.Errorf("clear previous scores: %w", err)
	}
	for _, sc := range scores {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO user_profile_scores (user_id, profile_id, score)
			VALUES (?, ?, ?)`, respondentID.String(), sc.ProfileID, sc.Score); err != nil {
			return fmt.Errorf("insert score for profile %d: %w", sc.ProfileID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetUserProfileScores(ctx context.Context, respondentID uuid.UUID) ([]scoring.RankedScore, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT profile_id, score FROM user_profile_scores
		WHERE user_id = ? ORDER BY score DESC, profile_id`, respondentID.String())
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

func (s *SQLiteStore) ReplaceCatalog(ctx context.Context, data *SeedData) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"profile_hierarchy", "profile_weights", "questions", "profiles"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, q := range data.Questions {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO questions (id, text, category) VALUES (?, ?, ?)`,
			q.ID, q.Text, string(q.Category)); err != nil {
			return fmt.Errorf("insert question %d: %w", q.ID, err)
		}
	}
	for _, p := range data.Profiles {
		pains, _ := json.Marshal(p.CommonPains)
		steps, _ := json.Marshal(p.ExitSteps)
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO profiles (id, name, description, refuge, biblical_character,
				exaltation, formation, common_pains, exit_steps, prophetic_summary)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.Description, p.Refuge, p.BiblicalCharacter,
			p.Exaltation, p.Formation, string(pains), string(steps), p.PropheticSummary); err != nil {
			return fmt.Errorf("insert profile %d: %w", p.ID, err)
		}
	}
	for _, w := range data.Weights {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO profile_weights (question_id, profile_id, weight)
			VALUES (?, ?, ?)`, w.QuestionID, w.ProfileID, w.Weight); err != nil {
			return fmt.Errorf("insert weight (%d,%d): %w", w.QuestionID, w.ProfileID, err)
		}
	}
	for _, h := range data.Hierarchy {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO profile_hierarchy (profile_id, hierarchy_position, dominance_level)
			VALUES (?, ?, ?)`, h.ProfileID, h.Position, string(h.Dominance)); err != nil {
			return fmt.Errorf("insert hierarchy for profile %d: %w", h.ProfileID, err)
		}
	}
	return tx.Commit()
}
