package events

import "time"

type ProfileScoreEntry struct {
	ProfileID int `json:"profile_id"`
	Score     int `json:"score"`
}

type QuizCompletedEvent struct {
	RespondentID        string              `json:"respondent_id"`
	PrimaryProfileID    int                 `json:"primary_profile_id"`
	SecondaryProfileIDs []int               `json:"secondary_profile_ids,omitempty"`
	Scores              []ProfileScoreEntry `json:"scores"`
	CompletedAt         time.Time           `json:"completed_at"`
}

type ScoresPersistFailedEvent struct {
	RespondentID string `json:"respondent_id"`
	Error        string `json:"error"`
}

type CatalogReloadedEvent struct {
	Generation int       `json:"generation"`
	At         time.Time `json:"at"`
}

type CatalogSeededEvent struct {
	Questions int       `json:"questions"`
	Profiles  int       `json:"profiles"`
	Weights   int       `json:"weights"`
	Hierarchy int       `json:"hierarchy"`
	At        time.Time `json:"at"`
}
