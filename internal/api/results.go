package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/institutodpc/idc-soul-compass/internal/catalog"
	"github.com/institutodpc/idc-soul-compass/internal/scoring"
	"github.com/institutodpc/idc-soul-compass/internal/store"
)

type ResultsHandler struct {
	engine *scoring.Engine
	store  store.Store
}

func NewResultsHandler(engine *scoring.Engine, s store.Store) *ResultsHandler {
	return &ResultsHandler{engine: engine, store: s}
}

type CalculateRequest struct {
	RespondentID string               `json:"respondent_id"`
	Answers      []catalog.UserAnswer `json:"answers"`
}

// Calculate handles POST /api/v1/results: score the answers, select the
// profiles, and return the result. Persistence problems never surface here;
// only a catalog failure produces an error response.
func (h *ResultsHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	respondentID, err := uuid.Parse(req.RespondentID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid respondent_id"})
		return
	}

	result, err := h.engine.CalculateResults(r.Context(), respondentID, req.Answers)
	if err != nil {
		if errors.Is(err, scoring.ErrNoProfiles) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type ExplainRequest struct {
	Answers []catalog.UserAnswer `json:"answers"`
}

// Explain handles POST /api/v1/results/explain: the full ranked breakdown
// (raw score, ceiling, normalized score, hierarchy position) without
// persisting anything.
func (h *ResultsHandler) Explain(w http.ResponseWriter, r *http.Request) {
	var req ExplainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	breakdown, err := h.engine.ScoreBreakdown(r.Context(), req.Answers)
	if err != nil {
		if errors.Is(err, scoring.ErrNoProfiles) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, breakdown)
}

// Scores handles GET /api/v1/respondents/{id}/scores: the persisted scores
// from the respondent's latest run.
func (h *ResultsHandler) Scores(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid respondent id"})
		return
	}

	scores, err := h.store.GetUserProfileScores(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if scores == nil {
		scores = []scoring.RankedScore{}
	}
	writeJSON(w, http.StatusOK, scores)
}
