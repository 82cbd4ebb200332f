package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/institutodpc/idc-soul-compass/internal/catalog"
)

// CatalogHandler serves the read-only reference data: the questionnaire and
// the profile definitions.
type CatalogHandler struct {
	cache *catalog.Cache
}

func NewCatalogHandler(cache *catalog.Cache) *CatalogHandler {
	return &CatalogHandler{cache: cache}
}

func (h *CatalogHandler) Questions(w http.ResponseWriter, r *http.Request) {
	cat, err := h.cache.Get(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	questions := cat.Questions
	if questions == nil {
		questions = []catalog.Question{}
	}
	writeJSON(w, http.StatusOK, questions)
}

func (h *CatalogHandler) Question(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid question id"})
		return
	}

	cat, err := h.cache.Get(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	q, ok := cat.QuestionByID(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "question not found"})
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *CatalogHandler) QuestionCount(w http.ResponseWriter, r *http.Request) {
	cat, err := h.cache.Get(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"total": cat.TotalQuestions()})
}

func (h *CatalogHandler) Profiles(w http.ResponseWriter, r *http.Request) {
	cat, err := h.cache.Get(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	profiles := cat.Profiles
	if profiles == nil {
		profiles = []catalog.Profile{}
	}
	writeJSON(w, http.StatusOK, profiles)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
