package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/institutodpc/idc-soul-compass/internal/catalog"
	"github.com/institutodpc/idc-soul-compass/internal/events"
	"github.com/institutodpc/idc-soul-compass/internal/store"
)

type AdminHandler struct {
	store  store.Store
	cache  *catalog.Cache
	events events.Client
}

func NewAdminHandler(s store.Store, cache *catalog.Cache, ev events.Client) *AdminHandler {
	return &AdminHandler{store: s, cache: cache, events: ev}
}

// Stats handles GET /api/v1/admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	cat, err := h.cache.Get(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"generation": h.cache.Generation(),
		"questions":  len(cat.Questions),
		"profiles":   len(cat.Profiles),
		"weights":    len(cat.Weights),
	})
}

// Reload handles POST /api/v1/admin/catalog/reload: drop the cached catalog
// so the next request loads fresh reference data.
func (h *AdminHandler) Reload(w http.ResponseWriter, r *http.Request) {
	h.cache.Invalidate()

	if h.events != nil {
		_ = h.events.Publish(events.SubjectCatalogReloaded(), events.CatalogReloadedEvent{
			Generation: h.cache.Generation(),
			At:         time.Now().UTC(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Seed handles POST /api/v1/admin/catalog/seed: replace the full reference
// data set and invalidate the cache.
func (h *AdminHandler) Seed(w http.ResponseWriter, r *http.Request) {
	var data store.SeedData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(data.Questions) == 0 || len(data.Profiles) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "questions and profiles required"})
		return
	}

	if err := h.store.ReplaceCatalog(r.Context(), &data); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	h.cache.Invalidate()

	if h.events != nil {
		_ = h.events.Publish(events.SubjectCatalogSeeded(), events.CatalogSeededEvent{
			Questions: len(data.Questions),
			Profiles:  len(data.Profiles),
			Weights:   len(data.Weights),
			Hierarchy: len(data.Hierarchy),
			At:        time.Now().UTC(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"questions": len(data.Questions),
		"profiles":  len(data.Profiles),
		"weights":   len(data.Weights),
		"hierarchy": len(data.Hierarchy),
	})
}
