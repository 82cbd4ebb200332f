package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/institutodpc/idc-soul-compass/internal/catalog"
	"github.com/institutodpc/idc-soul-compass/internal/store"
)

func adminRequest(router http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAdminAuthRequired(t *testing.T) {
	router := newTestRouter(newMockStore(), "topsecret")

	rec := adminRequest(router, http.MethodGet, "/api/v1/admin/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = adminRequest(router, http.MethodGet, "/api/v1/admin/stats", "wrong", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = adminRequest(router, http.MethodGet, "/api/v1/admin/stats", "topsecret", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminAuthDisabledWithoutToken(t *testing.T) {
	router := newTestRouter(newMockStore(), "")

	rec := adminRequest(router, http.MethodGet, "/api/v1/admin/stats", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminStats(t *testing.T) {
	router := newTestRouter(newMockStore(), "")

	rec := adminRequest(router, http.MethodGet, "/api/v1/admin/stats", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats["questions"])
	assert.Equal(t, 2, stats["profiles"])
	assert.Equal(t, 2, stats["weights"])
	assert.Equal(t, 1, stats["generation"])
}

func TestAdminCatalogReload(t *testing.T) {
	m := newMockStore()
	router := newTestRouter(m, "")

	// Prime the cache, mutate the backing data, then reload.
	rec := adminRequest(router, http.MethodGet, "/api/v1/admin/stats", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	m.questions = append(m.questions, catalog.Question{ID: 3, Text: "added"})
	rec = adminRequest(router, http.MethodPost, "/api/v1/admin/catalog/reload", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = adminRequest(router, http.MethodGet, "/api/v1/questions/count", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var count map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &count))
	assert.Equal(t, 3, count["total"])
}

func TestAdminCatalogSeed(t *testing.T) {
	m := newMockStore()
	router := newTestRouter(m, "")

	seed := store.SeedData{
		Questions: []catalog.Question{{ID: 1, Text: "q"}},
		Profiles:  []catalog.Profile{{ID: 1, Name: "p"}},
		Weights:   []catalog.QuestionWeight{{QuestionID: 1, ProfileID: 1, Weight: 1}},
	}
	rec := adminRequest(router, http.MethodPost, "/api/v1/admin/catalog/seed", "", seed)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, m.seeded)
	assert.Len(t, m.seeded.Questions, 1)
	assert.Len(t, m.seeded.Profiles, 1)
}

func TestAdminCatalogSeedValidation(t *testing.T) {
	router := newTestRouter(newMockStore(), "")

	rec := adminRequest(router, http.MethodPost, "/api/v1/admin/catalog/seed", "", store.SeedData{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
