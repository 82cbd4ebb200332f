package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/institutodpc/idc-soul-compass/internal/catalog"
	"github.com/institutodpc/idc-soul-compass/internal/scoring"
	"github.com/institutodpc/idc-soul-compass/internal/store"
)

// Mocks
type mockStore struct {
	questions []catalog.Question
	profiles  []catalog.Profile
	weights   []catalog.QuestionWeight
	hierarchy []catalog.HierarchyEntry

	savedScores map[uuid.UUID][]scoring.RankedScore
	seeded      *store.SeedData

	fetchErr error
	saveErr  error
}

func newMockStore() *mockStore {
	return &mockStore{
		questions: []catalog.Question{
			{ID: 1, Text: "I keep my guard up around people", Category: catalog.CategoryPersonalBehavior},
			{ID: 2, Text: "I feel distant in my prayer life", Category: catalog.CategorySpiritualPractice},
		},
		profiles: []catalog.Profile{
			{ID: 1, Name: "Refuge of Control"},
			{ID: 2, Name: "Refuge of Approval"},
		},
		weights: []catalog.QuestionWeight{
			{QuestionID: 1, ProfileID: 1, Weight: 2},
			{QuestionID: 2, ProfileID: 2, Weight: 1},
		},
		savedScores: make(map[uuid.UUID][]scoring.RankedScore),
	}
}

func (m *mockStore) FetchQuestions(_ context.Context) ([]catalog.Question, error) {
	return m.questions, m.fetchErr
}
func (m *mockStore) FetchProfiles(_ context.Context) ([]catalog.Profile, error) {
	return m.profiles, m.fetchErr
}
func (m *mockStore) FetchProfileWeights(_ context.Context) ([]catalog.QuestionWeight, error) {
	return m.weights, m.fetchErr
}
func (m *mockStore) FetchProfileHierarchy(_ context.Context) ([]catalog.HierarchyEntry, error) {
	return m.hierarchy, nil
}
func (m *mockStore) SaveUserProfileScores(_ context.Context, id uuid.UUID, scores []scoring.RankedScore) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.savedScores[id] = scores
	return nil
}
func (m *mockStore) GetUserProfileScores(_ context.Context, id uuid.UUID) ([]scoring.RankedScore, error) {
	return m.savedScores[id], nil
}
func (m *mockStore) ReplaceCatalog(_ context.Context, data *store.SeedData) error {
	m.seeded = data
	return nil
}
func (m *mockStore) Close() error { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(m *mockStore, adminToken string) http.Handler {
	cache := catalog.NewCache(m, testLogger())
	engine := scoring.NewEngine(scoring.DefaultParams(), cache, m, nil, testLogger())
	return NewRouter(m, cache, engine, nil, adminToken, []string{"*"}, testLogger())
}

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetQuestions(t *testing.T) {
	router := newTestRouter(newMockStore(), "")

	rec := doRequest(t, router, http.MethodGet, "/api/v1/questions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var questions []catalog.Question
	if err := json.Unmarshal(rec.Body.Bytes(), &questions); err != nil {
		t.Fatal(err)
	}
	if len(questions) != 2 {
		t.Errorf("expected 2 questions, got %d", len(questions))
	}
}

func TestGetQuestionByID(t *testing.T) {
	router := newTestRouter(newMockStore(), "")

	rec := doRequest(t, router, http.MethodGet, "/api/v1/questions/2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var q catalog.Question
	if err := json.Unmarshal(rec.Body.Bytes(), &q); err != nil {
		t.Fatal(err)
	}
	if q.ID != 2 {
		t.Errorf("expected question 2, got %d", q.ID)
	}

	rec = doRequest(t, router, http.MethodGet, "/api/v1/questions/99", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown question, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodGet, "/api/v1/questions/abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad id, got %d", rec.Code)
	}
}

func TestGetQuestionCount(t *testing.T) {
	router := newTestRouter(newMockStore(), "")

	rec := doRequest(t, router, http.MethodGet, "/api/v1/questions/count", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["total"] != 2 {
		t.Errorf("expected total 2, got %d", body["total"])
	}
}

func TestCalculateResults(t *testing.T) {
	m := newMockStore()
	router := newTestRouter(m, "")
	respondent := uuid.New()

	rec := doRequest(t, router, http.MethodPost, "/api/v1/results", CalculateRequest{
		RespondentID: respondent.String(),
		Answers: []catalog.UserAnswer{
			{QuestionID: 1, Value: 3},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result scoring.QuizResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if result.PrimaryProfile.ID != 1 {
		t.Errorf("expected primary profile 1, got %d", result.PrimaryProfile.ID)
	}
	if len(result.ProfileScores) != 2 {
		t.Errorf("expected full score list, got %+v", result.ProfileScores)
	}

	if _, ok := m.savedScores[respondent]; !ok {
		t.Error("expected scores persisted for respondent")
	}
}

func TestCalculateResultsBadRequest(t *testing.T) {
	router := newTestRouter(newMockStore(), "")

	rec := doRequest(t, router, http.MethodPost, "/api/v1/results", CalculateRequest{
		RespondentID: "not-a-uuid",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestCalculateResultsCatalogDown(t *testing.T) {
	m := newMockStore()
	m.fetchErr = errors.New("connection refused")
	router := newTestRouter(m, "")

	rec := doRequest(t, router, http.MethodPost, "/api/v1/results", CalculateRequest{
		RespondentID: uuid.NewString(),
	})
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 when catalog is down, got %d", rec.Code)
	}
}

func TestCalculateResultsSurvivesSaveFailure(t *testing.T) {
	m := newMockStore()
	m.saveErr = errors.New("disk full")
	router := newTestRouter(m, "")

	rec := doRequest(t, router, http.MethodPost, "/api/v1/results", CalculateRequest{
		RespondentID: uuid.NewString(),
		Answers:      []catalog.UserAnswer{{QuestionID: 1, Value: 2}},
	})
	if rec.Code != http.StatusOK {
		t.Errorf("persistence failure must not fail the request, got %d", rec.Code)
	}
}

func TestGetRespondentScores(t *testing.T) {
	m := newMockStore()
	respondent := uuid.New()
	m.savedScores[respondent] = []scoring.RankedScore{
		{ProfileID: 1, Score: 90},
		{ProfileID: 2, Score: 55},
	}
	router := newTestRouter(m, "")

	rec := doRequest(t, router, http.MethodGet, "/api/v1/respondents/"+respondent.String()+"/scores", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var scores []scoring.RankedScore
	if err := json.Unmarshal(rec.Body.Bytes(), &scores); err != nil {
		t.Fatal(err)
	}
	if len(scores) != 2 {
		t.Errorf("expected 2 scores, got %d", len(scores))
	}

	// Unknown respondent gets an empty list, not an error
	rec = doRequest(t, router, http.MethodGet, "/api/v1/respondents/"+uuid.NewString()+"/scores", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() == "null\n" {
		t.Error("expected empty array, got null")
	}
}

func TestExplain(t *testing.T) {
	router := newTestRouter(newMockStore(), "")

	rec := doRequest(t, router, http.MethodPost, "/api/v1/results/explain", ExplainRequest{
		Answers: []catalog.UserAnswer{{QuestionID: 1, Value: 3}},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var breakdown []scoring.ProfileScore
	if err := json.Unmarshal(rec.Body.Bytes(), &breakdown); err != nil {
		t.Fatal(err)
	}
	if len(breakdown) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(breakdown))
	}
	if breakdown[0].NormalizedScore != 100 {
		t.Errorf("expected top score 100, got %f", breakdown[0].NormalizedScore)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := NewMetricsRouter()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
