package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/institutodpc/idc-soul-compass/internal/catalog"
	"github.com/institutodpc/idc-soul-compass/internal/events"
	"github.com/institutodpc/idc-soul-compass/internal/scoring"
	"github.com/institutodpc/idc-soul-compass/internal/store"
)

func NewRouter(s store.Store, cache *catalog.Cache, engine *scoring.Engine, ev events.Client, adminToken string, allowedOrigins []string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(120))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	cat := NewCatalogHandler(cache)
	results := NewResultsHandler(engine, s)
	admin := NewAdminHandler(s, cache, ev)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/questions", cat.Questions)
		r.Get("/questions/count", cat.QuestionCount)
		r.Get("/questions/{id}", cat.Question)
		r.Get("/profiles", cat.Profiles)

		r.Post("/results", results.Calculate)
		r.Post("/results/explain", results.Explain)
		r.Get("/respondents/{id}/scores", results.Scores)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(adminToken))
			r.Get("/admin/stats", admin.Stats)
			r.Post("/admin/catalog/reload", admin.Reload)
			r.Post("/admin/catalog/seed", admin.Seed)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
