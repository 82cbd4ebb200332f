package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Source fetches reference data from the backing store.
type Source interface {
	FetchQuestions(ctx context.Context) ([]Question, error)
	FetchProfiles(ctx context.Context) ([]Profile, error)
	FetchProfileWeights(ctx context.Context) ([]QuestionWeight, error)
	FetchProfileHierarchy(ctx context.Context) ([]HierarchyEntry, error)
}

// Cache loads the catalog on first use and serves the same generation until
// Invalidate is called. Concurrent first access performs a single load; a
// failed load is not memoized, so the next Get retries.
type Cache struct {
	source Source
	logger *slog.Logger

	mu         sync.Mutex
	current    *Catalog
	generation int
}

func NewCache(source Source, logger *slog.Logger) *Cache {
	return &Cache{source: source, logger: logger}
}

func (c *Cache) Get(ctx context.Context) (*Catalog, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		return c.current, nil
	}

	cat, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	c.current = cat
	c.generation++
	c.logger.Info("catalog loaded",
		"generation", c.generation,
		"questions", len(cat.Questions),
		"profiles", len(cat.Profiles),
		"weights", len(cat.Weights),
	)
	return c.current, nil
}

func (c *Cache) load(ctx context.Context) (*Catalog, error) {
	questions, err := c.source.FetchQuestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}
	profiles, err := c.source.FetchProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch profiles: %w", err)
	}
	weights, err := c.source.FetchProfileWeights(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch profile weights: %w", err)
	}

	// Hierarchy is optional: without it every profile defaults to unranked
	// LOW dominance and near-ties fall back to score order.
	hierarchy, err := c.source.FetchProfileHierarchy(ctx)
	if err != nil {
		c.logger.Warn("hierarchy unavailable, using defaults", "error", err)
		hierarchy = nil
	}

	return New(questions, profiles, weights, hierarchy), nil
}

// Invalidate drops the cached generation. The next Get reloads from source.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
}

// Generation returns the number of successful loads so far.
func (c *Cache) Generation() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}
