// Package app wires the store and the core components from configuration.
package app

import (
	"context"

	"go.uber.org/zap"

	"kinship-graph/backend/internal/api"
	"kinship-graph/backend/internal/catalog"
	"kinship-graph/backend/internal/graph"
	"kinship-graph/backend/internal/resolver"
	"kinship-graph/backend/internal/search"
	"kinship-graph/backend/internal/store"
	"kinship-graph/backend/pkg/config"
)

// App holds the opened store and the components built on it
type App struct {
	Store    store.Store
	Catalog  *catalog.Catalog
	Graph    *graph.Repository
	Search   *search.Index
	Resolver *resolver.Resolver
	Config   *config.Config
}

// New opens the configured store and wires the core components. The
// relationship vocabulary is seeded when cfg.SeedCatalog is set and the
// catalog cache is warmed; failures of either are logged, not returned.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	s, err := store.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return NewWithStore(ctx, s, cfg, log), nil
}

// NewWithStore wires the core components on an already opened store
func NewWithStore(ctx context.Context, s store.Store, cfg *config.Config, log *zap.Logger) *App {
	types := catalog.New(s)
	if cfg.SeedCatalog {
		if _, err := types.Seed(ctx); err != nil {
			log.Error("Failed to seed relationship types", zap.Error(err))
		}
	}
	if err := types.Load(ctx); err != nil {
		log.Warn("Failed to warm relationship type cache", zap.Error(err))
	}

	graphRepo := graph.NewRepository(s, types, graph.Options{
		PathMaxDepth:  cfg.PathMaxDepth,
		EdgeScanLimit: cfg.EdgeScanLimit,
		FanOutLimit:   cfg.FanOutLimit,
	})
	index := search.NewIndex(s, cfg.SearchCandidateLimit)

	return &App{
		Store:    s,
		Catalog:  types,
		Graph:    graphRepo,
		Search:   index,
		Resolver: resolver.New(index, graphRepo, types),
		Config:   cfg,
	}
}

// Services returns the components served by the HTTP API
func (a *App) Services() api.Services {
	return api.Services{
		Graph:           a.Graph,
		Search:          a.Search,
		Resolver:        a.Resolver,
		Catalog:         a.Catalog,
		DefaultLanguage: a.Config.DefaultLanguage,
	}
}

// Close releases the store
func (a *App) Close(ctx context.Context) error {
	return a.Store.Close(ctx)
}
