package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"kinship-graph/backend/pkg/config"
)

// Open connects the backend selected by cfg.StoreBackend and wraps it with
// metrics instrumentation.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (Store, error) {
	var (
		inner Store
		err   error
	)

	switch cfg.StoreBackend {
	case config.BackendMemory:
		inner = NewMemoryStore()
	case config.BackendPostgres:
		inner, err = OpenPostgres(ctx, cfg.DatabaseURL)
	case config.BackendNeo4j:
		inner, err = OpenNeo4j(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.StoreBackend)
	}
	if err != nil {
		return nil, err
	}

	log.Info("Store opened", zap.String("backend", cfg.StoreBackend))
	return NewInstrumented(inner, cfg.StoreBackend), nil
}
