package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kinship-graph/backend/internal/entity"
	"kinship-graph/backend/internal/graph"
	"kinship-graph/backend/internal/store"
	"kinship-graph/backend/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:                  "development",
		StoreBackend:         config.BackendMemory,
		DefaultLanguage:      "de",
		PathMaxDepth:         3,
		EdgeScanLimit:        10000,
		FanOutLimit:          1000,
		SearchCandidateLimit: 1000,
		SeedCatalog:          true,
	}
}

func TestNew_SeedsCatalog(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig(), zap.NewNop())
	require.NoError(t, err)
	defer a.Close(ctx)

	_, isInstrumented := a.Store.(*store.Instrumented)
	assert.True(t, isInstrumented)

	inverse, found, err := a.Catalog.GetInverse(ctx, "Mutter", "de")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Kind", inverse)
}

func TestNew_WithoutSeeding(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.SeedCatalog = false
	a, err := New(ctx, cfg, zap.NewNop())
	require.NoError(t, err)

	types, err := a.Catalog.ListTypes(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, types)
}

func TestNew_UnknownBackend(t *testing.T) {
	cfg := testConfig()
	cfg.StoreBackend = "cassandra"
	_, err := New(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestNewWithStore_EndToEnd(t *testing.T) {
	ctx := context.Background()
	a := NewWithStore(ctx, store.NewMemoryStore(), testConfig(), zap.NewNop())

	require.NoError(t, a.Search.Index(ctx, "o1", "John", entity.Person("john")))
	require.NoError(t, a.Search.Index(ctx, "o1", "Maria", entity.Person("maria")))
	_, _, err := a.Graph.CreateEdge(ctx, "o1", entity.Person("john"), entity.Person("maria"), "Mutter", "de", graph.Meta{})
	require.NoError(t, err)

	results, err := a.Resolver.Resolve(ctx, "o1", "John's Mutter")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Maria", results[0].Name)
	assert.Equal(t, "Mutter of John", results[0].Description)

	svc := a.Services()
	assert.Equal(t, "de", svc.DefaultLanguage)
	assert.Same(t, a.Graph, svc.Graph)
}
