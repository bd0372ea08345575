// Package graph implements the relationship graph on top of a wide-column
// store. Each logical relationship is stored as two edge rows (primary and
// inverse) plus a by-source and a by-target mirror of each row. Mirrors are
// a manually maintained materialized view: the edge rows are authoritative,
// mirror writes are best effort and a lagging mirror only makes traversal
// results incomplete.
package graph

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kinship-graph/backend/internal/store"
	"kinship-graph/backend/pkg/logger"
)

const (
	tableEdges         = "edges"
	tableEdgesBySource = "edges_by_source"
	tableEdgesByTarget = "edges_by_target"
)

// InverseLookup resolves the registered inverse of a relation type
type InverseLookup interface {
	GetInverse(ctx context.Context, typ, language string) (string, bool, error)
}

// Options bounds the work done by reads
type Options struct {
	PathMaxDepth  int // used by FindPath when the caller passes a negative depth
	EdgeScanLimit int // rows read by the scan-then-filter pair lookup
	FanOutLimit   int // rows read from one entity's mirror partition
}

// DefaultOptions returns the standard bounds
func DefaultOptions() Options {
	return Options{
		PathMaxDepth:  3,
		EdgeScanLimit: 10000,
		FanOutLimit:   1000,
	}
}

// Repository handles all relationship graph operations
type Repository struct {
	store  store.Store
	types  InverseLookup
	logger *zap.Logger
	opts   Options

	newID func() string
	now   func() time.Time
}

// NewRepository creates a new graph repository
func NewRepository(s store.Store, types InverseLookup, opts Options) *Repository {
	defaults := DefaultOptions()
	if opts.PathMaxDepth < 0 {
		opts.PathMaxDepth = defaults.PathMaxDepth
	}
	if opts.EdgeScanLimit <= 0 {
		opts.EdgeScanLimit = defaults.EdgeScanLimit
	}
	if opts.FanOutLimit <= 0 {
		opts.FanOutLimit = defaults.FanOutLimit
	}

	return &Repository{
		store:  s,
		types:  types,
		logger: logger.Named("graph"),
		opts:   opts,
		newID:  uuid.NewString,
		now:    func() time.Time { return time.Now().UTC() },
	}
}
