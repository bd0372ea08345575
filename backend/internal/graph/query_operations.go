package graph

import (
	"context"
	"fmt"

	"kinship-graph/backend/internal/store"
)

// ============================================================================
// Edge Read Operations
// ============================================================================

// GetEdgesFrom returns the edges leaving entityID, read from the by-source
// index. With primaryOnly each logical relationship appears at most once.
func (r *Repository) GetEdgesFrom(ctx context.Context, owner, entityID string, primaryOnly bool) ([]Edge, error) {
	return r.readMirror(ctx, tableEdgesBySource, owner, entityID, primaryOnly)
}

// GetEdgesTo returns the edges arriving at entityID, read from the by-target index
func (r *Repository) GetEdgesTo(ctx context.Context, owner, entityID string, primaryOnly bool) ([]Edge, error) {
	return r.readMirror(ctx, tableEdgesByTarget, owner, entityID, primaryOnly)
}

func (r *Repository) readMirror(ctx context.Context, table, owner, entityID string, primaryOnly bool) ([]Edge, error) {
	if err := validateOwner(owner); err != nil {
		return nil, err
	}
	if entityID == "" {
		return nil, nil
	}

	rows, err := r.store.Scan(ctx, table, store.Key(owner, entityID), "", r.opts.FanOutLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s for %s: %w", table, entityID, err)
	}

	edges := r.decodeRows(rows)
	if !primaryOnly {
		return edges, nil
	}
	filtered := edges[:0]
	for _, e := range edges {
		if e.IsPrimary {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// GetEdge finds the edge from sourceID to targetID, optionally restricted to
// relationType. There is no index on the pair: this reads at most
// EdgeScanLimit rows of the owner's edges and filters them in memory, so on
// very large owners a matching edge past the bound is reported as not found.
// When several edges match, the most recently updated wins, then the primary
// direction, then the lowest edge id.
func (r *Repository) GetEdge(ctx context.Context, owner, sourceID, targetID, relationType string) (Edge, bool, error) {
	if err := validateOwner(owner); err != nil {
		return Edge{}, false, err
	}

	rows, err := r.store.Scan(ctx, tableEdges, owner, "", r.opts.EdgeScanLimit)
	if err != nil {
		return Edge{}, false, fmt.Errorf("failed to scan edges: %w", err)
	}

	var (
		best  Edge
		found bool
	)
	for _, e := range r.decodeRows(rows) {
		if e.SourceID != sourceID || e.TargetID != targetID {
			continue
		}
		if relationType != "" && e.RelationType != relationType {
			continue
		}
		if !found || preferEdge(e, best) {
			best, found = e, true
		}
	}
	return best, found, nil
}

// preferEdge reports whether a ranks before b in GetEdge's tie-break
func preferEdge(a, b Edge) bool {
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	if a.IsPrimary != b.IsPrimary {
		return a.IsPrimary
	}
	return a.EdgeID < b.EdgeID
}
