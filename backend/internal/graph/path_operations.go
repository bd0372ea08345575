package graph

import (
	"context"

	"go.uber.org/zap"

	"kinship-graph/backend/pkg/metrics"
)

// ============================================================================
// Path Search
// ============================================================================

// FindPath searches for a chain of edges from startID to endID of at most
// maxDepth hops (PathMaxDepth when maxDepth is negative). The search is depth
// first over the by-source index and returns the first path it finds, which
// is not necessarily the shortest. No entity repeats within one path.
// startID == endID succeeds with an empty path for any depth.
func (r *Repository) FindPath(ctx context.Context, owner, startID, endID string, maxDepth int) ([]Edge, bool, error) {
	if err := validateOwner(owner); err != nil {
		return nil, false, err
	}
	if maxDepth < 0 {
		maxDepth = r.opts.PathMaxDepth
	}
	if startID == endID {
		metrics.PathSearches.WithLabelValues("found").Inc()
		return []Edge{}, true, nil
	}

	var (
		path    []Edge
		visited = map[string]bool{startID: true}
	)

	var search func(node string, depth int) (bool, error)
	search = func(node string, depth int) (bool, error) {
		if depth >= maxDepth {
			return false, nil
		}
		edges, err := r.GetEdgesFrom(ctx, owner, node, false)
		if err != nil {
			return false, err
		}
		for _, e := range edges {
			next := e.TargetID
			if visited[next] {
				continue
			}
			path = append(path, e)
			if next == endID {
				return true, nil
			}

			visited[next] = true
			found, err := search(next, depth+1)
			if err != nil || found {
				return found, err
			}
			delete(visited, next)
			path = path[:len(path)-1]
		}
		return false, nil
	}

	found, err := search(startID, 0)
	if err != nil {
		metrics.PathSearches.WithLabelValues("error").Inc()
		return nil, false, err
	}
	if !found {
		metrics.PathSearches.WithLabelValues("not_found").Inc()
		return nil, false, nil
	}

	metrics.PathSearches.WithLabelValues("found").Inc()
	r.logger.Debug("Path found",
		zap.String("owner", owner),
		zap.String("start", startID),
		zap.String("end", endID),
		zap.Int("hops", len(path)),
	)
	return path, true, nil
}
