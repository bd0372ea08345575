package graph

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"kinship-graph/backend/internal/entity"
	"kinship-graph/backend/internal/store"
	apperrors "kinship-graph/backend/pkg/errors"
)

// ============================================================================
// Edge Write Operations
// ============================================================================

// CreateEdge records a relationship from source to target and its inverse.
// Both edge rows are written first and their errors are returned; the four
// mirror writes that follow are best effort, so a successful return does not
// guarantee that traversal sees the new edge yet.
func (r *Repository) CreateEdge(ctx context.Context, owner string, source, target entity.Ref, relationType, language string, meta Meta) (Edge, Edge, error) {
	if source == nil {
		return Edge{}, Edge{}, apperrors.NewInvalidArgument("source", "must not be nil")
	}
	if target == nil {
		return Edge{}, Edge{}, apperrors.NewInvalidArgument("target", "must not be nil")
	}

	now := r.now()
	primary := Edge{
		Owner:        owner,
		EdgeID:       r.newID(),
		SourceID:     source.ID(),
		SourceKind:   source.Kind(),
		TargetID:     target.ID(),
		TargetKind:   target.Kind(),
		RelationType: relationType,
		Language:     language,
		IsPrimary:    true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	meta.apply(&primary)
	if err := validateEdge(primary); err != nil {
		return Edge{}, Edge{}, err
	}

	inverseType, found, err := r.types.GetInverse(ctx, relationType, language)
	if err != nil {
		return Edge{}, Edge{}, fmt.Errorf("failed to look up inverse of %s: %w", relationType, err)
	}
	if !found {
		inverseType = relationType
	}

	inverse := primary
	inverse.SourceID, inverse.TargetID = primary.TargetID, primary.SourceID
	inverse.SourceKind, inverse.TargetKind = primary.TargetKind, primary.SourceKind
	inverse.RelationType = inverseType
	inverse.IsPrimary = false

	if err := r.putEdgeRow(ctx, primary); err != nil {
		return Edge{}, Edge{}, err
	}
	if err := r.putEdgeRow(ctx, inverse); err != nil {
		return Edge{}, Edge{}, err
	}

	r.putMirrors(ctx, primary)
	r.putMirrors(ctx, inverse)

	r.logger.Debug("Relationship created",
		zap.String("owner", owner),
		zap.String("edge_id", primary.EdgeID),
		zap.String("source", entity.Key(source)),
		zap.String("target", entity.Key(target)),
		zap.String("type", relationType),
		zap.String("inverse_type", inverseType),
	)
	return primary, inverse, nil
}

// DeleteEdge removes every row sharing edgeID: both directions and their
// mirrors. Mirrors go first so a failure part way leaves authoritative rows
// that a later delete can still find. It reports whether any row existed.
func (r *Repository) DeleteEdge(ctx context.Context, owner, edgeID string) (bool, error) {
	edges, err := r.GetRelationship(ctx, owner, edgeID)
	if err != nil {
		return false, err
	}
	if len(edges) == 0 {
		return false, nil
	}

	for _, e := range edges {
		r.deleteMirrors(ctx, e)
	}
	for _, e := range edges {
		if err := r.store.Delete(ctx, tableEdges, owner, e.rowKey()); err != nil {
			return true, fmt.Errorf("failed to delete edge %s: %w", edgeID, err)
		}
	}

	r.logger.Debug("Relationship deleted",
		zap.String("owner", owner),
		zap.String("edge_id", edgeID),
		zap.Int("rows", len(edges)),
	)
	return true, nil
}

// UpdateEdge replaces one edge row and its own mirrors. The sibling row is
// left untouched; use UpdateRelationship to change both directions. The row
// is chosen by EdgeID and IsPrimary, and an edge whose endpoints are those of
// the other direction is rejected.
// CreatedAt of an existing row is preserved and UpdatedAt is set to now.
func (r *Repository) UpdateEdge(ctx context.Context, e Edge) (Edge, error) {
	if e.EdgeID == "" {
		return Edge{}, apperrors.NewInvalidArgument("edge_id", "must not be empty")
	}
	if err := validateEdge(e); err != nil {
		return Edge{}, err
	}

	now := r.now()
	previous, existed, err := r.getRow(ctx, e.Owner, e.rowKey())
	if err != nil {
		return Edge{}, err
	}
	if existed && e.SourceID != e.TargetID &&
		previous.SourceID == e.TargetID && previous.TargetID == e.SourceID {
		return Edge{}, apperrors.NewInvalidArgument("is_primary", "does not match the stored direction of this edge")
	}
	if existed {
		e.CreatedAt = previous.CreatedAt
	} else if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	if err := r.putEdgeRow(ctx, e); err != nil {
		return Edge{}, err
	}

	if existed && (previous.SourceID != e.SourceID || previous.TargetID != e.TargetID) {
		r.deleteMirrors(ctx, previous)
	}
	r.putMirrors(ctx, e)

	return e, nil
}

// UpdateRelationship applies meta to both directions of a relationship.
// It returns the updated rows, or none when the relationship does not exist.
func (r *Repository) UpdateRelationship(ctx context.Context, owner, edgeID string, meta Meta) ([]Edge, error) {
	edges, err := r.GetRelationship(ctx, owner, edgeID)
	if err != nil {
		return nil, err
	}

	updated := make([]Edge, 0, len(edges))
	for _, e := range edges {
		meta.apply(&e)
		out, err := r.UpdateEdge(ctx, e)
		if err != nil {
			return updated, err
		}
		updated = append(updated, out)
	}
	return updated, nil
}

// GetRelationship returns the rows stored under edgeID, primary first
func (r *Repository) GetRelationship(ctx context.Context, owner, edgeID string) ([]Edge, error) {
	if err := validateOwner(owner); err != nil {
		return nil, err
	}
	if err := validateEdgeID(edgeID); err != nil {
		return nil, err
	}
	if edgeID == "" {
		return nil, nil
	}

	rows, err := r.store.Scan(ctx, tableEdges, owner, store.Prefix(edgeID), 0)
	if err != nil {
		return nil, fmt.Errorf("failed to read edge %s: %w", edgeID, err)
	}

	edges := r.decodeRows(rows)
	sort.SliceStable(edges, func(i, j int) bool {
		return edges[i].IsPrimary && !edges[j].IsPrimary
	})
	return edges, nil
}

func (r *Repository) getRow(ctx context.Context, owner, key string) (Edge, bool, error) {
	data, err := r.store.Get(ctx, tableEdges, owner, key)
	if errors.Is(err, store.ErrNotFound) {
		return Edge{}, false, nil
	}
	if err != nil {
		return Edge{}, false, fmt.Errorf("failed to read edge row: %w", err)
	}
	edges := r.decodeRows([]store.Row{{Table: tableEdges, Partition: owner, Clustering: key, Value: data}})
	if len(edges) == 0 {
		return Edge{}, false, nil
	}
	return edges[0], true, nil
}
