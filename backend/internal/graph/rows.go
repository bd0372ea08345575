package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"kinship-graph/backend/internal/store"
	apperrors "kinship-graph/backend/pkg/errors"
	"kinship-graph/backend/pkg/metrics"
)

// ============================================================================
// Row and Mirror Helpers
// ============================================================================

func validateOwner(owner string) error {
	if strings.TrimSpace(owner) == "" {
		return apperrors.NewInvalidArgument("owner", "must not be empty")
	}
	if strings.Contains(owner, store.KeySep) {
		return apperrors.NewInvalidArgument("owner", fmt.Sprintf("must not contain %q", store.KeySep))
	}
	return nil
}

// validateEdgeID rejects ids that would make one edge's key a prefix of
// another's
func validateEdgeID(edgeID string) error {
	if strings.Contains(edgeID, store.KeySep) {
		return apperrors.NewInvalidArgument("edge_id", fmt.Sprintf("must not contain %q", store.KeySep))
	}
	return nil
}

func validateEdge(e Edge) error {
	if err := validateOwner(e.Owner); err != nil {
		return err
	}
	if err := validateEdgeID(e.EdgeID); err != nil {
		return err
	}
	switch {
	case e.SourceID == "":
		return apperrors.NewInvalidArgument("source", "id must not be empty")
	case e.TargetID == "":
		return apperrors.NewInvalidArgument("target", "id must not be empty")
	case strings.TrimSpace(e.RelationType) == "":
		return apperrors.NewInvalidArgument("relation_type", "must not be empty")
	case strings.TrimSpace(e.Language) == "":
		return apperrors.NewInvalidArgument("language", "must not be empty")
	case e.Certainty < 0 || e.Certainty > 100:
		return apperrors.NewInvalidArgument("certainty", "must be between 0 and 100")
	case e.StartDate != nil && e.EndDate != nil && e.EndDate.Before(*e.StartDate):
		return apperrors.NewInvalidArgument("end_date", "must not be before start_date")
	}
	return nil
}

func encodeEdge(e Edge) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode edge %s: %w", e.EdgeID, err)
	}
	return data, nil
}

// decodeRows decodes stored edges, skipping rows that cannot be read
func (r *Repository) decodeRows(rows []store.Row) []Edge {
	edges := make([]Edge, 0, len(rows))
	for _, row := range rows {
		var e Edge
		if err := json.Unmarshal(row.Value, &e); err != nil {
			r.logger.Warn("Skipping unreadable edge row",
				zap.String("table", row.Table),
				zap.String("partition", row.Partition),
				zap.String("key", row.Clustering),
				zap.Error(err),
			)
			continue
		}
		edges = append(edges, e)
	}
	return edges
}

// putEdgeRow writes the authoritative row; failures propagate
func (r *Repository) putEdgeRow(ctx context.Context, e Edge) error {
	data, err := encodeEdge(e)
	if err != nil {
		return err
	}
	if err := r.store.Put(ctx, tableEdges, e.Owner, e.rowKey(), data); err != nil {
		return fmt.Errorf("failed to write edge %s: %w", e.EdgeID, err)
	}
	return nil
}

// putMirrors writes both index copies of e. Failures are logged and counted,
// never returned.
func (r *Repository) putMirrors(ctx context.Context, e Edge) {
	data, err := encodeEdge(e)
	if err != nil {
		r.logger.Error("Failed to encode edge mirror", zap.String("edge_id", e.EdgeID), zap.Error(err))
		return
	}
	r.mirrorWrite(ctx, "put", tableEdgesBySource, store.Key(e.Owner, e.SourceID), e, data)
	r.mirrorWrite(ctx, "put", tableEdgesByTarget, store.Key(e.Owner, e.TargetID), e, data)
}

// deleteMirrors removes both index copies of e, best effort
func (r *Repository) deleteMirrors(ctx context.Context, e Edge) {
	r.mirrorWrite(ctx, "delete", tableEdgesBySource, store.Key(e.Owner, e.SourceID), e, nil)
	r.mirrorWrite(ctx, "delete", tableEdgesByTarget, store.Key(e.Owner, e.TargetID), e, nil)
}

func (r *Repository) mirrorWrite(ctx context.Context, op, table, partition string, e Edge, data []byte) {
	var err error
	if op == "delete" {
		err = r.store.Delete(ctx, table, partition, e.rowKey())
	} else {
		err = r.store.Put(ctx, table, partition, e.rowKey(), data)
	}
	if err == nil {
		return
	}

	metrics.MirrorWriteFailures.WithLabelValues(table, op).Inc()
	r.logger.Warn("Index mirror write failed, mirror is now stale",
		zap.String("index", table),
		zap.String("op", op),
		zap.String("owner", e.Owner),
		zap.String("edge_id", e.EdgeID),
		zap.Bool("is_primary", e.IsPrimary),
		zap.Error(err),
	)
}
