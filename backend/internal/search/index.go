// Package search maintains a per-owner inverted index of entity display
// names and answers fuzzy, ranked and paginated name queries from it.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"kinship-graph/backend/internal/entity"
	"kinship-graph/backend/internal/store"
	apperrors "kinship-graph/backend/pkg/errors"
	"kinship-graph/backend/pkg/logger"
)

const (
	tableEntries = "search_entries"
	tableNames   = "search_names"

	// DefaultCandidateLimit bounds the entries read per query word
	DefaultCandidateLimit = 1000
)

// entry is one stored (token, entity) pair
type entry struct {
	Token       string      `json:"token"`
	EntityID    string      `json:"entity_id"`
	Kind        entity.Kind `json:"kind"`
	DisplayText string      `json:"display_text"`
}

type nameRecord struct {
	DisplayText string      `json:"display_text"`
	Kind        entity.Kind `json:"kind"`
}

// Index is the search index
type Index struct {
	store          store.Store
	logger         *zap.Logger
	candidateLimit int
}

// NewIndex creates an index on s. candidateLimit <= 0 selects DefaultCandidateLimit.
func NewIndex(s store.Store, candidateLimit int) *Index {
	if candidateLimit <= 0 {
		candidateLimit = DefaultCandidateLimit
	}
	return &Index{
		store:          s,
		logger:         logger.Named("search"),
		candidateLimit: candidateLimit,
	}
}

// Index writes one entry per distinct normalized word of displayText for ref
// and records displayText as the entity's current name. Entries written for
// earlier display texts are kept.
func (ix *Index) Index(ctx context.Context, owner, displayText string, ref entity.Ref) error {
	if err := validateOwner(owner); err != nil {
		return err
	}
	if ref == nil || ref.ID() == "" {
		return apperrors.NewInvalidArgument("entity", "reference must have an id")
	}

	g, gctx := errgroup.WithContext(ctx)

	for _, word := range distinctWords(displayText) {
		e := entry{Token: word, EntityID: ref.ID(), Kind: ref.Kind(), DisplayText: displayText}
		g.Go(func() error {
			data, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("failed to encode search entry: %w", err)
			}
			key := store.Key(e.Token, string(e.Kind), e.EntityID)
			if err := ix.store.Put(gctx, tableEntries, owner, key, data); err != nil {
				return fmt.Errorf("failed to write search entry %q: %w", e.Token, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		data, err := json.Marshal(nameRecord{DisplayText: displayText, Kind: ref.Kind()})
		if err != nil {
			return fmt.Errorf("failed to encode display name: %w", err)
		}
		if err := ix.store.Put(gctx, tableNames, owner, ref.ID(), data); err != nil {
			return fmt.Errorf("failed to write display name: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	ix.logger.Debug("Entity indexed",
		zap.String("owner", owner),
		zap.String("entity", entity.Key(ref)),
		zap.String("normalized", Normalize(displayText)),
	)
	return nil
}

// DisplayName returns the text the entity was last indexed under
func (ix *Index) DisplayName(ctx context.Context, owner, entityID string) (string, bool, error) {
	if err := validateOwner(owner); err != nil {
		return "", false, err
	}
	if entityID == "" {
		return "", false, nil
	}

	data, err := ix.store.Get(ctx, tableNames, owner, entityID)
	if errors.Is(err, store.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read display name: %w", err)
	}

	var rec nameRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		ix.logger.Warn("Unreadable display name", zap.String("entity_id", entityID), zap.Error(err))
		return "", false, nil
	}
	return rec.DisplayText, true, nil
}

func validateOwner(owner string) error {
	if strings.TrimSpace(owner) == "" {
		return apperrors.NewInvalidArgument("owner", "must not be empty")
	}
	if strings.Contains(owner, store.KeySep) {
		return apperrors.NewInvalidArgument("owner", fmt.Sprintf("must not contain %q", store.KeySep))
	}
	return nil
}
