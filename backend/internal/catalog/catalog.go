// Package catalog registers relationship types, their inverses and their
// translations. The vocabulary is global, shared by every owner, and is
// served from a process-wide cache that is filled on first use and kept
// current by writes through this package.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"kinship-graph/backend/internal/store"
	apperrors "kinship-graph/backend/pkg/errors"
	"kinship-graph/backend/pkg/logger"
)

const (
	tableTypes      = "relationship_types"
	tableMeta       = "catalog_meta"
	globalPartition = "global"
)

// Type is one relationship type in one language
type Type struct {
	Type        string `json:"type"`
	Language    string `json:"language"`
	DisplayName string `json:"display_name"`
	InverseType string `json:"inverse_type,omitempty"`
	Category    string `json:"category,omitempty"`
}

// Catalog is the relationship type registry
type Catalog struct {
	store  store.Store
	logger *zap.Logger

	// writeMu orders AddType against Load so a reload never drops a type
	// written after its scan.
	writeMu sync.Mutex

	mu     sync.RWMutex
	loaded bool
	types  map[string]Type // keyed by language|type
}

// New creates a catalog on top of s
func New(s store.Store) *Catalog {
	return &Catalog{
		store:  s,
		logger: logger.Named("catalog"),
		types:  make(map[string]Type),
	}
}

// AddType registers or replaces the type keyed by (typ, language) and
// refreshes the cache. Calling it twice with the same arguments leaves one row.
func (c *Catalog) AddType(ctx context.Context, typ, language, displayName, inverseType, category string) (Type, error) {
	typ = strings.TrimSpace(typ)
	language = strings.TrimSpace(language)
	if typ == "" {
		return Type{}, apperrors.NewInvalidArgument("type", "must not be empty")
	}
	if language == "" {
		return Type{}, apperrors.NewInvalidArgument("language", "must not be empty")
	}
	if strings.Contains(typ, store.KeySep) || strings.Contains(language, store.KeySep) {
		return Type{}, apperrors.NewInvalidArgument("type", fmt.Sprintf("must not contain %q", store.KeySep))
	}
	if displayName == "" {
		displayName = typ
	}

	t := Type{
		Type:        typ,
		Language:    language,
		DisplayName: displayName,
		InverseType: strings.TrimSpace(inverseType),
		Category:    category,
	}

	data, err := json.Marshal(t)
	if err != nil {
		return Type{}, fmt.Errorf("failed to encode relationship type: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.store.Put(ctx, tableTypes, globalPartition, store.Key(language, typ), data); err != nil {
		return Type{}, fmt.Errorf("failed to store relationship type %s/%s: %w", language, typ, err)
	}

	c.mu.Lock()
	c.types[store.Key(language, typ)] = t
	c.mu.Unlock()

	c.logger.Debug("Relationship type registered",
		zap.String("type", typ),
		zap.String("language", language),
		zap.String("inverse", t.InverseType),
	)
	return t, nil
}

// Lookup returns the type registered for (typ, language)
func (c *Catalog) Lookup(ctx context.Context, typ, language string) (Type, bool, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return Type{}, false, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.types[store.Key(language, typ)]
	return t, ok, nil
}

// GetInverse returns the registered inverse of typ. found is false when the
// type is unknown or has no inverse, in which case callers treat it as its
// own inverse.
func (c *Catalog) GetInverse(ctx context.Context, typ, language string) (string, bool, error) {
	t, ok, err := c.Lookup(ctx, typ, language)
	if err != nil || !ok || t.InverseType == "" {
		return "", false, err
	}
	return t.InverseType, true, nil
}

// ListTypes returns the types of one language, or of every language when
// language is empty, ordered by language then type.
func (c *Catalog) ListTypes(ctx context.Context, language string) ([]Type, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	types := make([]Type, 0, len(c.types))
	for _, t := range c.types {
		if language == "" || t.Language == language {
			types = append(types, t)
		}
	}
	c.mu.RUnlock()

	sort.Slice(types, func(i, j int) bool {
		if types[i].Language != types[j].Language {
			return types[i].Language < types[j].Language
		}
		return types[i].Type < types[j].Type
	})
	return types, nil
}

// Load replaces the cache with the stored vocabulary
func (c *Catalog) Load(ctx context.Context) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	rows, err := c.store.Scan(ctx, tableTypes, globalPartition, "", 0)
	if err != nil {
		return fmt.Errorf("failed to load relationship types: %w", err)
	}

	types := make(map[string]Type, len(rows))
	for _, row := range rows {
		var t Type
		if err := json.Unmarshal(row.Value, &t); err != nil {
			c.logger.Warn("Skipping unreadable relationship type",
				zap.String("key", row.Clustering),
				zap.Error(err),
			)
			continue
		}
		types[store.Key(t.Language, t.Type)] = t
	}

	c.mu.Lock()
	c.types = types
	c.loaded = true
	c.mu.Unlock()

	c.logger.Debug("Relationship types loaded", zap.Int("count", len(types)))
	return nil
}

func (c *Catalog) ensureLoaded(ctx context.Context) error {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if loaded {
		return nil
	}
	return c.Load(ctx)
}
