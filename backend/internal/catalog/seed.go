package catalog

import (
	"context"
	_ "embed"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"kinship-graph/backend/internal/store"
	apperrors "kinship-graph/backend/pkg/errors"
	"kinship-graph/backend/pkg/metrics"
)

const seededKey = "seeded"

//go:embed vocabulary.yaml
var vocabularyYAML []byte

type vocabularyEntry struct {
	Type        string `yaml:"type"`
	DisplayName string `yaml:"display_name"`
	Inverse     string `yaml:"inverse"`
}

type vocabularyFile struct {
	// language -> category -> entries
	Languages map[string]map[string][]vocabularyEntry `yaml:"languages"`
}

// SeedResult summarizes one Seed call
type SeedResult struct {
	AlreadySeeded bool
	Added         int
	Failed        int
}

// Vocabulary returns the built-in types in a stable order
func Vocabulary() ([]Type, error) {
	var file vocabularyFile
	if err := yaml.Unmarshal(vocabularyYAML, &file); err != nil {
		return nil, apperrors.NewCatalogSeedFailed("vocabulary.yaml", err)
	}

	var types []Type
	for _, lang := range sortedKeys(file.Languages) {
		categories := file.Languages[lang]
		for _, category := range sortedKeys(categories) {
			for _, e := range categories[category] {
				types = append(types, Type{
					Type:        e.Type,
					Language:    lang,
					DisplayName: e.DisplayName,
					InverseType: e.Inverse,
					Category:    category,
				})
			}
		}
	}
	return types, nil
}

// Seed registers the built-in vocabulary once. A marker row records that
// seeding ran; later calls return immediately. Failures of single entries or
// of the marker check are logged and swallowed and nothing is retried, so the
// vocabulary may be incomplete after a partial failure. Only an unreadable
// embedded vocabulary is returned as an error.
func (c *Catalog) Seed(ctx context.Context) (SeedResult, error) {
	var result SeedResult

	_, err := c.store.Get(ctx, tableMeta, globalPartition, seededKey)
	switch {
	case err == nil:
		result.AlreadySeeded = true
		c.logger.Debug("Relationship types already seeded")
		return result, nil
	case !errors.Is(err, store.ErrNotFound):
		c.logger.Warn("Failed to check catalog seed marker, skipping seed", zap.Error(err))
		return result, nil
	}

	types, err := Vocabulary()
	if err != nil {
		return result, err
	}

	for _, t := range types {
		if _, err := c.AddType(ctx, t.Type, t.Language, t.DisplayName, t.InverseType, t.Category); err != nil {
			result.Failed++
			metrics.CatalogSeedFailures.Inc()
			c.logger.Warn("Failed to seed relationship type",
				zap.String("type", t.Type),
				zap.String("language", t.Language),
				zap.Error(err),
			)
			continue
		}
		result.Added++
	}

	marker := []byte(time.Now().UTC().Format(time.RFC3339))
	if err := c.store.Put(ctx, tableMeta, globalPartition, seededKey, marker); err != nil {
		c.logger.Warn("Failed to write catalog seed marker", zap.Error(err))
	}

	c.logger.Info("Relationship types seeded",
		zap.Int("added", result.Added),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
