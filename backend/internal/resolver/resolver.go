// Package resolver answers possessive relational queries such as
// "John's Mutter" by finding the subject through the search index and
// following one hop of the relationship graph.
package resolver

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"kinship-graph/backend/internal/catalog"
	"kinship-graph/backend/internal/entity"
	"kinship-graph/backend/internal/graph"
	"kinship-graph/backend/internal/search"
	"kinship-graph/backend/pkg/logger"
)

// Searcher finds entities by name
type Searcher interface {
	Query(ctx context.Context, owner, rawQuery string, opts search.QueryOptions, page, pageSize int) (search.ResultPage, error)
	DisplayName(ctx context.Context, owner, entityID string) (string, bool, error)
}

// EdgeSource lists the edges leaving an entity
type EdgeSource interface {
	GetEdgesFrom(ctx context.Context, owner, entityID string, primaryOnly bool) ([]graph.Edge, error)
}

// TypeNamer looks up relationship type display names
type TypeNamer interface {
	Lookup(ctx context.Context, typ, language string) (catalog.Type, bool, error)
}

// Result is one entity reached by a relational query
type Result struct {
	EntityID     string      `json:"entity_id"`
	Kind         entity.Kind `json:"kind"`
	Name         string      `json:"name"`
	RelationType string      `json:"relation_type"`
	EdgeID       string      `json:"edge_id"`
	Description  string      `json:"description"`
}

// Resolver composes the search index and the graph
type Resolver struct {
	search Searcher
	edges  EdgeSource
	types  TypeNamer
	logger *zap.Logger
}

// New creates a resolver. types may be nil, in which case relation names
// only match relation types literally.
func New(s Searcher, edges EdgeSource, types TypeNamer) *Resolver {
	return &Resolver{
		search: s,
		edges:  edges,
		types:  types,
		logger: logger.Named("resolver"),
	}
}

var possessives = []string{"'s ", "’s "}

// Parse splits "<subject>'s <relation>" at the first possessive marker. When
// no apostrophe form is present the first "s " is used instead, so "Johns
// Mutter" parses too. ok is false when no marker is found or either side is
// empty.
func Parse(query string) (subject, relation string, ok bool) {
	at, width := -1, 0
	for _, sep := range possessives {
		if i := strings.Index(query, sep); i >= 0 && (at < 0 || i < at) {
			at, width = i, len(sep)
		}
	}
	if at < 0 {
		at = strings.Index(query, "s ")
		width = len("s ")
	}
	if at < 0 {
		return "", "", false
	}

	subject = strings.TrimSpace(query[:at])
	relation = strings.TrimSpace(query[at+width:])
	if subject == "" || relation == "" {
		return "", "", false
	}
	return subject, relation, true
}

// Resolve answers a single-hop relational query. A query that does not parse
// or whose subject is unknown yields no results and no error; storage
// failures are returned.
func (r *Resolver) Resolve(ctx context.Context, owner, query string) ([]Result, error) {
	results := []Result{}

	subjectName, relation, ok := Parse(query)
	if !ok {
		r.logger.Debug("Query is not relational", zap.String("query", query))
		return results, nil
	}

	page, err := r.search.Query(ctx, owner, subjectName, search.QueryOptions{Kinds: []entity.Kind{entity.KindPerson}}, 1, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve subject %q: %w", subjectName, err)
	}
	if len(page.Results) == 0 {
		return results, nil
	}
	subject := page.Results[0]

	edges, err := r.edges.GetEdgesFrom(ctx, owner, subject.EntityID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to read relationships of %s: %w", subject.EntityID, err)
	}

	for _, e := range edges {
		if !r.matches(ctx, e, relation) {
			continue
		}

		name, found, err := r.search.DisplayName(ctx, owner, e.TargetID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve name of %s: %w", e.TargetID, err)
		}
		if !found {
			name = e.TargetID
		}

		results = append(results, Result{
			EntityID:     e.TargetID,
			Kind:         e.TargetKind,
			Name:         name,
			RelationType: e.RelationType,
			EdgeID:       e.EdgeID,
			Description:  fmt.Sprintf("%s of %s", relation, subjectName),
		})
	}

	r.logger.Debug("Relational query resolved",
		zap.String("owner", owner),
		zap.String("subject", subject.EntityID),
		zap.String("relation", relation),
		zap.Int("results", len(results)),
	)
	return results, nil
}

// matches compares case-insensitively against the relation type and its
// catalog display name
func (r *Resolver) matches(ctx context.Context, e graph.Edge, relation string) bool {
	if strings.EqualFold(e.RelationType, relation) {
		return true
	}
	if r.types == nil {
		return false
	}
	t, found, err := r.types.Lookup(ctx, e.RelationType, e.Language)
	if err != nil {
		r.logger.Warn("Relationship type lookup failed", zap.String("type", e.RelationType), zap.Error(err))
		return false
	}
	return found && strings.EqualFold(t.DisplayName, relation)
}
