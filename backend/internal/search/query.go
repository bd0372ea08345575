package search

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/agnivade/levenshtein"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"kinship-graph/backend/internal/entity"
	"kinship-graph/backend/pkg/metrics"
)

// DefaultPageSize is used when Query is called with a non-positive page size
const DefaultPageSize = 20

// QueryOptions narrows a query
type QueryOptions struct {
	Kinds      []entity.Kind // empty means every kind
	MaxResults int           // cap applied before pagination, 0 means none
}

// Result is one ranked match
type Result struct {
	EntityID    string      `json:"entity_id"`
	Kind        entity.Kind `json:"kind"`
	DisplayText string      `json:"display_text"`
	Distance    int         `json:"distance"`

	normalized string
}

// Ref returns the matched entity as a typed reference
func (r Result) Ref() entity.Ref {
	return entity.New(r.Kind, r.EntityID)
}

// ResultPage is one page of ranked results
type ResultPage struct {
	Results    []Result `json:"results"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	TotalCount int      `json:"total_count"`
	TotalPages int      `json:"total_pages"`
}

// Query ranks the owner's indexed entities against rawQuery. Candidates are
// entries whose token starts with one of the query words, at most
// candidateLimit per word. Each entity is scored by the edit distance between
// its normalized display text and the normalized query; lower is better and
// 0 means an exact match. Ties are broken by normalized text, then kind, then
// entity id. page is 1-based.
func (ix *Index) Query(ctx context.Context, owner, rawQuery string, opts QueryOptions, page, pageSize int) (ResultPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	out := ResultPage{Results: []Result{}, Page: page, PageSize: pageSize}

	if err := validateOwner(owner); err != nil {
		return out, err
	}
	metrics.SearchQueries.Inc()

	query := Normalize(rawQuery)
	if query == "" {
		return out, nil
	}

	candidates, err := ix.candidates(ctx, owner, distinctWords(rawQuery))
	if err != nil {
		return out, err
	}

	ranked := rank(candidates, query, opts.Kinds)
	metrics.SearchCandidates.Observe(float64(len(ranked)))
	if opts.MaxResults > 0 && len(ranked) > opts.MaxResults {
		ranked = ranked[:opts.MaxResults]
	}

	out.TotalCount = len(ranked)
	out.TotalPages = (len(ranked) + pageSize - 1) / pageSize
	start := (page - 1) * pageSize
	if start < len(ranked) {
		end := min(start+pageSize, len(ranked))
		out.Results = ranked[start:end]
	}

	ix.logger.Debug("Search query",
		zap.String("owner", owner),
		zap.String("query", query),
		zap.Int("total", out.TotalCount),
	)
	return out, nil
}

// candidates fetches the prefix matches of every query word concurrently
func (ix *Index) candidates(ctx context.Context, owner string, queryWords []string) ([]entry, error) {
	var (
		mu      sync.Mutex
		entries []entry
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, word := range queryWords {
		word := word
		g.Go(func() error {
			rows, err := ix.store.Scan(gctx, tableEntries, owner, word, ix.candidateLimit)
			if err != nil {
				return fmt.Errorf("failed to read candidates for %q: %w", word, err)
			}

			found := make([]entry, 0, len(rows))
			for _, row := range rows {
				var e entry
				if err := json.Unmarshal(row.Value, &e); err != nil {
					ix.logger.Warn("Skipping unreadable search entry", zap.String("key", row.Clustering), zap.Error(err))
					continue
				}
				found = append(found, e)
			}

			mu.Lock()
			entries = append(entries, found...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

// rank deduplicates candidates per entity keeping the best score, applies the
// kind filter and sorts.
func rank(candidates []entry, query string, kinds []entity.Kind) []Result {
	allowed := make(map[entity.Kind]bool, len(kinds))
	for _, k := range kinds {
		allowed[k] = true
	}

	best := make(map[string]Result)
	for _, c := range candidates {
		if len(allowed) > 0 && !allowed[c.Kind] {
			continue
		}
		normalized := Normalize(c.DisplayText)
		r := Result{
			EntityID:    c.EntityID,
			Kind:        c.Kind,
			DisplayText: c.DisplayText,
			Distance:    levenshtein.ComputeDistance(normalized, query),
			normalized:  normalized,
		}
		key := entity.Key(r.Ref())
		if prev, ok := best[key]; !ok || less(r, prev) {
			best[key] = r
		}
	}

	results := make([]Result, 0, len(best))
	for _, r := range best {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool {
		return less(results[i], results[j])
	})
	return results
}

func less(a, b Result) bool {
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	if a.normalized != b.normalized {
		return a.normalized < b.normalized
	}
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	return a.EntityID < b.EntityID
}
