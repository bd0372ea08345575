package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kinship-graph/backend/internal/entity"
	"kinship-graph/backend/internal/store"
	"kinship-graph/backend/internal/store/storetest"
	apperrors "kinship-graph/backend/pkg/errors"
)

const owner = "owner-1"

func newTestIndex(t *testing.T) (*Index, *store.MemoryStore) {
	t.Helper()
	s := store.NewMemoryStore()
	return NewIndex(s, 0), s
}

func mustIndex(t *testing.T, ix *Index, text string, ref entity.Ref) {
	t.Helper()
	require.NoError(t, ix.Index(context.Background(), owner, text, ref))
}

func ids(page ResultPage) []string {
	out := make([]string, 0, len(page.Results))
	for _, r := range page.Results {
		out = append(out, r.EntityID)
	}
	return out
}

func TestIndex_OneEntryPerDistinctWord(t *testing.T) {
	ctx := context.Background()
	ix, s := newTestIndex(t)
	mustIndex(t, ix, "Anna Maria Anna", entity.Person("p1"))

	rows, err := s.Scan(ctx, tableEntries, owner, "", 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, store.Key("anna", "person", "p1"), rows[0].Clustering)
	assert.Equal(t, store.Key("maria", "person", "p1"), rows[1].Clustering)
}

func TestIndex_Accumulates(t *testing.T) {
	ctx := context.Background()
	ix, _ := newTestIndex(t)
	mustIndex(t, ix, "Maria Schmidt", entity.Person("p1"))
	mustIndex(t, ix, "Maria Weber", entity.Person("p1"))

	// The old surname still finds the entity
	page, err := ix.Query(ctx, owner, "Schmidt", QueryOptions{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, ids(page))

	name, found, err := ix.DisplayName(ctx, owner, "p1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Maria Weber", name)
}

func TestIndex_Validation(t *testing.T) {
	ctx := context.Background()
	ix, _ := newTestIndex(t)

	err := ix.Index(ctx, "", "Anna", entity.Person("p1"))
	assert.True(t, apperrors.IsValidation(err))

	err = ix.Index(ctx, owner, "Anna", nil)
	assert.True(t, apperrors.IsValidation(err))

	err = ix.Index(ctx, owner, "Anna", entity.Person(""))
	assert.True(t, apperrors.IsValidation(err))
}

func TestIndex_StoreFailurePropagates(t *testing.T) {
	faulty := storetest.NewFaulty(store.NewMemoryStore())
	faulty.FailWrites(tableEntries)
	ix := NewIndex(faulty, 0)

	err := ix.Index(context.Background(), owner, "Anna", entity.Person("p1"))
	require.Error(t, err)
	assert.True(t, apperrors.IsRetryable(err))
}

func TestDisplayName_Missing(t *testing.T) {
	ix, _ := newTestIndex(t)
	_, found, err := ix.DisplayName(context.Background(), owner, "nobody")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestQuery_FindsByFirstName(t *testing.T) {
	ctx := context.Background()
	ix, _ := newTestIndex(t)
	mustIndex(t, ix, "Fritz Müller", entity.Person("fritz"))
	for i := 0; i < 15; i++ {
		mustIndex(t, ix, fmt.Sprintf("Fritzi Nummer %d", i), entity.Person(fmt.Sprintf("other-%d", i)))
	}

	page, err := ix.Query(ctx, owner, "fritz", QueryOptions{}, 1, 10)
	require.NoError(t, err)
	assert.Contains(t, ids(page), "fritz")
}

func TestQuery_ExactRanksFirst(t *testing.T) {
	ctx := context.Background()
	ix, _ := newTestIndex(t)
	mustIndex(t, ix, "Fitz", entity.Person("fitz"))
	mustIndex(t, ix, "Fritz", entity.Person("fritz"))
	mustIndex(t, ix, "Fritzi", entity.Person("fritzi"))

	page, err := ix.Query(ctx, owner, "Fritz", QueryOptions{}, 1, 10)
	require.NoError(t, err)
	require.NotEmpty(t, page.Results)
	assert.Equal(t, "fritz", page.Results[0].EntityID)
	assert.Zero(t, page.Results[0].Distance)
	for _, r := range page.Results[1:] {
		assert.Positive(t, r.Distance)
	}

	// Case does not matter
	lower, err := ix.Query(ctx, owner, "fritz", QueryOptions{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, ids(page), ids(lower))
}

func TestQuery_WordOrderInsensitive(t *testing.T) {
	ctx := context.Background()
	ix, _ := newTestIndex(t)
	mustIndex(t, ix, "Fritz Müller", entity.Person("p1"))

	page, err := ix.Query(ctx, owner, "Müller Fritz", QueryOptions{}, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Zero(t, page.Results[0].Distance)
	assert.Equal(t, "Fritz Müller", page.Results[0].DisplayText)
}

func TestQuery_DeduplicatesEntities(t *testing.T) {
	ctx := context.Background()
	ix, _ := newTestIndex(t)
	mustIndex(t, ix, "Anna Anders", entity.Person("p1"))

	// Both query words hit p1
	page, err := ix.Query(ctx, owner, "Anna Anders", QueryOptions{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, ids(page))
	assert.Equal(t, 1, page.TotalCount)
}

func TestQuery_KindFilter(t *testing.T) {
	ctx := context.Background()
	ix, _ := newTestIndex(t)
	mustIndex(t, ix, "Berlin", entity.Place("berlin"))
	mustIndex(t, ix, "Berlin Marathon", entity.Event("marathon"))
	mustIndex(t, ix, "Bert Berliner", entity.Person("bert"))

	page, err := ix.Query(ctx, owner, "berlin", QueryOptions{Kinds: []entity.Kind{entity.KindPlace, entity.KindEvent}}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"berlin", "marathon"}, ids(page))
	assert.Equal(t, entity.Place("berlin"), page.Results[0].Ref())
}

func TestQuery_Pagination(t *testing.T) {
	ctx := context.Background()
	ix, _ := newTestIndex(t)
	for i := 1; i <= 12; i++ {
		mustIndex(t, ix, fmt.Sprintf("Anna %02d", i), entity.Person(fmt.Sprintf("p%02d", i)))
	}

	first, err := ix.Query(ctx, owner, "anna", QueryOptions{}, 1, 5)
	require.NoError(t, err)
	assert.Len(t, first.Results, 5)
	assert.Equal(t, 12, first.TotalCount)
	assert.Equal(t, 3, first.TotalPages)

	last, err := ix.Query(ctx, owner, "anna", QueryOptions{}, 3, 5)
	require.NoError(t, err)
	assert.Len(t, last.Results, 2)

	beyond, err := ix.Query(ctx, owner, "anna", QueryOptions{}, 4, 5)
	require.NoError(t, err)
	assert.Empty(t, beyond.Results)
	assert.Equal(t, 3, beyond.TotalPages)

	// Pages do not overlap and are ordered
	second, err := ix.Query(ctx, owner, "anna", QueryOptions{}, 2, 5)
	require.NoError(t, err)
	seen := map[string]bool{}
	for _, p := range []ResultPage{first, second, last} {
		for _, id := range ids(p) {
			assert.False(t, seen[id])
			seen[id] = true
		}
	}
	assert.Len(t, seen, 12)
	assert.Equal(t, "p01", first.Results[0].EntityID)
}

func TestQuery_MaxResults(t *testing.T) {
	ctx := context.Background()
	ix, _ := newTestIndex(t)
	for i := 1; i <= 12; i++ {
		mustIndex(t, ix, fmt.Sprintf("Anna %02d", i), entity.Person(fmt.Sprintf("p%02d", i)))
	}

	page, err := ix.Query(ctx, owner, "anna", QueryOptions{MaxResults: 7}, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 7, page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Results, 2)
}

func TestQuery_CandidateLimit(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	ix := NewIndex(s, 3)
	for i := 1; i <= 5; i++ {
		require.NoError(t, ix.Index(ctx, owner, "Anna", entity.Person(fmt.Sprintf("p%d", i))))
	}

	page, err := ix.Query(ctx, owner, "anna", QueryOptions{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalCount)
}

func TestQuery_EmptyAndUnknown(t *testing.T) {
	ctx := context.Background()
	ix, _ := newTestIndex(t)
	mustIndex(t, ix, "Anna", entity.Person("p1"))

	page, err := ix.Query(ctx, owner, "  ", QueryOptions{}, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, page.Results)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, DefaultPageSize, page.PageSize)

	page, err = ix.Query(ctx, owner, "Zacharias", QueryOptions{}, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, page.TotalCount)
	assert.Zero(t, page.TotalPages)

	page, err = ix.Query(ctx, "owner-2", "Anna", QueryOptions{}, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Results)
}

func TestQuery_StoreFailurePropagates(t *testing.T) {
	faulty := storetest.NewFaulty(store.NewMemoryStore())
	ix := NewIndex(faulty, 0)
	mustIndex(t, ix, "Anna", entity.Person("p1"))
	faulty.FailReads(tableEntries)

	_, err := ix.Query(context.Background(), owner, "Anna Lena", QueryOptions{}, 1, 10)
	require.Error(t, err)
	assert.True(t, apperrors.IsRetryable(err))
}

func TestLess_TieBreak(t *testing.T) {
	a := Result{EntityID: "b", Kind: entity.KindPerson, Distance: 1, normalized: "anna"}
	b := Result{EntityID: "a", Kind: entity.KindPerson, Distance: 1, normalized: "anne"}
	c := Result{EntityID: "a", Kind: entity.KindPlace, Distance: 1, normalized: "anna"}
	d := Result{EntityID: "a", Kind: entity.KindPerson, Distance: 1, normalized: "anna"}

	assert.True(t, less(a, b), "normalized text first")
	assert.True(t, less(a, c), "then kind")
	assert.True(t, less(d, a), "then entity id")
}
