package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kinship-graph/backend/internal/catalog"
	"kinship-graph/backend/internal/entity"
	"kinship-graph/backend/internal/graph"
	"kinship-graph/backend/internal/search"
	"kinship-graph/backend/internal/store"
	"kinship-graph/backend/internal/store/storetest"
	apperrors "kinship-graph/backend/pkg/errors"
)

const owner = "owner-1"

type fixture struct {
	store    *storetest.Faulty
	catalog  *catalog.Catalog
	graph    *graph.Repository
	index    *search.Index
	resolver *Resolver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	s := storetest.NewFaulty(store.NewMemoryStore())
	c := catalog.New(s)
	_, err := c.AddType(ctx, "Mutter", "de", "Mutter", "Kind", "family")
	require.NoError(t, err)
	_, err = c.AddType(ctx, "Ehefrau", "de", "Frau", "Ehemann", "family")
	require.NoError(t, err)

	g := graph.NewRepository(s, c, graph.DefaultOptions())
	ix := search.NewIndex(s, 0)
	return &fixture{store: s, catalog: c, graph: g, index: ix, resolver: New(ix, g, c)}
}

func (f *fixture) person(t *testing.T, id, name string) entity.Ref {
	t.Helper()
	ref := entity.Person(id)
	require.NoError(t, f.index.Index(context.Background(), owner, name, ref))
	return ref
}

func (f *fixture) link(t *testing.T, from, to entity.Ref, typ string) {
	t.Helper()
	_, _, err := f.graph.CreateEdge(context.Background(), owner, from, to, typ, "de", graph.Meta{})
	require.NoError(t, err)
}

func TestParse(t *testing.T) {
	tests := []struct {
		query    string
		subject  string
		relation string
		ok       bool
	}{
		{"John's Mutter", "John", "Mutter", true},
		{"John’s Mutter", "John", "Mutter", true},
		{"Anna Maria's Ehemann", "Anna Maria", "Ehemann", true},
		{"Johns Mutter", "John", "Mutter", true},
		{"John's uncle's wife", "John", "uncle's wife", true},
		{"  John's   Mutter  ", "John", "Mutter", true},
		{"John Mutter", "", "", false},
		{"John's", "", "", false},
		{"'s Mutter", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			subject, relation, ok := Parse(tt.query)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.subject, subject)
			assert.Equal(t, tt.relation, relation)
		})
	}
}

func TestResolve_Mother(t *testing.T) {
	f := newFixture(t)
	john := f.person(t, "john", "John")
	maria := f.person(t, "maria", "Maria")
	f.link(t, john, maria, "Mutter")

	results, err := f.resolver.Resolve(context.Background(), owner, "John's Mutter")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Maria", results[0].Name)
	assert.Equal(t, "maria", results[0].EntityID)
	assert.Equal(t, entity.KindPerson, results[0].Kind)
	assert.Equal(t, "Mutter of John", results[0].Description)
}

func TestResolve_CaseInsensitiveAndDisplayName(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	john := f.person(t, "john", "John")
	eva := f.person(t, "eva", "Eva")
	f.link(t, john, eva, "Ehefrau")

	results, err := f.resolver.Resolve(ctx, owner, "john's EHEFRAU")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Eva", results[0].Name)
	assert.Equal(t, "EHEFRAU of john", results[0].Description)

	// "Frau" is the display name registered for Ehefrau
	results, err = f.resolver.Resolve(ctx, owner, "John's Frau")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Ehefrau", results[0].RelationType)
}

func TestResolve_InverseDirection(t *testing.T) {
	f := newFixture(t)
	john := f.person(t, "john", "John")
	maria := f.person(t, "maria", "Maria")
	f.link(t, john, maria, "Mutter")

	results, err := f.resolver.Resolve(context.Background(), owner, "Maria's Kind")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "John", results[0].Name)
}

func TestResolve_NameFallsBackToID(t *testing.T) {
	f := newFixture(t)
	john := f.person(t, "john", "John")
	f.link(t, john, entity.Person("unindexed"), "Mutter")

	results, err := f.resolver.Resolve(context.Background(), owner, "John's Mutter")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "unindexed", results[0].Name)
}

func TestResolve_EmptyResults(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	john := f.person(t, "john", "John")
	maria := f.person(t, "maria", "Maria")
	f.link(t, john, maria, "Mutter")
	place := entity.Place("berlin")
	require.NoError(t, f.index.Index(ctx, owner, "Berlin", place))

	for _, query := range []string{
		"John Mutter",        // no possessive
		"Zacharias's Mutter", // unknown subject
		"John's Vater",       // no such relation
		"Berlin's Mutter",    // subject must be a person
	} {
		results, err := f.resolver.Resolve(ctx, owner, query)
		require.NoError(t, err, query)
		assert.Empty(t, results, query)
	}

	results, err := f.resolver.Resolve(ctx, "owner-2", "John's Mutter")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestResolve_WithoutCatalog(t *testing.T) {
	f := newFixture(t)
	john := f.person(t, "john", "John")
	eva := f.person(t, "eva", "Eva")
	f.link(t, john, eva, "Ehefrau")
	r := New(f.index, f.graph, nil)

	results, err := r.Resolve(context.Background(), owner, "John's Frau")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestResolve_StoreFailurePropagates(t *testing.T) {
	f := newFixture(t)
	john := f.person(t, "john", "John")
	maria := f.person(t, "maria", "Maria")
	f.link(t, john, maria, "Mutter")
	f.store.FailReads("edges_by_source")

	_, err := f.resolver.Resolve(context.Background(), owner, "John's Mutter")
	require.Error(t, err)
	assert.True(t, apperrors.IsRetryable(err))
}
