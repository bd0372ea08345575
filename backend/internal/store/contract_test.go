package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runContract exercises the behaviour every backend must share. table keeps
// integration runs isolated from other data in a shared database.
func runContract(t *testing.T, s Store, table string) {
	ctx := context.Background()
	t.Cleanup(func() {
		rows, _ := s.Scan(ctx, table, "p1", "", 0)
		for _, r := range rows {
			_ = s.Delete(ctx, table, "p1", r.Clustering)
		}
		for _, partition := range []string{"p2", "p3"} {
			rows, _ = s.Scan(ctx, table, partition, "", 0)
			for _, r := range rows {
				_ = s.Delete(ctx, table, partition, r.Clustering)
			}
		}
	})

	t.Run("get missing row", func(t *testing.T) {
		_, err := s.Get(ctx, table, "p1", "nope")
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("put then get", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, table, "p1", "a|1", []byte("one")))
		got, err := s.Get(ctx, table, "p1", "a|1")
		require.NoError(t, err)
		assert.Equal(t, []byte("one"), got)
	})

	t.Run("put overwrites whole row", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, table, "p1", "a|1", []byte("uno")))
		got, err := s.Get(ctx, table, "p1", "a|1")
		require.NoError(t, err)
		assert.Equal(t, []byte("uno"), got)
	})

	t.Run("scan is ordered, prefix bounded and partition scoped", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, table, "p1", "a|3", []byte("three")))
		require.NoError(t, s.Put(ctx, table, "p1", "a|2", []byte("two")))
		require.NoError(t, s.Put(ctx, table, "p1", "ab|1", []byte("other prefix")))
		require.NoError(t, s.Put(ctx, table, "p2", "a|9", []byte("other partition")))

		rows, err := s.Scan(ctx, table, "p1", "a|", 0)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "a|1", rows[0].Clustering)
		assert.Equal(t, "a|2", rows[1].Clustering)
		assert.Equal(t, "a|3", rows[2].Clustering)
		assert.Equal(t, []byte("three"), rows[2].Value)
		assert.Equal(t, "p1", rows[0].Partition)
	})

	t.Run("scan honours limit", func(t *testing.T) {
		rows, err := s.Scan(ctx, table, "p1", "a|", 2)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "a|2", rows[1].Clustering)
	})

	t.Run("scan sorts by bytes, not by locale", func(t *testing.T) {
		for _, key := range []string{"beta", "Ärger", "alpha", "Zeta"} {
			require.NoError(t, s.Put(ctx, table, "p3", key, []byte(key)))
		}

		rows, err := s.Scan(ctx, table, "p3", "", 0)
		require.NoError(t, err)
		keys := make([]string, 0, len(rows))
		for _, r := range rows {
			keys = append(keys, r.Clustering)
		}
		assert.Equal(t, []string{"Zeta", "alpha", "beta", "Ärger"}, keys)

		rows, err = s.Scan(ctx, table, "p3", "", 2)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "alpha", rows[1].Clustering)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, table, "p1", "a|2"))
		require.NoError(t, s.Delete(ctx, table, "p1", "a|2"))
		_, err := s.Get(ctx, table, "p1", "a|2")
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}
