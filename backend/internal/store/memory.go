package store

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/tidwall/btree"

	apperrors "kinship-graph/backend/pkg/errors"
)

var errClosed = errors.New("store is closed")

// MemoryStore is an in-process Store backed by an ordered B-tree, used for
// tests and local development. It uses its own RWMutex instead of the
// tree's internal locking so Scan sees a consistent view.
type MemoryStore struct {
	mu     sync.RWMutex
	tree   *btree.BTreeG[Row]
	closed bool
}

func rowLess(a, b Row) bool {
	if a.Table != b.Table {
		return a.Table < b.Table
	}
	if a.Partition != b.Partition {
		return a.Partition < b.Partition
	}
	return a.Clustering < b.Clustering
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tree: btree.NewBTreeGOptions(rowLess, btree.Options{NoLocks: true}),
	}
}

// Get returns a copy of the stored value or ErrNotFound
func (s *MemoryStore) Get(ctx context.Context, table, partition, clustering string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx, "get"); err != nil {
		return nil, err
	}
	row, found := s.tree.Get(Row{Table: table, Partition: partition, Clustering: clustering})
	if !found {
		return nil, ErrNotFound
	}
	return clone(row.Value), nil
}

// Scan walks the partition in clustering order starting at prefix
func (s *MemoryStore) Scan(ctx context.Context, table, partition, prefix string, limit int) ([]Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx, "scan"); err != nil {
		return nil, err
	}

	var rows []Row
	pivot := Row{Table: table, Partition: partition, Clustering: prefix}
	s.tree.Ascend(pivot, func(row Row) bool {
		if row.Table != table || row.Partition != partition || !strings.HasPrefix(row.Clustering, prefix) {
			return false
		}
		row.Value = clone(row.Value)
		rows = append(rows, row)
		return limit <= 0 || len(rows) < limit
	})
	return rows, nil
}

// Put upserts a whole row
func (s *MemoryStore) Put(ctx context.Context, table, partition, clustering string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx, "put"); err != nil {
		return err
	}
	s.tree.Set(Row{Table: table, Partition: partition, Clustering: clustering, Value: clone(value)})
	return nil
}

// Delete removes a row; deleting a missing row is not an error
func (s *MemoryStore) Delete(ctx context.Context, table, partition, clustering string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx, "delete"); err != nil {
		return err
	}
	s.tree.Delete(Row{Table: table, Partition: partition, Clustering: clustering})
	return nil
}

// Close marks the store unavailable; later calls fail like an unreachable backend
func (s *MemoryStore) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Len returns the number of stored rows
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Len()
}

func (s *MemoryStore) check(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewStorageUnavailable("memory", op, err)
	}
	if s.closed {
		return apperrors.NewStorageUnavailable("memory", op, errClosed)
	}
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
