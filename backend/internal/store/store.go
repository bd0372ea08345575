// Package store provides the wide-column storage the graph, search index and
// catalog are built on. A Store only supports point lookups by exact key,
// prefix scans within one partition bounded by a row limit, whole-row upserts
// and deletes. There are no multi-row transactions and no retries; schema
// existence is guaranteed by the deployment, never created here.
package store

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned by Get when no row exists for the key.
var ErrNotFound = errors.New("row not found")

// KeySep separates components of composite partition and clustering keys.
const KeySep = "|"

// Row is one stored row
type Row struct {
	Table      string
	Partition  string
	Clustering string
	Value      []byte
}

// Store is the storage contract. Scan returns rows of one partition whose
// clustering key starts with prefix, ordered by clustering key, at most
// limit rows (limit <= 0 means unbounded).
type Store interface {
	Get(ctx context.Context, table, partition, clustering string) ([]byte, error)
	Scan(ctx context.Context, table, partition, prefix string, limit int) ([]Row, error)
	Put(ctx context.Context, table, partition, clustering string, value []byte) error
	Delete(ctx context.Context, table, partition, clustering string) error
	Close(ctx context.Context) error
}

// Key joins key components with KeySep
func Key(parts ...string) string {
	return strings.Join(parts, KeySep)
}

// Prefix is Key followed by a trailing separator, so a scan matches whole
// components only ("ab|" never matches "abc|...").
func Prefix(parts ...string) string {
	return Key(parts...) + KeySep
}

// SplitKey is the inverse of Key
func SplitKey(key string) []string {
	return strings.Split(key, KeySep)
}
