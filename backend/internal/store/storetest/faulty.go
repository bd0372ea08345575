// Package storetest provides store wrappers for exercising failure paths in tests.
package storetest

import (
	"context"
	"errors"
	"sync"

	"kinship-graph/backend/internal/store"
	apperrors "kinship-graph/backend/pkg/errors"
)

// ErrInjected is the cause of every injected failure
var ErrInjected = errors.New("injected failure")

// Faulty wraps a Store and fails writes or reads on selected tables
type Faulty struct {
	store.Store

	mu          sync.Mutex
	failWrites  map[string]bool
	failReads   map[string]bool
	writeCounts map[string]int
}

// NewFaulty wraps inner with no failures configured
func NewFaulty(inner store.Store) *Faulty {
	return &Faulty{
		Store:       inner,
		failWrites:  make(map[string]bool),
		failReads:   make(map[string]bool),
		writeCounts: make(map[string]int),
	}
}

// FailWrites makes Put and Delete on the given tables fail
func (f *Faulty) FailWrites(tables ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range tables {
		f.failWrites[t] = true
	}
}

// FailReads makes Get and Scan on the given tables fail
func (f *Faulty) FailReads(tables ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range tables {
		f.failReads[t] = true
	}
}

// Heal clears every configured failure
func (f *Faulty) Heal() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWrites = make(map[string]bool)
	f.failReads = make(map[string]bool)
}

// Writes returns how many Put and Delete calls reached table, failed or not
func (f *Faulty) Writes(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeCounts[table]
}

func (f *Faulty) Get(ctx context.Context, table, partition, clustering string) ([]byte, error) {
	if f.shouldFail(f.failReads, table) {
		return nil, apperrors.NewStorageUnavailable("faulty", "get", ErrInjected)
	}
	return f.Store.Get(ctx, table, partition, clustering)
}

func (f *Faulty) Scan(ctx context.Context, table, partition, prefix string, limit int) ([]store.Row, error) {
	if f.shouldFail(f.failReads, table) {
		return nil, apperrors.NewStorageUnavailable("faulty", "scan", ErrInjected)
	}
	return f.Store.Scan(ctx, table, partition, prefix, limit)
}

func (f *Faulty) Put(ctx context.Context, table, partition, clustering string, value []byte) error {
	f.countWrite(table)
	if f.shouldFail(f.failWrites, table) {
		return apperrors.NewStorageUnavailable("faulty", "put", ErrInjected)
	}
	return f.Store.Put(ctx, table, partition, clustering, value)
}

func (f *Faulty) Delete(ctx context.Context, table, partition, clustering string) error {
	f.countWrite(table)
	if f.shouldFail(f.failWrites, table) {
		return apperrors.NewStorageUnavailable("faulty", "delete", ErrInjected)
	}
	return f.Store.Delete(ctx, table, partition, clustering)
}

func (f *Faulty) shouldFail(set map[string]bool, table string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return set[table]
}

func (f *Faulty) countWrite(table string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeCounts[table]++
}
