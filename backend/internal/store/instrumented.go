package store

import (
	"context"
	"errors"
	"time"

	"kinship-graph/backend/pkg/metrics"
)

// Instrumented wraps a Store and records operation counts and latency
type Instrumented struct {
	inner   Store
	backend string
}

// NewInstrumented wraps inner; backend is used as the metric label
func NewInstrumented(inner Store, backend string) *Instrumented {
	return &Instrumented{inner: inner, backend: backend}
}

// Unwrap returns the wrapped store
func (s *Instrumented) Unwrap() Store {
	return s.inner
}

func (s *Instrumented) Get(ctx context.Context, table, partition, clustering string) ([]byte, error) {
	start := time.Now()
	value, err := s.inner.Get(ctx, table, partition, clustering)
	s.observe("get", start, err)
	return value, err
}

func (s *Instrumented) Scan(ctx context.Context, table, partition, prefix string, limit int) ([]Row, error) {
	start := time.Now()
	rows, err := s.inner.Scan(ctx, table, partition, prefix, limit)
	s.observe("scan", start, err)
	return rows, err
}

func (s *Instrumented) Put(ctx context.Context, table, partition, clustering string, value []byte) error {
	start := time.Now()
	err := s.inner.Put(ctx, table, partition, clustering, value)
	s.observe("put", start, err)
	return err
}

func (s *Instrumented) Delete(ctx context.Context, table, partition, clustering string) error {
	start := time.Now()
	err := s.inner.Delete(ctx, table, partition, clustering)
	s.observe("delete", start, err)
	return err
}

func (s *Instrumented) Close(ctx context.Context) error {
	return s.inner.Close(ctx)
}

func (s *Instrumented) observe(op string, start time.Time, err error) {
	metrics.StoreLatency.WithLabelValues(s.backend, op).Observe(time.Since(start).Seconds())
	metrics.StoreOperations.WithLabelValues(s.backend, op, outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
