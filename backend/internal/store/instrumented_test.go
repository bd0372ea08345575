package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumented_Contract(t *testing.T) {
	s := NewInstrumented(NewMemoryStore(), "memory")
	runContract(t, s, "contract")
	_, ok := s.Unwrap().(*MemoryStore)
	assert.True(t, ok)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", outcome(nil))
	assert.Equal(t, "not_found", outcome(ErrNotFound))
	assert.Equal(t, "error", outcome(errors.New("boom")))
}

func TestInstrumented_PassesErrorsThrough(t *testing.T) {
	ctx := context.Background()
	s := NewInstrumented(NewMemoryStore(), "memory")

	_, err := s.Get(ctx, "t", "p", "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, s.Close(ctx))
	err = s.Put(ctx, "t", "p", "k", []byte("v"))
	assert.Error(t, err)
}
