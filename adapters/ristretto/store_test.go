package ristretto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codewandler/feedkit-go/ports/store"
)

func Test_Store(t *testing.T) {
	s, err := New[string](Config{MaxEntries: 128})
	require.NoError(t, err)
	t.Cleanup(s.Close)

	_, ok, err := s.Get(t.Context(), "missing")
	require.NoError(t, err)
	require.False(t, ok)

	now := time.Now()
	require.NoError(t, s.Set(t.Context(), "k", store.Entry[string]{Value: "v", StoredAt: now}))

	e, ok, err := s.Get(t.Context(), "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v", e.Value)
	require.Equal(t, now, e.StoredAt)

	has, err := s.Has(t.Context(), "k")
	require.NoError(t, err)
	require.True(t, has)

	deleted, err := s.Delete(t.Context(), "k")
	require.NoError(t, err)
	require.True(t, deleted)

	has, err = s.Has(t.Context(), "k")
	require.NoError(t, err)
	require.False(t, has)
}

func Test_Store_DefaultSize(t *testing.T) {
	s, err := New[int](Config{})
	require.NoError(t, err)
	t.Cleanup(s.Close)

	require.NoError(t, s.Set(t.Context(), "k", store.Entry[int]{Value: 1, StoredAt: time.Now()}))
	e, ok, err := s.Get(t.Context(), "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, e.Value)
}
