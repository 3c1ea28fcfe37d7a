package pathdb

import (
	"context"
	"path/filepath"
	"testing"

	"carlo/internal/mc"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathStoreRoundTrip(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "paths.db"))
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	paths := []mc.Path{
		{Times: []float64{0, 0.5, 1}, Levels: []float64{100, 104, 99}},
		{Times: []float64{0, 0.5, 1}, Levels: []float64{100, 97, 102}},
	}
	require.NoError(t, s.SaveSamples(ctx, "run-1", paths))

	got, err := s.ListSamples(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, paths[0].Levels, got[0].Levels)
	assert.Equal(t, paths[1].Times, got[1].Times)

	// 不存在的 run 返回空集
	got, err = s.ListSamples(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPathStoreValidation(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "paths.db"))
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	require.Error(t, s.SaveSamples(ctx, "", []mc.Path{{}}))
	require.NoError(t, s.SaveSamples(ctx, "run-1", nil))

	_, err = New("")
	require.Error(t, err)
}
