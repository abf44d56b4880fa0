package assetmodule

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/mantonx/titleseeker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirIndexTracksExternalChanges(t *testing.T) {
	store := NewFileStore(t.TempDir())
	require.NoError(t, store.EnsureDirs())
	require.NoError(t, store.Save(types.AssetPosters, "1_alien.png", []byte("a")))

	idx := NewDirIndex(store)
	_, known := idx.Has(types.AssetPosters, "1_alien.png")
	assert.False(t, known)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, idx.Start(ctx))

	has, known := idx.Has(types.AssetPosters, "1_alien.png")
	assert.True(t, known)
	assert.True(t, has)
	assert.Equal(t, 1, idx.Len(types.AssetPosters))

	require.NoError(t, os.WriteFile(store.Path(types.AssetDirectors, "2_scott.png"), []byte("s"), 0644))
	assert.Eventually(t, func() bool {
		has, _ := idx.Has(types.AssetDirectors, "2_scott.png")
		return has
	}, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, os.Remove(store.Path(types.AssetPosters, "1_alien.png")))
	assert.Eventually(t, func() bool {
		has, _ := idx.Has(types.AssetPosters, "1_alien.png")
		return !has
	}, 2*time.Second, 20*time.Millisecond)
}

func TestServiceUsesIndex(t *testing.T) {
	svc, store, _ := newService(t, Options{})
	idx := NewDirIndex(store)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, idx.Start(ctx))
	svc.UseIndex(idx)

	name, err := svc.SaveImage(context.Background(), types.AssetPosters, 5, fileHeader(t, "fog.png", pngBytes(t, 10, 10)))
	require.NoError(t, err)

	has, known := idx.Has(types.AssetPosters, name)
	require.True(t, known)
	assert.True(t, has)

	path, err := svc.Resolve(types.AssetPosters, name, true)
	require.NoError(t, err)
	assert.Equal(t, store.Path(types.AssetPosters, ThumbnailName(name)), path)
}
