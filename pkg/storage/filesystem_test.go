package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageStoreRoundTrip(t *testing.T) {
	store, err := NewImageStore(t.TempDir())
	require.NoError(t, err)

	rel, err := store.Store([]byte("payload"), "front view.png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, "/uploads/"))
	assert.True(t, strings.HasSuffix(rel, "frontview.png"))

	assert.True(t, store.Exists(rel))

	data, err := store.Read(rel)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)

	require.NoError(t, store.Delete(rel))
	assert.False(t, store.Exists(rel))
}

func TestImageStoreDeleteMissingIsNoop(t *testing.T) {
	store, err := NewImageStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Delete("/uploads/never-stored.jpg"))
}

func TestImageStoreReadMissing(t *testing.T) {
	store, err := NewImageStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Read("/uploads/missing.png")
	assert.Error(t, err)
}
