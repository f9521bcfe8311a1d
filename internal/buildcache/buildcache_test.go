package buildcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Cache {
	t.Helper()
	cache, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestPutAndGet(t *testing.T) {
	cache := openTemp(t)

	hash := HashSource("func f() { }")
	require.NoError(t, cache.Put("f.fg", hash, "define void @f() {\n}\n"))

	got, ok, err := cache.Get(hash)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, got, "@f")
}

func TestGetMissing(t *testing.T) {
	cache := openTemp(t)

	_, ok, err := cache.Get(HashSource("nothing"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPutReplacesExisting(t *testing.T) {
	cache := openTemp(t)

	hash := HashSource("source")
	require.NoError(t, cache.Put("a.fg", hash, "old"))
	require.NoError(t, cache.Put("a.fg", hash, "new"))

	got, ok, err := cache.Get(hash)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "new", got)

	stats, err := cache.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Entries)
}

func TestClearAndStats(t *testing.T) {
	cache := openTemp(t)

	require.NoError(t, cache.Put("a.fg", HashSource("a"), "ir-a"))
	require.NoError(t, cache.Put("b.fg", HashSource("b"), "ir-b"))

	stats, err := cache.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Entries)
	assert.False(t, stats.Oldest.IsZero())

	require.NoError(t, cache.Clear())
	stats, err = cache.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Entries)
}

func TestHashIsStableAndContentSensitive(t *testing.T) {
	assert.Equal(t, HashSource("x"), HashSource("x"))
	assert.NotEqual(t, HashSource("x"), HashSource("y"))
}

func TestReopenKeepsEntries(t *testing.T) {
	dir := t.TempDir()

	first, err := Open(dir)
	require.NoError(t, err)
	hash := HashSource("persisted")
	require.NoError(t, first.Put("p.fg", hash, "ir"))
	require.NoError(t, first.Close())

	second, err := Open(dir)
	require.NoError(t, err)
	defer second.Close()

	_, ok, err := second.Get(hash)
	require.NoError(t, err)
	assert.True(t, ok)
}
