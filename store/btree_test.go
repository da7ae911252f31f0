package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBTreeCacheGetSet(t *testing.T) {
	base := MemStore()

	k, v := []byte("french"), []byte("fry")

	// empty read
	got, err := base.Get(k)
	require.NoError(t, err)
	assert.Nil(t, got)
	has, err := base.Has(k)
	require.NoError(t, err)
	assert.False(t, has)

	// set and read
	require.NoError(t, base.Set(k, v))
	got, err = base.Get(k)
	require.NoError(t, err)
	assert.Equal(t, v, got)

	// delete and read
	require.NoError(t, base.Delete(k))
	got, err = base.Get(k)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCacheWrapWriteAndDiscard(t *testing.T) {
	base := MemStore()
	k, v := []byte("top"), []byte("hat")
	k2, v2 := []byte("heel"), []byte("flip")
	require.NoError(t, base.Set(k, v))

	// discarded writes never touch the backing store
	cache := base.CacheWrap()
	require.NoError(t, cache.Set(k2, v2))
	require.NoError(t, cache.Delete(k))
	got, err := cache.Get(k2)
	require.NoError(t, err)
	assert.Equal(t, v2, got)
	got, err = cache.Get(k)
	require.NoError(t, err)
	assert.Nil(t, got)

	cache.Discard()
	got, err = base.Get(k)
	require.NoError(t, err)
	assert.Equal(t, v, got)
	has, err := base.Has(k2)
	require.NoError(t, err)
	assert.False(t, has)

	// written changes are applied atomically
	cache = base.CacheWrap()
	require.NoError(t, cache.Set(k2, v2))
	require.NoError(t, cache.Delete(k))
	require.NoError(t, cache.Write())

	got, err = base.Get(k2)
	require.NoError(t, err)
	assert.Equal(t, v2, got)
	got, err = base.Get(k)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCacheWrapIterator(t *testing.T) {
	base := MemStore()
	require.NoError(t, base.Set([]byte{1}, []byte("a")))
	require.NoError(t, base.Set([]byte{3}, []byte("c")))
	require.NoError(t, base.Set([]byte{5}, []byte("e")))

	cache := base.CacheWrap()
	// overwrite, delete and add through the cache
	require.NoError(t, cache.Set([]byte{3}, []byte("C")))
	require.NoError(t, cache.Delete([]byte{5}))
	require.NoError(t, cache.Set([]byte{4}, []byte("d")))

	iter, err := cache.Iterator(nil, nil)
	require.NoError(t, err)
	defer iter.Close()

	var keys, values [][]byte
	for ; iter.Valid(); require.NoError(t, iter.Next()) {
		keys = append(keys, iter.Key())
		values = append(values, iter.Value())
	}
	assert.Equal(t, [][]byte{{1}, {3}, {4}}, keys)
	assert.Equal(t, [][]byte{[]byte("a"), []byte("C"), []byte("d")}, values)
}

func TestCacheWrapReverseIterator(t *testing.T) {
	base := MemStore()
	require.NoError(t, base.Set([]byte{1}, []byte("a")))
	require.NoError(t, base.Set([]byte{2}, []byte("b")))

	cache := base.CacheWrap()
	require.NoError(t, cache.Set([]byte{7}, []byte("g")))

	iter, err := cache.ReverseIterator(nil, nil)
	require.NoError(t, err)
	defer iter.Close()

	var keys [][]byte
	for ; iter.Valid(); require.NoError(t, iter.Next()) {
		keys = append(keys, iter.Key())
	}
	assert.Equal(t, [][]byte{{7}, {2}, {1}}, keys)
}

func TestIteratorRange(t *testing.T) {
	base := MemStore()
	for i := byte(1); i < 6; i++ {
		require.NoError(t, base.Set([]byte{i}, []byte{i}))
	}

	iter, err := base.Iterator([]byte{2}, []byte{4})
	require.NoError(t, err)
	defer iter.Close()

	var keys [][]byte
	for ; iter.Valid(); require.NoError(t, iter.Next()) {
		keys = append(keys, iter.Key())
	}
	// end is exclusive
	assert.Equal(t, [][]byte{{2}, {3}}, keys)
}
