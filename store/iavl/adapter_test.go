package iavl

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitStoreWriteAndReload(t *testing.T) {
	dir, err := ioutil.TempDir("", "iavl-adapter")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	s := NewCommitStore(dir, "test")
	require.NoError(t, s.LoadLatestVersion())

	cache := s.CacheWrap()
	require.NoError(t, cache.Set([]byte("hello"), []byte("world")))
	require.NoError(t, cache.Write())

	id, err := s.Commit()
	require.NoError(t, err)
	assert.Equal(t, int64(1), id.Version)
	assert.NotEmpty(t, id.Hash)
	s.Close()

	// a fresh store over the same directory sees committed data
	reload := NewCommitStore(dir, "test")
	defer reload.Close()
	require.NoError(t, reload.LoadLatestVersion())
	got, err := reload.Get([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, []byte("world"), got)
}

func TestCommitStoreDiscardedCacheLeavesNoTrace(t *testing.T) {
	s := MockCommitStore()
	require.NoError(t, s.LoadLatestVersion())

	cache := s.CacheWrap()
	require.NoError(t, cache.Set([]byte("a"), []byte("1")))
	cache.Discard()

	got, err := s.Get([]byte("a"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCommitStoreIterator(t *testing.T) {
	s := MockCommitStore()
	require.NoError(t, s.LoadLatestVersion())

	cache := s.CacheWrap()
	require.NoError(t, cache.Set([]byte{1}, []byte("a")))
	require.NoError(t, cache.Set([]byte{2}, []byte("b")))
	require.NoError(t, cache.Set([]byte{3}, []byte("c")))
	require.NoError(t, cache.Write())

	// a new cache combines its own writes with the tree content
	cache = s.CacheWrap()
	require.NoError(t, cache.Delete([]byte{2}))
	require.NoError(t, cache.Set([]byte{4}, []byte("d")))

	iter, err := cache.Iterator(nil, nil)
	require.NoError(t, err)
	defer iter.Close()

	var keys [][]byte
	for ; iter.Valid(); require.NoError(t, iter.Next()) {
		keys = append(keys, iter.Key())
	}
	assert.Equal(t, [][]byte{{1}, {3}, {4}}, keys)
}
