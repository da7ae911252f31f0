package orm

import (
	"testing"

	"github.com/iov-one/coffer/errors"
	"github.com/iov-one/coffer/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelBucketPutAndOne(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &Counter{})

	key, err := b.Put(db, []byte("c1"), &Counter{Count: 1})
	require.NoError(t, err)
	assert.Equal(t, []byte("c1"), key)

	var c Counter
	require.NoError(t, b.One(db, []byte("c1"), &c))
	assert.Equal(t, int64(1), c.Count)

	err = b.One(db, []byte("unknown"), &c)
	assert.True(t, errors.ErrNotFound.Is(err))
}

func TestModelBucketPutSequence(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &Counter{})

	// a nil key assigns the next value from the id sequence
	key, err := b.Put(db, nil, &Counter{Count: 111})
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 1}, key)

	key, err = b.Put(db, nil, &Counter{Count: 222})
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 2}, key)

	var c Counter
	require.NoError(t, b.One(db, []byte{0, 0, 0, 0, 0, 0, 0, 2}, &c))
	assert.Equal(t, int64(222), c.Count)
}

func TestModelBucketPutValidates(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &Counter{})

	_, err := b.Put(db, []byte("c1"), &Counter{Count: -1})
	assert.True(t, errors.ErrState.Is(err))
}

func TestModelBucketDelete(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &Counter{})

	err := b.Delete(db, []byte("unknown"))
	assert.True(t, errors.ErrNotFound.Is(err))

	_, err = b.Put(db, []byte("c1"), &Counter{Count: 1})
	require.NoError(t, err)
	require.NoError(t, b.Delete(db, []byte("c1")))

	var c Counter
	err = b.One(db, []byte("c1"), &c)
	assert.True(t, errors.ErrNotFound.Is(err))
}

func TestModelBucketHas(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &Counter{})

	_, err := b.Put(db, []byte("c1"), &Counter{Count: 1})
	require.NoError(t, err)

	require.NoError(t, b.Has(db, []byte("c1")))
	assert.True(t, errors.ErrNotFound.Is(b.Has(db, []byte("unknown"))))
	assert.True(t, errors.ErrNotFound.Is(b.Has(db, nil)))
}

func TestModelBucketIterAll(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &Counter{})

	for i := int64(1); i < 4; i++ {
		_, err := b.Put(db, nil, &Counter{Count: i * 10})
		require.NoError(t, err)
	}
	// other buckets do not leak into the iteration
	other := NewModelBucket("other", &Counter{})
	_, err := other.Put(db, nil, &Counter{Count: 666})
	require.NoError(t, err)

	iter, err := b.IterAll(db)
	require.NoError(t, err)
	defer iter.Release()

	var counts []int64
	var keys [][]byte
	for {
		var c Counter
		key, err := iter.LoadNext(&c)
		if errors.ErrIteratorDone.Is(err) {
			break
		}
		require.NoError(t, err)
		counts = append(counts, c.Count)
		keys = append(keys, key)
	}
	assert.Equal(t, []int64{10, 20, 30}, counts)
	assert.Equal(t, [][]byte{
		{0, 0, 0, 0, 0, 0, 0, 1},
		{0, 0, 0, 0, 0, 0, 0, 2},
		{0, 0, 0, 0, 0, 0, 0, 3},
	}, keys)
}

func TestModelBucketRefusesWrongType(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &Counter{})

	_, err := b.Put(db, nil, &badModel{})
	assert.True(t, errors.ErrType.Is(err))
}

type badModel struct{ Counter }
