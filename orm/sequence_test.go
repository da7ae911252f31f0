package orm

import (
	"testing"

	"github.com/iov-one/coffer/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceIncrements(t *testing.T) {
	db := store.MemStore()
	s := NewSequence("test", "id")

	latest, err := s.Latest(db)
	require.NoError(t, err)
	assert.Equal(t, int64(0), latest)

	for i := int64(1); i < 10; i++ {
		val, err := s.NextInt(db)
		require.NoError(t, err)
		assert.Equal(t, i, val)
	}

	latest, err = s.Latest(db)
	require.NoError(t, err)
	assert.Equal(t, int64(9), latest)
}

func TestSequenceIndependence(t *testing.T) {
	db := store.MemStore()
	a := NewSequence("test", "a")
	b := NewSequence("test", "b")

	_, err := a.NextInt(db)
	require.NoError(t, err)
	_, err = a.NextInt(db)
	require.NoError(t, err)

	val, err := b.NextInt(db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), val)
}

func TestEncodeDecodeSequence(t *testing.T) {
	bz := EncodeSequence(67)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 67}, bz)
	assert.Equal(t, int64(67), DecodeSequence(bz))
}
