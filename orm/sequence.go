package orm

import (
	"encoding/binary"

	coffer "github.com/iov-one/coffer"
	"github.com/iov-one/coffer/errors"
)

// Sequence maintains a monotonically increasing counter in the db.
type Sequence struct {
	id []byte
}

// NewSequence returns a sequence with this bucket and name.
func NewSequence(bucket, name string) Sequence {
	id := "_s." + bucket + ":" + name
	return Sequence{
		id: []byte(id),
	}
}

// NextVal increments the sequence and returns its state as 8 bytes.
func (s Sequence) NextVal(db coffer.KVStore) ([]byte, error) {
	val, err := s.increment(db)
	if err != nil {
		return nil, err
	}
	return EncodeSequence(val), nil
}

// NextInt increments the sequence and returns its state as int64.
func (s Sequence) NextInt(db coffer.KVStore) (int64, error) {
	return s.increment(db)
}

// Latest returns the recently returned value of the sequence. It does not
// modify the sequence state. A sequence that was never incremented has a
// latest value of 0.
func (s Sequence) Latest(db coffer.ReadOnlyKVStore) (int64, error) {
	raw, err := db.Get(s.id)
	if err != nil {
		return 0, err
	}
	if raw == nil {
		return 0, nil
	}
	return DecodeSequence(raw), nil
}

func (s Sequence) increment(db coffer.KVStore) (int64, error) {
	val, err := s.Latest(db)
	if err != nil {
		return 0, err
	}
	val++
	if err := db.Set(s.id, EncodeSequence(val)); err != nil {
		return 0, errors.Wrap(err, "write sequence")
	}
	return val, nil
}

// EncodeSequence converts an int64 counter to a big-endian 8 byte value.
func EncodeSequence(val int64) []byte {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, uint64(val))
	return bz
}

// DecodeSequence converts an 8 byte value to an int64 counter.
func DecodeSequence(bz []byte) int64 {
	if len(bz) != 8 {
		panic(errors.Wrapf(errors.ErrInput, "sequence of length %d", len(bz)))
	}
	return int64(binary.BigEndian.Uint64(bz))
}
