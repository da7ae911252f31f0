package orm

import (
	"regexp"

	coffer "github.com/iov-one/coffer"
	"github.com/iov-one/coffer/errors"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{1,20}$`).MatchString

// Bucket is a generic holder that stores data as well as references to
// secondary indexes and sequences.
//
// This is a generic building block that should generally be embedded in a
// type-safe wrapper to ensure all data is the same type.
type Bucket struct {
	name   string
	prefix []byte
	proto  Object
}

// NewBucket creates a bucket to store data.
func NewBucket(name string, proto Object) Bucket {
	if !isBucketName(name) {
		panic(errors.Wrapf(errors.ErrDatabase, "illegal bucket name: %s", name))
	}
	return Bucket{
		name:   name,
		prefix: append([]byte(name), ':'),
		proto:  proto,
	}
}

// Name returns the name of the bucket.
func (b Bucket) Name() string {
	return b.name
}

// DBKey is the full key we store in the db, including the bucket prefix.
func (b Bucket) DBKey(key []byte) []byte {
	return append(b.prefix, key...)
}

// Get one element by key, returns (nil, nil) if not found.
func (b Bucket) Get(db coffer.ReadOnlyKVStore, key []byte) (Object, error) {
	bz, err := db.Get(b.DBKey(key))
	if err != nil {
		return nil, err
	}
	if bz == nil {
		return nil, nil
	}
	return b.Parse(key, bz)
}

// Parse takes a key and a value data (weird, huh?) and reconstructs the
// stored object.
func (b Bucket) Parse(key, value []byte) (Object, error) {
	obj := b.proto.Clone()
	if err := obj.Value().Unmarshal(value); err != nil {
		return nil, errors.Wrapf(err, "parse %T", obj.Value())
	}
	if keyed, ok := obj.(keyed); ok {
		keyed.SetKey(key)
	}
	return obj, nil
}

// keyed is implemented by objects that allow updating the key after
// construction, like SimpleObj.
type keyed interface {
	SetKey([]byte)
}

// Save the given object under its own key. It must be valid.
func (b Bucket) Save(db coffer.KVStore, model Object) error {
	if err := model.Validate(); err != nil {
		return errors.Wrap(err, "invalid object")
	}
	bz, err := model.Value().Marshal()
	if err != nil {
		return err
	}
	return db.Set(b.DBKey(model.Key()), bz)
}

// Delete the given key from the bucket. Not an error if the key is missing.
func (b Bucket) Delete(db coffer.KVStore, key []byte) error {
	return db.Delete(b.DBKey(key))
}

// Has returns true if the given key is in the bucket.
func (b Bucket) Has(db coffer.ReadOnlyKVStore, key []byte) (bool, error) {
	return db.Has(b.DBKey(key))
}

// Sequence returns a Sequence by name, scoped to this bucket.
func (b Bucket) Sequence(name string) Sequence {
	return NewSequence(b.name, name)
}

// Iterator returns an iterator over all objects in this bucket, in ascending
// key order.
func (b Bucket) Iterator(db coffer.ReadOnlyKVStore) (coffer.Iterator, error) {
	start, end := prefixRange(b.prefix)
	return db.Iterator(start, end)
}

// prefixRange turns a prefix into (start, end) to create a range of all keys
// with the given prefix.
//
// In the case of a nil prefix, it returns nil, nil to cover the entire range.
// In the case the prefix is all 0xff, the end is nil as well.
func prefixRange(prefix []byte) ([]byte, []byte) {
	if prefix == nil {
		return nil, nil
	}
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return prefix, end[:i+1]
		}
	}
	return prefix, nil
}
