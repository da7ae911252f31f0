package orm

import (
	"reflect"

	coffer "github.com/iov-one/coffer"
	"github.com/iov-one/coffer/errors"
)

// ModelBucket is implemented by buckets that operates on Models rather than
// Objects.
type ModelBucket interface {
	// One query the database for a single model instance. Lookup is done
	// by the primary index key. Result is loaded into given destination
	// model.
	// This method returns ErrNotFound if the entity does not exist in the
	// database.
	// If given model type cannot be used to contain stored entity, ErrType
	// is returned.
	One(db coffer.ReadOnlyKVStore, key []byte, dest Model) error

	// Put saves given model in the database. Before inserting into
	// database, model is validated using its Validate method.
	// If the key is nil or zero length then a sequence generator is used
	// to create a unique key value.
	// Using a key that already exists in the database overwrites the
	// entity.
	// Returns the key under which the model was stored.
	Put(db coffer.KVStore, key []byte, m Model) ([]byte, error)

	// Delete removes an entity with given primary key from the database.
	// It returns ErrNotFound if an entity with given key does not exist.
	Delete(db coffer.KVStore, key []byte) error

	// Has returns nil if an entity with given primary key exists, or
	// ErrNotFound if it does not.
	Has(db coffer.ReadOnlyKVStore, key []byte) error

	// IterAll returns an iterator over all entities in this bucket, in
	// ascending key order.
	IterAll(db coffer.ReadOnlyKVStore) (ModelIterator, error)
}

// ModelIterator allows iteration over model entities stored in a bucket.
type ModelIterator interface {
	// LoadNext loads the value at the current position into the given
	// destination model, returns the key it was stored under and moves
	// the cursor. It returns ErrIteratorDone when all elements were
	// consumed.
	LoadNext(dest Model) ([]byte, error)

	// Release releases the iterator.
	Release()
}

// NewModelBucket returns a ModelBucket instance. Entities stored with a nil
// key are assigned one from the bucket id sequence.
func NewModelBucket(name string, m Model) ModelBucket {
	b := NewBucket(name, NewSimpleObj(nil, m))

	tp := reflect.TypeOf(m)
	if tp.Kind() == reflect.Ptr {
		tp = tp.Elem()
	}

	return &modelBucket{
		b:     b,
		idSeq: b.Sequence("id"),
		model: tp,
	}
}

type modelBucket struct {
	b     Bucket
	idSeq Sequence
	model reflect.Type
}

var _ ModelBucket = (*modelBucket)(nil)

func (mb *modelBucket) One(db coffer.ReadOnlyKVStore, key []byte, dest Model) error {
	obj, err := mb.b.Get(db, key)
	if err != nil {
		return err
	}
	if obj == nil || obj.Value() == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", dest)
	}
	res := obj.Value()

	if !reflect.TypeOf(res).AssignableTo(reflect.TypeOf(dest)) {
		return errors.Wrapf(errors.ErrType, "%T cannot be represented as %T", res, dest)
	}

	reflect.ValueOf(dest).Elem().Set(reflect.ValueOf(res).Elem())
	return nil
}

func (mb *modelBucket) Put(db coffer.KVStore, key []byte, m Model) ([]byte, error) {
	mTp := reflect.TypeOf(m)
	if mTp.Kind() != reflect.Ptr {
		return nil, errors.Wrap(errors.ErrType, "model destination must be a pointer")
	}
	if mb.model != mTp.Elem() {
		return nil, errors.Wrapf(errors.ErrType, "cannot store %T type in this bucket", m)
	}

	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid model")
	}

	if len(key) == 0 {
		var err error
		key, err = mb.idSeq.NextVal(db)
		if err != nil {
			return nil, errors.Wrap(err, "ID sequence")
		}
	}

	obj := NewSimpleObj(key, m)
	if err := mb.b.Save(db, obj); err != nil {
		return nil, errors.Wrap(err, "cannot store in the database")
	}
	return key, nil
}

func (mb *modelBucket) Delete(db coffer.KVStore, key []byte) error {
	if err := mb.Has(db, key); err != nil {
		return err
	}
	return mb.b.Delete(db, key)
}

func (mb *modelBucket) Has(db coffer.ReadOnlyKVStore, key []byte) error {
	if key == nil {
		// nil key is a special case that would cause the store to panic
		return errors.ErrNotFound
	}
	ok, err := mb.b.Has(db, key)
	if err != nil {
		return err
	}
	if !ok {
		return errors.ErrNotFound
	}
	return nil
}

func (mb *modelBucket) IterAll(db coffer.ReadOnlyKVStore) (ModelIterator, error) {
	iter, err := mb.b.Iterator(db)
	if err != nil {
		return nil, errors.Wrap(err, "bucket iterator")
	}
	return &idModelIterator{
		iterator:     iter,
		bucketPrefix: mb.b.prefix,
		model:        mb.model,
	}, nil
}

// idModelIterator iterates over entities by their primary keys.
type idModelIterator struct {
	iterator     coffer.Iterator
	bucketPrefix []byte
	model        reflect.Type
}

var _ ModelIterator = (*idModelIterator)(nil)

func (i *idModelIterator) LoadNext(dest Model) ([]byte, error) {
	if !i.iterator.Valid() {
		return nil, errors.ErrIteratorDone
	}

	mTp := reflect.TypeOf(dest)
	if mTp.Kind() != reflect.Ptr || i.model != mTp.Elem() {
		return nil, errors.Wrapf(errors.ErrType, "this bucket does not hold %T entities", dest)
	}

	key := i.iterator.Key()
	if err := dest.Unmarshal(i.iterator.Value()); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %T", dest)
	}
	if err := i.iterator.Next(); err != nil {
		return nil, errors.Wrap(err, "advance iterator")
	}
	// strip the bucket prefix from the raw store key
	return key[len(i.bucketPrefix):], nil
}

func (i *idModelIterator) Release() {
	i.iterator.Close()
}
