package orm

import (
	coffer "github.com/iov-one/coffer"
	"github.com/iov-one/coffer/errors"
)

// CloneableData is an intelligent Value that can be embedded in a simple
// object to handle much of the details.
type CloneableData interface {
	coffer.Persistent
	Validate() error
	Copy() CloneableData
}

// Model is implemented by any entity that can be stored using ModelBucket.
//
// This is the same interface as CloneableData. Using the right type names
// provides an easier to read API.
type Model interface {
	coffer.Persistent
	Validate() error
	Copy() CloneableData
}

// Object holds a generic model stored under a key.
type Object interface {
	// Validate returns error if the object is not in a valid state to
	// save to the db.
	Validate() error

	Key() []byte
	Value() CloneableData

	// Clone returns a copy of the object that can be modified
	// independently.
	Clone() Object
}

// SimpleObj wraps a key and a value together. It can be used as a template
// for type-safe objects.
type SimpleObj struct {
	key   []byte
	value CloneableData
}

var _ Object = (*SimpleObj)(nil)

// NewSimpleObj will combine a key and value into an object.
func NewSimpleObj(key []byte, value CloneableData) *SimpleObj {
	return &SimpleObj{
		key:   key,
		value: value,
	}
}

// Value gets the value stored in the object.
func (o SimpleObj) Value() CloneableData {
	return o.value
}

// Key returns the key to store the object under.
func (o SimpleObj) Key() []byte {
	return o.key
}

// Validate makes sure the fields aren't empty and the value is also valid.
func (o SimpleObj) Validate() error {
	if len(o.key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "missing key")
	}
	if o.value == nil {
		return errors.Wrap(errors.ErrEmpty, "missing value")
	}
	return o.value.Validate()
}

// SetKey may be used to update a simple obj key.
func (o *SimpleObj) SetKey(key []byte) {
	o.key = key
}

// Clone makes a copy of the whole object, so modifications to the clone do
// not affect the original.
func (o SimpleObj) Clone() Object {
	res := &SimpleObj{
		value: o.value.Copy(),
	}
	// only copy key if non-nil
	if len(o.key) > 0 {
		res.key = append([]byte{}, o.key...)
	}
	return res
}
