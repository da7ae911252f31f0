package orm

import (
	"encoding/binary"

	"github.com/iov-one/coffer/errors"
)

// Counter is a simple model holding one number. It is used to test the
// bucket machinery without dragging a full codec in.
type Counter struct {
	Count int64
}

var _ Model = (*Counter)(nil)

// Marshal encodes the counter as 8 big-endian bytes.
func (c *Counter) Marshal() ([]byte, error) {
	return EncodeSequence(c.Count), nil
}

// Unmarshal restores the counter from 8 big-endian bytes.
func (c *Counter) Unmarshal(raw []byte) error {
	if len(raw) != 8 {
		return errors.Wrapf(errors.ErrInput, "invalid length: %d", len(raw))
	}
	c.Count = int64(binary.BigEndian.Uint64(raw))
	return nil
}

// Validate requires a non-negative count.
func (c *Counter) Validate() error {
	if c.Count < 0 {
		return errors.Wrap(errors.ErrState, "negative counter")
	}
	return nil
}

// Copy produces an independent copy.
func (c *Counter) Copy() CloneableData {
	return &Counter{Count: c.Count}
}
