package cash

import (
	coffer "github.com/iov-one/coffer"
	"github.com/iov-one/coffer/errors"
)

var _ coffer.Msg = (*DepositMsg)(nil)

// Path returns the routing path for this message.
func (DepositMsg) Path() string {
	return "cash/deposit"
}

// Validate makes sure that this is sensible.
func (m *DepositMsg) Validate() error {
	if err := m.Destination.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	if m.Amount <= 0 {
		return errors.Wrap(errors.ErrAmount, "non-positive deposit")
	}
	return nil
}
