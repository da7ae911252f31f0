package cash

import (
	"github.com/iov-one/coffer/errors"
	"github.com/iov-one/coffer/orm"
)

var _ orm.Model = (*Wallet)(nil)

// Validate requires a non-negative balance.
func (w *Wallet) Validate() error {
	if w.Balance < 0 {
		return errors.Wrap(errors.ErrModel, "negative balance")
	}
	return nil
}

// Copy makes a new wallet with the same balance.
func (w *Wallet) Copy() orm.CloneableData {
	return &Wallet{Balance: w.Balance}
}

// IsEmpty is true when the wallet holds nothing. Empty wallets are removed
// from the store.
func (w *Wallet) IsEmpty() bool {
	return w.Balance == 0
}

// NewWalletBucket returns a bucket for wallets, keyed by the owner address.
func NewWalletBucket() orm.ModelBucket {
	return orm.NewModelBucket("cash", &Wallet{})
}
