package cash

import (
	coffer "github.com/iov-one/coffer"
	"github.com/iov-one/coffer/errors"
)

// GenesisAccount is one wallet seeded during the genesis.
type GenesisAccount struct {
	Address coffer.Address `json:"address"`
	Balance int64          `json:"balance"`
}

// Initializer fulfils the Initializer interface to load data from the
// genesis file.
type Initializer struct{}

var _ coffer.Initializer = (*Initializer)(nil)

// FromGenesis will parse initial wallet balances from the genesis and save
// them to the database.
func (*Initializer) FromGenesis(opts coffer.Options, db coffer.KVStore) error {
	var accounts []GenesisAccount
	if err := opts.ReadOptions("cash", &accounts); err != nil {
		return errors.Wrap(err, "read cash")
	}
	bucket := NewWalletBucket()
	for i, acc := range accounts {
		if err := acc.Address.Validate(); err != nil {
			return errors.Wrapf(err, "account #%d address", i)
		}
		if _, err := bucket.Put(db, acc.Address, &Wallet{Balance: acc.Balance}); err != nil {
			return errors.Wrapf(err, "account #%d wallet", i)
		}
	}
	return nil
}
