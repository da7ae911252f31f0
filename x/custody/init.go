package custody

import (
	coffer "github.com/iov-one/coffer"
	"github.com/iov-one/coffer/gconf"
)

// Initializer fulfils the Initializer interface to load data from the
// genesis file.
type Initializer struct{}

var _ coffer.Initializer = (*Initializer)(nil)

// FromGenesis will parse the initial owner registry from the genesis and
// save it to the database. Usually this seeds only the bootstrap owner and
// the configuration is completed later with an InitMsg.
func (*Initializer) FromGenesis(opts coffer.Options, db coffer.KVStore) error {
	return gconf.InitConfig(db, opts, "custody", &Config{})
}
