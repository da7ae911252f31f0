package app

import (
	"context"
	"sync"
	"time"

	coffer "github.com/iov-one/coffer"
	"github.com/iov-one/coffer/errors"
	"github.com/iov-one/coffer/store/iavl"
	"github.com/iov-one/coffer/x/auth"
	"github.com/iov-one/coffer/x/cash"
	"github.com/iov-one/coffer/x/custody"
	"github.com/iov-one/coffer/x/token"
	"github.com/iov-one/coffer/x/utils"
	"github.com/tendermint/tendermint/libs/log"
)

// VaultOptions configure a vault instance.
type VaultOptions struct {
	// HomeDir is the directory holding the persistent state. Leave empty
	// to keep all state in memory, which is what tests want.
	HomeDir string

	// Logger receives a log line per operation. Leave nil to disable
	// logging.
	Logger log.Logger

	// Clock provides the timestamp stamped on every operation. Leave nil
	// to use the wall clock.
	Clock func() time.Time
}

// Vault is the assembled application. It is the only writer of the
// persistent store: every state changing call locks the instance, stamps the
// operation with a timestamp and a sequence number, runs it through the
// decorator stack and commits a new store version on success.
type Vault struct {
	mu      sync.Mutex
	db      coffer.CommitKVStore
	closer  func()
	handler coffer.Handler
	control *custody.Controller
	cash    cash.Controller
	tokens  token.Ledger
	clock   func() time.Time
	logger  log.Logger
	height  int64
}

// NewVault assembles a vault on top of its persistent store. Previously
// committed state is loaded, so restarting on the same home directory
// continues where the last run stopped.
func NewVault(opts VaultOptions) (*Vault, error) {
	var db *iavl.CommitStore
	if opts.HomeDir == "" {
		db = iavl.MockCommitStore()
	} else {
		db = iavl.NewCommitStore(opts.HomeDir, "coffer")
	}
	if err := db.LoadLatestVersion(); err != nil {
		return nil, errors.Wrap(err, "load latest version")
	}
	latest, err := db.LatestVersion()
	if err != nil {
		return nil, errors.Wrap(err, "latest version")
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	cashctrl := cash.NewController()
	tokens := token.NewBook()
	control := custody.NewController(cashctrl, tokens)

	r := NewRouter()
	authn := auth.Authenticate{}
	custody.RegisterRoutes(r, authn, control)
	cash.RegisterRoutes(r, cashctrl)

	handler := ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		utils.NewSavepoint().OnCheck().OnDeliver(),
		utils.NewActionTagger(),
	).WithHandler(r)

	return &Vault{
		db:      db,
		closer:  db.Close,
		handler: handler,
		control: control,
		cash:    cashctrl,
		tokens:  tokens,
		clock:   clock,
		logger:  logger,
		height:  latest.Version,
	}, nil
}

// InitFromGenesis seeds the store from the bootstrap options. It must be
// called once on an empty store, before any operation is delivered.
func (v *Vault) InitFromGenesis(opts coffer.Options) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	latest, err := v.db.LatestVersion()
	if err != nil {
		return errors.Wrap(err, "latest version")
	}
	if latest.Version != 0 {
		return errors.Wrap(errors.ErrState, "store already initialized")
	}

	inits := []coffer.Initializer{
		&custody.Initializer{},
		&cash.Initializer{},
	}
	cache := v.db.CacheWrap()
	for _, ini := range inits {
		if err := ini.FromGenesis(opts, cache); err != nil {
			cache.Discard()
			return errors.Wrap(err, "genesis")
		}
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "write genesis")
	}
	return v.commit()
}

// commit persists the working state as a new version. Caller must hold the
// lock.
func (v *Vault) commit() error {
	id, err := v.db.Commit()
	if err != nil {
		return errors.Wrap(err, "commit")
	}
	v.height = id.Version
	return nil
}

// newContext stamps the per operation values. Caller must hold the lock.
func (v *Vault) newContext(signers []coffer.Condition) coffer.Context {
	ctx := coffer.WithBlockTime(context.Background(), v.clock())
	ctx = coffer.WithHeight(ctx, v.height+1)
	ctx = coffer.WithLogger(ctx, v.logger)
	return auth.SetConditions(ctx, signers...)
}

// Check validates the transaction against the current state without
// persisting anything.
func (v *Vault) Check(signer coffer.Condition, tx coffer.Tx) (*coffer.CheckResult, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	var signers []coffer.Condition
	if signer != nil {
		signers = append(signers, signer)
	}
	cache := v.db.CacheWrap()
	defer cache.Discard()
	return v.handler.Check(v.newContext(signers), cache, tx)
}

// Deliver executes the transaction on behalf of the signer. On success the
// state change is committed to disk before the call returns, on failure no
// trace of the operation is left behind.
func (v *Vault) Deliver(signer coffer.Condition, tx coffer.Tx) (*coffer.DeliverResult, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	var signers []coffer.Condition
	if signer != nil {
		signers = append(signers, signer)
	}
	cache := v.db.CacheWrap()
	res, err := v.handler.Deliver(v.newContext(signers), cache, tx)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(err, "write state")
	}
	if err := v.commit(); err != nil {
		return nil, err
	}
	return res, nil
}

// RecordTokenDeposit credits tokens received from the outside to the given
// holder. This is the token counterpart of the cash deposit message.
func (v *Vault) RecordTokenDeposit(asset, dest coffer.Address, amount int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	cache := v.db.CacheWrap()
	if err := v.tokens.Mint(cache, asset, dest, amount); err != nil {
		cache.Discard()
		return errors.Wrap(err, "mint")
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "write state")
	}
	return v.commit()
}

// Close releases the persistent store. The vault must not be used afterwards.
func (v *Vault) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closer()
}

// Height returns the number of committed store versions, which grows by one
// with every successful Deliver.
func (v *Vault) Height() int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.height
}

// query runs the load function on a read view of the current state.
func (v *Vault) query(load func(db coffer.ReadOnlyKVStore) error) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	cache := v.db.CacheWrap()
	defer cache.Discard()
	return load(cache)
}

// Proposal returns the stored state of one payment proposal.
func (v *Vault) Proposal(proposalID []byte) (*custody.Proposal, error) {
	var p *custody.Proposal
	err := v.query(func(db coffer.ReadOnlyKVStore) error {
		var err error
		p, err = v.control.GetProposal(db, proposalID)
		return err
	})
	return p, err
}

// ListProposals returns all proposals and their ids, in id order.
func (v *Vault) ListProposals() ([][]byte, []*custody.Proposal, error) {
	var (
		ids   [][]byte
		props []*custody.Proposal
	)
	err := v.query(func(db coffer.ReadOnlyKVStore) error {
		var err error
		ids, props, err = v.control.ListProposals(db)
		return err
	})
	return ids, props, err
}

// Config returns the owner registry state.
func (v *Vault) Config() (*custody.Config, error) {
	var cfg *custody.Config
	err := v.query(func(db coffer.ReadOnlyKVStore) error {
		var err error
		cfg, err = v.control.GetConfig(db)
		return err
	})
	return cfg, err
}

// Balance returns the native funds held by the address.
func (v *Vault) Balance(addr coffer.Address) (int64, error) {
	var balance int64
	err := v.query(func(db coffer.ReadOnlyKVStore) error {
		var err error
		balance, err = v.cash.Balance(db, addr)
		return err
	})
	return balance, err
}

// TokenBalance returns the amount of the asset held by the holder.
func (v *Vault) TokenBalance(asset, holder coffer.Address) (int64, error) {
	var balance int64
	err := v.query(func(db coffer.ReadOnlyKVStore) error {
		var err error
		balance, err = v.tokens.BalanceOf(db, asset, holder)
		return err
	})
	return balance, err
}
