package custody

import (
	"sync"

	coffer "github.com/iov-one/coffer"
	"github.com/iov-one/coffer/errors"
	"github.com/iov-one/coffer/gconf"
	"github.com/iov-one/coffer/orm"
	"github.com/iov-one/coffer/x/cash"
	"github.com/iov-one/coffer/x/token"
)

// Controller coordinates the proposal ledger with the funds held by the
// vault. A single instance serializes all fund releasing operations, create
// one per deployment and share it between the handlers.
type Controller struct {
	proposals orm.ModelBucket
	cash      cash.Controller
	tokens    token.Ledger

	// mu guards the in flight flag. The flag rejects any operation that
	// re-enters the executor while a transfer is still running, on top
	// of the executed mark that is persisted before funds move.
	mu        sync.Mutex
	executing bool
}

// NewController returns a controller releasing native funds through the
// given cash controller and token funds through the given ledger.
func NewController(cashctrl cash.Controller, tokens token.Ledger) *Controller {
	return &Controller{
		proposals: NewProposalBucket(),
		cash:      cashctrl,
		tokens:    tokens,
	}
}

// loadConfig returns the owner registry. The registry must be seeded during
// the genesis, a missing configuration is a coding error.
func (c *Controller) loadConfig(db gconf.ReadStore) (*Config, error) {
	var cfg Config
	if err := gconf.Load(db, "custody", &cfg); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return &cfg, nil
}

// Initialize completes the owner registry exactly once. Caller must be the
// bootstrap owner, which is verified by the handler.
func (c *Controller) Initialize(db coffer.KVStore, msg *InitMsg) (*Config, error) {
	cfg, err := c.loadConfig(db)
	if err != nil {
		return nil, err
	}
	if cfg.Initialized {
		return nil, errors.Wrap(errors.ErrState, "already initialized")
	}

	bootstrap := cfg.Owners[0]
	for _, owner := range msg.AdditionalOwners {
		if owner.Equals(bootstrap) {
			return nil, errors.Wrapf(errors.ErrDuplicate, "owner %s", owner)
		}
	}

	cfg.Owners = append(cfg.Owners, msg.AdditionalOwners...)
	cfg.RequiredApprovals = msg.RequiredApprovals
	cfg.ApprovalWindow = msg.ApprovalWindow
	cfg.Initialized = true

	if err := gconf.Save(db, "custody", cfg); err != nil {
		return nil, errors.Wrap(err, "save configuration")
	}
	return cfg, nil
}

// CreatePayment appends a new proposal to the ledger and returns its id. No
// funds move, though a native payment is refused outright when the vault
// does not hold the amount at proposal time.
func (c *Controller) CreatePayment(ctx coffer.Context, db coffer.KVStore, p *Proposal) ([]byte, error) {
	cfg, err := c.loadConfig(db)
	if err != nil {
		return nil, err
	}
	if !cfg.Initialized {
		return nil, errors.Wrap(errors.ErrState, "not initialized")
	}
	if !cfg.IsOwner(p.Initiator) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "not an owner")
	}

	if p.IsNative() {
		balance, err := c.cash.Balance(db, VaultAddress())
		if err != nil {
			return nil, errors.Wrap(err, "vault balance")
		}
		if balance < p.Amount {
			return nil, errors.Wrapf(errors.ErrAmount, "insufficient vault balance: %d < %d", balance, p.Amount)
		}
	}

	now, err := coffer.BlockTime(ctx)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = coffer.AsUnixTime(now)
	p.Approvals = nil
	p.Executed = false

	id, err := c.proposals.Put(db, nil, p)
	if err != nil {
		return nil, errors.Wrap(err, "store proposal")
	}
	return id, nil
}

// Approve records the voters approval on the proposal. The vote that
// reaches the threshold releases the funds within the same operation. It
// returns the proposal state after the call and whether it executed.
func (c *Controller) Approve(ctx coffer.Context, db coffer.KVStore, proposalID []byte, voter coffer.Address) (*Proposal, bool, error) {
	cfg, err := c.loadConfig(db)
	if err != nil {
		return nil, false, err
	}
	if !cfg.Initialized {
		return nil, false, errors.Wrap(errors.ErrState, "not initialized")
	}
	if !cfg.IsOwner(voter) {
		return nil, false, errors.Wrap(errors.ErrUnauthorized, "not an owner")
	}

	var p Proposal
	if err := c.proposals.One(db, proposalID, &p); err != nil {
		return nil, false, errors.Wrap(err, "load proposal")
	}
	if p.Executed {
		return nil, false, errors.Wrap(errors.ErrState, "already executed")
	}
	now, err := coffer.BlockTime(ctx)
	if err != nil {
		return nil, false, err
	}
	if coffer.AsUnixTime(now) > p.Deadline(cfg.ApprovalWindow) {
		return nil, false, errors.Wrap(errors.ErrExpired, "approval window closed")
	}
	if p.HasApproval(voter) {
		return nil, false, errors.Wrap(errors.ErrDuplicate, "already approved")
	}

	p.Approvals = append(p.Approvals, voter)
	if _, err := c.proposals.Put(db, proposalID, &p); err != nil {
		return nil, false, errors.Wrap(err, "store proposal")
	}

	// Votes stay recorded when an owner rotates out, so counting the
	// recorded approvals is all the threshold evaluation needs.
	if len(p.Approvals) < int(cfg.RequiredApprovals) {
		return &p, false, nil
	}
	if err := c.execute(ctx, db, proposalID, &p, cfg); err != nil {
		return nil, false, err
	}
	return &p, true, nil
}

// execute releases the proposed funds exactly once. It is called only by
// Approve when the threshold is crossed, never directly.
func (c *Controller) execute(ctx coffer.Context, db coffer.KVStore, proposalID []byte, p *Proposal, cfg *Config) error {
	c.mu.Lock()
	if c.executing {
		c.mu.Unlock()
		return errors.Wrap(errors.ErrState, "execution in flight")
	}
	c.executing = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.executing = false
		c.mu.Unlock()
	}()

	// Execution is reached only through the approval above, but the
	// preconditions are cheap and a re-entrant call chain could arrive
	// here with a different state.
	if p.Executed {
		return errors.Wrap(errors.ErrState, "already executed")
	}
	now, err := coffer.BlockTime(ctx)
	if err != nil {
		return err
	}
	if coffer.AsUnixTime(now) > p.Deadline(cfg.ApprovalWindow) {
		return errors.Wrap(errors.ErrExpired, "approval window closed")
	}

	// The executed mark is persisted before any funds move. A transfer
	// that re-enters the vault observes the proposal as terminal.
	p.Executed = true
	if _, err := c.proposals.Put(db, proposalID, p); err != nil {
		return errors.Wrap(err, "store proposal")
	}

	if p.IsNative() {
		if err := c.cash.MoveCoins(db, VaultAddress(), p.Destination, p.Amount); err != nil {
			return errors.Wrapf(ErrTransferFailed, "native send: %s", err)
		}
		return nil
	}

	before, err := c.tokens.BalanceOf(db, p.Asset, p.Destination)
	if err != nil {
		return errors.Wrap(err, "destination balance")
	}
	if err := c.tokens.Transfer(db, p.Asset, VaultAddress(), p.Destination, p.Amount); err != nil {
		return errors.Wrapf(ErrTransferFailed, "token transfer: %s", err)
	}
	after, err := c.tokens.BalanceOf(db, p.Asset, p.Destination)
	if err != nil {
		return errors.Wrap(err, "destination balance")
	}
	// catch assets that silently deliver less than requested, for
	// example by charging a transfer fee
	if after-before != p.Amount {
		return errors.Wrapf(ErrTransferFailed, "under-delivered: %d instead of %d", after-before, p.Amount)
	}
	return nil
}

// RotateOwner hands the current owners seat over to the next identity. The
// seat position, the threshold and the window are untouched.
func (c *Controller) RotateOwner(db coffer.KVStore, current, next coffer.Address) error {
	cfg, err := c.loadConfig(db)
	if err != nil {
		return err
	}
	seat := cfg.OwnerIndex(current)
	if seat == -1 {
		return errors.Wrap(errors.ErrUnauthorized, "not an owner")
	}
	if cfg.IsOwner(next) {
		return errors.Wrapf(errors.ErrDuplicate, "owner %s", next)
	}

	cfg.Owners[seat] = next
	if err := gconf.Save(db, "custody", cfg); err != nil {
		return errors.Wrap(err, "save configuration")
	}
	return nil
}

// GetProposal returns the stored proposal state.
func (c *Controller) GetProposal(db coffer.ReadOnlyKVStore, proposalID []byte) (*Proposal, error) {
	var p Proposal
	if err := c.proposals.One(db, proposalID, &p); err != nil {
		return nil, errors.Wrap(err, "load proposal")
	}
	return &p, nil
}

// ListProposals returns all proposals in the ledger in id order, together
// with their ids.
func (c *Controller) ListProposals(db coffer.ReadOnlyKVStore) ([][]byte, []*Proposal, error) {
	iter, err := c.proposals.IterAll(db)
	if err != nil {
		return nil, nil, err
	}
	defer iter.Release()

	var ids [][]byte
	var props []*Proposal
	for {
		var p Proposal
		id, err := iter.LoadNext(&p)
		if errors.ErrIteratorDone.Is(err) {
			return ids, props, nil
		}
		if err != nil {
			return nil, nil, err
		}
		ids = append(ids, id)
		props = append(props, &p)
	}
}

// GetConfig returns the owner registry state.
func (c *Controller) GetConfig(db gconf.ReadStore) (*Config, error) {
	return c.loadConfig(db)
}
