package custody

import (
	"context"
	"testing"
	"time"

	coffer "github.com/iov-one/coffer"
	"github.com/iov-one/coffer/coffertest"
	"github.com/iov-one/coffer/errors"
	"github.com/iov-one/coffer/gconf"
	"github.com/iov-one/coffer/store"
	"github.com/iov-one/coffer/x/cash"
	"github.com/iov-one/coffer/x/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Unix(1600000000, 0)

type fixture struct {
	t       *testing.T
	db      coffer.CacheableKVStore
	auth    *coffertest.CtxAuth
	cash    cash.BaseController
	tokens  token.Ledger
	control *Controller
	owners  []coffer.Condition
}

// newFixture returns a vault with the given number of owners and an already
// initialized configuration. Pass a nil ledger to use the default book.
func newFixture(t *testing.T, owners int, threshold uint32, window time.Duration, tokens token.Ledger) *fixture {
	t.Helper()

	if tokens == nil {
		tokens = token.NewBook()
	}
	f := &fixture{
		t:      t,
		db:     store.MemStore(),
		auth:   &coffertest.CtxAuth{Key: "auth"},
		cash:   cash.NewController(),
		tokens: tokens,
	}
	f.control = NewController(f.cash, f.tokens)

	addrs := make([]coffer.Address, owners)
	for i := range addrs {
		cond := coffertest.NewCondition()
		f.owners = append(f.owners, cond)
		addrs[i] = cond.Address()
	}
	cfg := Config{
		Owners:            addrs,
		RequiredApprovals: threshold,
		ApprovalWindow:    coffer.AsUnixDuration(window),
		Initialized:       true,
	}
	require.NoError(t, gconf.Save(f.db, "custody", &cfg))
	return f
}

func (f *fixture) ctx(signer coffer.Condition, at time.Time) coffer.Context {
	ctx := coffer.WithBlockTime(context.Background(), at)
	return f.auth.SetConditions(ctx, signer)
}

// deliver runs the handler the way the vault does: inside a savepoint that
// is written on success and dropped entirely on failure.
func (f *fixture) deliver(h coffer.Handler, ctx coffer.Context, msg coffer.Msg) (*coffer.DeliverResult, error) {
	f.t.Helper()

	cache := f.db.CacheWrap()
	res, err := h.Deliver(ctx, cache, &coffertest.Tx{Msg: msg})
	if err != nil {
		cache.Discard()
		return nil, err
	}
	require.NoError(f.t, cache.Write())
	return res, nil
}

func (f *fixture) propose(signer coffer.Condition, at time.Time, amount int64, dest coffer.Address) []byte {
	f.t.Helper()

	h := CreateNativePaymentHandler{auth: f.auth, control: f.control}
	res, err := f.deliver(h, f.ctx(signer, at), &CreateNativePaymentMsg{Amount: amount, Destination: dest})
	require.NoError(f.t, err)
	return res.Data
}

func (f *fixture) approve(signer coffer.Condition, at time.Time, proposalID []byte) error {
	f.t.Helper()

	h := ApproveHandler{auth: f.auth, control: f.control}
	_, err := f.deliver(h, f.ctx(signer, at), &ApproveMsg{ProposalID: proposalID})
	return err
}

func (f *fixture) proposal(proposalID []byte) *Proposal {
	f.t.Helper()

	p, err := f.control.GetProposal(f.db, proposalID)
	require.NoError(f.t, err)
	return p
}

func TestInitHandler(t *testing.T) {
	db := store.MemStore()
	auth := &coffertest.CtxAuth{Key: "auth"}
	bootstrap := coffertest.NewCondition()
	control := NewController(cash.NewController(), token.NewBook())
	require.NoError(t, gconf.Save(db, "custody", &Config{
		Owners: []coffer.Address{bootstrap.Address()},
	}))
	h := InitHandler{auth: auth, control: control}

	second := coffertest.NewCondition()
	third := coffertest.NewCondition()
	msg := &InitMsg{
		RequiredApprovals: 2,
		AdditionalOwners:  []coffer.Address{second.Address(), third.Address()},
		ApprovalWindow:    coffer.AsUnixDuration(time.Hour),
	}

	ctx := auth.SetConditions(coffer.WithBlockTime(context.Background(), t0), bootstrap)
	_, err := h.Deliver(ctx, db, &coffertest.Tx{Msg: msg})
	require.NoError(t, err)

	cfg, err := control.GetConfig(db)
	require.NoError(t, err)
	assert.True(t, cfg.Initialized)
	assert.Len(t, cfg.Owners, 3)
	assert.Equal(t, uint32(2), cfg.RequiredApprovals)
	assert.True(t, cfg.IsOwner(second.Address()))

	// initialization is a one time operation
	_, err = h.Deliver(ctx, db, &coffertest.Tx{Msg: msg})
	assert.True(t, errors.ErrState.Is(err))
}

func TestInitHandlerOnlyBootstrapOwner(t *testing.T) {
	db := store.MemStore()
	auth := &coffertest.CtxAuth{Key: "auth"}
	bootstrap := coffertest.NewCondition()
	control := NewController(cash.NewController(), token.NewBook())
	require.NoError(t, gconf.Save(db, "custody", &Config{
		Owners: []coffer.Address{bootstrap.Address()},
	}))
	h := InitHandler{auth: auth, control: control}

	intruder := coffertest.NewCondition()
	msg := &InitMsg{
		RequiredApprovals: 1,
		ApprovalWindow:    coffer.AsUnixDuration(time.Hour),
	}
	ctx := auth.SetConditions(coffer.WithBlockTime(context.Background(), t0), intruder)
	_, err := h.Deliver(ctx, db, &coffertest.Tx{Msg: msg})
	assert.True(t, errors.ErrUnauthorized.Is(err))
}

func TestInitHandlerInvalidMsg(t *testing.T) {
	db := store.MemStore()
	auth := &coffertest.CtxAuth{Key: "auth"}
	bootstrap := coffertest.NewCondition()
	control := NewController(cash.NewController(), token.NewBook())
	require.NoError(t, gconf.Save(db, "custody", &Config{
		Owners: []coffer.Address{bootstrap.Address()},
	}))
	h := InitHandler{auth: auth, control: control}
	ctx := auth.SetConditions(coffer.WithBlockTime(context.Background(), t0), bootstrap)

	other := coffertest.NewCondition().Address()
	cases := map[string]struct {
		msg     *InitMsg
		wantErr *errors.Error
	}{
		"zero threshold": {
			msg:     &InitMsg{RequiredApprovals: 0, ApprovalWindow: 10},
			wantErr: errors.ErrMsg,
		},
		"threshold above owner count": {
			msg:     &InitMsg{RequiredApprovals: 3, AdditionalOwners: []coffer.Address{other}, ApprovalWindow: 10},
			wantErr: errors.ErrMsg,
		},
		"non-positive window": {
			msg:     &InitMsg{RequiredApprovals: 1, ApprovalWindow: 0},
			wantErr: errors.ErrMsg,
		},
		"duplicated additional owner": {
			msg:     &InitMsg{RequiredApprovals: 1, AdditionalOwners: []coffer.Address{other, other}, ApprovalWindow: 10},
			wantErr: errors.ErrDuplicate,
		},
		"null identity owner": {
			msg:     &InitMsg{RequiredApprovals: 1, AdditionalOwners: []coffer.Address{nil}, ApprovalWindow: 10},
			wantErr: errors.ErrInput,
		},
		"bootstrap owner listed again": {
			msg:     &InitMsg{RequiredApprovals: 1, AdditionalOwners: []coffer.Address{bootstrap.Address()}, ApprovalWindow: 10},
			wantErr: errors.ErrDuplicate,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			_, err := h.Deliver(ctx, db, &coffertest.Tx{Msg: tc.msg})
			assert.True(t, tc.wantErr.Is(err), "unexpected error: %+v", err)
		})
	}
}

func TestCreateNativePayment(t *testing.T) {
	f := newFixture(t, 3, 2, time.Hour, nil)
	require.NoError(t, f.cash.Deposit(f.db, VaultAddress(), 1000))
	dest := coffertest.NewCondition().Address()

	id := f.propose(f.owners[0], t0, 100, dest)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 1}, id)

	p := f.proposal(id)
	assert.Equal(t, f.owners[0].Address(), p.Initiator)
	assert.Equal(t, coffer.AsUnixTime(t0), p.CreatedAt)
	assert.True(t, p.IsNative())
	assert.Equal(t, int64(100), p.Amount)
	assert.Equal(t, dest, p.Destination)
	assert.Empty(t, p.Approvals)
	assert.False(t, p.Executed)

	// ids grow monotonically
	id = f.propose(f.owners[1], t0, 200, dest)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 2}, id)
}

func TestCreateNativePaymentRequiresOwner(t *testing.T) {
	f := newFixture(t, 3, 2, time.Hour, nil)
	require.NoError(t, f.cash.Deposit(f.db, VaultAddress(), 1000))

	h := CreateNativePaymentHandler{auth: f.auth, control: f.control}
	intruder := coffertest.NewCondition()
	_, err := f.deliver(h, f.ctx(intruder, t0), &CreateNativePaymentMsg{
		Amount:      100,
		Destination: coffertest.NewCondition().Address(),
	})
	assert.True(t, errors.ErrUnauthorized.Is(err))
}

func TestCreateNativePaymentInsufficientVault(t *testing.T) {
	f := newFixture(t, 3, 2, time.Hour, nil)
	require.NoError(t, f.cash.Deposit(f.db, VaultAddress(), 99))

	h := CreateNativePaymentHandler{auth: f.auth, control: f.control}
	_, err := f.deliver(h, f.ctx(f.owners[0], t0), &CreateNativePaymentMsg{
		Amount:      100,
		Destination: coffertest.NewCondition().Address(),
	})
	assert.True(t, errors.ErrAmount.Is(err))
}

func TestCreateTokenPayment(t *testing.T) {
	f := newFixture(t, 3, 2, time.Hour, nil)
	asset := coffertest.NewCondition().Address()
	dest := coffertest.NewCondition().Address()

	h := CreateTokenPaymentHandler{auth: f.auth, control: f.control}
	res, err := f.deliver(h, f.ctx(f.owners[0], t0), &CreateTokenPaymentMsg{
		Asset:       asset,
		Amount:      10,
		Destination: dest,
	})
	require.NoError(t, err)

	p := f.proposal(res.Data)
	assert.False(t, p.IsNative())
	assert.Equal(t, asset, p.Asset)
}

func TestCreateTokenPaymentRequiresAsset(t *testing.T) {
	f := newFixture(t, 3, 2, time.Hour, nil)

	h := CreateTokenPaymentHandler{auth: f.auth, control: f.control}
	_, err := f.deliver(h, f.ctx(f.owners[0], t0), &CreateTokenPaymentMsg{
		Amount:      10,
		Destination: coffertest.NewCondition().Address(),
	})
	assert.True(t, errors.ErrInput.Is(err))
}

func TestApproveReleasesNativePayment(t *testing.T) {
	f := newFixture(t, 3, 2, time.Hour, nil)
	require.NoError(t, f.cash.Deposit(f.db, VaultAddress(), 1000))
	dest := coffertest.NewCondition().Address()

	id := f.propose(f.owners[0], t0, 100, dest)

	// first approval is below the threshold, nothing moves
	require.NoError(t, f.approve(f.owners[1], t0.Add(10*time.Second), id))
	p := f.proposal(id)
	assert.False(t, p.Executed)
	assert.True(t, p.HasApproval(f.owners[1].Address()))

	balance, err := f.cash.Balance(f.db, dest)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)

	// the threshold crossing approval releases the funds
	require.NoError(t, f.approve(f.owners[2], t0.Add(20*time.Second), id))
	p = f.proposal(id)
	assert.True(t, p.Executed)

	balance, err = f.cash.Balance(f.db, dest)
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance)

	balance, err = f.cash.Balance(f.db, VaultAddress())
	require.NoError(t, err)
	assert.Equal(t, int64(900), balance)

	// the payment is terminal, another approval is refused and no
	// second transfer happens
	err = f.approve(f.owners[0], t0.Add(30*time.Second), id)
	assert.True(t, errors.ErrState.Is(err))

	balance, err = f.cash.Balance(f.db, dest)
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance)
}

func TestApprovePreconditions(t *testing.T) {
	f := newFixture(t, 3, 2, time.Hour, nil)
	require.NoError(t, f.cash.Deposit(f.db, VaultAddress(), 1000))
	id := f.propose(f.owners[0], t0, 100, coffertest.NewCondition().Address())

	// not an owner
	err := f.approve(coffertest.NewCondition(), t0, id)
	assert.True(t, errors.ErrUnauthorized.Is(err))

	// unknown proposal id
	err = f.approve(f.owners[1], t0, []byte{0, 0, 0, 0, 0, 0, 0, 9})
	assert.True(t, errors.ErrNotFound.Is(err))

	// voting twice
	require.NoError(t, f.approve(f.owners[1], t0, id))
	err = f.approve(f.owners[1], t0.Add(time.Second), id)
	assert.True(t, errors.ErrDuplicate.Is(err))
}

func TestApproveWindowBoundary(t *testing.T) {
	f := newFixture(t, 3, 3, time.Hour, nil)
	require.NoError(t, f.cash.Deposit(f.db, VaultAddress(), 1000))
	id := f.propose(f.owners[0], t0, 100, coffertest.NewCondition().Address())

	// a vote at the very deadline is still valid
	require.NoError(t, f.approve(f.owners[1], t0.Add(time.Hour), id))

	// one second past the deadline is not
	err := f.approve(f.owners[2], t0.Add(time.Hour+time.Second), id)
	assert.True(t, errors.ErrExpired.Is(err))
}

func TestExpiredProposalIsInert(t *testing.T) {
	f := newFixture(t, 3, 2, time.Hour, nil)
	require.NoError(t, f.cash.Deposit(f.db, VaultAddress(), 1000))
	dest := coffertest.NewCondition().Address()
	id := f.propose(f.owners[0], t0, 100, dest)

	require.NoError(t, f.approve(f.owners[1], t0.Add(10*time.Second), id))

	// every vote after the window fails and the proposal never
	// executes, regardless of how many owners try
	for _, owner := range []coffer.Condition{f.owners[2], f.owners[0]} {
		err := f.approve(owner, t0.Add(time.Hour+time.Second), id)
		assert.True(t, errors.ErrExpired.Is(err))
	}

	p := f.proposal(id)
	assert.False(t, p.Executed)

	balance, err := f.cash.Balance(f.db, dest)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestApproveReleasesTokenPayment(t *testing.T) {
	book := token.NewBook()
	f := newFixture(t, 3, 2, time.Hour, book)
	asset := coffertest.NewCondition().Address()
	dest := coffertest.NewCondition().Address()
	require.NoError(t, book.Mint(f.db, asset, VaultAddress(), 500))

	h := CreateTokenPaymentHandler{auth: f.auth, control: f.control}
	res, err := f.deliver(h, f.ctx(f.owners[0], t0), &CreateTokenPaymentMsg{
		Asset:       asset,
		Amount:      120,
		Destination: dest,
	})
	require.NoError(t, err)
	id := res.Data

	require.NoError(t, f.approve(f.owners[1], t0, id))
	require.NoError(t, f.approve(f.owners[2], t0, id))

	held, err := book.BalanceOf(f.db, asset, dest)
	require.NoError(t, err)
	assert.Equal(t, int64(120), held)

	held, err = book.BalanceOf(f.db, asset, VaultAddress())
	require.NoError(t, err)
	assert.Equal(t, int64(380), held)
	assert.True(t, f.proposal(id).Executed)
}

// feeLedger delivers less than requested, keeping a fee. This models
// deflationary assets that silently under-deliver.
type feeLedger struct {
	book token.Book
	fee  int64
	sink coffer.Address
}

func (f *feeLedger) BalanceOf(db coffer.ReadOnlyKVStore, asset, holder coffer.Address) (int64, error) {
	return f.book.BalanceOf(db, asset, holder)
}

func (f *feeLedger) Mint(db coffer.KVStore, asset, dest coffer.Address, amount int64) error {
	return f.book.Mint(db, asset, dest, amount)
}

func (f *feeLedger) Transfer(db coffer.KVStore, asset, src, dest coffer.Address, amount int64) error {
	if err := f.book.Transfer(db, asset, src, dest, amount-f.fee); err != nil {
		return err
	}
	return f.book.Transfer(db, asset, src, f.sink, f.fee)
}

func TestUnderDeliveringTokenRollsBack(t *testing.T) {
	ledger := &feeLedger{
		book: token.NewBook(),
		fee:  5,
		sink: coffertest.NewCondition().Address(),
	}
	f := newFixture(t, 3, 2, time.Hour, ledger)
	asset := coffertest.NewCondition().Address()
	dest := coffertest.NewCondition().Address()
	require.NoError(t, ledger.Mint(f.db, asset, VaultAddress(), 500))

	h := CreateTokenPaymentHandler{auth: f.auth, control: f.control}
	res, err := f.deliver(h, f.ctx(f.owners[0], t0), &CreateTokenPaymentMsg{
		Asset:       asset,
		Amount:      100,
		Destination: dest,
	})
	require.NoError(t, err)
	id := res.Data

	require.NoError(t, f.approve(f.owners[1], t0, id))
	err = f.approve(f.owners[2], t0, id)
	assert.True(t, ErrTransferFailed.Is(err))

	// the whole operation was rolled back: no funds moved, the
	// executed mark is back to false and the failed vote is gone, so
	// the payment can be retried
	p := f.proposal(id)
	assert.False(t, p.Executed)
	assert.False(t, p.HasApproval(f.owners[2].Address()))

	held, err := ledger.BalanceOf(f.db, asset, dest)
	require.NoError(t, err)
	assert.Equal(t, int64(0), held)
	held, err = ledger.BalanceOf(f.db, asset, VaultAddress())
	require.NoError(t, err)
	assert.Equal(t, int64(500), held)

	// once the asset behaves, a retry succeeds
	ledger.fee = 0
	require.NoError(t, f.approve(f.owners[2], t0, id))
	assert.True(t, f.proposal(id).Executed)
	held, err = ledger.BalanceOf(f.db, asset, dest)
	require.NoError(t, err)
	assert.Equal(t, int64(100), held)
}

func TestRotateOwner(t *testing.T) {
	f := newFixture(t, 3, 2, time.Hour, nil)
	require.NoError(t, f.cash.Deposit(f.db, VaultAddress(), 1000))

	next := coffertest.NewCondition()
	h := RotateOwnerHandler{auth: f.auth, control: f.control}
	_, err := f.deliver(h, f.ctx(f.owners[0], t0), &RotateOwnerMsg{NewOwner: next.Address()})
	require.NoError(t, err)

	cfg, err := f.control.GetConfig(f.db)
	require.NoError(t, err)
	// seat replaced in place, set size and threshold untouched
	assert.Len(t, cfg.Owners, 3)
	assert.Equal(t, uint32(2), cfg.RequiredApprovals)
	assert.Equal(t, next.Address(), cfg.Owners[0])
	assert.False(t, cfg.IsOwner(f.owners[0].Address()))

	// the new identity can vote, the old one cannot
	id := f.propose(f.owners[1], t0, 100, coffertest.NewCondition().Address())
	require.NoError(t, f.approve(next, t0, id))
	err = f.approve(f.owners[0], t0, id)
	assert.True(t, errors.ErrUnauthorized.Is(err))
}

func TestRotateOwnerPreconditions(t *testing.T) {
	f := newFixture(t, 3, 2, time.Hour, nil)
	h := RotateOwnerHandler{auth: f.auth, control: f.control}

	// caller must be an owner
	_, err := f.deliver(h, f.ctx(coffertest.NewCondition(), t0), &RotateOwnerMsg{
		NewOwner: coffertest.NewCondition().Address(),
	})
	assert.True(t, errors.ErrUnauthorized.Is(err))

	// the new identity must not hold a seat already
	_, err = f.deliver(h, f.ctx(f.owners[0], t0), &RotateOwnerMsg{
		NewOwner: f.owners[1].Address(),
	})
	assert.True(t, errors.ErrDuplicate.Is(err))

	// the null identity is refused
	_, err = f.deliver(h, f.ctx(f.owners[0], t0), &RotateOwnerMsg{})
	assert.True(t, errors.ErrInput.Is(err))
}

func TestRotationKeepsRecordedApprovals(t *testing.T) {
	f := newFixture(t, 3, 2, time.Hour, nil)
	require.NoError(t, f.cash.Deposit(f.db, VaultAddress(), 1000))
	dest := coffertest.NewCondition().Address()

	id := f.propose(f.owners[0], t0, 100, dest)
	require.NoError(t, f.approve(f.owners[0], t0, id))

	// the voter hands its seat over
	next := coffertest.NewCondition()
	h := RotateOwnerHandler{auth: f.auth, control: f.control}
	_, err := f.deliver(h, f.ctx(f.owners[0], t0), &RotateOwnerMsg{NewOwner: next.Address()})
	require.NoError(t, err)

	// the stale vote still counts, one more approval releases the
	// payment
	require.NoError(t, f.approve(f.owners[1], t0, id))
	assert.True(t, f.proposal(id).Executed)

	balance, err := f.cash.Balance(f.db, dest)
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance)
}

// reentrantLedger calls back into the vault in the middle of a transfer,
// the way a malicious token contract would.
type reentrantLedger struct {
	book     token.Book
	reenter  func(db coffer.KVStore) error
	observed error
}

func (r *reentrantLedger) BalanceOf(db coffer.ReadOnlyKVStore, asset, holder coffer.Address) (int64, error) {
	return r.book.BalanceOf(db, asset, holder)
}

func (r *reentrantLedger) Mint(db coffer.KVStore, asset, dest coffer.Address, amount int64) error {
	return r.book.Mint(db, asset, dest, amount)
}

func (r *reentrantLedger) Transfer(db coffer.KVStore, asset, src, dest coffer.Address, amount int64) error {
	r.observed = r.reenter(db)
	return r.book.Transfer(db, asset, src, dest, amount)
}

func TestReentrantApprovalSeesExecutedMark(t *testing.T) {
	ledger := &reentrantLedger{book: token.NewBook()}
	f := newFixture(t, 3, 2, time.Hour, ledger)
	asset := coffertest.NewCondition().Address()
	require.NoError(t, ledger.Mint(f.db, asset, VaultAddress(), 500))

	h := CreateTokenPaymentHandler{auth: f.auth, control: f.control}
	res, err := f.deliver(h, f.ctx(f.owners[0], t0), &CreateTokenPaymentMsg{
		Asset:       asset,
		Amount:      100,
		Destination: coffertest.NewCondition().Address(),
	})
	require.NoError(t, err)
	id := res.Data

	// mid-transfer the ledger re-approves the same proposal with a
	// fresh owner vote; the persisted executed mark must reject it
	ctx := f.ctx(f.owners[0], t0)
	ledger.reenter = func(db coffer.KVStore) error {
		_, _, err := f.control.Approve(ctx, db, id, f.owners[0].Address())
		return err
	}

	require.NoError(t, f.approve(f.owners[1], t0, id))
	require.NoError(t, f.approve(f.owners[2], t0, id))

	assert.True(t, errors.ErrState.Is(ledger.observed), "unexpected error: %+v", ledger.observed)
	assert.True(t, f.proposal(id).Executed)

	// exactly one transfer happened
	held, err := ledger.BalanceOf(f.db, asset, VaultAddress())
	require.NoError(t, err)
	assert.Equal(t, int64(400), held)
}

func TestReentrantExecutionIsLockedOut(t *testing.T) {
	ledger := &reentrantLedger{book: token.NewBook()}
	f := newFixture(t, 3, 1, time.Hour, ledger)
	asset := coffertest.NewCondition().Address()
	require.NoError(t, ledger.Mint(f.db, asset, VaultAddress(), 500))

	h := CreateTokenPaymentHandler{auth: f.auth, control: f.control}

	// two independent proposals, each a single vote away from release
	res, err := f.deliver(h, f.ctx(f.owners[0], t0), &CreateTokenPaymentMsg{
		Asset:       asset,
		Amount:      100,
		Destination: coffertest.NewCondition().Address(),
	})
	require.NoError(t, err)
	first := res.Data

	res, err = f.deliver(h, f.ctx(f.owners[0], t0), &CreateTokenPaymentMsg{
		Asset:       asset,
		Amount:      100,
		Destination: coffertest.NewCondition().Address(),
	})
	require.NoError(t, err)
	second := res.Data

	// while the first transfer is in flight, the ledger tries to
	// trigger the second release; the in flight guard must refuse
	ctx := f.ctx(f.owners[2], t0)
	ledger.reenter = func(db coffer.KVStore) error {
		_, _, err := f.control.Approve(ctx, db, second, f.owners[2].Address())
		return err
	}

	require.NoError(t, f.approve(f.owners[1], t0, first))

	assert.True(t, errors.ErrState.Is(ledger.observed), "unexpected error: %+v", ledger.observed)
	assert.True(t, f.proposal(first).Executed)

	// only the first release went through
	held, err := ledger.BalanceOf(f.db, asset, VaultAddress())
	require.NoError(t, err)
	assert.Equal(t, int64(400), held)
}
