package custody

import (
	"fmt"

	coffer "github.com/iov-one/coffer"
	"github.com/iov-one/coffer/errors"
	"github.com/iov-one/coffer/x"
	"github.com/tendermint/tendermint/libs/common"
)

const (
	initCost          = 150
	createPaymentCost = 300
	approveCost       = 150
	rotateOwnerCost   = 150
)

// RegisterRoutes will instantiate and register all handlers in this package.
func RegisterRoutes(r coffer.Registry, auth x.Authenticator, control *Controller) {
	r.Handle(pathInit, InitHandler{auth: auth, control: control})
	r.Handle(pathCreateNativePayment, CreateNativePaymentHandler{auth: auth, control: control})
	r.Handle(pathCreateTokenPayment, CreateTokenPaymentHandler{auth: auth, control: control})
	r.Handle(pathApprove, ApproveHandler{auth: auth, control: control})
	r.Handle(pathRotateOwner, RotateOwnerHandler{auth: auth, control: control})
}

// signerAddress returns the address of the main signer of the operation.
func signerAddress(ctx coffer.Context, auth x.Authenticator) (coffer.Address, error) {
	signer := x.MainSigner(ctx, auth)
	if signer == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "no signer")
	}
	return signer.Address(), nil
}

// InitHandler completes the vault configuration. Only the bootstrap owner
// may use it, and only once.
type InitHandler struct {
	auth    x.Authenticator
	control *Controller
}

var _ coffer.Handler = InitHandler{}

func (h InitHandler) Check(ctx coffer.Context, db coffer.KVStore, tx coffer.Tx) (*coffer.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &coffer.CheckResult{GasAllocated: initCost}, nil
}

func (h InitHandler) Deliver(ctx coffer.Context, db coffer.KVStore, tx coffer.Tx) (*coffer.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	cfg, err := h.control.Initialize(db, msg)
	if err != nil {
		return nil, err
	}
	return &coffer.DeliverResult{
		Log: fmt.Sprintf("initialized with %d owners, threshold %d", len(cfg.Owners), cfg.RequiredApprovals),
		Tags: []common.KVPair{
			{Key: []byte("init"), Value: []byte(fmt.Sprintf("%d/%d", cfg.RequiredApprovals, len(cfg.Owners)))},
		},
	}, nil
}

func (h InitHandler) validate(ctx coffer.Context, db coffer.KVStore, tx coffer.Tx) (*InitMsg, error) {
	var msg InitMsg
	if err := coffer.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	cfg, err := h.control.GetConfig(db)
	if err != nil {
		return nil, err
	}
	// only the bootstrap owner, holding the first seat, may initialize
	if !h.auth.HasAddress(ctx, cfg.Owners[0]) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "not the bootstrap owner")
	}
	return &msg, nil
}

// CreateNativePaymentHandler appends a native payment proposal to the
// ledger.
type CreateNativePaymentHandler struct {
	auth    x.Authenticator
	control *Controller
}

var _ coffer.Handler = CreateNativePaymentHandler{}

func (h CreateNativePaymentHandler) Check(ctx coffer.Context, db coffer.KVStore, tx coffer.Tx) (*coffer.CheckResult, error) {
	var msg CreateNativePaymentMsg
	if err := coffer.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	return &coffer.CheckResult{GasAllocated: createPaymentCost}, nil
}

func (h CreateNativePaymentHandler) Deliver(ctx coffer.Context, db coffer.KVStore, tx coffer.Tx) (*coffer.DeliverResult, error) {
	var msg CreateNativePaymentMsg
	if err := coffer.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	initiator, err := signerAddress(ctx, h.auth)
	if err != nil {
		return nil, err
	}
	id, err := h.control.CreatePayment(ctx, db, &Proposal{
		Initiator:   initiator,
		Amount:      msg.Amount,
		Destination: msg.Destination,
	})
	if err != nil {
		return nil, err
	}
	return &coffer.DeliverResult{
		Data: id,
		Tags: []common.KVPair{
			{Key: []byte("proposal-id"), Value: id},
		},
	}, nil
}

// CreateTokenPaymentHandler appends a token payment proposal to the ledger.
type CreateTokenPaymentHandler struct {
	auth    x.Authenticator
	control *Controller
}

var _ coffer.Handler = CreateTokenPaymentHandler{}

func (h CreateTokenPaymentHandler) Check(ctx coffer.Context, db coffer.KVStore, tx coffer.Tx) (*coffer.CheckResult, error) {
	var msg CreateTokenPaymentMsg
	if err := coffer.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	return &coffer.CheckResult{GasAllocated: createPaymentCost}, nil
}

func (h CreateTokenPaymentHandler) Deliver(ctx coffer.Context, db coffer.KVStore, tx coffer.Tx) (*coffer.DeliverResult, error) {
	var msg CreateTokenPaymentMsg
	if err := coffer.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	initiator, err := signerAddress(ctx, h.auth)
	if err != nil {
		return nil, err
	}
	id, err := h.control.CreatePayment(ctx, db, &Proposal{
		Initiator:   initiator,
		Asset:       msg.Asset,
		Amount:      msg.Amount,
		Destination: msg.Destination,
	})
	if err != nil {
		return nil, err
	}
	return &coffer.DeliverResult{
		Data: id,
		Tags: []common.KVPair{
			{Key: []byte("proposal-id"), Value: id},
		},
	}, nil
}

// ApproveHandler casts the signers vote on a pending proposal, which may
// release the funds when the threshold is reached.
type ApproveHandler struct {
	auth    x.Authenticator
	control *Controller
}

var _ coffer.Handler = ApproveHandler{}

func (h ApproveHandler) Check(ctx coffer.Context, db coffer.KVStore, tx coffer.Tx) (*coffer.CheckResult, error) {
	var msg ApproveMsg
	if err := coffer.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	return &coffer.CheckResult{GasAllocated: approveCost}, nil
}

func (h ApproveHandler) Deliver(ctx coffer.Context, db coffer.KVStore, tx coffer.Tx) (*coffer.DeliverResult, error) {
	var msg ApproveMsg
	if err := coffer.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	voter, err := signerAddress(ctx, h.auth)
	if err != nil {
		return nil, err
	}
	p, executed, err := h.control.Approve(ctx, db, msg.ProposalID, voter)
	if err != nil {
		return nil, err
	}
	log := fmt.Sprintf("approved by %s (%d approvals)", voter, len(p.Approvals))
	tags := []common.KVPair{
		{Key: []byte("proposal-id"), Value: msg.ProposalID},
	}
	if executed {
		log = fmt.Sprintf("executed payment of %d to %s, triggered by %s", p.Amount, p.Destination, voter)
		tags = append(tags, common.KVPair{Key: []byte("executed"), Value: msg.ProposalID})
	}
	return &coffer.DeliverResult{Data: msg.ProposalID, Log: log, Tags: tags}, nil
}

// RotateOwnerHandler hands the signers owner seat over to a new identity.
type RotateOwnerHandler struct {
	auth    x.Authenticator
	control *Controller
}

var _ coffer.Handler = RotateOwnerHandler{}

func (h RotateOwnerHandler) Check(ctx coffer.Context, db coffer.KVStore, tx coffer.Tx) (*coffer.CheckResult, error) {
	var msg RotateOwnerMsg
	if err := coffer.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	return &coffer.CheckResult{GasAllocated: rotateOwnerCost}, nil
}

func (h RotateOwnerHandler) Deliver(ctx coffer.Context, db coffer.KVStore, tx coffer.Tx) (*coffer.DeliverResult, error) {
	var msg RotateOwnerMsg
	if err := coffer.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	current, err := signerAddress(ctx, h.auth)
	if err != nil {
		return nil, err
	}
	if err := h.control.RotateOwner(db, current, msg.NewOwner); err != nil {
		return nil, err
	}
	return &coffer.DeliverResult{
		Log: fmt.Sprintf("owner %s rotated to %s", current, msg.NewOwner),
	}, nil
}
