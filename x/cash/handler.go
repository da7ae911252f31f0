package cash

import (
	"fmt"

	coffer "github.com/iov-one/coffer"
	"github.com/iov-one/coffer/errors"
)

const depositCost = 100

// RegisterRoutes will instantiate and register all handlers in this package.
func RegisterRoutes(r coffer.Registry, control Controller) {
	r.Handle(DepositMsg{}.Path(), DepositHandler{control: control})
}

// DepositHandler credits external funds to a wallet. No authorization is
// required, anyone can make a deposit.
type DepositHandler struct {
	control Controller
}

var _ coffer.Handler = DepositHandler{}

// Check just verifies it is properly formed and returns the cost of
// executing it.
func (h DepositHandler) Check(ctx coffer.Context, db coffer.KVStore, tx coffer.Tx) (*coffer.CheckResult, error) {
	var msg DepositMsg
	if err := coffer.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	return &coffer.CheckResult{GasAllocated: depositCost}, nil
}

// Deliver credits the destination wallet.
func (h DepositHandler) Deliver(ctx coffer.Context, db coffer.KVStore, tx coffer.Tx) (*coffer.DeliverResult, error) {
	var msg DepositMsg
	if err := coffer.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	if err := h.control.Deposit(db, msg.Destination, msg.Amount); err != nil {
		return nil, errors.Wrap(err, "deposit")
	}
	return &coffer.DeliverResult{
		Log: fmt.Sprintf("deposited %d to %s", msg.Amount, msg.Destination),
	}, nil
}
