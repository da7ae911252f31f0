package coffertest

import (
	coffer "github.com/iov-one/coffer"
)

// Handler implements coffer.Handler interface.
// Use this mock in tests. Each method call is counted.
type Handler struct {
	checkCall   int
	deliverCall int

	// CheckResult is returned by Check method.
	CheckResult coffer.CheckResult
	// CheckErr if set is returned by Check method.
	CheckErr error

	// DeliverResult is returned by Deliver method.
	DeliverResult coffer.DeliverResult
	// DeliverErr if set is returned by Deliver method.
	DeliverErr error
}

var _ coffer.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx coffer.Context, db coffer.KVStore, tx coffer.Tx) (*coffer.CheckResult, error) {
	h.checkCall++
	return &h.CheckResult, h.CheckErr
}

func (h *Handler) Deliver(ctx coffer.Context, db coffer.KVStore, tx coffer.Tx) (*coffer.DeliverResult, error) {
	h.deliverCall++
	return &h.DeliverResult, h.DeliverErr
}

// CheckCallCount returns the number of times Check was called.
func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

// DeliverCallCount returns the number of times Deliver was called.
func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

// CallCount returns the total number of calls.
func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}
