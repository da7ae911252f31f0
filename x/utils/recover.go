package utils

import (
	coffer "github.com/iov-one/coffer"
	"github.com/iov-one/coffer/errors"
)

// Recovery is a decorator to recover from panics in transactions, so we can
// log them as errors
type Recovery struct{}

var _ coffer.Decorator = Recovery{}

// NewRecovery creates a Recovery decorator
func NewRecovery() Recovery {
	return Recovery{}
}

// Check turns panics into normal errors
func (r Recovery) Check(ctx coffer.Context, store coffer.KVStore, tx coffer.Tx, next coffer.Checker) (res *coffer.CheckResult, err error) {
	defer errors.Recover(&err)
	return next.Check(ctx, store, tx)
}

// Deliver turns panics into normal errors
func (r Recovery) Deliver(ctx coffer.Context, store coffer.KVStore, tx coffer.Tx, next coffer.Deliverer) (res *coffer.DeliverResult, err error) {
	defer errors.Recover(&err)
	return next.Deliver(ctx, store, tx)
}
