package app

import (
	"context"
	"testing"

	coffer "github.com/iov-one/coffer"
	"github.com/iov-one/coffer/coffertest"
	"github.com/iov-one/coffer/errors"
	"github.com/iov-one/coffer/x/utils"
	"github.com/stretchr/testify/assert"
)

// countingDecorator counts how many times it was passed through.
type countingDecorator struct {
	count int
}

var _ coffer.Decorator = (*countingDecorator)(nil)

func (d *countingDecorator) Check(ctx coffer.Context, store coffer.KVStore, tx coffer.Tx, next coffer.Checker) (*coffer.CheckResult, error) {
	d.count++
	return next.Check(ctx, store, tx)
}

func (d *countingDecorator) Deliver(ctx coffer.Context, store coffer.KVStore, tx coffer.Tx, next coffer.Deliverer) (*coffer.DeliverResult, error) {
	d.count++
	return next.Deliver(ctx, store, tx)
}

// panickyDecorator panics instead of calling the next handler.
type panickyDecorator struct{}

var _ coffer.Decorator = panickyDecorator{}

func (panickyDecorator) Check(ctx coffer.Context, store coffer.KVStore, tx coffer.Tx, next coffer.Checker) (*coffer.CheckResult, error) {
	panic("check")
}

func (panickyDecorator) Deliver(ctx coffer.Context, store coffer.KVStore, tx coffer.Tx, next coffer.Deliverer) (*coffer.DeliverResult, error) {
	panic("deliver")
}

func TestChain(t *testing.T) {
	c1 := &countingDecorator{}
	c2 := &countingDecorator{}
	h := &coffertest.Handler{}

	stack := ChainDecorators(
		c1,
		nil, // nils are dropped from the chain
		utils.NewRecovery(),
		c2,
	).WithHandler(h)

	bg := context.Background()
	_, err := stack.Check(bg, nil, nil)
	assert.NoError(t, err)
	_, err = stack.Deliver(bg, nil, nil)
	assert.NoError(t, err)

	assert.Equal(t, 2, c1.count)
	assert.Equal(t, 2, c2.count)
	assert.Equal(t, 2, h.CallCount())
}

func TestChainRecoversPanic(t *testing.T) {
	c1 := &countingDecorator{}
	c2 := &countingDecorator{}
	h := &coffertest.Handler{}

	stack := ChainDecorators(
		c1,
		utils.NewRecovery(),
		panickyDecorator{},
		c2,
	).WithHandler(h)

	bg := context.Background()
	_, err := stack.Check(bg, nil, nil)
	assert.True(t, errors.ErrPanic.Is(err), "unexpected error: %+v", err)
	_, err = stack.Deliver(bg, nil, nil)
	assert.True(t, errors.ErrPanic.Is(err), "unexpected error: %+v", err)

	// the panic never reached anything below the recovery decorator
	assert.Equal(t, 2, c1.count)
	assert.Equal(t, 0, c2.count)
	assert.Equal(t, 0, h.CallCount())
}
