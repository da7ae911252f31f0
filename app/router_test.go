package app

import (
	"testing"

	"github.com/iov-one/coffer/coffertest"
	"github.com/iov-one/coffer/errors"
	"github.com/stretchr/testify/assert"
)

func TestRouter(t *testing.T) {
	r := NewRouter()

	counter := &coffertest.Handler{}
	r.Handle("good", counter)
	r.Handle("custody/approve", &coffertest.Handler{
		DeliverErr: errors.ErrUnauthorized,
	})

	// invalid registrations panic
	assert.Panics(t, func() { r.Handle("good", counter) })
	assert.Panics(t, func() { r.Handle("l:7", counter) })
	assert.Panics(t, func() { r.Handle("", counter) })

	// a registered path dispatches to its handler
	tx := &coffertest.Tx{Msg: &coffertest.Msg{RoutePath: "good"}}
	_, err := r.Check(nil, nil, tx)
	assert.NoError(t, err)
	_, err = r.Deliver(nil, nil, tx)
	assert.NoError(t, err)
	assert.Equal(t, 1, counter.CheckCallCount())
	assert.Equal(t, 1, counter.DeliverCallCount())

	// handler errors pass through
	tx = &coffertest.Tx{Msg: &coffertest.Msg{RoutePath: "custody/approve"}}
	_, err = r.Deliver(nil, nil, tx)
	assert.True(t, errors.ErrUnauthorized.Is(err))

	// an unknown path is an error, not a panic
	tx = &coffertest.Tx{Msg: &coffertest.Msg{RoutePath: "missing"}}
	_, err = r.Check(nil, nil, tx)
	assert.True(t, errors.ErrNotFound.Is(err))
	_, err = r.Deliver(nil, nil, tx)
	assert.True(t, errors.ErrNotFound.Is(err))
	assert.Equal(t, 2, counter.CallCount())
}

func TestRouterNoMessage(t *testing.T) {
	r := NewRouter()
	tx := &coffertest.Tx{Err: errors.ErrInput}
	_, err := r.Deliver(nil, nil, tx)
	assert.True(t, errors.ErrNotFound.Is(err))
}
