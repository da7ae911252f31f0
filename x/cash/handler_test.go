package cash

import (
	"context"
	"testing"

	"github.com/iov-one/coffer/coffertest"
	"github.com/iov-one/coffer/errors"
	"github.com/iov-one/coffer/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepositHandler(t *testing.T) {
	db := store.MemStore()
	control := NewController()
	h := DepositHandler{control: control}
	dest := coffertest.NewCondition().Address()

	tx := &coffertest.Tx{Msg: &DepositMsg{Destination: dest, Amount: 77}}

	res, err := h.Check(context.Background(), db, tx)
	require.NoError(t, err)
	assert.Equal(t, int64(depositCost), res.GasAllocated)

	_, err = h.Deliver(context.Background(), db, tx)
	require.NoError(t, err)

	balance, err := control.Balance(db, dest)
	require.NoError(t, err)
	assert.Equal(t, int64(77), balance)
}

func TestDepositHandlerRejectsInvalidMsg(t *testing.T) {
	db := store.MemStore()
	h := DepositHandler{control: NewController()}

	cases := map[string]struct {
		msg     *DepositMsg
		wantErr *errors.Error
	}{
		"zero amount": {
			msg:     &DepositMsg{Destination: coffertest.NewCondition().Address(), Amount: 0},
			wantErr: errors.ErrAmount,
		},
		"negative amount": {
			msg:     &DepositMsg{Destination: coffertest.NewCondition().Address(), Amount: -5},
			wantErr: errors.ErrAmount,
		},
		"missing destination": {
			msg:     &DepositMsg{Amount: 5},
			wantErr: errors.ErrEmpty,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			tx := &coffertest.Tx{Msg: tc.msg}
			_, err := h.Deliver(context.Background(), db, tx)
			assert.True(t, tc.wantErr.Is(err))
		})
	}
}
