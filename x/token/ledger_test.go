package token

import (
	"testing"

	"github.com/iov-one/coffer/coffertest"
	"github.com/iov-one/coffer/errors"
	"github.com/iov-one/coffer/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceOfUnknownPair(t *testing.T) {
	db := store.MemStore()
	book := NewBook()

	held, err := book.BalanceOf(db, coffertest.NewCondition().Address(), coffertest.NewCondition().Address())
	require.NoError(t, err)
	assert.Equal(t, int64(0), held)
}

func TestMintAndTransfer(t *testing.T) {
	db := store.MemStore()
	book := NewBook()
	asset := coffertest.NewCondition().Address()
	alice := coffertest.NewCondition().Address()
	bob := coffertest.NewCondition().Address()

	require.NoError(t, book.Mint(db, asset, alice, 1000))
	require.NoError(t, book.Transfer(db, asset, alice, bob, 400))

	held, err := book.BalanceOf(db, asset, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(600), held)

	held, err = book.BalanceOf(db, asset, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(400), held)
}

func TestTransferInsufficientFunds(t *testing.T) {
	db := store.MemStore()
	book := NewBook()
	asset := coffertest.NewCondition().Address()
	alice := coffertest.NewCondition().Address()
	bob := coffertest.NewCondition().Address()

	require.NoError(t, book.Mint(db, asset, alice, 10))

	err := book.Transfer(db, asset, alice, bob, 11)
	assert.True(t, errors.ErrAmount.Is(err))

	held, err := book.BalanceOf(db, asset, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(10), held)
}

func TestAssetsAreIndependent(t *testing.T) {
	db := store.MemStore()
	book := NewBook()
	gold := coffertest.NewCondition().Address()
	iron := coffertest.NewCondition().Address()
	alice := coffertest.NewCondition().Address()

	require.NoError(t, book.Mint(db, gold, alice, 5))

	held, err := book.BalanceOf(db, iron, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(0), held)

	err = book.Transfer(db, iron, alice, coffertest.NewCondition().Address(), 1)
	assert.True(t, errors.ErrAmount.Is(err))
}

func TestTransferWholeBalanceRemovesEntry(t *testing.T) {
	db := store.MemStore()
	book := NewBook()
	asset := coffertest.NewCondition().Address()
	alice := coffertest.NewCondition().Address()
	bob := coffertest.NewCondition().Address()

	require.NoError(t, book.Mint(db, asset, alice, 10))
	require.NoError(t, book.Transfer(db, asset, alice, bob, 10))

	held, err := book.BalanceOf(db, asset, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(0), held)
}
