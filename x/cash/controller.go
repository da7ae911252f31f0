package cash

import (
	coffer "github.com/iov-one/coffer"
	"github.com/iov-one/coffer/errors"
	"github.com/iov-one/coffer/orm"
)

// Controller is the functionality used to move native funds around. It is
// small enough to allow other extensions to drive payments without knowing
// the wallet layout.
type Controller interface {
	// Balance returns the native funds held by this address. A missing
	// wallet is a zero balance, not an error.
	Balance(db coffer.ReadOnlyKVStore, addr coffer.Address) (int64, error)

	// MoveCoins removes funds from the source wallet and credits them to
	// the destination wallet. Fails with ErrAmount when the source does
	// not hold enough.
	MoveCoins(db coffer.KVStore, src, dest coffer.Address, amount int64) error

	// Deposit credits funds to the destination wallet out of thin air.
	// This is how external funds entering the system are recorded.
	Deposit(db coffer.KVStore, dest coffer.Address, amount int64) error
}

// BaseController implements Controller on top of the wallet bucket.
type BaseController struct {
	bucket orm.ModelBucket
}

var _ Controller = BaseController{}

// NewController returns a base controller with the default wallet bucket.
func NewController() BaseController {
	return BaseController{bucket: NewWalletBucket()}
}

// Balance returns the native funds held by this address.
func (c BaseController) Balance(db coffer.ReadOnlyKVStore, addr coffer.Address) (int64, error) {
	var wallet Wallet
	switch err := c.bucket.One(db, addr, &wallet); {
	case err == nil:
		return wallet.Balance, nil
	case errors.ErrNotFound.Is(err):
		return 0, nil
	default:
		return 0, errors.Wrap(err, "load wallet")
	}
}

// MoveCoins transfers funds between the wallets.
func (c BaseController) MoveCoins(db coffer.KVStore, src, dest coffer.Address, amount int64) error {
	if amount <= 0 {
		return errors.Wrap(errors.ErrAmount, "non-positive transfer")
	}
	if err := src.Validate(); err != nil {
		return errors.Wrap(err, "source address")
	}
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination address")
	}

	balance, err := c.Balance(db, src)
	if err != nil {
		return err
	}
	if balance < amount {
		return errors.Wrapf(errors.ErrAmount, "insufficient funds: %d < %d", balance, amount)
	}

	remaining := &Wallet{Balance: balance - amount}
	if remaining.IsEmpty() {
		if err := c.bucket.Delete(db, src); err != nil {
			return errors.Wrap(err, "delete empty wallet")
		}
	} else {
		if _, err := c.bucket.Put(db, src, remaining); err != nil {
			return errors.Wrap(err, "update source wallet")
		}
	}

	return c.Deposit(db, dest, amount)
}

// Deposit credits funds to the destination wallet.
func (c BaseController) Deposit(db coffer.KVStore, dest coffer.Address, amount int64) error {
	if amount <= 0 {
		return errors.Wrap(errors.ErrAmount, "non-positive deposit")
	}
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination address")
	}

	balance, err := c.Balance(db, dest)
	if err != nil {
		return err
	}
	if balance > maxBalance-amount {
		return errors.Wrap(errors.ErrOverflow, "wallet balance")
	}
	_, err = c.bucket.Put(db, dest, &Wallet{Balance: balance + amount})
	return errors.Wrap(err, "update destination wallet")
}

// maxBalance bounds a single wallet so additions can never overflow int64.
const maxBalance = int64(1) << 62
