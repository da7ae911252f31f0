package token

import (
	coffer "github.com/iov-one/coffer"
	"github.com/iov-one/coffer/errors"
	"github.com/iov-one/coffer/orm"
)

// Ledger provides access to token asset balances. Implementations decide how
// a transfer is performed, which may include asset specific behavior like
// transfer fees. Callers that need an exact amount delivered must verify the
// receiver balance themselves.
type Ledger interface {
	// BalanceOf returns the amount of the given asset held by the holder.
	// An unknown (asset, holder) pair is a zero balance, not an error.
	BalanceOf(db coffer.ReadOnlyKVStore, asset, holder coffer.Address) (int64, error)

	// Transfer moves tokens of the given asset between the holders. Fails
	// with ErrAmount when the source does not hold enough.
	Transfer(db coffer.KVStore, asset, src, dest coffer.Address, amount int64) error

	// Mint credits tokens of the given asset out of thin air. This is how
	// tokens received from outside are recorded.
	Mint(db coffer.KVStore, asset, dest coffer.Address, amount int64) error
}

// Book is the default Ledger implementation, keeping all balances in a
// bucket keyed by the asset and holder addresses.
type Book struct {
	bucket orm.ModelBucket
}

var _ Ledger = Book{}

// NewBook returns a ledger with the default balance bucket.
func NewBook() Book {
	return Book{bucket: orm.NewModelBucket("tok", &TokenBalance{})}
}

var _ orm.Model = (*TokenBalance)(nil)

// Validate requires a non-negative amount.
func (t *TokenBalance) Validate() error {
	if t.Amount < 0 {
		return errors.Wrap(errors.ErrModel, "negative amount")
	}
	return nil
}

// Copy makes a new balance with the same amount.
func (t *TokenBalance) Copy() orm.CloneableData {
	return &TokenBalance{Amount: t.Amount}
}

// balanceKey builds the bucket key for one (asset, holder) pair. Both parts
// have a fixed length so the concatenation is unambiguous.
func balanceKey(asset, holder coffer.Address) []byte {
	key := make([]byte, 0, len(asset)+len(holder))
	key = append(key, asset...)
	return append(key, holder...)
}

// BalanceOf returns the amount of the given asset held by the holder.
func (b Book) BalanceOf(db coffer.ReadOnlyKVStore, asset, holder coffer.Address) (int64, error) {
	var balance TokenBalance
	switch err := b.bucket.One(db, balanceKey(asset, holder), &balance); {
	case err == nil:
		return balance.Amount, nil
	case errors.ErrNotFound.Is(err):
		return 0, nil
	default:
		return 0, errors.Wrap(err, "load balance")
	}
}

// Transfer moves tokens of the given asset between the holders.
func (b Book) Transfer(db coffer.KVStore, asset, src, dest coffer.Address, amount int64) error {
	if amount <= 0 {
		return errors.Wrap(errors.ErrAmount, "non-positive transfer")
	}
	if err := asset.Validate(); err != nil {
		return errors.Wrap(err, "asset address")
	}
	if err := src.Validate(); err != nil {
		return errors.Wrap(err, "source address")
	}
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination address")
	}

	held, err := b.BalanceOf(db, asset, src)
	if err != nil {
		return err
	}
	if held < amount {
		return errors.Wrapf(errors.ErrAmount, "insufficient funds: %d < %d", held, amount)
	}

	if held == amount {
		if err := b.bucket.Delete(db, balanceKey(asset, src)); err != nil {
			return errors.Wrap(err, "delete empty balance")
		}
	} else {
		if _, err := b.bucket.Put(db, balanceKey(asset, src), &TokenBalance{Amount: held - amount}); err != nil {
			return errors.Wrap(err, "update source balance")
		}
	}
	return b.Mint(db, asset, dest, amount)
}

// Mint credits tokens of the given asset to the destination.
func (b Book) Mint(db coffer.KVStore, asset, dest coffer.Address, amount int64) error {
	if amount <= 0 {
		return errors.Wrap(errors.ErrAmount, "non-positive mint")
	}
	if err := asset.Validate(); err != nil {
		return errors.Wrap(err, "asset address")
	}
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination address")
	}

	held, err := b.BalanceOf(db, asset, dest)
	if err != nil {
		return err
	}
	if held > maxTokenBalance-amount {
		return errors.Wrap(errors.ErrOverflow, "token balance")
	}
	_, err = b.bucket.Put(db, balanceKey(asset, dest), &TokenBalance{Amount: held + amount})
	return errors.Wrap(err, "update destination balance")
}

// maxTokenBalance bounds a single balance so additions can never overflow
// int64.
const maxTokenBalance = int64(1) << 62
