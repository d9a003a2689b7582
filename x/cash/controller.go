package cash

import (
	"github.com/holiman/uint256"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// Controller is the functionality needed by extensions that move assets.
type Controller interface {
	// Balance returns the amount of asset held by holder.
	Balance(db custody.ReadOnlyKVStore, asset, holder custody.Address) (*uint256.Int, error)

	// Transfer moves amount of asset from src to dest and returns the
	// amount dest was credited with, which is lower than amount when the
	// asset charges a transfer fee.
	Transfer(db custody.KVStore, asset, src, dest custody.Address, amount *uint256.Int) (*uint256.Int, error)
}

// BaseController is the ledger implementation.
type BaseController struct {
	native custody.Address
}

var _ Controller = BaseController{}

// NewController returns a controller that never charges a fee when moving
// the native asset.
func NewController(native custody.Address) BaseController {
	return BaseController{native: native}
}

// Balance returns the amount of asset held by holder. An account that
// never held the asset has a zero balance.
func (c BaseController) Balance(db custody.ReadOnlyKVStore, asset, holder custody.Address) (*uint256.Int, error) {
	var b Balance
	switch err := balances.One(db, balanceKey(asset, holder), &b); {
	case err == nil:
		return b.Value(), nil
	case errors.ErrNotFound.Is(err):
		return new(uint256.Int), nil
	default:
		return nil, err
	}
}

// Transfer moves amount of asset from src to dest. The transfer fee, if
// configured for the asset, is withheld from the credited amount.
func (c BaseController) Transfer(db custody.KVStore, asset, src, dest custody.Address, amount *uint256.Int) (*uint256.Int, error) {
	if amount.IsZero() {
		return new(uint256.Int), nil
	}
	have, err := c.Balance(db, asset, src)
	if err != nil {
		return nil, err
	}
	if have.Lt(amount) {
		return nil, errors.Wrapf(ErrInsufficientFunds, "%s holds %s of %s, %s required", src, have, asset, amount)
	}
	if err := setBalance(db, asset, src, new(uint256.Int).Sub(have, amount)); err != nil {
		return nil, err
	}

	received := amount.Clone()
	if !asset.Equals(c.native) {
		fee, err := FeeOf(db, asset)
		if err != nil {
			return nil, err
		}
		if fee != nil {
			received.Sub(received, fee.Charge(amount))
		}
	}
	if err := c.issue(db, asset, dest, received); err != nil {
		return nil, err
	}
	return received, nil
}

// Issue credits holder with amount of asset without debiting anyone.
func (c BaseController) Issue(db custody.KVStore, asset, holder custody.Address, amount *uint256.Int) error {
	return c.issue(db, asset, holder, amount)
}

func (c BaseController) issue(db custody.KVStore, asset, holder custody.Address, amount *uint256.Int) error {
	have, err := c.Balance(db, asset, holder)
	if err != nil {
		return err
	}
	total, overflow := new(uint256.Int).AddOverflow(have, amount)
	if overflow {
		return errors.Wrapf(errors.ErrOverflow, "balance of %s", holder)
	}
	return setBalance(db, asset, holder, total)
}

func setBalance(db custody.KVStore, asset, holder custody.Address, amount *uint256.Int) error {
	key := balanceKey(asset, holder)
	if amount.IsZero() {
		return balances.Bucket().Delete(db, key)
	}
	b := Balance{
		Metadata: custody.Metadata{Schema: 1},
		Amount:   amount.Bytes(),
	}
	return balances.Put(db, key, &b)
}

// FeeOf returns the transfer fee configured for given asset, or nil if the
// asset transfers without a fee.
func FeeOf(db custody.ReadOnlyKVStore, asset custody.Address) (*Fee, error) {
	var f Fee
	switch err := fees.One(db, asset, &f); {
	case err == nil:
		return &f, nil
	case errors.ErrNotFound.Is(err):
		return nil, nil
	default:
		return nil, err
	}
}

// SetFee configures the transfer fee of an asset.
func SetFee(db custody.KVStore, asset custody.Address, rate custody.Fraction) error {
	f := Fee{
		Metadata: custody.Metadata{Schema: 1},
		Rate:     rate,
	}
	return fees.Put(db, asset, &f)
}
