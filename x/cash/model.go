package cash

import (
	"github.com/holiman/uint256"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
)

var (
	balances = orm.NewModelBucket("cash")
	fees     = orm.NewModelBucket("cashfee")
)

// Balance is the amount of a single asset held by a single account.
type Balance struct {
	Metadata custody.Metadata `json:"metadata"`
	// Amount is a big endian encoded 256 bit unsigned integer.
	Amount []byte `json:"amount"`
}

// Validate ensures the balance can be decoded.
func (b *Balance) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", b.Metadata.Validate())
	if len(b.Amount) > 32 {
		errs = errors.AppendField(errs, "Amount", errors.ErrOverflow)
	}
	return errs
}

// Value returns the decoded amount.
func (b *Balance) Value() *uint256.Int {
	return new(uint256.Int).SetBytes(b.Amount)
}

// Fee is the transfer fee configured for an asset.
type Fee struct {
	Metadata custody.Metadata `json:"metadata"`
	Rate     custody.Fraction `json:"rate"`
}

// Validate ensures the fee rate is a valid fraction.
func (f *Fee) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", f.Metadata.Validate())
	errs = errors.AppendField(errs, "Rate", f.Rate.Validate())
	return errs
}

// Charge returns the part of given amount that is withheld.
func (f *Fee) Charge(amount *uint256.Int) *uint256.Int {
	num := uint256.NewInt(uint64(f.Rate.Numerator))
	den := uint256.NewInt(uint64(f.Rate.Denominator))
	// floor(amount * num / den) without computing amount * num.
	q, r := new(uint256.Int).DivMod(amount, den, new(uint256.Int))
	res := new(uint256.Int).Mul(q, num)
	return res.Add(res, new(uint256.Int).Div(new(uint256.Int).Mul(r, num), den))
}

func balanceKey(asset, holder custody.Address) []byte {
	key := make([]byte, 0, len(asset)+len(holder))
	key = append(key, asset...)
	return append(key, holder...)
}
