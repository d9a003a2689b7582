package cash

import (
	"github.com/holiman/uint256"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

const optKey = "cash"

// GenesisBalance is an initial holding, amount is a decimal string.
type GenesisBalance struct {
	Asset  custody.Address `json:"asset"`
	Holder custody.Address `json:"holder"`
	Amount string          `json:"amount"`
}

// GenesisFee is the transfer fee of an asset.
type GenesisFee struct {
	Asset custody.Address  `json:"asset"`
	Rate  custody.Fraction `json:"rate"`
}

// Initializer fulfils the Initializer interface to load data from the
// genesis file.
type Initializer struct {
	// Native is the asset that never charges a fee.
	Native custody.Address
}

var _ custody.Initializer = (*Initializer)(nil)

// FromGenesis will parse initial balances and fees from genesis and save
// them to the database.
func (i *Initializer) FromGenesis(opts custody.Options, db custody.KVStore) error {
	var conf struct {
		Balances []GenesisBalance `json:"balances"`
		Fees     []GenesisFee     `json:"fees"`
	}
	if err := opts.ReadOptions(optKey, &conf); err != nil {
		return err
	}
	native := i.Native
	if native == nil {
		native = custody.ZeroAddress()
	}
	ctrl := NewController(native)
	for n, b := range conf.Balances {
		if err := b.Asset.Validate(); err != nil {
			return errors.Wrapf(err, "balance #%d asset", n)
		}
		if err := b.Holder.Validate(); err != nil {
			return errors.Wrapf(err, "balance #%d holder", n)
		}
		amount, err := ParseAmount(b.Amount)
		if err != nil {
			return errors.Wrapf(err, "balance #%d", n)
		}
		if err := ctrl.Issue(db, b.Asset, b.Holder, amount); err != nil {
			return errors.Wrapf(err, "balance #%d", n)
		}
	}
	for n, f := range conf.Fees {
		if err := f.Asset.Validate(); err != nil {
			return errors.Wrapf(err, "fee #%d asset", n)
		}
		if f.Asset.Equals(native) {
			return errors.Wrapf(errors.ErrInput, "fee #%d: native asset cannot charge a fee", n)
		}
		if err := SetFee(db, f.Asset, f.Rate); err != nil {
			return errors.Wrapf(err, "fee #%d", n)
		}
	}
	return nil
}

// ParseAmount decodes a decimal or "0x" prefixed hex amount.
func ParseAmount(s string) (*uint256.Int, error) {
	if s == "" {
		return nil, errors.Wrap(errors.ErrEmpty, "amount")
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		v, err = uint256.FromHex(s)
	}
	if err != nil {
		return nil, errors.Wrapf(errors.ErrAmount, "cannot parse %q", s)
	}
	return v, nil
}
