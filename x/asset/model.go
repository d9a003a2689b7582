/*
Package asset is the registry of supported assets. Each entry carries the
hourly withdrawal limit, in whole units, and the decimal precision used to
scale it. An asset missing from the registry is not supported.
*/
package asset

import (
	"github.com/holiman/uint256"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
)

// MaxDecimals is the highest precision an asset may declare. Ten to this
// power still fits in 256 bits.
const MaxDecimals = 77

var bucket = orm.NewModelBucket("asset")

// Token describes a supported asset.
type Token struct {
	Metadata    custody.Metadata `json:"metadata"`
	ID          custody.Address  `json:"id"`
	HourlyLimit uint64           `json:"hourly_limit"`
	Decimals    uint32           `json:"decimals"`
}

// Validate ensures the token descriptor is complete.
func (t *Token) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", t.Metadata.Validate())
	errs = errors.AppendField(errs, "ID", t.ID.Validate())
	if t.HourlyLimit == 0 {
		errs = errors.Append(errs, errors.Field("HourlyLimit", errors.ErrInput, "must be greater than zero"))
	}
	if t.Decimals > MaxDecimals {
		errs = errors.AppendField(errs, "Decimals", errors.ErrInput)
	}
	return errs
}

// Cap returns the maximum amount, in base units, that may be withdrawn
// within a single window: HourlyLimit * 10^Decimals. The result saturates
// at the maximum 256 bit value.
func (t *Token) Cap() *uint256.Int {
	limit := uint256.NewInt(t.HourlyLimit)
	scale, overflow := pow10(t.Decimals)
	if overflow {
		return maxUint256()
	}
	res, overflow := new(uint256.Int).MulOverflow(limit, scale)
	if overflow {
		return maxUint256()
	}
	return res
}

func pow10(n uint32) (*uint256.Int, bool) {
	res := uint256.NewInt(1)
	ten := uint256.NewInt(10)
	for i := uint32(0); i < n; i++ {
		if _, overflow := res.MulOverflow(res, ten); overflow {
			return nil, true
		}
	}
	return res, false
}

func maxUint256() *uint256.Int {
	return new(uint256.Int).SetAllOne()
}

// Get returns the descriptor of given asset. ErrUnsupportedAsset is
// returned if the asset is not registered.
func Get(db custody.ReadOnlyKVStore, id custody.Address) (*Token, error) {
	var t Token
	switch err := bucket.One(db, id, &t); {
	case err == nil:
		return &t, nil
	case errors.ErrNotFound.Is(err):
		return nil, errors.Wrapf(ErrUnsupportedAsset, "asset %s", id)
	default:
		return nil, err
	}
}

// IsSupported returns true if given asset is registered.
func IsSupported(db custody.ReadOnlyKVStore, id custody.Address) (bool, error) {
	return bucket.Has(db, id)
}

// Save creates or updates an asset descriptor.
func Save(db custody.KVStore, t *Token) error {
	return bucket.Put(db, t.ID, t)
}

func remove(db custody.KVStore, id custody.Address) error {
	err := bucket.Delete(db, id)
	if errors.ErrNotFound.Is(err) {
		return errors.Wrapf(ErrUnsupportedAsset, "asset %s", id)
	}
	return err
}
