package asset

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// Initializer fulfils the Initializer interface to load data from the
// genesis file.
type Initializer struct{}

var _ custody.Initializer = (*Initializer)(nil)

// FromGenesis stores all assets listed under the "assets" key.
func (*Initializer) FromGenesis(opts custody.Options, db custody.KVStore) error {
	var assets []struct {
		ID          custody.Address `json:"id"`
		HourlyLimit uint64          `json:"hourly_limit"`
		Decimals    uint32          `json:"decimals"`
	}
	if err := opts.ReadOptions("assets", &assets); err != nil {
		return err
	}
	for i, a := range assets {
		t := Token{
			Metadata:    custody.Metadata{Schema: 1},
			ID:          a.ID,
			HourlyLimit: a.HourlyLimit,
			Decimals:    a.Decimals,
		}
		if err := Save(db, &t); err != nil {
			return errors.Wrapf(err, "asset #%d", i)
		}
	}
	return nil
}
