package app

import (
	"encoding/json"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
	"github.com/iov-one/custody/x/asset"
	"github.com/iov-one/custody/x/cash"
	"github.com/iov-one/custody/x/committee"
	"github.com/iov-one/custody/x/vault"
)

// height is the ledger height counter. Genesis takes height 1, every
// delivered operation takes the next one.
var height = orm.NewSequence("ledger", "height")

// Initializers returns the initializers of all extensions, in the order they
// must run. Balances and fees are loaded before the vault so that the vault
// can validate the native asset configuration against them.
func Initializers() []custody.Initializer {
	return []custody.Initializer{
		&asset.Initializer{},
		&cash.Initializer{},
		&committee.Initializer{},
		&vault.Initializer{},
	}
}

// ParseGenesis decodes a genesis document. The document is a JSON object
// mapping extension sections to their content.
func ParseGenesis(raw []byte) (custody.Options, error) {
	var opts custody.Options
	if err := json.Unmarshal(raw, &opts); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "genesis: %s", err)
	}
	if opts == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "genesis")
	}
	return opts, nil
}

// LoadGenesis initializes a fresh store from given genesis document. All
// extensions are initialized within a single cache wrap, nothing is written
// unless all of them succeed. Returned options are the parsed document.
func LoadGenesis(db custody.CommitKVStore, raw []byte) (custody.Options, error) {
	opts, err := ParseGenesis(raw)
	if err != nil {
		return nil, err
	}

	switch h, err := height.Latest(db); {
	case err != nil:
		return nil, errors.Wrap(err, "height")
	case h != 0:
		return nil, errors.Wrapf(errors.ErrState, "store already initialized at height %d", h)
	}

	cache := db.CacheWrap()
	if _, err := height.NextInt(cache); err != nil {
		cache.Discard()
		return nil, errors.Wrap(err, "height")
	}
	for _, init := range Initializers() {
		if err := init.FromGenesis(opts, cache); err != nil {
			cache.Discard()
			return nil, errors.Wrapf(err, "%T", init)
		}
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return opts, nil
}
