package vault

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/gconf"
	"github.com/iov-one/custody/x/cash"
)

// Initializer fulfils the Initializer interface to load data from the
// genesis file.
type Initializer struct{}

var _ custody.Initializer = (*Initializer)(nil)

// FromGenesis stores the vault configuration read from the "conf" section
// and the accounts listed under the "allowlist" key.
func (*Initializer) FromGenesis(opts custody.Options, db custody.KVStore) error {
	conf := DefaultConfiguration()
	if err := gconf.InitConfig(db, opts, confPkg, &conf); err != nil {
		return errors.Wrap(err, "init config")
	}
	switch fee, err := cash.FeeOf(db, conf.NativeAsset); {
	case err != nil:
		return err
	case fee != nil:
		return errors.Wrap(errors.ErrState, "native asset cannot charge a transfer fee")
	}

	var accounts []custody.Address
	if err := opts.ReadOptions("allowlist", &accounts); err != nil {
		return err
	}
	for i, a := range accounts {
		if err := (SetAllowlistMsg{Account: a, State: true}).Validate(); err != nil {
			return errors.Wrapf(err, "allowlist #%d", i)
		}
		if _, err := setAllowlisted(db, a, true); err != nil {
			return err
		}
	}
	return nil
}
