package committee

import (
	"context"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// Initializer fulfils the Initializer interface to load data from the
// genesis file.
type Initializer struct{}

var _ custody.Initializer = (*Initializer)(nil)

// FromGenesis registers all committees listed under the "committees" key.
// Registration height of genesis committees is 1.
func (*Initializer) FromGenesis(opts custody.Options, db custody.KVStore) error {
	var committees []struct {
		Members []Member `json:"members"`
	}
	if err := opts.ReadOptions("committees", &committees); err != nil {
		return err
	}
	ctx := custody.WithHeight(context.Background(), 1)
	for i, c := range committees {
		if _, err := Register(ctx, db, c.Members); err != nil {
			return errors.Wrapf(err, "committee #%d", i)
		}
	}
	return nil
}
