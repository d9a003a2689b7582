/*
Package roles provides the access control table of the service. The table is
read from the genesis file and kept in memory, it is never persisted.
*/
package roles

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x"
)

// Grant assigns capabilities to a single account.
type Grant struct {
	Address      custody.Address `json:"address"`
	Capabilities []x.Capability  `json:"capabilities"`
}

// Table maps accounts to the capabilities they hold.
type Table struct {
	grants map[string]map[x.Capability]struct{}
}

var _ x.Authorizer = (*Table)(nil)

// NewTable builds a table from given grants. Capabilities of repeated
// addresses are merged.
func NewTable(grants ...Grant) (*Table, error) {
	t := &Table{grants: make(map[string]map[x.Capability]struct{})}
	for i, g := range grants {
		if err := g.Address.Validate(); err != nil {
			return nil, errors.Field(errors.FieldPath("Roles", i), err, "address")
		}
		if g.Address.IsZero() {
			return nil, errors.Field(errors.FieldPath("Roles", i), errors.ErrInput, "zero address cannot hold a role")
		}
		key := string(g.Address)
		if t.grants[key] == nil {
			t.grants[key] = make(map[x.Capability]struct{})
		}
		for _, c := range g.Capabilities {
			if err := c.Validate(); err != nil {
				return nil, errors.Field(errors.FieldPath("Roles", i), err, "capability")
			}
			t.grants[key][c] = struct{}{}
		}
	}
	return t, nil
}

// FromGenesis reads the "roles" section of given options.
func FromGenesis(opts custody.Options) (*Table, error) {
	var grants []Grant
	if err := opts.ReadOptions("roles", &grants); err != nil {
		return nil, err
	}
	return NewTable(grants...)
}

// Authorize returns ErrUnauthorized unless caller holds given capability.
func (t *Table) Authorize(ctx custody.Context, caller custody.Address, c x.Capability) error {
	if t.Has(caller, c) {
		return nil
	}
	return errors.Wrapf(errors.ErrUnauthorized, "%s requires %s role", caller, c)
}

// Has returns true if given account holds the capability.
func (t *Table) Has(account custody.Address, c x.Capability) bool {
	caps, ok := t.grants[string(account)]
	if !ok {
		return false
	}
	_, ok = caps[c]
	return ok
}
