package x

import (
	"encoding/json"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// Capability names a permission a caller may hold.
type Capability string

const (
	// Admin manages committees and the allowlist.
	Admin Capability = "admin"
	// Business manages supported assets.
	Business Capability = "business"
	// Operator relays committee signed withdrawals.
	Operator Capability = "operator"
	// Pause toggles the administrative pause and clears a suspension.
	Pause Capability = "pause"
)

// Validate returns an error if this is not a known capability.
func (c Capability) Validate() error {
	switch c {
	case Admin, Business, Operator, Pause:
		return nil
	}
	return errors.Wrapf(errors.ErrInput, "unknown capability %q", string(c))
}

// UnmarshalJSON accepts only known capabilities.
func (c *Capability) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrap(errors.ErrInput, "capability must be a string")
	}
	if err := Capability(s).Validate(); err != nil {
		return err
	}
	*c = Capability(s)
	return nil
}

// Authorizer is an explicit permission check. It should be passed into the
// constructor of handlers, so we can plug in another access control system
// rather than hard-coding one for all extensions.
type Authorizer interface {
	// Authorize returns ErrUnauthorized unless caller holds given
	// capability.
	Authorize(ctx custody.Context, caller custody.Address, c Capability) error
}

// AuthorizeCaller reads the caller from the context and ensures it holds
// given capability. The authorized caller is returned.
func AuthorizeCaller(ctx custody.Context, auth Authorizer, c Capability) (custody.Address, error) {
	caller, ok := custody.GetCaller(ctx)
	if !ok {
		return nil, errors.Wrap(errors.ErrUnauthorized, "no caller")
	}
	if err := auth.Authorize(ctx, caller, c); err != nil {
		return nil, err
	}
	return caller, nil
}

// AllowAll is an Authorizer granting every capability to every caller.
// Only useful in tests.
type AllowAll struct{}

var _ Authorizer = AllowAll{}

// Authorize always succeeds.
func (AllowAll) Authorize(custody.Context, custody.Address, Capability) error {
	return nil
}
