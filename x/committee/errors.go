package committee

import "github.com/iov-one/custody/errors"

var (
	// ErrAlreadyRegistered is returned when registering a committee that
	// is already registered.
	ErrAlreadyRegistered = errors.Register(300, "committee already registered")

	// ErrNotRegistered is returned when revoking a committee that is not
	// registered.
	ErrNotRegistered = errors.Register(301, "committee not registered")

	// ErrUnknownCommittee is returned when verifying signatures against a
	// committee that is not registered.
	ErrUnknownCommittee = errors.Register(302, "unknown committee")

	// ErrInsufficientPower is returned when the verified signatures do not
	// carry enough voting power.
	ErrInsufficientPower = errors.Register(303, "insufficient power")
)
