package vault

import "github.com/iov-one/custody/errors"

var (
	// ErrAlreadyExecuted is returned when a withdrawal id was consumed.
	ErrAlreadyExecuted = errors.Register(500, "withdrawal already executed")

	// ErrNotAllowlisted is returned when the receiver of an allowlisted
	// withdrawal is not on the allowlist.
	ErrNotAllowlisted = errors.Register(501, "receiver not allowlisted")

	// ErrZeroAmount is returned when moving a zero amount.
	ErrZeroAmount = errors.Register(502, "zero amount")

	// ErrNonZeroValueExpected is returned when native value is attached
	// to a token deposit.
	ErrNonZeroValueExpected = errors.Register(503, "unexpected native value")
)
