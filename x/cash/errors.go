package cash

import "github.com/iov-one/custody/errors"

// ErrInsufficientFunds is returned when a holder cannot cover a transfer.
var ErrInsufficientFunds = errors.Register(600, "insufficient funds")
