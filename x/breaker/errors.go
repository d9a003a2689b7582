package breaker

import "github.com/iov-one/custody/errors"

// ErrSuspended is returned while the service is suspended after a rate
// limit breach.
var ErrSuspended = errors.Register(400, "suspended")

// ErrPaused is returned while the service is administratively paused.
var ErrPaused = errors.Register(401, "paused")
