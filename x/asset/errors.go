package asset

import "github.com/iov-one/custody/errors"

// ErrUnsupportedAsset is returned for an asset missing from the registry.
var ErrUnsupportedAsset = errors.Register(320, "unsupported asset")
