package orm

import (
	"github.com/iov-one/custody/errors"
	amino "github.com/tendermint/go-amino"
)

// cdc is shared by all buckets. Models are concrete structs, so no type
// registration is needed.
var cdc = amino.NewCodec()

// Model is implemented by any entity that can be stored in a bucket. All
// models are pointers to structs embedding custody.Metadata.
type Model interface {
	Validate() error
}

// Marshal serializes given model. Invalid models are rejected.
func Marshal(m Model) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid model")
	}
	raw, err := cdc.MarshalBinaryBare(m)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrModel, "marshal %T: %s", m, err)
	}
	return raw, nil
}

// Unmarshal loads serialized model into given destination.
func Unmarshal(raw []byte, dest Model) error {
	if err := cdc.UnmarshalBinaryBare(raw, dest); err != nil {
		return errors.Wrapf(errors.ErrModel, "unmarshal %T: %s", dest, err)
	}
	return nil
}
