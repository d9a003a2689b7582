package custody

import "github.com/iov-one/custody/errors"

// Metadata is embedded in every persisted model. Schema versions the
// serialized layout and is never zero for a valid model.
type Metadata struct {
	Schema uint32 `json:"schema"`
}

// Validate returns an error if the metadata does not declare a schema.
func (m *Metadata) Validate() error {
	if m == nil {
		return errors.Wrap(errors.ErrMetadata, "missing")
	}
	if m.Schema < 1 {
		return errors.Wrap(errors.ErrMetadata, "schema version")
	}
	return nil
}

// Copy returns a copy of this object.
func (m *Metadata) Copy() *Metadata {
	cpy := *m
	return &cpy
}
