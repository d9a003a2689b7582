package app

import (
	"github.com/holiman/uint256"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// Tx is a single operation submitted to the service.
type Tx struct {
	Msg custody.Msg
	// Value is the native value attached to the operation, nil means
	// none.
	Value *uint256.Int
}

var _ custody.ValueTx = (*Tx)(nil)

// GetMsg returns the operation message.
func (tx *Tx) GetMsg() (custody.Msg, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "message")
	}
	return tx.Msg, nil
}

// GetValue returns the attached native value.
func (tx *Tx) GetValue() *uint256.Int {
	return tx.Value
}
