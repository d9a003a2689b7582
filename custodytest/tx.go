package custodytest

import (
	"github.com/holiman/uint256"
	"github.com/iov-one/custody"
)

// Tx represents a custody transaction.
// Transaction represents a single message that is to be processed within this
// transaction.
type Tx struct {
	// Msg is the message that is to be processed by this transaction.
	Msg custody.Msg
	// Value is the native value attached to the transaction.
	Value *uint256.Int
	// Err if set is returned by any method call.
	Err error
}

var _ custody.ValueTx = (*Tx)(nil)

func (tx *Tx) GetMsg() (custody.Msg, error) {
	return tx.Msg, tx.Err
}

func (tx *Tx) GetValue() *uint256.Int {
	return tx.Value
}

// Msg represents a custody message.
type Msg struct {
	// Path returned by the path method, consumed by the router.
	RoutePath string
	// Err if set is returned by Validate.
	Err error
}

var _ custody.Msg = (*Msg)(nil)

func (m *Msg) Path() string {
	return m.RoutePath
}

func (m *Msg) Validate() error {
	return m.Err
}
