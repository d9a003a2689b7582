package custody

import (
	"reflect"

	"github.com/holiman/uint256"
	"github.com/iov-one/custody/errors"
)

// Msg is message for the custody service to act upon. Each message has a
// unique path that is used to route it to the right handler.
type Msg interface {
	// Path returns a path that identifies the message type. The first
	// segment names the extension, for example "vault/withdraw".
	Path() string

	// Validate performs a sanity check of the message content. It must
	// not depend on any state.
	Validate() error
}

// Tx represent the data sent from the user to the service.
type Tx interface {
	// GetMsg returns the single message contained in the transaction.
	GetMsg() (Msg, error)
}

// ValueTx is implemented by transactions that carry native asset value
// alongside their message.
type ValueTx interface {
	Tx
	// GetValue returns the attached native value. Nil means none.
	GetValue() *uint256.Int
}

// TxValue returns the native value attached to given transaction. A
// transaction that does not carry value is equivalent to one carrying zero.
func TxValue(tx Tx) *uint256.Int {
	if vt, ok := tx.(ValueTx); ok {
		if v := vt.GetValue(); v != nil {
			return v.Clone()
		}
	}
	return new(uint256.Int)
}

// LoadMsg extracts the message represented by given transaction into given
// destination. Destination must be a pointer to the expected message type.
// Returned message is validated.
func LoadMsg(tx Tx, destination interface{}) error {
	msg, err := tx.GetMsg()
	if err != nil {
		return errors.Wrap(err, "cannot get transaction message")
	}
	if err := ExtractMsg(msg, destination); err != nil {
		return err
	}
	if err := msg.Validate(); err != nil {
		return errors.Wrap(err, "invalid message")
	}
	return nil
}

// ExtractMsg assigns given message to destination. Destination must be a
// pointer to a variable of the message's own type.
func ExtractMsg(msg Msg, destination interface{}) error {
	dest := reflect.ValueOf(destination)
	if dest.Kind() != reflect.Ptr || dest.IsNil() {
		return errors.Wrap(errors.ErrHuman, "destination must be a non nil pointer")
	}
	if msg == nil {
		return errors.Wrap(errors.ErrEmpty, "message")
	}
	src := reflect.ValueOf(msg)
	if !src.Type().AssignableTo(dest.Elem().Type()) {
		// Accept a pointer message extracted into a value destination.
		if src.Kind() == reflect.Ptr && src.Elem().Type().AssignableTo(dest.Elem().Type()) {
			dest.Elem().Set(src.Elem())
			return nil
		}
		return errors.Wrapf(errors.ErrType, "%T cannot be loaded into %T", msg, destination)
	}
	dest.Elem().Set(src)
	return nil
}
