package cash

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// PayableMsg is implemented by messages that accept native value attached
// to their transaction.
type PayableMsg interface {
	custody.Msg
	Payable()
}

type contextKey int

const contextKeyPayment contextKey = iota

// GetPayment returns the native value that PaymentDecorator moved to the
// vault for the transaction being processed.
func GetPayment(ctx custody.Context) *uint256.Int {
	if v, ok := ctx.Value(contextKeyPayment).(*uint256.Int); ok {
		return v.Clone()
	}
	return new(uint256.Int)
}

func withPayment(ctx custody.Context, amount *uint256.Int) custody.Context {
	return context.WithValue(ctx, contextKeyPayment, amount)
}

// PaymentDecorator moves the native value attached to a transaction from
// the caller to the vault before calling down the stack. Transactions
// carrying value for a message that is not payable are rejected.
type PaymentDecorator struct {
	ctrl   Controller
	native custody.Address
	vault  custody.Address
}

var _ custody.Decorator = PaymentDecorator{}

// NewPaymentDecorator returns a decorator crediting vault with the native
// asset.
func NewPaymentDecorator(ctrl Controller, native, vault custody.Address) PaymentDecorator {
	return PaymentDecorator{ctrl: ctrl, native: native, vault: vault}
}

// Check moves the payment before calling down the stack.
func (d PaymentDecorator) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx, next custody.Checker) (*custody.CheckResult, error) {
	ctx, err := d.pay(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	return next.Check(ctx, db, tx)
}

// Deliver moves the payment before calling down the stack.
func (d PaymentDecorator) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx, next custody.Deliverer) (*custody.DeliverResult, error) {
	ctx, err := d.pay(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	return next.Deliver(ctx, db, tx)
}

func (d PaymentDecorator) pay(ctx custody.Context, db custody.KVStore, tx custody.Tx) (custody.Context, error) {
	value := custody.TxValue(tx)
	if value.IsZero() {
		return ctx, nil
	}
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot get transaction message")
	}
	if _, ok := msg.(PayableMsg); !ok {
		return nil, errors.Wrapf(errors.ErrInput, "%s does not accept value", msg.Path())
	}
	caller, ok := custody.GetCaller(ctx)
	if !ok {
		return nil, errors.Wrap(errors.ErrUnauthorized, "payment without a caller")
	}
	received, err := d.ctrl.Transfer(db, d.native, caller, d.vault, value)
	if err != nil {
		return nil, errors.Wrap(err, "payment")
	}
	return withPayment(ctx, received), nil
}
