package utils

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// Recovery is a decorator that turns a panic raised by any later step into an
// ErrPanic error. Every recovered panic is logged with the message path and
// the caller so that a misbehaving operation can be traced back.
type Recovery struct{}

var _ custody.Decorator = Recovery{}

// NewRecovery creates a Recovery decorator
func NewRecovery() Recovery {
	return Recovery{}
}

// Check turns panics into normal errors
func (Recovery) Check(ctx custody.Context, store custody.KVStore, tx custody.Tx, next custody.Checker) (_ *custody.CheckResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = logPanic(ctx, tx, r)
		}
	}()
	return next.Check(ctx, store, tx)
}

// Deliver turns panics into normal errors
func (Recovery) Deliver(ctx custody.Context, store custody.KVStore, tx custody.Tx, next custody.Deliverer) (_ *custody.DeliverResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = logPanic(ctx, tx, r)
		}
	}()
	return next.Deliver(ctx, store, tx)
}

// logPanic returns the ErrPanic error describing the recovered value and
// writes it to the context logger.
func logPanic(ctx custody.Context, tx custody.Tx, recovered interface{}) error {
	err := errors.Wrapf(errors.ErrPanic, "%v", recovered)
	logger := custody.GetLogger(ctx).With("path", msgPath(tx))
	if caller, ok := custody.GetCaller(ctx); ok {
		logger = logger.With("caller", caller.String())
	}
	logger.Error("recovered from panic", "err", err)
	return err
}
