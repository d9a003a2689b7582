package custodytest

import "github.com/iov-one/custody"

// Call describes a single operation that passed through a Decorator.
type Call struct {
	// Deliver is false for a Check call.
	Deliver bool
	// Path of the message, empty if the transaction carried none.
	Path string
	// Caller found in the context, nil if the operation is anonymous.
	Caller custody.Address
}

// Decorator is a custody.Decorator that records every operation it sees.
//
// Set CheckErr or DeliverErr to stop the chain with that error. The call is
// recorded either way.
type Decorator struct {
	CheckErr   error
	DeliverErr error

	calls []Call
}

var _ custody.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx, next custody.Checker) (*custody.CheckResult, error) {
	d.record(ctx, tx, false)
	if d.CheckErr != nil {
		return nil, d.CheckErr
	}
	return next.Check(ctx, db, tx)
}

func (d *Decorator) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx, next custody.Deliverer) (*custody.DeliverResult, error) {
	d.record(ctx, tx, true)
	if d.DeliverErr != nil {
		return nil, d.DeliverErr
	}
	return next.Deliver(ctx, db, tx)
}

func (d *Decorator) record(ctx custody.Context, tx custody.Tx, deliver bool) {
	c := Call{Deliver: deliver}
	if tx != nil {
		if msg, err := tx.GetMsg(); err == nil && msg != nil {
			c.Path = msg.Path()
		}
	}
	c.Caller, _ = custody.GetCaller(ctx)
	d.calls = append(d.calls, c)
}

// Calls returns the recorded operations, oldest first.
func (d *Decorator) Calls() []Call {
	return d.calls
}

func (d *Decorator) CallCount() int {
	return len(d.calls)
}

// Decorate returns a handler that runs h behind d.
func Decorate(h custody.Handler, d custody.Decorator) custody.Handler {
	return decorated{next: h, dec: d}
}

type decorated struct {
	next custody.Handler
	dec  custody.Decorator
}

func (d decorated) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	return d.dec.Check(ctx, db, tx, d.next)
}

func (d decorated) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	return d.dec.Deliver(ctx, db, tx, d.next)
}
