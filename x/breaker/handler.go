package breaker

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/x"
	"github.com/iov-one/custody/x/audit"
)

// RegisterRoutes registers handlers for the breaker switches.
func RegisterRoutes(r custody.Registry, auth x.Authorizer) {
	r.Handle(pathPause, &switchHandler{auth: auth, event: audit.Paused, apply: func(s *State) { s.Paused = true }})
	r.Handle(pathUnpause, &switchHandler{auth: auth, event: audit.Unpaused, apply: func(s *State) { s.Paused = false }})
	r.Handle(pathResume, &switchHandler{auth: auth, event: audit.Resumed, apply: func(s *State) { s.Suspended = false }})
}

// switchHandler changes one of the switches. All of them require the pause
// capability.
type switchHandler struct {
	auth  x.Authorizer
	event string
	apply func(*State)
}

var _ custody.Handler = (*switchHandler)(nil)

func (h *switchHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, nil
}

func (h *switchHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	caller, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	s, err := Load(db)
	if err != nil {
		return nil, err
	}
	h.apply(s)
	if err := save(db, s); err != nil {
		return nil, err
	}
	if err := audit.Emit(ctx, db, h.event, audit.Attr("caller", caller)); err != nil {
		return nil, err
	}
	custody.GetLogger(ctx).Info("breaker switched", "event", h.event, "caller", caller)
	return &custody.DeliverResult{}, nil
}

func (h *switchHandler) validate(ctx custody.Context, tx custody.Tx) (custody.Address, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return x.AuthorizeCaller(ctx, h.auth, x.Pause)
}
