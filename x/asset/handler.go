package asset

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/x"
	"github.com/iov-one/custody/x/audit"
)

// RegisterRoutes registers handlers for asset registry management.
func RegisterRoutes(r custody.Registry, auth x.Authorizer) {
	r.Handle(pathAdd, &addHandler{auth: auth})
	r.Handle(pathRemove, &removeHandler{auth: auth})
}

type addHandler struct {
	auth x.Authorizer
}

var _ custody.Handler = (*addHandler)(nil)

func (h *addHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, nil
}

func (h *addHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, caller, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	t := msg.Token()
	if err := Save(db, t); err != nil {
		return nil, err
	}
	err = audit.Emit(ctx, db, audit.AssetAdded,
		audit.Attr("asset", t.ID),
		audit.Attr("hourly_limit", t.HourlyLimit),
		audit.Attr("decimals", t.Decimals),
		audit.Attr("caller", caller))
	if err != nil {
		return nil, err
	}
	custody.GetLogger(ctx).Info("asset added", "asset", t.ID, "hourly_limit", t.HourlyLimit, "decimals", t.Decimals)
	return &custody.DeliverResult{}, nil
}

func (h *addHandler) validate(ctx custody.Context, tx custody.Tx) (*AddMsg, custody.Address, error) {
	var msg AddMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, err
	}
	caller, err := x.AuthorizeCaller(ctx, h.auth, x.Business)
	if err != nil {
		return nil, nil, err
	}
	return &msg, caller, nil
}

type removeHandler struct {
	auth x.Authorizer
}

var _ custody.Handler = (*removeHandler)(nil)

func (h *removeHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	msg, _, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if _, err := Get(db, msg.Asset); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, nil
}

func (h *removeHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, caller, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := remove(db, msg.Asset); err != nil {
		return nil, err
	}
	err = audit.Emit(ctx, db, audit.AssetRemoved,
		audit.Attr("asset", msg.Asset),
		audit.Attr("caller", caller))
	if err != nil {
		return nil, err
	}
	custody.GetLogger(ctx).Info("asset removed", "asset", msg.Asset)
	return &custody.DeliverResult{}, nil
}

func (h *removeHandler) validate(ctx custody.Context, tx custody.Tx) (*RemoveMsg, custody.Address, error) {
	var msg RemoveMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, err
	}
	caller, err := x.AuthorizeCaller(ctx, h.auth, x.Business)
	if err != nil {
		return nil, nil, err
	}
	return &msg, caller, nil
}
