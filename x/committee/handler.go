package committee

import (
	"encoding/hex"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x"
	"github.com/iov-one/custody/x/audit"
)

// RegisterRoutes registers handlers for committee management. Both require
// the admin capability.
func RegisterRoutes(r custody.Registry, auth x.Authorizer) {
	r.Handle(pathRegister, &registerHandler{auth: auth})
	r.Handle(pathRevoke, &revokeHandler{auth: auth})
}

type registerHandler struct {
	auth x.Authorizer
}

var _ custody.Handler = (*registerHandler)(nil)

func (h *registerHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	var msg RegisterMsg
	if _, err := load(ctx, h.auth, tx, &msg); err != nil {
		return nil, err
	}
	hash, err := Hash(msg.Members)
	if err != nil {
		return nil, err
	}
	switch ok, err := bucket.Has(db, hash); {
	case err != nil:
		return nil, err
	case ok:
		return nil, errors.Wrapf(ErrAlreadyRegistered, "committee %X", hash)
	}
	return &custody.CheckResult{}, nil
}

func (h *registerHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	var msg RegisterMsg
	caller, err := load(ctx, h.auth, tx, &msg)
	if err != nil {
		return nil, err
	}
	hash, err := Register(ctx, db, msg.Members)
	if err != nil {
		return nil, err
	}
	total, err := TotalPower(db, hash)
	if err != nil {
		return nil, err
	}
	err = audit.Emit(ctx, db, audit.CommitteeRegistered,
		audit.Attr("hash", hex.EncodeToString(hash)),
		audit.Attr("size", len(msg.Members)),
		audit.Attr("total_power", total),
		audit.Attr("caller", caller))
	if err != nil {
		return nil, err
	}
	custody.GetLogger(ctx).Info("committee registered", "hash", hex.EncodeToString(hash), "size", len(msg.Members), "total_power", total)
	return &custody.DeliverResult{Data: hash}, nil
}

type revokeHandler struct {
	auth x.Authorizer
}

var _ custody.Handler = (*revokeHandler)(nil)

func (h *revokeHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	var msg RevokeMsg
	if _, err := load(ctx, h.auth, tx, &msg); err != nil {
		return nil, err
	}
	hash, err := Hash(msg.Members)
	if err != nil {
		return nil, err
	}
	switch ok, err := bucket.Has(db, hash); {
	case err != nil:
		return nil, err
	case !ok:
		return nil, errors.Wrapf(ErrNotRegistered, "committee %X", hash)
	}
	return &custody.CheckResult{}, nil
}

func (h *revokeHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	var msg RevokeMsg
	caller, err := load(ctx, h.auth, tx, &msg)
	if err != nil {
		return nil, err
	}
	hash, err := Revoke(db, msg.Members)
	if err != nil {
		return nil, err
	}
	err = audit.Emit(ctx, db, audit.CommitteeRevoked,
		audit.Attr("hash", hex.EncodeToString(hash)),
		audit.Attr("caller", caller))
	if err != nil {
		return nil, err
	}
	custody.GetLogger(ctx).Info("committee revoked", "hash", hex.EncodeToString(hash))
	return &custody.DeliverResult{Data: hash}, nil
}

// load extracts the message and ensures the caller is an admin.
func load(ctx custody.Context, auth x.Authorizer, tx custody.Tx, dest interface{}) (custody.Address, error) {
	if err := custody.LoadMsg(tx, dest); err != nil {
		return nil, err
	}
	return x.AuthorizeCaller(ctx, auth, x.Admin)
}
