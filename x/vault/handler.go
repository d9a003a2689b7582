package vault

import (
	"github.com/holiman/uint256"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
	"github.com/iov-one/custody/x"
	"github.com/iov-one/custody/x/asset"
	"github.com/iov-one/custody/x/audit"
	"github.com/iov-one/custody/x/breaker"
	"github.com/iov-one/custody/x/cash"
	"github.com/iov-one/custody/x/committee"
	"github.com/iov-one/custody/x/ratelimit"
)

// RegisterRoutes registers handlers for vault messages.
func RegisterRoutes(r custody.Registry, auth x.Authorizer, ctrl cash.Controller, limiter *ratelimit.Limiter) {
	r.Handle(pathDeposit, &depositHandler{ctrl: ctrl})
	r.Handle(pathSetAllowlist, &allowlistHandler{auth: auth})
	r.Handle(pathWithdraw, &withdrawHandler{auth: auth, ctrl: ctrl, limiter: limiter})
	r.Handle(pathWithdrawAllowlisted, &withdrawHandler{auth: auth, ctrl: ctrl, limiter: limiter, allowlisted: true})
}

// withdrawHandler executes committee authorized withdrawals.
type withdrawHandler struct {
	auth        x.Authorizer
	ctrl        cash.Controller
	limiter     *ratelimit.Limiter
	allowlisted bool
}

var _ custody.Handler = (*withdrawHandler)(nil)

// Check runs every precondition and verifies signatures. Nothing is
// charged, a withdrawal that would breach the rate limit is reported in
// the log.
func (h *withdrawHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	w, err := h.load(tx)
	if err != nil {
		return nil, err
	}
	conf, _, err := h.authorize(ctx, db, w)
	if err != nil {
		return nil, err
	}
	have, err := h.ctrl.Balance(db, w.Action.Asset, conf.Instance)
	if err != nil {
		return nil, err
	}
	if have.Lt(w.Action.Amount) {
		return nil, errors.Wrapf(cash.ErrInsufficientFunds, "vault holds %s", have.Dec())
	}
	if !h.allowlisted {
		ok, err := h.limiter.WithWindow(conf.WindowSeconds).Allowed(ctx, db, w.Action.Asset, w.Action.Amount)
		if err != nil {
			return nil, err
		}
		if !ok {
			return &custody.CheckResult{Log: StatusRateLimited}, nil
		}
	}
	return &custody.CheckResult{Log: StatusExecuted}, nil
}

// Deliver executes the withdrawal. The returned data is an encoded
// Receipt.
func (h *withdrawHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	w, err := h.load(tx)
	if err != nil {
		return nil, err
	}
	conf, caller, err := h.authorize(ctx, db, w)
	if err != nil {
		return nil, err
	}

	if !h.allowlisted {
		ok, err := h.limiter.WithWindow(conf.WindowSeconds).Charge(ctx, db, w.Action.Asset, w.Action.Amount)
		if err != nil {
			return nil, err
		}
		if !ok {
			custody.GetLogger(ctx).Info("withdrawal not executed", "id", w.ID, "reason", StatusRateLimited)
			return receipt(&Receipt{
				Metadata: custody.Metadata{Schema: 1},
				ID:       w.ID,
				Status:   StatusRateLimited,
			})
		}
	}

	height, ok := custody.GetHeight(ctx)
	if !ok {
		return nil, errors.Wrap(errors.ErrHuman, "height not present in the context")
	}
	if err := markExecuted(db, w.ID, height); err != nil {
		return nil, err
	}
	if _, err := h.ctrl.Transfer(db, w.Action.Asset, conf.Instance, w.Action.Receiver, w.Action.Amount); err != nil {
		return nil, errors.Wrap(err, "release funds")
	}
	err = audit.Emit(ctx, db, audit.WithdrawalCompleted,
		audit.Attr("id", w.ID),
		audit.Attr("caller", caller),
		audit.Attr("receiver", w.Action.Receiver),
		audit.Attr("asset", w.Action.Asset),
		audit.Attr("amount", w.Action.Amount.Dec()))
	if err != nil {
		return nil, err
	}
	custody.GetLogger(ctx).Info("withdrawal executed", "id", w.ID, "receiver", w.Action.Receiver, "asset", w.Action.Asset, "amount", w.Action.Amount.Dec())
	return receipt(&Receipt{
		Metadata: custody.Metadata{Schema: 1},
		ID:       w.ID,
		Status:   StatusExecuted,
		Height:   height,
	})
}

func (h *withdrawHandler) load(tx custody.Tx) (*withdrawal, error) {
	if h.allowlisted {
		var msg WithdrawAllowlistedMsg
		if err := custody.LoadMsg(tx, &msg); err != nil {
			return nil, err
		}
		return &withdrawal{ID: msg.ID, Committee: msg.Committee, Action: msg.Action, Signatures: msg.Signatures, Allowlisted: true}, nil
	}
	var msg WithdrawMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	return &withdrawal{ID: msg.ID, Committee: msg.Committee, Action: msg.Action, Signatures: msg.Signatures}, nil
}

// authorize checks all preconditions of a withdrawal in order and verifies
// the committee signatures. It never writes.
func (h *withdrawHandler) authorize(ctx custody.Context, db custody.KVStore, w *withdrawal) (*Configuration, custody.Address, error) {
	if err := breaker.Guard(db); err != nil {
		return nil, nil, err
	}
	caller, err := x.AuthorizeCaller(ctx, h.auth, x.Operator)
	if err != nil {
		return nil, nil, err
	}
	switch ok, err := asset.IsSupported(db, w.Action.Asset); {
	case err != nil:
		return nil, nil, err
	case !ok:
		return nil, nil, errors.Wrapf(asset.ErrUnsupportedAsset, "asset %s", w.Action.Asset)
	}
	if custody.IsExpired(ctx, w.Action.Deadline) {
		return nil, nil, errors.Wrapf(errors.ErrExpired, "deadline %d", w.Action.Deadline)
	}
	switch height, err := ExecutedAt(db, w.ID); {
	case err != nil:
		return nil, nil, err
	case height != 0:
		return nil, nil, errors.Wrapf(ErrAlreadyExecuted, "id %d at height %d", w.ID, height)
	}
	if w.Allowlisted {
		switch ok, err := IsAllowlisted(db, w.Action.Receiver); {
		case err != nil:
			return nil, nil, err
		case !ok:
			return nil, nil, errors.Wrapf(ErrNotAllowlisted, "receiver %s", w.Action.Receiver)
		}
	}

	conf, err := LoadConfig(db)
	if err != nil {
		return nil, nil, err
	}
	digest, err := Digest(conf, w.ID, w.Action)
	if err != nil {
		return nil, nil, err
	}
	if _, err := committee.Verify(db, w.Committee, digest, w.Signatures, conf.VerifyOptions()); err != nil {
		return nil, nil, errors.Wrap(err, w.String())
	}
	return conf, caller, nil
}

func receipt(r *Receipt) (*custody.DeliverResult, error) {
	raw, err := orm.Marshal(r)
	if err != nil {
		return nil, err
	}
	return &custody.DeliverResult{Data: raw, Log: r.Status}, nil
}

// DecodeReceipt decodes the data returned by a delivered withdrawal.
func DecodeReceipt(raw []byte) (*Receipt, error) {
	var r Receipt
	if err := orm.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// depositHandler moves funds into the vault.
type depositHandler struct {
	ctrl cash.Controller
}

var _ custody.Handler = (*depositHandler)(nil)

func (h *depositHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, err := h.deposit(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, nil
}

// Deliver returns the received amount, big endian encoded, as data.
func (h *depositHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	received, err := h.deposit(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	return &custody.DeliverResult{Data: received.Bytes(), Log: received.Dec()}, nil
}

func (h *depositHandler) deposit(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*uint256.Int, error) {
	var msg DepositMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	caller, ok := custody.GetCaller(ctx)
	if !ok {
		return nil, errors.Wrap(errors.ErrUnauthorized, "no caller")
	}
	switch ok, err := asset.IsSupported(db, msg.Asset); {
	case err != nil:
		return nil, err
	case !ok:
		return nil, errors.Wrapf(asset.ErrUnsupportedAsset, "asset %s", msg.Asset)
	}
	conf, err := LoadConfig(db)
	if err != nil {
		return nil, err
	}

	payment := cash.GetPayment(ctx)
	var received *uint256.Int
	if msg.Asset.Equals(conf.NativeAsset) {
		if payment.IsZero() {
			return nil, errors.Wrap(ErrZeroAmount, "no value attached")
		}
		received = payment
	} else {
		if !payment.IsZero() {
			return nil, errors.Wrap(ErrNonZeroValueExpected, "token deposit")
		}
		if msg.Amount == nil || msg.Amount.IsZero() {
			return nil, errors.Wrap(ErrZeroAmount, "token deposit")
		}
		before, err := h.ctrl.Balance(db, msg.Asset, conf.Instance)
		if err != nil {
			return nil, err
		}
		if _, err := h.ctrl.Transfer(db, msg.Asset, caller, conf.Instance, msg.Amount); err != nil {
			return nil, err
		}
		after, err := h.ctrl.Balance(db, msg.Asset, conf.Instance)
		if err != nil {
			return nil, err
		}
		received = new(uint256.Int).Sub(after, before)
	}

	err = audit.Emit(ctx, db, audit.Deposited,
		audit.Attr("caller", caller),
		audit.Attr("asset", msg.Asset),
		audit.Attr("amount", received.Dec()),
		audit.Attr("broker_tag", msg.BrokerTag))
	if err != nil {
		return nil, err
	}
	custody.GetLogger(ctx).Info("deposit", "caller", caller, "asset", msg.Asset, "amount", received.Dec())
	return received, nil
}

// allowlistHandler changes the allowlist. It requires the admin capability.
type allowlistHandler struct {
	auth x.Authorizer
}

var _ custody.Handler = (*allowlistHandler)(nil)

func (h *allowlistHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	var msg SetAllowlistMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	if _, err := x.AuthorizeCaller(ctx, h.auth, x.Admin); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, nil
}

func (h *allowlistHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	var msg SetAllowlistMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	caller, err := x.AuthorizeCaller(ctx, h.auth, x.Admin)
	if err != nil {
		return nil, err
	}
	changed, err := setAllowlisted(db, msg.Account, msg.State)
	if err != nil {
		return nil, err
	}
	if !changed {
		return &custody.DeliverResult{}, nil
	}
	err = audit.Emit(ctx, db, audit.AllowlistChanged,
		audit.Attr("account", msg.Account),
		audit.Attr("state", msg.State),
		audit.Attr("caller", caller))
	if err != nil {
		return nil, err
	}
	custody.GetLogger(ctx).Info("allowlist changed", "account", msg.Account, "state", msg.State)
	return &custody.DeliverResult{}, nil
}

// BalanceOf returns the amount of asset held by the vault.
func BalanceOf(db custody.ReadOnlyKVStore, ctrl cash.Controller, id custody.Address) (*uint256.Int, error) {
	conf, err := LoadConfig(db)
	if err != nil {
		return nil, err
	}
	return ctrl.Balance(db, id, conf.Instance)
}
