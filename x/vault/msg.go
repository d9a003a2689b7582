package vault

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x/cash"
	"github.com/iov-one/custody/x/committee"
)

const (
	pathDeposit             = "vault/deposit"
	pathSetAllowlist        = "vault/set_allowlist"
	pathWithdraw            = "vault/withdraw"
	pathWithdrawAllowlisted = "vault/withdraw_allowlisted"
)

// maxSignatures bounds the work of verifying a single withdrawal.
const maxSignatures = 4 * committee.MaxMembers

// Action is the payload a committee attests to.
type Action struct {
	Asset    custody.Address  `json:"asset"`
	Receiver custody.Address  `json:"receiver"`
	Amount   *uint256.Int     `json:"amount"`
	Deadline custody.UnixTime `json:"deadline"`
}

// Validate ensures the action is well formed.
func (a Action) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Asset", a.Asset.Validate())
	if err := a.Receiver.Validate(); err != nil {
		errs = errors.AppendField(errs, "Receiver", err)
	} else if a.Receiver.IsZero() {
		errs = errors.AppendField(errs, "Receiver", errors.ErrEmpty)
	}
	if a.Amount == nil || a.Amount.IsZero() {
		errs = errors.AppendField(errs, "Amount", ErrZeroAmount)
	}
	if a.Deadline < 0 {
		errs = errors.AppendField(errs, "Deadline", errors.ErrInput)
	}
	return errs
}

// WithdrawMsg releases funds on committee authorization. It is rate
// limited.
type WithdrawMsg struct {
	ID         uint64             `json:"id"`
	Committee  []committee.Member `json:"committee"`
	Action     Action             `json:"action"`
	Signatures [][]byte           `json:"signatures"`
}

var _ custody.Msg = WithdrawMsg{}

// Path returns the routing path for this message.
func (WithdrawMsg) Path() string { return pathWithdraw }

// Validate ensures the message is well formed.
func (m WithdrawMsg) Validate() error {
	return validateWithdrawal(m.Committee, m.Action, m.Signatures)
}

// WithdrawAllowlistedMsg releases funds to an allowlisted receiver on
// committee authorization. It is not rate limited.
type WithdrawAllowlistedMsg struct {
	ID         uint64             `json:"id"`
	Committee  []committee.Member `json:"committee"`
	Action     Action             `json:"action"`
	Signatures [][]byte           `json:"signatures"`
}

var _ custody.Msg = WithdrawAllowlistedMsg{}

// Path returns the routing path for this message.
func (WithdrawAllowlistedMsg) Path() string { return pathWithdrawAllowlisted }

// Validate ensures the message is well formed.
func (m WithdrawAllowlistedMsg) Validate() error {
	return validateWithdrawal(m.Committee, m.Action, m.Signatures)
}

func validateWithdrawal(members []committee.Member, a Action, sigs [][]byte) error {
	var errs error
	if _, err := committee.ValidateMembers(members); err != nil {
		errs = errors.Append(errs, err)
	}
	if err := a.Validate(); err != nil {
		errs = errors.Append(errs, err)
	}
	if len(sigs) > maxSignatures {
		errs = errors.Append(errs, errors.Field("Signatures", errors.ErrInput, "at most %d signatures", maxSignatures))
	}
	return errs
}

// withdrawal is the common part of both withdrawal messages.
type withdrawal struct {
	ID          uint64
	Committee   []committee.Member
	Action      Action
	Signatures  [][]byte
	Allowlisted bool
}

// DepositMsg moves funds of the caller into the vault. For the native asset
// the deposited amount is the value attached to the transaction.
type DepositMsg struct {
	Asset     custody.Address `json:"asset"`
	Amount    *uint256.Int    `json:"amount"`
	BrokerTag string          `json:"broker_tag"`
}

var _ cash.PayableMsg = DepositMsg{}

// Path returns the routing path for this message.
func (DepositMsg) Path() string { return pathDeposit }

// Payable marks the message as accepting native value.
func (DepositMsg) Payable() {}

// Validate ensures the message is well formed.
func (m DepositMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Asset", m.Asset.Validate())
	if len(m.BrokerTag) > 128 {
		errs = errors.AppendField(errs, "BrokerTag", errors.ErrInput)
	}
	return errs
}

// SetAllowlistMsg adds an account to or removes it from the allowlist.
type SetAllowlistMsg struct {
	Account custody.Address `json:"account"`
	State   bool            `json:"state"`
}

var _ custody.Msg = SetAllowlistMsg{}

// Path returns the routing path for this message.
func (SetAllowlistMsg) Path() string { return pathSetAllowlist }

// Validate ensures the account is a valid, non zero address.
func (m SetAllowlistMsg) Validate() error {
	if err := m.Account.Validate(); err != nil {
		return errors.Field("Account", err, "invalid account")
	}
	if m.Account.IsZero() {
		return errors.Field("Account", errors.ErrEmpty, "zero account")
	}
	return nil
}

func (w withdrawal) String() string {
	return fmt.Sprintf("withdrawal %d of %s %s to %s", w.ID, w.Action.Amount.Dec(), w.Action.Asset, w.Action.Receiver)
}
