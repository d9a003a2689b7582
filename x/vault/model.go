package vault

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
)

var (
	withdrawals = orm.NewModelBucket("withdrawal")
	allowlist   = orm.NewModelBucket("allowlist")
)

// Record marks a withdrawal id as executed. It is written once and never
// removed.
type Record struct {
	Metadata custody.Metadata `json:"metadata"`
	// Height of the operation that executed the withdrawal.
	Height int64 `json:"height"`
}

// Validate ensures the record is complete.
func (r *Record) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", r.Metadata.Validate())
	if r.Height < 1 {
		errs = errors.AppendField(errs, "Height", errors.ErrInput)
	}
	return errs
}

func withdrawalKey(id uint64) []byte {
	return orm.EncodeSequence(int64(id))
}

// ExecutedAt returns the height at which withdrawal of given id was
// executed, or zero if it was not.
func ExecutedAt(db custody.ReadOnlyKVStore, id uint64) (int64, error) {
	var r Record
	switch err := withdrawals.One(db, withdrawalKey(id), &r); {
	case err == nil:
		return r.Height, nil
	case errors.ErrNotFound.Is(err):
		return 0, nil
	default:
		return 0, err
	}
}

func markExecuted(db custody.KVStore, id uint64, height int64) error {
	r := Record{Metadata: custody.Metadata{Schema: 1}, Height: height}
	return withdrawals.Put(db, withdrawalKey(id), &r)
}

// Allowed is stored for every allowlisted account.
type Allowed struct {
	Metadata custody.Metadata `json:"metadata"`
}

// Validate ensures the entry is complete.
func (a *Allowed) Validate() error {
	return errors.Wrap(a.Metadata.Validate(), "metadata")
}

// IsAllowlisted returns true if given account is on the allowlist.
func IsAllowlisted(db custody.ReadOnlyKVStore, account custody.Address) (bool, error) {
	return allowlist.Has(db, account)
}

// setAllowlisted updates the allowlist and returns true if the state of
// the account changed.
func setAllowlisted(db custody.KVStore, account custody.Address, state bool) (bool, error) {
	current, err := IsAllowlisted(db, account)
	if err != nil {
		return false, err
	}
	if current == state {
		return false, nil
	}
	if state {
		return true, allowlist.Put(db, account, &Allowed{Metadata: custody.Metadata{Schema: 1}})
	}
	return true, allowlist.Delete(db, account)
}

// Receipt status values.
const (
	StatusExecuted    = "executed"
	StatusRateLimited = "rate_limited"
)

// Receipt is the result of a withdrawal, returned as the data of a
// delivered transaction.
type Receipt struct {
	Metadata custody.Metadata `json:"metadata"`
	ID       uint64           `json:"id"`
	Status   string           `json:"status"`
	// Height is set for executed withdrawals only.
	Height int64 `json:"height"`
}

// Validate ensures the receipt is consistent.
func (r *Receipt) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", r.Metadata.Validate())
	switch r.Status {
	case StatusExecuted:
		if r.Height < 1 {
			errs = errors.AppendField(errs, "Height", errors.ErrInput)
		}
	case StatusRateLimited:
		if r.Height != 0 {
			errs = errors.AppendField(errs, "Height", errors.ErrInput)
		}
	default:
		errs = errors.AppendField(errs, "Status", errors.ErrInput)
	}
	return errs
}

// Executed returns true if the withdrawal moved funds.
func (r *Receipt) Executed() bool {
	return r.Status == StatusExecuted
}

var digestArgs = func() abi.Arguments {
	mustType := func(name string) abi.Type {
		t, err := abi.NewType(name, "", nil)
		if err != nil {
			panic(err)
		}
		return t
	}
	u256 := mustType("uint256")
	addr := mustType("address")
	return abi.Arguments{
		{Name: "id", Type: u256},
		{Name: "domainId", Type: u256},
		{Name: "instance", Type: addr},
		{Name: "asset", Type: addr},
		{Name: "receiver", Type: addr},
		{Name: "amount", Type: u256},
		{Name: "deadline", Type: u256},
	}
}()

// Digest returns the message committee members sign to authorize a
// withdrawal: keccak256(abi.encode(id, domainId, instance, asset, receiver,
// amount, deadline)).
func Digest(conf *Configuration, id uint64, a Action) ([]byte, error) {
	raw, err := digestArgs.Pack(
		new(big.Int).SetUint64(id),
		new(big.Int).SetUint64(conf.DomainID),
		conf.Instance.Common(),
		a.Asset.Common(),
		a.Receiver.Common(),
		a.Amount.ToBig(),
		big.NewInt(int64(a.Deadline)),
	)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "abi encode: %s", err)
	}
	return custody.Keccak256(raw), nil
}
