package committee

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
)

const (
	// MinMembers is the smallest allowed committee.
	MinMembers = 1
	// MaxMembers is the biggest allowed committee.
	MaxMembers = 9
)

var bucket = orm.NewModelBucket("committee")

// Member is a single committee signer.
type Member struct {
	Signer custody.Address `json:"signer"`
	Power  uint64          `json:"power"`
}

// Committee is the registration record of a committee, stored under the
// committee hash.
type Committee struct {
	Metadata     custody.Metadata `json:"metadata"`
	TotalPower   uint64           `json:"total_power"`
	Size         uint32           `json:"size"`
	RegisteredAt int64            `json:"registered_at"`
}

// Validate ensures the registration record is complete.
func (c *Committee) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", c.Metadata.Validate())
	if c.TotalPower == 0 {
		errs = errors.AppendField(errs, "TotalPower", errors.ErrInput)
	}
	if c.Size < MinMembers || c.Size > MaxMembers {
		errs = errors.AppendField(errs, "Size", errors.ErrInput)
	}
	if c.RegisteredAt < 1 {
		errs = errors.AppendField(errs, "RegisteredAt", errors.ErrInput)
	}
	return errs
}

// ValidateMembers ensures the member list is a canonical committee: between
// MinMembers and MaxMembers signers in strictly ascending order, each with
// a non zero power. The total power is returned.
func ValidateMembers(members []Member) (uint64, error) {
	if n := len(members); n < MinMembers || n > MaxMembers {
		return 0, errors.Field("Members", errors.ErrInput, "committee must have %d to %d members, got %d", MinMembers, MaxMembers, n)
	}
	var (
		errs  error
		total uint64
	)
	for i, m := range members {
		signer, power := errors.FieldPath("Members", i, "Signer"), errors.FieldPath("Members", i, "Power")
		if err := m.Signer.Validate(); err != nil {
			errs = errors.AppendField(errs, signer, err)
		} else if m.Signer.IsZero() {
			errs = errors.AppendField(errs, signer, errors.ErrEmpty)
		}
		if i > 0 && members[i-1].Signer.Compare(m.Signer) >= 0 {
			errs = errors.Append(errs, errors.Field(signer, errors.ErrInput, "members must be in strictly ascending order"))
		}
		if m.Power == 0 {
			errs = errors.AppendField(errs, power, errors.ErrInput)
		}
		if total+m.Power < total {
			errs = errors.AppendField(errs, power, errors.ErrOverflow)
		}
		total += m.Power
	}
	if errs != nil {
		return 0, errs
	}
	return total, nil
}

var membersArgs = func() abi.Arguments {
	ty, err := abi.NewType("tuple[]", "", []abi.ArgumentMarshaling{
		{Name: "signer", Type: "address"},
		{Name: "power", Type: "uint256"},
	})
	if err != nil {
		panic(err)
	}
	return abi.Arguments{{Type: ty}}
}()

type abiMember struct {
	Signer common.Address
	Power  *big.Int
}

// Hash returns the identifier of a committee:
// keccak256(abi.encode((address,uint256)[] members)).
func Hash(members []Member) ([]byte, error) {
	enc := make([]abiMember, len(members))
	for i, m := range members {
		enc[i] = abiMember{
			Signer: m.Signer.Common(),
			Power:  new(big.Int).SetUint64(m.Power),
		}
	}
	raw, err := membersArgs.Pack(enc)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "abi encode: %s", err)
	}
	return custody.Keccak256(raw), nil
}

// Lookup returns the registration record of given committee. It fails with
// ErrUnknownCommittee if the committee is not registered.
func Lookup(db custody.ReadOnlyKVStore, members []Member) (*Committee, []byte, error) {
	hash, err := Hash(members)
	if err != nil {
		return nil, nil, err
	}
	c, err := get(db, hash)
	if err != nil {
		return nil, nil, err
	}
	if c == nil {
		return nil, nil, errors.Wrapf(ErrUnknownCommittee, "committee %X", hash)
	}
	return c, hash, nil
}

// TotalPower returns the total power of the committee with given hash. A
// committee that is not registered has zero power.
func TotalPower(db custody.ReadOnlyKVStore, hash []byte) (uint64, error) {
	c, err := get(db, hash)
	if err != nil || c == nil {
		return 0, err
	}
	return c.TotalPower, nil
}

func get(db custody.ReadOnlyKVStore, hash []byte) (*Committee, error) {
	var c Committee
	switch err := bucket.One(db, hash, &c); {
	case err == nil:
		return &c, nil
	case errors.ErrNotFound.Is(err):
		return nil, nil
	default:
		return nil, err
	}
}

// Register stores a new committee and returns its hash.
func Register(ctx custody.Context, db custody.KVStore, members []Member) ([]byte, error) {
	total, err := ValidateMembers(members)
	if err != nil {
		return nil, err
	}
	hash, err := Hash(members)
	if err != nil {
		return nil, err
	}
	switch ok, err := bucket.Has(db, hash); {
	case err != nil:
		return nil, err
	case ok:
		return nil, errors.Wrapf(ErrAlreadyRegistered, "committee %X", hash)
	}
	height, ok := custody.GetHeight(ctx)
	if !ok {
		return nil, errors.Wrap(errors.ErrHuman, "height not present in the context")
	}
	c := Committee{
		Metadata:     custody.Metadata{Schema: 1},
		TotalPower:   total,
		Size:         uint32(len(members)),
		RegisteredAt: height,
	}
	if err := bucket.Put(db, hash, &c); err != nil {
		return nil, err
	}
	return hash, nil
}

// Revoke removes a registered committee and returns its hash.
func Revoke(db custody.KVStore, members []Member) ([]byte, error) {
	hash, err := Hash(members)
	if err != nil {
		return nil, err
	}
	err = bucket.Delete(db, hash)
	if errors.ErrNotFound.Is(err) {
		return nil, errors.Wrapf(ErrNotRegistered, "committee %X", hash)
	}
	if err != nil {
		return nil, err
	}
	return hash, nil
}
