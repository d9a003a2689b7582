package committee

import (
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// SignatureOrder selects how signatures are matched with members.
type SignatureOrder string

const (
	// Ascending matches signatures with a single forward cursor over the
	// member list. A signature of a member behind the cursor is not
	// credited, so signatures must be presented in ascending signer order.
	Ascending SignatureOrder = "ascending"

	// Any credits every member at most once, regardless of the order in
	// which signatures are presented.
	Any SignatureOrder = "any"
)

// Validate returns an error if this is not a known order.
func (o SignatureOrder) Validate() error {
	switch o {
	case Ascending, Any:
		return nil
	}
	return errors.Wrapf(errors.ErrInput, "unknown signature order %q", string(o))
}

// VerifyOptions configure signature verification.
type VerifyOptions struct {
	// Threshold is the share of the committee total power that must sign.
	Threshold custody.Fraction
	// Order is the member matching mode. Zero value means Ascending.
	Order SignatureOrder
}

// DefaultVerifyOptions requires the whole committee power, matched in
// ascending order.
func DefaultVerifyOptions() VerifyOptions {
	return VerifyOptions{
		Threshold: custody.Fraction{Numerator: 3, Denominator: 3},
		Order:     Ascending,
	}
}

// Verify checks that signatures of digest carry enough of the committee
// power. Signatures are recovered against the personal message prefixed
// digest. A malformed signature or one of a non member is not credited
// and never fails the call. The verified power is returned.
func Verify(db custody.ReadOnlyKVStore, members []Member, digest []byte, sigs [][]byte, opts VerifyOptions) (uint64, error) {
	c, hash, err := Lookup(db, members)
	if err != nil {
		return 0, err
	}
	msgHash := accounts.TextHash(digest)

	var power uint64
	switch opts.Order {
	case Any:
		power = matchAny(members, msgHash, sigs)
	case Ascending, "":
		power = matchAscending(members, msgHash, sigs)
	default:
		return 0, opts.Order.Validate()
	}

	if !reached(power, c.TotalPower, opts.Threshold) {
		return power, errors.Wrapf(ErrInsufficientPower, "committee %X: signed %d of %d", hash, power, c.TotalPower)
	}
	return power, nil
}

func matchAscending(members []Member, msgHash []byte, sigs [][]byte) uint64 {
	var power uint64
	idx := 0
	for _, sig := range sigs {
		if idx >= len(members) {
			break
		}
		signer, ok := recoverSigner(msgHash, sig)
		if !ok {
			continue
		}
		for idx < len(members) {
			m := members[idx]
			idx++
			if m.Signer.Equals(signer) {
				power += m.Power
				break
			}
		}
	}
	return power
}

func matchAny(members []Member, msgHash []byte, sigs [][]byte) uint64 {
	credited := make([]bool, len(members))
	var power uint64
	for _, sig := range sigs {
		signer, ok := recoverSigner(msgHash, sig)
		if !ok {
			continue
		}
		for i, m := range members {
			if !credited[i] && m.Signer.Equals(signer) {
				credited[i] = true
				power += m.Power
				break
			}
		}
	}
	return power
}

// reached returns true if power * den >= total * num.
func reached(power, total uint64, threshold custody.Fraction) bool {
	if threshold.Denominator == 0 {
		return false
	}
	lhs := new(uint256.Int).Mul(uint256.NewInt(power), uint256.NewInt(uint64(threshold.Denominator)))
	rhs := new(uint256.Int).Mul(uint256.NewInt(total), uint256.NewInt(uint64(threshold.Numerator)))
	return !lhs.Lt(rhs)
}

// recoverSigner returns the address of the key that signed msgHash. Only
// 65 byte r||s||v signatures with v in {0, 1, 27, 28} and a low s value
// are accepted.
func recoverSigner(msgHash, sig []byte) (custody.Address, bool) {
	if len(sig) != crypto.SignatureLength {
		return nil, false
	}
	v := sig[crypto.RecoveryIDOffset]
	if v >= 27 {
		v -= 27
	}
	r := new(uint256.Int).SetBytes(sig[:32]).ToBig()
	s := new(uint256.Int).SetBytes(sig[32:64]).ToBig()
	if !crypto.ValidateSignatureValues(v, r, s, true) {
		return nil, false
	}
	norm := make([]byte, crypto.SignatureLength)
	copy(norm, sig)
	norm[crypto.RecoveryIDOffset] = v
	pub, err := crypto.SigToPub(msgHash, norm)
	if err != nil {
		return nil, false
	}
	return custody.NewAddress(crypto.PubkeyToAddress(*pub)), true
}
