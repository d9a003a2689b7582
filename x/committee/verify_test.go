package committee

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
)

func TestVerify(t *testing.T) {
	keys := custodytest.SortedKeys("alice", "bob", "carol")
	a, b, c := keys[0], keys[1], keys[2]
	members := []Member{
		{Signer: a.Address(), Power: 1},
		{Signer: b.Address(), Power: 1},
		{Signer: c.Address(), Power: 1},
	}
	digest := crypto.Keccak256([]byte("withdraw 100"))
	other := crypto.Keccak256([]byte("withdraw 101"))
	stranger := custodytest.NewKey("mallory")

	cases := map[string]struct {
		members   []Member
		sigs      [][]byte
		opts      VerifyOptions
		wantPower uint64
		wantErr   *errors.Error
	}{
		"all members in ascending order": {
			sigs:      [][]byte{a.Sign(digest), b.Sign(digest), c.Sign(digest)},
			wantPower: 3,
		},
		"missing member": {
			sigs:      [][]byte{a.Sign(digest), b.Sign(digest)},
			wantPower: 2,
			wantErr:   ErrInsufficientPower,
		},
		"repeated signature is credited once": {
			sigs:      [][]byte{a.Sign(digest), a.Sign(digest), a.Sign(digest)},
			wantPower: 1,
			wantErr:   ErrInsufficientPower,
		},
		// a is behind the cursor, scanning for it exhausts the list
		// before c is reached.
		"out of order signature is dropped": {
			sigs:      [][]byte{b.Sign(digest), a.Sign(digest), c.Sign(digest)},
			wantPower: 1,
			wantErr:   ErrInsufficientPower,
		},
		"non member signature exhausts the cursor": {
			sigs:      [][]byte{stranger.Sign(digest), a.Sign(digest), b.Sign(digest), c.Sign(digest)},
			wantPower: 0,
			wantErr:   ErrInsufficientPower,
		},
		"any order credits every member once": {
			sigs:      [][]byte{c.Sign(digest), a.Sign(digest), a.Sign(digest), b.Sign(digest)},
			opts:      VerifyOptions{Threshold: custody.Fraction{Numerator: 1, Denominator: 1}, Order: Any},
			wantPower: 3,
		},
		"any order ignores non members": {
			sigs:      [][]byte{stranger.Sign(digest), c.Sign(digest), b.Sign(digest)},
			opts:      VerifyOptions{Threshold: custody.Fraction{Numerator: 1, Denominator: 1}, Order: Any},
			wantPower: 2,
			wantErr:   ErrInsufficientPower,
		},
		"malformed signatures are skipped": {
			sigs:      [][]byte{nil, []byte("short"), a.Sign(digest), make([]byte, 65), b.Sign(digest), c.Sign(digest)},
			wantPower: 3,
		},
		"signature of another digest is not credited": {
			sigs:      [][]byte{a.Sign(digest), b.Sign(digest), c.Sign(other)},
			wantPower: 2,
			wantErr:   ErrInsufficientPower,
		},
		"raw recovery id is accepted": {
			sigs:      [][]byte{rawV(a.Sign(digest)), rawV(b.Sign(digest)), rawV(c.Sign(digest))},
			wantPower: 3,
		},
		"high s signature is rejected": {
			sigs:      [][]byte{a.Sign(digest), b.Sign(digest), highS(c.Sign(digest))},
			wantPower: 2,
			wantErr:   ErrInsufficientPower,
		},
		"fractional threshold": {
			sigs:      [][]byte{a.Sign(digest), b.Sign(digest)},
			opts:      VerifyOptions{Threshold: custody.Fraction{Numerator: 2, Denominator: 3}},
			wantPower: 2,
		},
		"unknown committee": {
			members: members[:2],
			sigs:    [][]byte{a.Sign(digest), b.Sign(digest)},
			wantErr: ErrUnknownCommittee,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			_, err := Register(custodytest.Ctx(1, nil), db, members)
			assert.Nil(t, err)

			opts := tc.opts
			if opts.Threshold.Denominator == 0 {
				opts.Threshold = DefaultVerifyOptions().Threshold
			}
			set := members
			if tc.members != nil {
				set = tc.members
			}
			power, err := Verify(db, set, digest, tc.sigs, opts)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			assert.Equal(t, tc.wantPower, power)
		})
	}
}

func TestVerifyRejectsUnknownOrder(t *testing.T) {
	keys := custodytest.SortedKeys("alice")
	members := []Member{{Signer: keys[0].Address(), Power: 1}}
	db := store.MemStore()
	_, err := Register(custodytest.Ctx(1, nil), db, members)
	assert.Nil(t, err)

	_, err = Verify(db, members, []byte("digest"), nil, VerifyOptions{Order: "random"})
	assert.IsErr(t, errors.ErrInput, err)
}

func TestReached(t *testing.T) {
	cases := map[string]struct {
		power, total uint64
		threshold    custody.Fraction
		want         bool
	}{
		"full power":          {power: 3, total: 3, threshold: custody.Fraction{Numerator: 3, Denominator: 3}, want: true},
		"one short":           {power: 2, total: 3, threshold: custody.Fraction{Numerator: 3, Denominator: 3}},
		"two thirds":          {power: 2, total: 3, threshold: custody.Fraction{Numerator: 2, Denominator: 3}, want: true},
		"just below majority": {power: 5, total: 11, threshold: custody.Fraction{Numerator: 1, Denominator: 2}},
		"no denominator":      {power: 3, total: 3},
		"huge values":         {power: 1<<64 - 1, total: 1<<64 - 1, threshold: custody.Fraction{Numerator: 1<<32 - 1, Denominator: 1<<32 - 1}, want: true},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.Equal(t, tc.want, reached(tc.power, tc.total, tc.threshold))
		})
	}
}

// rawV returns a copy of sig with the recovery id in {0, 1}.
func rawV(sig []byte) []byte {
	res := append([]byte(nil), sig...)
	res[crypto.RecoveryIDOffset] -= 27
	return res
}

// highS returns the malleable twin of sig, still recovering the same key.
func highS(sig []byte) []byte {
	n, _ := uint256.FromBig(crypto.S256().Params().N)
	s := new(uint256.Int).SetBytes(sig[32:64])
	s.Sub(n, s)
	res := append([]byte(nil), sig...)
	b := s.Bytes32()
	copy(res[32:64], b[:])
	res[crypto.RecoveryIDOffset] = 55 - res[crypto.RecoveryIDOffset]
	return res
}
