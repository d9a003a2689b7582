package asset

import (
	"encoding/json"
	"testing"

	"github.com/holiman/uint256"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
	"github.com/iov-one/custody/x"
	"github.com/iov-one/custody/x/audit"
)

type routes map[string]custody.Handler

func (r routes) Handle(path string, h custody.Handler) { r[path] = h }

type onlyBusiness struct {
	account custody.Address
}

func (o onlyBusiness) Authorize(ctx custody.Context, caller custody.Address, c x.Capability) error {
	if c == x.Business && caller.Equals(o.account) {
		return nil
	}
	return errors.ErrUnauthorized
}

func TestTokenCap(t *testing.T) {
	cases := map[string]struct {
		token Token
		want  *uint256.Int
	}{
		"no decimals": {
			token: Token{HourlyLimit: 500},
			want:  uint256.NewInt(500),
		},
		"eighteen decimals": {
			token: Token{HourlyLimit: 100, Decimals: 18},
			want:  new(uint256.Int).Mul(uint256.NewInt(100), uint256.NewInt(1e18)),
		},
		"scale overflows": {
			token: Token{HourlyLimit: 1, Decimals: 78},
			want:  new(uint256.Int).SetAllOne(),
		},
		"product overflows": {
			token: Token{HourlyLimit: 1 << 63, Decimals: 77},
			want:  new(uint256.Int).SetAllOne(),
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got := tc.token.Cap()
			if !got.Eq(tc.want) {
				t.Fatalf("want %s, got %s", tc.want, got)
			}
		})
	}
}

func TestTokenValidate(t *testing.T) {
	cases := map[string]struct {
		token   Token
		wantErr map[string]*errors.Error
	}{
		"valid": {
			token: Token{Metadata: custody.Metadata{Schema: 1}, ID: custodytest.SequenceAddr(1), HourlyLimit: 1, Decimals: 6},
			wantErr: map[string]*errors.Error{
				"Metadata":    nil,
				"ID":          nil,
				"HourlyLimit": nil,
				"Decimals":    nil,
			},
		},
		"native asset sentinel is a valid id": {
			token: Token{Metadata: custody.Metadata{Schema: 1}, ID: custody.ZeroAddress(), HourlyLimit: 1, Decimals: 18},
			wantErr: map[string]*errors.Error{
				"ID": nil,
			},
		},
		"everything wrong": {
			token: Token{ID: []byte{1, 2}, Decimals: MaxDecimals + 1},
			wantErr: map[string]*errors.Error{
				"Metadata":    errors.ErrMetadata,
				"ID":          errors.ErrInput,
				"HourlyLimit": errors.ErrInput,
				"Decimals":    errors.ErrInput,
			},
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.token.Validate()
			for field, want := range tc.wantErr {
				assert.FieldError(t, err, field, want)
			}
		})
	}
}

func TestAddMsgValidate(t *testing.T) {
	cases := map[string]struct {
		msg     AddMsg
		field   string
		wantErr *errors.Error
	}{
		"positive limit": {
			msg:   AddMsg{Asset: custodytest.SequenceAddr(1), HourlyLimit: 1},
			field: "HourlyLimit",
		},
		"zero limit": {
			msg:     AddMsg{Asset: custodytest.SequenceAddr(1)},
			field:   "HourlyLimit",
			wantErr: errors.ErrInput,
		},
		"too many decimals": {
			msg:     AddMsg{Asset: custodytest.SequenceAddr(1), HourlyLimit: 1, Decimals: MaxDecimals + 1},
			field:   "Decimals",
			wantErr: errors.ErrInput,
		},
		"malformed asset": {
			msg:     AddMsg{Asset: []byte{1}, HourlyLimit: 1},
			field:   "ID",
			wantErr: errors.ErrInput,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.msg.Validate()
			assert.FieldError(t, err, tc.field, tc.wantErr)
			if tc.wantErr == nil {
				assert.Nil(t, err)
			}
		})
	}
}

func TestAssetHandlers(t *testing.T) {
	business := custodytest.SequenceAddr(7)
	stranger := custodytest.SequenceAddr(8)
	usdc := custodytest.SequenceAddr(100)

	r := routes{}
	RegisterRoutes(r, onlyBusiness{account: business})
	db := store.MemStore()

	deliver := func(height int64, caller custody.Address, msg custody.Msg) error {
		_, err := r[msg.Path()].Deliver(custodytest.Ctx(height, caller), db, &custodytest.Tx{Msg: msg})
		return err
	}

	ok, err := IsSupported(db, usdc)
	assert.Nil(t, err)
	assert.Equal(t, false, ok)
	_, err = Get(db, usdc)
	assert.IsErr(t, ErrUnsupportedAsset, err)

	add := AddMsg{Asset: usdc, HourlyLimit: 1000, Decimals: 6}
	assert.IsErr(t, errors.ErrUnauthorized, deliver(1, stranger, add))
	assert.Nil(t, deliver(2, business, add))

	token, err := Get(db, usdc)
	assert.Nil(t, err)
	assert.Equal(t, uint64(1000), token.HourlyLimit)
	assert.Equal(t, uint32(6), token.Decimals)

	// adding again updates the descriptor
	assert.Nil(t, deliver(3, business, AddMsg{Asset: usdc, HourlyLimit: 5, Decimals: 6}))
	token, err = Get(db, usdc)
	assert.Nil(t, err)
	assert.Equal(t, uint64(5), token.HourlyLimit)

	assert.IsErr(t, errors.ErrInput, deliver(4, business, AddMsg{Asset: usdc}))

	assert.IsErr(t, errors.ErrUnauthorized, deliver(5, stranger, RemoveMsg{Asset: usdc}))
	assert.Nil(t, deliver(6, business, RemoveMsg{Asset: usdc}))
	assert.IsErr(t, ErrUnsupportedAsset, deliver(7, business, RemoveMsg{Asset: usdc}))

	ok, err = IsSupported(db, usdc)
	assert.Nil(t, err)
	assert.Equal(t, false, ok)

	events, err := audit.List(db, 0, 0)
	assert.Nil(t, err)
	var kinds []string
	for _, e := range events {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []string{audit.AssetAdded, audit.AssetAdded, audit.AssetRemoved}, kinds)
	limit, _ := events[0].Get("hourly_limit")
	assert.Equal(t, "1000", limit)
}

func TestRemoveCheckRequiresAsset(t *testing.T) {
	business := custodytest.SequenceAddr(7)
	r := routes{}
	RegisterRoutes(r, onlyBusiness{account: business})

	db := store.MemStore()
	tx := &custodytest.Tx{Msg: RemoveMsg{Asset: custodytest.SequenceAddr(1)}}
	_, err := r[pathRemove].Check(custodytest.Ctx(1, business), db, tx)
	assert.IsErr(t, ErrUnsupportedAsset, err)
}

func TestGenesis(t *testing.T) {
	const genesis = `{
		"assets": [
			{"id": "0x0000000000000000000000000000000000000000", "hourly_limit": 100, "decimals": 18},
			{"id": "0x00000000000000000000000000000000000000aa", "hourly_limit": 10000, "decimals": 6}
		]
	}`
	var opts custody.Options
	assert.Nil(t, json.Unmarshal([]byte(genesis), &opts))

	db := store.MemStore()
	var ini Initializer
	assert.Nil(t, ini.FromGenesis(opts, db))

	native, err := Get(db, custody.ZeroAddress())
	assert.Nil(t, err)
	assert.Equal(t, uint32(18), native.Decimals)

	token, err := Get(db, custodytest.SequenceAddr(0xaa))
	assert.Nil(t, err)
	assert.Equal(t, uint64(10000), token.HourlyLimit)
}

func TestGenesisRejectsInvalidAsset(t *testing.T) {
	opts := custody.Options{
		"assets": json.RawMessage(`[{"id": "0x00000000000000000000000000000000000000aa", "hourly_limit": 0}]`),
	}
	var ini Initializer
	err := ini.FromGenesis(opts, store.MemStore())
	assert.IsErr(t, errors.ErrInput, err)
}
