package x

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
)

type denyAll struct{}

func (denyAll) Authorize(custody.Context, custody.Address, Capability) error {
	return errors.Wrap(errors.ErrUnauthorized, "denied")
}

func TestAuthorizeCaller(t *testing.T) {
	caller := custody.ZeroAddress()
	caller[0] = 1

	cases := map[string]struct {
		ctx     custody.Context
		auth    Authorizer
		wantErr *errors.Error
	}{
		"caller is authorized": {
			ctx:  custody.WithCaller(context.Background(), caller),
			auth: AllowAll{},
		},
		"caller is not authorized": {
			ctx:     custody.WithCaller(context.Background(), caller),
			auth:    denyAll{},
			wantErr: errors.ErrUnauthorized,
		},
		"no caller": {
			ctx:     context.Background(),
			auth:    AllowAll{},
			wantErr: errors.ErrUnauthorized,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := AuthorizeCaller(tc.ctx, tc.auth, Admin)
			assert.IsErr(t, tc.wantErr, err)
			if tc.wantErr == nil {
				assert.Equal(t, caller, got)
			}
		})
	}
}

func TestCapabilityJSON(t *testing.T) {
	var caps []Capability
	assert.Nil(t, json.Unmarshal([]byte(`["admin", "operator"]`), &caps))
	assert.Equal(t, []Capability{Admin, Operator}, caps)

	var c Capability
	assert.IsErr(t, errors.ErrInput, json.Unmarshal([]byte(`"root"`), &c))
}
