package gconf

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
)

type testConf struct {
	Metadata custody.Metadata `json:"metadata"`
	Owner    custody.Address  `json:"owner"`
	Window   int64            `json:"window"`
}

func (c *testConf) Validate() error {
	if err := c.Metadata.Validate(); err != nil {
		return err
	}
	if c.Window <= 0 {
		return errors.Wrap(errors.ErrInput, "window")
	}
	return c.Owner.Validate()
}

func TestSaveLoad(t *testing.T) {
	owner := custody.ZeroAddress()
	owner[3] = 7

	cases := map[string]struct {
		Conf        *testConf
		WantSaveErr *errors.Error
	}{
		"valid configuration": {
			Conf: &testConf{Metadata: custody.Metadata{Schema: 1}, Owner: owner, Window: 3600},
		},
		"invalid address cannot be saved": {
			Conf:        &testConf{Metadata: custody.Metadata{Schema: 1}, Owner: custody.Address("short"), Window: 1},
			WantSaveErr: errors.ErrInput,
		},
		"missing metadata cannot be saved": {
			Conf:        &testConf{Owner: owner, Window: 1},
			WantSaveErr: errors.ErrMetadata,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			if err := Save(db, "test", tc.Conf); !tc.WantSaveErr.Is(err) {
				t.Fatalf("unexpected save error: %s", err)
			}
			if tc.WantSaveErr != nil {
				return
			}
			var got testConf
			assert.Nil(t, Load(db, "test", &got))
			assert.Equal(t, *tc.Conf, got)
		})
	}
}

func TestLoadMissing(t *testing.T) {
	db := store.MemStore()
	var got testConf
	assert.IsErr(t, errors.ErrNotFound, Load(db, "nothing", &got))
}

func TestInitConfig(t *testing.T) {
	const genesis = `{
		"conf": {
			"test": {
				"metadata": {"schema": 1},
				"owner": "0x0000000700000000000000000000000000000000",
				"window": 60
			}
		}
	}`
	var opts custody.Options
	assert.Nil(t, json.Unmarshal([]byte(genesis), &opts))

	db := store.MemStore()
	assert.Nil(t, InitConfig(db, opts, "test", &testConf{}))

	var got testConf
	assert.Nil(t, Load(db, "test", &got))
	assert.Equal(t, int64(60), got.Window)

	assert.IsErr(t, errors.ErrNotFound, InitConfig(db, opts, "other", &testConf{}))
}
