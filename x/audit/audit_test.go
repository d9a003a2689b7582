package audit

import (
	"testing"

	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
	"github.com/iov-one/custody/store"
)

func TestEmitAndList(t *testing.T) {
	db := store.MemStore()

	assert.Nil(t, Emit(custodytest.Ctx(1, nil), db, AssetAdded, Attr("asset", "0x01")))
	assert.Nil(t, Emit(custodytest.Ctx(2, nil), db, AllowlistChanged, Attr("state", true)))
	assert.Nil(t, Emit(custodytest.Ctx(2, nil), db, Deposited, Attr("amount", 15)))

	cases := map[string]struct {
		after     int64
		limit     int
		wantKinds []string
	}{
		"all events": {
			wantKinds: []string{AssetAdded, AllowlistChanged, Deposited},
		},
		"after the first": {
			after:     1,
			wantKinds: []string{AllowlistChanged, Deposited},
		},
		"limited": {
			limit:     2,
			wantKinds: []string{AssetAdded, AllowlistChanged},
		},
		"after the last": {
			after:     3,
			wantKinds: nil,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := List(db, tc.after, tc.limit)
			assert.Nil(t, err)
			var kinds []string
			for _, e := range got {
				kinds = append(kinds, e.Kind)
			}
			assert.Equal(t, tc.wantKinds, kinds)
		})
	}

	all, err := List(db, 0, 0)
	assert.Nil(t, err)
	assert.Equal(t, int64(2), all[1].Height)
	assert.Equal(t, int64(2), all[1].ID)
	state, ok := all[1].Get("state")
	assert.Equal(t, true, ok)
	assert.Equal(t, "true", state)
	assert.Equal(t, custodytest.Now.Unix(), all[0].Time.Time().Unix())
}

func TestListSeeksPastEarlierEvents(t *testing.T) {
	db := store.MemStore()
	for h := int64(1); h <= 5; h++ {
		assert.Nil(t, Emit(custodytest.Ctx(h, nil), db, Deposited, Attr("amount", h)))
	}
	// An entry of an unrelated bucket stored right after the log must not be
	// picked up.
	assert.Nil(t, orm.NewBucket("auditz").Save(db, []byte("x"), []byte("junk")))

	cases := map[string]struct {
		after   int64
		limit   int
		wantIDs []int64
	}{
		"page in the middle":          {after: 2, limit: 2, wantIDs: []int64{3, 4}},
		"page reaching the end":       {after: 3, limit: 5, wantIDs: []int64{4, 5}},
		"negative cursor starts over": {after: -7, limit: 1, wantIDs: []int64{1}},
		"cursor past the end":         {after: 9, wantIDs: nil},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := List(db, tc.after, tc.limit)
			assert.Nil(t, err)
			var ids []int64
			for _, e := range got {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tc.wantIDs, ids)
		})
	}
}

func TestEmitRollsBackWithStagedWrites(t *testing.T) {
	db := store.MemStore()
	assert.Nil(t, Emit(custodytest.Ctx(1, nil), db, Paused))

	cache := db.CacheWrap()
	assert.Nil(t, Emit(custodytest.Ctx(2, nil), cache, Unpaused))
	cache.Discard()

	got, err := List(db, 0, 0)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(got))

	// sequence was rolled back as well
	assert.Nil(t, Emit(custodytest.Ctx(3, nil), db, Resumed))
	got, err = List(db, 0, 0)
	assert.Nil(t, err)
	assert.Equal(t, int64(2), got[1].ID)
}

func TestEmitRejectsEmptyKind(t *testing.T) {
	db := store.MemStore()
	err := Emit(custodytest.Ctx(1, nil), db, "")
	assert.FieldError(t, err, "Kind", errors.ErrEmpty)
}
