package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/store"
	"github.com/iov-one/custody/x/asset"
	"github.com/iov-one/custody/x/audit"
	"github.com/iov-one/custody/x/breaker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var usdc = custodytest.SequenceAddr(0xaa)

func withToken(t testing.TB, limit uint64, decimals uint32) custody.KVStore {
	t.Helper()
	db := store.MemStore()
	err := asset.Save(db, &asset.Token{
		Metadata:    custody.Metadata{Schema: 1},
		ID:          usdc,
		HourlyLimit: limit,
		Decimals:    decimals,
	})
	assert.Nil(t, err)
	return db
}

func ctxAt(height int64, now time.Time) custody.Context {
	ctx := custody.WithHeight(context.Background(), height)
	return custody.WithBlockTime(ctx, now)
}

func TestChargeWithinCap(t *testing.T) {
	db := withToken(t, 1000, 0)
	l := NewLimiter(0)
	ctx := custodytest.Ctx(1, nil)

	for i, amount := range []uint64{100, 400, 500} {
		ok, err := l.Charge(ctx, db, usdc, uint256.NewInt(amount))
		assert.Nil(t, err)
		if !ok {
			t.Fatalf("charge #%d refused", i)
		}
	}
	window, err := l.Window(ctx)
	assert.Nil(t, err)
	used, err := l.Usage(db, usdc, window)
	assert.Nil(t, err)
	assert.Amount(t, 1000, used)

	ok, err := breaker.IsSuspended(db)
	assert.Nil(t, err)
	assert.Equal(t, false, ok)
}

func TestChargeBreach(t *testing.T) {
	db := withToken(t, 1000, 0)
	reg := prometheus.NewRegistry()
	l := NewLimiter(0).WithMetrics(reg)
	ctx := custodytest.Ctx(1, nil)

	ok, err := l.Charge(ctx, db, usdc, uint256.NewInt(900))
	assert.Nil(t, err)
	assert.Equal(t, true, ok)

	ok, err = l.Charge(ctx, db, usdc, uint256.NewInt(101))
	assert.Nil(t, err)
	assert.Equal(t, false, ok)

	// usage is left untouched
	window, err := l.Window(ctx)
	assert.Nil(t, err)
	used, err := l.Usage(db, usdc, window)
	assert.Nil(t, err)
	assert.Amount(t, 900, used)

	suspended, err := breaker.IsSuspended(db)
	assert.Nil(t, err)
	assert.Equal(t, true, suspended)

	events, err := audit.List(db, 0, 0)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(events))
	assert.Equal(t, audit.WithdrawalBreached, events[0].Kind)
	for key, want := range map[string]string{"usage": "900", "amount": "101", "cap": "1000"} {
		got, _ := events[0].Get(key)
		assert.Equal(t, want, got)
	}

	assert.Equal(t, float64(1), testutil.ToFloat64(l.breaches.WithLabelValues(usdc.String())))
}

func TestChargeOverflowIsBreach(t *testing.T) {
	db := withToken(t, 1, 76)
	l := NewLimiter(0)
	ctx := custodytest.Ctx(1, nil)

	huge := new(uint256.Int).Lsh(uint256.NewInt(1), 255)
	ok, err := l.Charge(ctx, db, usdc, huge)
	assert.Nil(t, err)
	assert.Equal(t, false, ok)

	db = withToken(t, 1<<63, 77)
	ok, err = l.Charge(ctx, db, usdc, huge)
	assert.Nil(t, err)
	assert.Equal(t, true, ok)
	ok, err = l.Charge(ctx, db, usdc, huge)
	assert.Nil(t, err)
	assert.Equal(t, false, ok)
}

func TestWindowsAreIndependent(t *testing.T) {
	db := withToken(t, 10, 0)
	l := NewLimiter(0)
	start := time.Date(2019, time.April, 4, 11, 0, 0, 0, time.UTC)

	ok, err := l.Charge(ctxAt(1, start), db, usdc, uint256.NewInt(10))
	assert.Nil(t, err)
	assert.Equal(t, true, ok)

	// last second of the same window
	allowed, err := l.Allowed(ctxAt(2, start.Add(time.Hour-time.Second)), db, usdc, uint256.NewInt(1))
	assert.Nil(t, err)
	assert.Equal(t, false, allowed)

	ok, err = l.Charge(ctxAt(3, start.Add(time.Hour)), db, usdc, uint256.NewInt(10))
	assert.Nil(t, err)
	assert.Equal(t, true, ok)
}

func TestCustomWindow(t *testing.T) {
	db := withToken(t, 10, 0)
	l := NewLimiter(60)
	start := time.Date(2019, time.April, 4, 11, 0, 0, 0, time.UTC)

	ok, err := l.Charge(ctxAt(1, start), db, usdc, uint256.NewInt(10))
	assert.Nil(t, err)
	assert.Equal(t, true, ok)

	ok, err = l.Charge(ctxAt(2, start.Add(time.Minute)), db, usdc, uint256.NewInt(10))
	assert.Nil(t, err)
	assert.Equal(t, true, ok)
}

func TestAllowedDoesNotWrite(t *testing.T) {
	db := withToken(t, 10, 0)
	l := NewLimiter(0)
	ctx := custodytest.Ctx(1, nil)

	allowed, err := l.Allowed(ctx, db, usdc, uint256.NewInt(11))
	assert.Nil(t, err)
	assert.Equal(t, false, allowed)

	suspended, err := breaker.IsSuspended(db)
	assert.Nil(t, err)
	assert.Equal(t, false, suspended)

	allowed, err = l.Allowed(ctx, db, usdc, uint256.NewInt(10))
	assert.Nil(t, err)
	assert.Equal(t, true, allowed)
	window, _ := l.Window(ctx)
	used, err := l.Usage(db, usdc, window)
	assert.Nil(t, err)
	assert.Amount(t, 0, used)
}

func TestChargeUnsupportedAsset(t *testing.T) {
	l := NewLimiter(0)
	_, err := l.Charge(custodytest.Ctx(1, nil), store.MemStore(), usdc, uint256.NewInt(1))
	assert.IsErr(t, asset.ErrUnsupportedAsset, err)
}

func TestWithWindowSharesMetrics(t *testing.T) {
	db := withToken(t, 1, 0)
	reg := prometheus.NewRegistry()
	l := NewLimiter(0).WithMetrics(reg)
	short := l.WithWindow(60)

	ok, err := short.Charge(custodytest.Ctx(1, nil), db, usdc, uint256.NewInt(2))
	assert.Nil(t, err)
	assert.Equal(t, false, ok)
	assert.Equal(t, float64(1), testutil.ToFloat64(l.breaches.WithLabelValues(usdc.String())))
}
