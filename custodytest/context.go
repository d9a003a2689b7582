package custodytest

import (
	"context"
	"time"

	"github.com/iov-one/custody"
)

// Now is the block time used by Ctx. It is a fixed moment so that window
// computations in tests are deterministic.
var Now = time.Date(2019, time.April, 4, 11, 35, 40, 0, time.UTC)

// Ctx returns a context prepared for executing an operation at given
// height, by given caller, at Now.
func Ctx(height int64, caller custody.Address) custody.Context {
	ctx := context.Background()
	ctx = custody.WithHeight(ctx, height)
	ctx = custody.WithBlockTime(ctx, Now)
	if caller != nil {
		ctx = custody.WithCaller(ctx, caller)
	}
	return ctx
}

// SequenceAddr returns an address deterministically derived from given
// number.
func SequenceAddr(n uint64) custody.Address {
	a := custody.ZeroAddress()
	for i := 0; i < 8; i++ {
		a[len(a)-1-i] = byte(n >> (8 * uint(i)))
	}
	return a
}
