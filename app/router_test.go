package app

import (
	"context"
	"testing"

	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter(t *testing.T) {
	r := NewRouter()

	counter := &custodytest.Handler{}
	r.Handle("good/path", counter)
	r.Handle("bad", &custodytest.Handler{DeliverErr: errors.ErrState})

	// make sure invalid registrations panic
	assert.Panics(t, func() { r.Handle("good/path", counter) })
	assert.Panics(t, func() { r.Handle("l:7", counter) })
	assert.Panics(t, func() { r.Handle("", counter) })

	ctx := context.Background()
	tx := func(path string) *custodytest.Tx {
		return &custodytest.Tx{Msg: &custodytest.Msg{RoutePath: path}}
	}

	_, err := r.Check(ctx, nil, tx("good/path"))
	require.NoError(t, err)
	_, err = r.Deliver(ctx, nil, tx("good/path"))
	require.NoError(t, err)
	assert.Equal(t, 2, counter.CallCount())

	_, err = r.Deliver(ctx, nil, tx("bad"))
	assert.True(t, errors.ErrState.Is(err))

	_, err = r.Deliver(ctx, nil, tx("missing"))
	assert.True(t, errors.ErrNotFound.Is(err))
	_, err = r.Check(ctx, nil, tx("missing"))
	assert.True(t, errors.ErrNotFound.Is(err))
	assert.Equal(t, 2, counter.CallCount())

	_, err = r.Deliver(ctx, nil, &custodytest.Tx{Err: errors.ErrType})
	assert.True(t, errors.ErrType.Is(err))
}
