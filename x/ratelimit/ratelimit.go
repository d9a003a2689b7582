/*
Package ratelimit caps the amount of every asset that can be withdrawn
within a time window. The cap of an asset is its hourly limit scaled by its
decimals. A withdrawal that would exceed the cap is refused and trips the
circuit breaker, suspending all further withdrawals.
*/
package ratelimit

import (
	"encoding/binary"

	"github.com/holiman/uint256"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
	"github.com/iov-one/custody/x/asset"
	"github.com/iov-one/custody/x/audit"
	"github.com/iov-one/custody/x/breaker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultWindowSeconds is the length of a rate limit window.
const DefaultWindowSeconds = 3600

var bucket = orm.NewModelBucket("usage")

// Usage is the cumulative amount of an asset withdrawn within a window.
type Usage struct {
	Metadata custody.Metadata `json:"metadata"`
	// Amount is a big endian encoded 256 bit unsigned integer.
	Amount []byte `json:"amount"`
}

// Validate ensures the usage can be decoded.
func (u *Usage) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", u.Metadata.Validate())
	if len(u.Amount) > 32 {
		errs = errors.AppendField(errs, "Amount", errors.ErrOverflow)
	}
	return errs
}

func usageKey(asset custody.Address, window int64) []byte {
	key := make([]byte, len(asset)+8)
	copy(key, asset)
	binary.BigEndian.PutUint64(key[len(asset):], uint64(window))
	return key
}

// Limiter tracks per window usage of every asset.
type Limiter struct {
	windowSeconds int64
	breaches      *prometheus.CounterVec
}

// NewLimiter returns a limiter using windows of given length. A non
// positive length means DefaultWindowSeconds.
func NewLimiter(windowSeconds int64) *Limiter {
	if windowSeconds <= 0 {
		windowSeconds = DefaultWindowSeconds
	}
	return &Limiter{windowSeconds: windowSeconds}
}

// WithMetrics registers the breach counter on given registerer.
func (l *Limiter) WithMetrics(reg prometheus.Registerer) *Limiter {
	l.breaches = promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
		Name: "custody_rate_limit_breaches_total",
		Help: "Number of withdrawals refused because they would exceed the asset cap.",
	}, []string{"asset"})
	return l
}

// WithWindow returns a limiter using windows of given length that shares
// the metrics of this one. A non positive length means
// DefaultWindowSeconds.
func (l *Limiter) WithWindow(windowSeconds int64) *Limiter {
	cpy := *l
	if windowSeconds <= 0 {
		windowSeconds = DefaultWindowSeconds
	}
	cpy.windowSeconds = windowSeconds
	return &cpy
}

// Window returns the index of the window the operation in progress falls
// into.
func (l *Limiter) Window(ctx custody.Context) (int64, error) {
	now, err := custody.BlockTime(ctx)
	if err != nil {
		return 0, err
	}
	return now.Unix() / l.windowSeconds, nil
}

// Usage returns the amount of asset withdrawn within given window.
func (l *Limiter) Usage(db custody.ReadOnlyKVStore, id custody.Address, window int64) (*uint256.Int, error) {
	var u Usage
	switch err := bucket.One(db, usageKey(id, window), &u); {
	case err == nil:
		return new(uint256.Int).SetBytes(u.Amount), nil
	case errors.ErrNotFound.Is(err):
		return new(uint256.Int), nil
	default:
		return nil, err
	}
}

type quote struct {
	window int64
	used   *uint256.Int
	cap    *uint256.Int
	total  *uint256.Int
	ok     bool
}

func (l *Limiter) quote(ctx custody.Context, db custody.ReadOnlyKVStore, id custody.Address, amount *uint256.Int) (*quote, error) {
	window, err := l.Window(ctx)
	if err != nil {
		return nil, err
	}
	token, err := asset.Get(db, id)
	if err != nil {
		return nil, err
	}
	used, err := l.Usage(db, id, window)
	if err != nil {
		return nil, err
	}
	q := quote{window: window, used: used, cap: token.Cap()}
	total, overflow := new(uint256.Int).AddOverflow(used, amount)
	q.total = total
	q.ok = !overflow && !total.Gt(q.cap)
	return &q, nil
}

// Allowed returns true if amount of asset can be withdrawn within the
// current window. It never writes.
func (l *Limiter) Allowed(ctx custody.Context, db custody.ReadOnlyKVStore, id custody.Address, amount *uint256.Int) (bool, error) {
	q, err := l.quote(ctx, db, id, amount)
	if err != nil {
		return false, err
	}
	return q.ok, nil
}

// Charge adds amount to the usage of the current window and returns true.
// If the cap would be exceeded, usage is left untouched, withdrawals are
// suspended and false is returned. An error is returned only if the state
// cannot be read or written.
func (l *Limiter) Charge(ctx custody.Context, db custody.KVStore, id custody.Address, amount *uint256.Int) (bool, error) {
	q, err := l.quote(ctx, db, id, amount)
	if err != nil {
		return false, err
	}
	if !q.ok {
		if err := breaker.Suspend(ctx, db); err != nil {
			return false, err
		}
		err := audit.Emit(ctx, db, audit.WithdrawalBreached,
			audit.Attr("asset", id),
			audit.Attr("window", q.window),
			audit.Attr("usage", q.used.Dec()),
			audit.Attr("amount", amount.Dec()),
			audit.Attr("cap", q.cap.Dec()))
		if err != nil {
			return false, err
		}
		if l.breaches != nil {
			l.breaches.WithLabelValues(id.String()).Inc()
		}
		custody.GetLogger(ctx).Error("withdrawal breached rate limit",
			"asset", id, "window", q.window, "usage", q.used.Dec(), "amount", amount.Dec(), "cap", q.cap.Dec())
		return false, nil
	}
	u := Usage{
		Metadata: custody.Metadata{Schema: 1},
		Amount:   q.total.Bytes(),
	}
	if err := bucket.Put(db, usageKey(id, q.window), &u); err != nil {
		return false, err
	}
	return true, nil
}
