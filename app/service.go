package app

import (
	"context"
	"sync"
	"time"

	"github.com/holiman/uint256"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x"
	"github.com/iov-one/custody/x/asset"
	"github.com/iov-one/custody/x/audit"
	"github.com/iov-one/custody/x/breaker"
	"github.com/iov-one/custody/x/cash"
	"github.com/iov-one/custody/x/committee"
	"github.com/iov-one/custody/x/ratelimit"
	"github.com/iov-one/custody/x/roles"
	"github.com/iov-one/custody/x/utils"
	"github.com/iov-one/custody/x/vault"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tendermint/tendermint/libs/log"
)

// Service is the custody ledger. All operations are serialized, each one is
// executed atomically: either all of its changes are persisted or none.
type Service struct {
	mu      sync.Mutex
	db      custody.CommitKVStore
	handler custody.Handler
	ctrl    cash.Controller
	limiter *ratelimit.Limiter

	clock  func() time.Time
	logger log.Logger
	reg    prometheus.Registerer
}

// Option customizes a Service.
type Option func(*Service)

// WithClock sets the source of the operation time. Defaults to the wall
// clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.clock = now }
}

// WithLogger sets the logger passed to all handlers.
func WithLogger(logger log.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithRegisterer enables metrics, registering all collectors on given
// registerer.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(s *Service) { s.reg = reg }
}

// NewService returns a service operating on an initialized store. Callers
// are authorized by auth.
func NewService(db custody.CommitKVStore, auth x.Authorizer, opts ...Option) (*Service, error) {
	s := &Service{
		db:     db,
		clock:  time.Now,
		logger: log.NewNopLogger(),
	}
	for _, fn := range opts {
		fn(s)
	}

	conf, err := vault.LoadConfig(db)
	if err != nil {
		return nil, errors.Wrap(err, "store is not initialized")
	}

	limiter := ratelimit.NewLimiter(conf.WindowSeconds)
	var metrics *utils.Metrics
	if s.reg != nil {
		limiter = limiter.WithMetrics(s.reg)
		metrics = utils.NewMetrics(s.reg)
	}
	ctrl := cash.NewController(conf.NativeAsset)
	s.ctrl = ctrl
	s.limiter = limiter

	r := NewRouter()
	committee.RegisterRoutes(r, auth)
	asset.RegisterRoutes(r, auth)
	breaker.RegisterRoutes(r, auth)
	vault.RegisterRoutes(r, auth, ctrl, limiter)

	s.handler = ChainDecorators(
		utils.NewRecovery(),
		utils.NewLogging(),
		metrics,
		cash.NewPaymentDecorator(ctrl, conf.NativeAsset, conf.Instance),
	).WithHandler(r)
	return s, nil
}

// Open returns a service for given store. A fresh store is initialized
// from the genesis document first. The access control table is always read
// from the genesis document.
func Open(db custody.CommitKVStore, genesis []byte, opts ...Option) (*Service, error) {
	h, err := height.Latest(db)
	if err != nil {
		return nil, errors.Wrap(err, "height")
	}
	var gen custody.Options
	if h == 0 {
		gen, err = LoadGenesis(db, genesis)
	} else {
		gen, err = ParseGenesis(genesis)
	}
	if err != nil {
		return nil, err
	}
	auth, err := roles.FromGenesis(gen)
	if err != nil {
		return nil, errors.Wrap(err, "roles")
	}
	return NewService(db, auth, opts...)
}

// Close releases the underlying store.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func (s *Service) context(h int64, caller custody.Address) custody.Context {
	ctx := custody.WithHeight(context.Background(), h)
	ctx = custody.WithBlockTime(ctx, s.clock())
	ctx = custody.WithLogger(ctx, s.logger.With("height", h))
	if caller != nil {
		ctx = custody.WithCaller(ctx, caller)
	}
	return ctx
}

// Deliver executes given message on behalf of caller at the next height.
func (s *Service) Deliver(caller custody.Address, msg custody.Msg, value *uint256.Int) (*custody.DeliverResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cache := s.db.CacheWrap()
	h, err := height.NextInt(cache)
	if err != nil {
		cache.Discard()
		return nil, errors.Wrap(err, "height")
	}
	res, err := s.handler.Deliver(s.context(h, caller), cache, &Tx{Msg: msg, Value: value})
	if err != nil {
		cache.Discard()
		return nil, err
	}
	if err := cache.Write(); err != nil {
		cache.Discard()
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return res, nil
}

// Simulate runs all checks of given message as if it was executed at the
// next height. Nothing is persisted.
func (s *Service) Simulate(caller custody.Address, msg custody.Msg, value *uint256.Int) (*custody.CheckResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cache := s.db.CacheWrap()
	defer cache.Discard()
	h, err := height.NextInt(cache)
	if err != nil {
		return nil, errors.Wrap(err, "height")
	}
	return s.handler.Check(s.context(h, caller), cache, &Tx{Msg: msg, Value: value})
}

// RegisterCommittee registers a committee and returns its hash.
func (s *Service) RegisterCommittee(caller custody.Address, members []committee.Member) ([]byte, error) {
	res, err := s.Deliver(caller, committee.RegisterMsg{Members: members}, nil)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// RevokeCommittee revokes a registered committee.
func (s *Service) RevokeCommittee(caller custody.Address, members []committee.Member) error {
	_, err := s.Deliver(caller, committee.RevokeMsg{Members: members}, nil)
	return err
}

// SetAllowlist sets the allowlist membership of an account.
func (s *Service) SetAllowlist(caller, account custody.Address, state bool) error {
	_, err := s.Deliver(caller, vault.SetAllowlistMsg{Account: account, State: state}, nil)
	return err
}

// AddAsset adds or updates a supported asset.
func (s *Service) AddAsset(caller, id custody.Address, hourlyLimit uint64, decimals uint32) error {
	_, err := s.Deliver(caller, asset.AddMsg{Asset: id, HourlyLimit: hourlyLimit, Decimals: decimals}, nil)
	return err
}

// RemoveAsset removes a supported asset.
func (s *Service) RemoveAsset(caller, id custody.Address) error {
	_, err := s.Deliver(caller, asset.RemoveMsg{Asset: id}, nil)
	return err
}

// Deposit moves funds of the caller into the vault and returns the amount
// the vault received. Native deposits carry their amount as value.
func (s *Service) Deposit(caller custody.Address, msg vault.DepositMsg, value *uint256.Int) (*uint256.Int, error) {
	res, err := s.Deliver(caller, msg, value)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes(res.Data), nil
}

// Withdraw executes a rate limited withdrawal. A withdrawal that would
// breach the rate limit is not an error, the returned receipt tells if the
// funds were released.
func (s *Service) Withdraw(caller custody.Address, msg vault.WithdrawMsg) (*vault.Receipt, error) {
	res, err := s.Deliver(caller, msg, nil)
	if err != nil {
		return nil, err
	}
	return vault.DecodeReceipt(res.Data)
}

// WithdrawAllowlisted executes a withdrawal to an allowlisted receiver.
func (s *Service) WithdrawAllowlisted(caller custody.Address, msg vault.WithdrawAllowlistedMsg) (*vault.Receipt, error) {
	res, err := s.Deliver(caller, msg, nil)
	if err != nil {
		return nil, err
	}
	return vault.DecodeReceipt(res.Data)
}

// Pause stops all withdrawals until Unpause is called.
func (s *Service) Pause(caller custody.Address) error {
	_, err := s.Deliver(caller, breaker.PauseMsg{}, nil)
	return err
}

// Unpause lifts the administrative pause.
func (s *Service) Unpause(caller custody.Address) error {
	_, err := s.Deliver(caller, breaker.UnpauseMsg{}, nil)
	return err
}

// Resume clears the suspension caused by a rate limit breach.
func (s *Service) Resume(caller custody.Address) error {
	_, err := s.Deliver(caller, breaker.ResumeMsg{}, nil)
	return err
}

// BalanceOf returns the amount of given asset held by the vault.
func (s *Service) BalanceOf(id custody.Address) (*uint256.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return vault.BalanceOf(s.db, s.ctrl, id)
}

// Balance returns the amount of given asset held by an account.
func (s *Service) Balance(id, holder custody.Address) (*uint256.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Balance(s.db, id, holder)
}

// TotalPower returns the total power of the committee with given hash, or
// zero if no such committee is registered.
func (s *Service) TotalPower(hash []byte) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return committee.TotalPower(s.db, hash)
}

// Suspended returns true if withdrawals are suspended after a rate limit
// breach.
func (s *Service) Suspended() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return breaker.IsSuspended(s.db)
}

// Usage returns the amount of given asset withdrawn through the rate limited
// path within the current window.
func (s *Service) Usage(id custody.Address) (*uint256.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	window, err := s.limiter.Window(custody.WithBlockTime(context.Background(), s.clock()))
	if err != nil {
		return nil, err
	}
	return s.limiter.Usage(s.db, id, window)
}

// Events returns up to limit audit events with an ID greater than after.
func (s *Service) Events(after int64, limit int) ([]audit.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return audit.List(s.db, after, limit)
}

// Height returns the height of the last executed operation.
func (s *Service) Height() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return height.Latest(s.db)
}
