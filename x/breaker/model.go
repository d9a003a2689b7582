package breaker

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
)

var (
	bucket   = orm.NewModelBucket("breaker")
	stateKey = []byte("state")
)

// State is the singleton holding both switches.
type State struct {
	Metadata  custody.Metadata `json:"metadata"`
	Paused    bool             `json:"paused"`
	Suspended bool             `json:"suspended"`
}

// Validate ensures the state can be persisted.
func (s *State) Validate() error {
	return errors.Wrap(s.Metadata.Validate(), "metadata")
}

// Load returns the current state. A store that never saved a state is
// neither paused nor suspended.
func Load(db custody.ReadOnlyKVStore) (*State, error) {
	var s State
	switch err := bucket.One(db, stateKey, &s); {
	case err == nil:
		return &s, nil
	case errors.ErrNotFound.Is(err):
		return &State{Metadata: custody.Metadata{Schema: 1}}, nil
	default:
		return nil, errors.Wrap(err, "breaker state")
	}
}

func save(db custody.KVStore, s *State) error {
	return bucket.Put(db, stateKey, s)
}

// Guard fails with ErrSuspended or ErrPaused if withdrawals are stopped.
func Guard(db custody.ReadOnlyKVStore) error {
	s, err := Load(db)
	if err != nil {
		return err
	}
	if s.Suspended {
		return errors.Wrap(ErrSuspended, "withdrawals stopped")
	}
	if s.Paused {
		return errors.Wrap(ErrPaused, "withdrawals stopped")
	}
	return nil
}

// IsSuspended returns true if the automatic suspension is active.
func IsSuspended(db custody.ReadOnlyKVStore) (bool, error) {
	s, err := Load(db)
	if err != nil {
		return false, err
	}
	return s.Suspended, nil
}

// Suspend trips the automatic suspension. It is independent from the
// administrative pause.
func Suspend(ctx custody.Context, db custody.KVStore) error {
	s, err := Load(db)
	if err != nil {
		return err
	}
	if !s.Suspended {
		custody.GetLogger(ctx).Error("withdrawals suspended")
	}
	s.Suspended = true
	return save(db, s)
}
