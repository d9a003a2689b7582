/*
Package audit keeps the append-only event log of the service.

Events are written into the same staging layer as the state changes of the
operation that emits them, so a failed operation leaves no event behind.
*/
package audit

import (
	"fmt"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
)

const bucketName = "audit"

var (
	events = orm.NewModelBucket(bucketName)
	seq    = orm.NewSequence(bucketName, "id")
)

// Event kinds emitted by the custody extensions.
const (
	CommitteeRegistered = "committee_registered"
	CommitteeRevoked    = "committee_revoked"
	AssetAdded          = "asset_added"
	AssetRemoved        = "asset_removed"
	AllowlistChanged    = "allowlist_changed"
	Deposited           = "deposited"
	WithdrawalBreached  = "withdrawal_breached"
	WithdrawalCompleted = "withdrawal_completed"
	Paused              = "paused"
	Unpaused            = "unpaused"
	Resumed             = "resumed"
)

// Attribute is a single key value pair describing an event.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Attr builds an attribute, formatting value with its default format.
func Attr(key string, value interface{}) Attribute {
	return Attribute{Key: key, Value: fmt.Sprint(value)}
}

// Event is a single audit log entry.
type Event struct {
	Metadata   custody.Metadata `json:"metadata"`
	ID         int64            `json:"id"`
	Height     int64            `json:"height"`
	Time       custody.UnixTime `json:"time"`
	Kind       string           `json:"kind"`
	Attributes []Attribute      `json:"attributes"`
}

// Validate ensures the event is complete.
func (e *Event) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", e.Metadata.Validate())
	if e.ID < 1 {
		errs = errors.AppendField(errs, "ID", errors.ErrInput)
	}
	if e.Height < 1 {
		errs = errors.AppendField(errs, "Height", errors.ErrInput)
	}
	if e.Kind == "" {
		errs = errors.AppendField(errs, "Kind", errors.ErrEmpty)
	}
	for i, a := range e.Attributes {
		if a.Key == "" {
			errs = errors.AppendField(errs, errors.FieldPath("Attributes", i, "Key"), errors.ErrEmpty)
		}
	}
	return errs
}

// Get returns the value of the first attribute with given key.
func (e *Event) Get(key string) (string, bool) {
	for _, a := range e.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Emit appends an event to the log. Height and time are taken from the
// context.
func Emit(ctx custody.Context, db custody.KVStore, kind string, attrs ...Attribute) error {
	height, ok := custody.GetHeight(ctx)
	if !ok {
		return errors.Wrap(errors.ErrHuman, "height not present in the context")
	}
	now, err := custody.BlockTime(ctx)
	if err != nil {
		return err
	}
	id, err := seq.NextInt(db)
	if err != nil {
		return errors.Wrap(err, "event sequence")
	}
	e := Event{
		Metadata:   custody.Metadata{Schema: 1},
		ID:         id,
		Height:     height,
		Time:       custody.AsUnixTime(now),
		Kind:       kind,
		Attributes: attrs,
	}
	if err := events.Put(db, orm.EncodeSequence(id), &e); err != nil {
		return errors.Wrap(err, "cannot store event")
	}
	custody.GetLogger(ctx).Debug("audit event", "kind", kind, "id", id)
	return nil
}

// List returns up to limit events with an ID greater than after, oldest
// first. A non positive limit returns all remaining events.
func List(db custody.ReadOnlyKVStore, after int64, limit int) ([]Event, error) {
	if after < 0 {
		after = 0
	}
	var res []Event
	errLimit := errors.Wrap(errors.ErrIteratorDone, "limit reached")
	err := events.Bucket().IterateFrom(db, orm.EncodeSequence(after+1), func(key, value []byte) error {
		if limit > 0 && len(res) >= limit {
			return errLimit
		}
		var e Event
		if err := orm.Unmarshal(value, &e); err != nil {
			return err
		}
		res = append(res, e)
		return nil
	})
	if err != nil && err != errLimit {
		return nil, err
	}
	return res, nil
}
