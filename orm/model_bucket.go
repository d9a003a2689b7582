package orm

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// ModelBucket stores models of a single type under a bucket prefix.
type ModelBucket struct {
	b Bucket
}

// NewModelBucket returns a ModelBucket instance that uses the bucket of
// given name.
func NewModelBucket(name string) ModelBucket {
	return ModelBucket{b: NewBucket(name)}
}

// Bucket returns the underlying raw bucket.
func (mb ModelBucket) Bucket() Bucket {
	return mb.b
}

// One query the database for a single model instance. Result is loaded into
// given destination model.
// This method returns ErrNotFound if the entity does not exist in the
// database.
func (mb ModelBucket) One(db custody.ReadOnlyKVStore, key []byte, dest Model) error {
	raw, err := mb.b.Get(db, key)
	if err != nil {
		return err
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", dest)
	}
	return Unmarshal(raw, dest)
}

// Has returns true if a model is stored under given key.
func (mb ModelBucket) Has(db custody.ReadOnlyKVStore, key []byte) (bool, error) {
	return mb.b.Has(db, key)
}

// Put saves given model in the database.
func (mb ModelBucket) Put(db custody.KVStore, key []byte, m Model) error {
	raw, err := Marshal(m)
	if err != nil {
		return err
	}
	if err := mb.b.Save(db, key, raw); err != nil {
		return errors.Wrap(err, "cannot store in the database")
	}
	return nil
}

// Delete removes an entity with given primary key from the database.
// It returns ErrNotFound if an entity with given key does not exist.
func (mb ModelBucket) Delete(db custody.KVStore, key []byte) error {
	ok, err := mb.b.Has(db, key)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrap(errors.ErrNotFound, "cannot delete")
	}
	return mb.b.Delete(db, key)
}
