package orm

import (
	"fmt"
	"regexp"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,12}$`).MatchString

// Bucket is a prefixed subspace of the DB. It operates on raw values, use
// ModelBucket to store models.
type Bucket struct {
	name   string
	prefix []byte
}

// NewBucket creates a bucket to store data. Bucket name must be unique
// within the application.
func NewBucket(name string) Bucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("Illegal bucket: %s", name))
	}
	return Bucket{
		name:   name,
		prefix: append([]byte(name), ':'),
	}
}

// Name returns the name of the bucket.
func (b Bucket) Name() string {
	return b.name
}

// DBKey is the full key we store in the db, including prefix
// We copy into a new array rather than use append, as we don't
// want consecutive calls to overwrite the same byte array.
func (b Bucket) DBKey(key []byte) []byte {
	l := len(b.prefix)
	res := make([]byte, l+len(key))
	copy(res, b.prefix)
	copy(res[l:], key)
	return res
}

// Get returns the raw value stored under given key or nil.
func (b Bucket) Get(db custody.ReadOnlyKVStore, key []byte) ([]byte, error) {
	raw, err := db.Get(b.DBKey(key))
	if err != nil {
		return nil, errors.Wrapf(err, "%s bucket", b.name)
	}
	return raw, nil
}

// Has returns true if a value is stored under given key.
func (b Bucket) Has(db custody.ReadOnlyKVStore, key []byte) (bool, error) {
	ok, err := db.Has(b.DBKey(key))
	if err != nil {
		return false, errors.Wrapf(err, "%s bucket", b.name)
	}
	return ok, nil
}

// Save writes raw value under given key.
func (b Bucket) Save(db custody.KVStore, key, value []byte) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "key")
	}
	return db.Set(b.DBKey(key), value)
}

// Delete removes a value from the bucket. Deleting a missing key is a noop.
func (b Bucket) Delete(db custody.KVStore, key []byte) error {
	return db.Delete(b.DBKey(key))
}

// Iterate calls fn for every entry whose key starts with given prefix, in
// ascending key order. Keys passed to fn do not contain the bucket prefix.
// Returning an error from fn stops the iteration and that error is returned.
func (b Bucket) Iterate(db custody.ReadOnlyKVStore, prefix []byte, fn func(key, value []byte) error) error {
	start := b.DBKey(prefix)
	return b.iterate(db, start, prefixEnd(start), fn)
}

// IterateFrom is like Iterate, but visits all entries with a key greater or
// equal to start.
func (b Bucket) IterateFrom(db custody.ReadOnlyKVStore, start []byte, fn func(key, value []byte) error) error {
	return b.iterate(db, b.DBKey(start), prefixEnd(b.prefix), fn)
}

func (b Bucket) iterate(db custody.ReadOnlyKVStore, start, end []byte, fn func(key, value []byte) error) error {
	it, err := db.Iterator(start, end)
	if err != nil {
		return errors.Wrapf(err, "%s bucket", b.name)
	}
	defer it.Release()

	for {
		key, value, err := it.Next()
		if errors.ErrIteratorDone.Is(err) {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "%s bucket", b.name)
		}
		if err := fn(key[len(b.prefix):], value); err != nil {
			return err
		}
	}
}

// prefixEnd returns the smallest key that is greater than all keys starting
// with given prefix, or nil if there is none.
func prefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
