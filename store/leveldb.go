package store

import (
	"github.com/iov-one/custody/errors"
	"github.com/syndtr/goleveldb/leveldb"
	lerrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDB wraps a goleveldb database as the persistent root of the ledger
// state. Writes are only possible through a CacheWrap, whose Write lands in
// the database as a single atomic batch.
type LevelDB struct {
	db *leveldb.DB
}

var _ CommitKVStore = (*LevelDB)(nil)

// OpenLevelDB opens (creating if needed) a database stored in given
// directory.
func OpenLevelDB(dir string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "open %q: %s", dir, err)
	}
	return &LevelDB{db: db}, nil
}

// NewMemCommitStore returns a commit store kept entirely in memory. Useful
// for tests and development, nothing survives the process.
func NewMemCommitStore() *LevelDB {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		// Memory storage cannot be corrupted or locked.
		panic(err)
	}
	return &LevelDB{db: db}
}

// Get returns nil iff key doesn't exist.
func (l *LevelDB) Get(key []byte) ([]byte, error) {
	if key == nil {
		panic("nil key")
	}
	bz, err := l.db.Get(key, nil)
	if err == lerrors.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return bz, nil
}

// Has checks if a key exists.
func (l *LevelDB) Has(key []byte) (bool, error) {
	if key == nil {
		panic("nil key")
	}
	ok, err := l.db.Has(key, nil)
	if err != nil {
		return false, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return ok, nil
}

// Iterator over a domain of keys in ascending order. End is exclusive.
func (l *LevelDB) Iterator(start, end []byte) (Iterator, error) {
	src := l.db.NewIterator(&util.Range{Start: start, Limit: end}, nil)
	return &levelDBIterator{source: src}, nil
}

// CacheWrap returns a staging layer on top of the database. Its Write
// applies all staged operations in one leveldb batch.
func (l *LevelDB) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(l, &levelDBBatch{db: l.db, batch: new(leveldb.Batch)}, nil)
}

// Close releases the database. The store must not be used afterwards.
func (l *LevelDB) Close() error {
	return l.db.Close()
}

// levelDBBatch collects operations and writes them atomically.
type levelDBBatch struct {
	db    *leveldb.DB
	batch *leveldb.Batch
}

var _ Batch = (*levelDBBatch)(nil)

func (b *levelDBBatch) Set(key, value []byte) error {
	b.batch.Put(key, value)
	return nil
}

func (b *levelDBBatch) Delete(key []byte) error {
	b.batch.Delete(key)
	return nil
}

func (b *levelDBBatch) Write() error {
	err := b.db.Write(b.batch, &opt.WriteOptions{Sync: true})
	b.batch.Reset()
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

type levelDBIterator struct {
	source iterator.Iterator
}

var _ Iterator = (*levelDBIterator)(nil)

func (it *levelDBIterator) Next() (key, value []byte, err error) {
	if !it.source.Next() {
		if err := it.source.Error(); err != nil {
			return nil, nil, errors.Wrap(errors.ErrDatabase, err.Error())
		}
		return nil, nil, errors.Wrap(errors.ErrIteratorDone, "leveldb")
	}
	return cp(it.source.Key()), cp(it.source.Value()), nil
}

func (it *levelDBIterator) Release() {
	it.source.Release()
}

func cp(bz []byte) (ret []byte) {
	ret = make([]byte, len(bz))
	copy(ret, bz)
	return ret
}
