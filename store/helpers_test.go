package store

import (
	"testing"

	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
)

// TestSliceIterator makes sure the basic slice iterator works.
func TestSliceIterator(t *testing.T) {
	const size = 10

	ks := randKeys(size, 8)
	vs := randKeys(size, 40)

	models := make([]Model, size)
	for i := 0; i < size; i++ {
		models[i] = Pair(ks[i], vs[i])
	}

	it := NewSliceIterator(models)
	for i := 0; i < size; i++ {
		key, value, err := it.Next()
		assert.Nil(t, err)
		assert.Equal(t, ks[i], key)
		assert.Equal(t, vs[i], value)
	}
	if _, _, err := it.Next(); !errors.ErrIteratorDone.Is(err) {
		t.Fatalf("want iterator done, got %+v", err)
	}

	it = NewSliceIterator(models)
	it.Release()
	if _, _, err := it.Next(); !errors.ErrIteratorDone.Is(err) {
		t.Fatalf("released iterator must be done, got %+v", err)
	}
}

func TestNonAtomicBatch(t *testing.T) {
	db := MemStore()
	b := NewNonAtomicBatch(db)
	assert.Nil(t, b.Set([]byte("k"), []byte("v")))
	assert.Nil(t, b.Delete([]byte("gone")))

	// nothing is visible before write
	val, err := db.Get([]byte("k"))
	assert.Nil(t, err)
	assert.Nil(t, val)

	assert.Nil(t, b.Write())
	val, err = db.Get([]byte("k"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("v"), val)
	if len(b.ShowOps()) != 0 {
		t.Fatal("batch must be empty after write")
	}
}
