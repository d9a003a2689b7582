package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/custody/errors"
)

// collectBtree returns a snapshot of all staged items within [start, end).
// Staged changes are small, so copying them out keeps the iterator
// independent from later writes to the btree.
func collectBtree(bt *btree.BTree, start, end []byte) []btree.Item {
	var items []btree.Item
	collect := func(item btree.Item) bool {
		items = append(items, item)
		return true
	}
	switch {
	case start == nil && end == nil:
		bt.Ascend(collect)
	case start == nil:
		bt.AscendLessThan(bkey{end}, collect)
	case end == nil:
		bt.AscendGreaterOrEqual(bkey{start}, collect)
	default:
		bt.AscendRange(bkey{start}, bkey{end}, collect)
	}
	return items
}

// mergeIterator combines staged btree items with the parent iterator,
// taking into consideration overwrites and deletes.
type mergeIterator struct {
	staged []btree.Item
	parent Iterator

	// look ahead of the parent iterator
	pKey, pValue []byte
	pDone        bool
	pErr         error
}

var _ Iterator = (*mergeIterator)(nil)

func newMergeIterator(staged []btree.Item, parent Iterator) *mergeIterator {
	it := &mergeIterator{staged: staged, parent: parent}
	it.advanceParent()
	return it
}

func (it *mergeIterator) advanceParent() {
	if it.pDone {
		return
	}
	k, v, err := it.parent.Next()
	switch {
	case err == nil:
		it.pKey, it.pValue = k, v
	case errors.ErrIteratorDone.Is(err):
		it.pDone = true
		it.pKey, it.pValue = nil, nil
	default:
		it.pErr = err
		it.pDone = true
	}
}

// Next returns the next visible entry in key order.
func (it *mergeIterator) Next() (key, value []byte, err error) {
	for {
		if it.pErr != nil {
			return nil, nil, it.pErr
		}
		if len(it.staged) == 0 && it.pDone {
			return nil, nil, errors.Wrap(errors.ErrIteratorDone, "merge iterator")
		}

		if len(it.staged) == 0 {
			k, v := it.pKey, it.pValue
			it.advanceParent()
			return k, v, nil
		}

		item := it.staged[0]
		itemKey := item.(keyer).Key()
		cmp := -1
		if !it.pDone {
			cmp = bytes.Compare(itemKey, it.pKey)
		}

		if cmp > 0 {
			k, v := it.pKey, it.pValue
			it.advanceParent()
			return k, v, nil
		}

		// Staged item wins, parent entry with the same key is shadowed.
		it.staged = it.staged[1:]
		if cmp == 0 {
			it.advanceParent()
		}
		if set, ok := item.(setItem); ok {
			return set.key, set.value, nil
		}
		// deleted, look further
	}
}

// Release releases the Iterator.
func (it *mergeIterator) Release() {
	it.parent.Release()
	it.staged = nil
}
