package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/poolweave/errors"
)

// degree of every btree allocated by this package.
const degree = 8

// MemStore returns a simple in-memory store useful for tests. There is no
// persistence and nothing is ever flushed.
func MemStore() CacheableKVStore {
	e := EmptyKVStore{}
	return NewBTreeCacheWrap(e, e)
}

// BTreeCacheWrap places a btree cache over a read only view of the parent
// store. All writes are kept in the btree until Write replays them, in key
// order, onto the output store.
type BTreeCacheWrap struct {
	bt   *btree.BTree
	back ReadOnlyKVStore
	out  SetDeleter
}

var _ KVCacheWrap = (*BTreeCacheWrap)(nil)

// NewBTreeCacheWrap initializes a BTree cache around the given store. Reads
// that miss the cache fall through to back, Write flushes into out.
func NewBTreeCacheWrap(back ReadOnlyKVStore, out SetDeleter) *BTreeCacheWrap {
	return &BTreeCacheWrap{
		bt:   btree.New(degree),
		back: back,
		out:  out,
	}
}

// CacheWrap layers another BTree on top of this one.
func (b *BTreeCacheWrap) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b, b)
}

// Write flushes all cached changes to the output store and resets the cache.
func (b *BTreeCacheWrap) Write() error {
	var err error
	b.bt.Ascend(func(i btree.Item) bool {
		switch it := i.(type) {
		case setItem:
			err = b.out.Set(it.key, it.value)
		case deletedItem:
			err = b.out.Delete(it.key)
		default:
			err = errors.Wrapf(errors.ErrDatabase, "unknown item in btree: %#v", i)
		}
		return err == nil
	})
	if err != nil {
		return errors.Wrap(err, "flush cache")
	}
	b.Discard()
	return nil
}

// Discard drops all cached changes.
func (b *BTreeCacheWrap) Discard() {
	b.bt.Clear(false)
}

// Set writes to the BTree.
func (b *BTreeCacheWrap) Set(key, value []byte) error {
	if key == nil {
		return errors.Wrap(errors.ErrHuman, "nil key")
	}
	b.bt.ReplaceOrInsert(setItem{bkey{key}, value})
	return nil
}

// Delete marks the key as removed in the BTree.
func (b *BTreeCacheWrap) Delete(key []byte) error {
	if key == nil {
		return errors.Wrap(errors.ErrHuman, "nil key")
	}
	b.bt.ReplaceOrInsert(deletedItem{bkey{key}})
	return nil
}

// Get reads from btree if there, else backing store.
func (b *BTreeCacheWrap) Get(key []byte) ([]byte, error) {
	switch it := b.bt.Get(bkey{key}).(type) {
	case nil:
		return b.back.Get(key)
	case setItem:
		return it.value, nil
	case deletedItem:
		return nil, nil
	default:
		return nil, errors.Wrapf(errors.ErrDatabase, "unknown item in btree: %#v", it)
	}
}

// Has reads from btree if there, else backing store.
func (b *BTreeCacheWrap) Has(key []byte) (bool, error) {
	val, err := b.Get(key)
	if err != nil {
		return false, err
	}
	return val != nil, nil
}

// Iterator over a domain of keys in ascending order. Combines results from
// btree and backing store.
func (b *BTreeCacheWrap) Iterator(start, end []byte) (Iterator, error) {
	models, err := b.merged(start, end)
	if err != nil {
		return nil, err
	}
	return NewSliceIterator(models), nil
}

// ReverseIterator over a domain of keys in descending order. Combines results
// from btree and backing store.
func (b *BTreeCacheWrap) ReverseIterator(start, end []byte) (Iterator, error) {
	models, err := b.merged(start, end)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(models)-1; i < j; i, j = i+1, j-1 {
		models[i], models[j] = models[j], models[i]
	}
	return NewSliceIterator(models), nil
}

// merged returns all visible key value pairs from the [start, end) range in
// ascending order. Cached items shadow the parent and deleted items are
// skipped.
func (b *BTreeCacheWrap) merged(start, end []byte) ([]Model, error) {
	parent, err := b.back.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	below, err := ReadAll(parent)
	if err != nil {
		return nil, err
	}
	above := b.items(start, end)

	res := make([]Model, 0, len(below)+len(above))
	var i, j int
	for i < len(below) || j < len(above) {
		var cmp int
		switch {
		case i == len(below):
			cmp = 1
		case j == len(above):
			cmp = -1
		default:
			cmp = bytes.Compare(below[i].Key, above[j].Key())
		}

		if cmp < 0 {
			res = append(res, below[i])
			i++
			continue
		}
		if cmp == 0 {
			i++
		}
		if it, ok := above[j].(setItem); ok {
			res = append(res, Model{Key: it.key, Value: it.value})
		}
		j++
	}
	return res, nil
}

// items collects all cached items within the [start, end) range.
func (b *BTreeCacheWrap) items(start, end []byte) []keyer {
	var res []keyer
	collect := func(i btree.Item) bool {
		res = append(res, i.(keyer))
		return true
	}
	switch {
	case start == nil && end == nil:
		b.bt.Ascend(collect)
	case start == nil:
		b.bt.AscendLessThan(bkey{end}, collect)
	case end == nil:
		b.bt.AscendGreaterOrEqual(bkey{start}, collect)
	default:
		b.bt.AscendRange(bkey{start}, bkey{end}, collect)
	}
	return res
}

// keyer is implemented by all items stored in the btree.
type keyer interface {
	btree.Item
	Key() []byte
}

// bkey implements keyer and is used directly for queries.
type bkey struct {
	key []byte
}

func (k bkey) Key() []byte {
	return k.key
}

// Less returns true iff second argument is greater than first.
func (k bkey) Less(item btree.Item) bool {
	return bytes.Compare(k.key, item.(keyer).Key()) < 0
}

type setItem struct {
	bkey
	value []byte
}

type deletedItem struct {
	bkey
}
