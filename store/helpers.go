package store

import (
	"github.com/iov-one/poolweave/errors"
)

// EmptyKVStore is a store that holds nothing and ignores all writes. It is
// the bottom of every in-memory store.
type EmptyKVStore struct{}

var _ KVStore = EmptyKVStore{}

func (EmptyKVStore) Get(key []byte) ([]byte, error) { return nil, nil }

func (EmptyKVStore) Has(key []byte) (bool, error) { return false, nil }

func (EmptyKVStore) Set(key, value []byte) error { return nil }

func (EmptyKVStore) Delete(key []byte) error { return nil }

func (EmptyKVStore) Iterator(start, end []byte) (Iterator, error) {
	return NewSliceIterator(nil), nil
}

func (EmptyKVStore) ReverseIterator(start, end []byte) (Iterator, error) {
	return NewSliceIterator(nil), nil
}

// SliceIterator wraps an Iterator over a slice of models.
type SliceIterator struct {
	data []Model
	idx  int
}

var _ Iterator = (*SliceIterator)(nil)

// NewSliceIterator creates a new Iterator over this slice.
func NewSliceIterator(data []Model) *SliceIterator {
	return &SliceIterator{
		data: data,
	}
}

// Valid returns true iff it can be read.
func (s *SliceIterator) Valid() bool {
	return s.idx < len(s.data)
}

// Next moves the iterator to the next element.
func (s *SliceIterator) Next() error {
	if !s.Valid() {
		return errors.Wrap(errors.ErrState, "iterator exhausted")
	}
	s.idx++
	return nil
}

// Key returns the key of the cursor. Panics if not valid.
func (s *SliceIterator) Key() []byte {
	return s.data[s.idx].Key
}

// Value returns the value of the cursor. Panics if not valid.
func (s *SliceIterator) Value() []byte {
	return s.data[s.idx].Value
}

// Close releases the Iterator.
func (s *SliceIterator) Close() {
	s.data = nil
}

// ReadAll consumes and closes the iterator, returning all visited pairs.
func ReadAll(it Iterator) ([]Model, error) {
	defer it.Close()

	var res []Model
	for it.Valid() {
		res = append(res, Model{Key: it.Key(), Value: it.Value()})
		if err := it.Next(); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// PrefixEnd returns the end of the range of all keys starting with given
// prefix, or nil if there is no upper bound.
func PrefixEnd(prefix []byte) []byte {
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
