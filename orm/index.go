package orm

import (
	"bytes"
	"encoding/binary"

	"github.com/iov-one/poolweave"
	"github.com/iov-one/poolweave/errors"
	"github.com/iov-one/poolweave/store"
)

// Indexer calculates the secondary index value for a given model. A nil
// value means the model is not indexed.
type Indexer func(Model) ([]byte, error)

const idxPrefix = "_i."

// index is a non unique secondary index. Every indexed entity is stored as a
// separate entry:
//
//   _i.<bucket>_<name>:<len(value)><value><primary key>
//
// so that all keys for a value are found with a single prefix scan.
type index struct {
	name    string
	id      []byte
	indexer Indexer
}

func newIndex(bucket, name string, indexer Indexer) *index {
	return &index{
		name:    name,
		id:      []byte(idxPrefix + bucket + "_" + name + ":"),
		indexer: indexer,
	}
}

func (i *index) valuePrefix(value []byte) []byte {
	res := make([]byte, 0, len(i.id)+2+len(value))
	res = append(res, i.id...)
	var ln [2]byte
	binary.BigEndian.PutUint16(ln[:], uint16(len(value)))
	res = append(res, ln[:]...)
	return append(res, value...)
}

// update moves the entry of the given primary key from the value computed
// for prev to the value computed for next. Either model may be nil.
func (i *index) update(db poolweave.KVStore, key []byte, prev, next Model) error {
	var before, after []byte
	var err error
	if prev != nil {
		if before, err = i.indexer(prev); err != nil {
			return err
		}
	}
	if next != nil {
		if after, err = i.indexer(next); err != nil {
			return err
		}
	}
	if prev != nil && next != nil && bytes.Equal(before, after) {
		return nil
	}
	if before != nil {
		if err := db.Delete(append(i.valuePrefix(before), key...)); err != nil {
			return err
		}
	}
	if after != nil {
		if len(after) > 0xffff {
			return errors.Wrap(errors.ErrInput, "index value too long")
		}
		if err := db.Set(append(i.valuePrefix(after), key...), []byte{1}); err != nil {
			return err
		}
	}
	return nil
}

// keys returns all primary keys indexed under given value, in key order.
func (i *index) keys(db poolweave.ReadOnlyKVStore, value []byte) ([][]byte, error) {
	prefix := i.valuePrefix(value)
	it, err := db.Iterator(prefix, store.PrefixEnd(prefix))
	if err != nil {
		return nil, errors.Wrap(err, "index iterator")
	}
	entries, err := store.ReadAll(it)
	if err != nil {
		return nil, errors.Wrap(err, "index iterate")
	}
	keys := make([][]byte, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e.Key[len(prefix):])
	}
	return keys, nil
}
