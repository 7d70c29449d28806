/*
Package iavl provides a persistent, versioned CommitKVStore backed by an iavl
merkle tree. Every Commit saves a new version and returns its root hash.
*/
package iavl

import (
	"github.com/iov-one/poolweave/errors"
	"github.com/iov-one/poolweave/store"
	"github.com/tendermint/iavl"
	dbm "github.com/tendermint/tendermint/libs/db"
)

// cacheSize is the number of tree nodes kept in memory.
const cacheSize = 10000

// CommitStore manages an iavl committed state.
type CommitStore struct {
	tree *iavl.MutableTree
}

var _ store.CommitKVStore = CommitStore{}

// NewCommitStore creates a new store with a GoLevelDB backing, named name in
// the directory dir.
func NewCommitStore(dir, name string) (CommitStore, error) {
	db, err := dbm.NewGoLevelDB(name, dir)
	if err != nil {
		return CommitStore{}, errors.Wrapf(errors.ErrDatabase, "open %s/%s: %s", dir, name, err)
	}
	return NewCommitStoreFromDB(db), nil
}

// MockCommitStore creates a new in-memory store for testing.
func MockCommitStore() CommitStore {
	return NewCommitStoreFromDB(dbm.NewMemDB())
}

// NewCommitStoreFromDB builds a store on top of any tendermint database.
func NewCommitStoreFromDB(db dbm.DB) CommitStore {
	return CommitStore{tree: iavl.NewMutableTree(db, cacheSize)}
}

// Get returns the value at last committed state, nil iff key doesn't exist.
func (s CommitStore) Get(key []byte) ([]byte, error) {
	_, val := s.tree.GetVersioned(key, s.tree.Version())
	return val, nil
}

// Commit saves the working tree as the next version.
func (s CommitStore) Commit() (store.CommitID, error) {
	hash, version, err := s.tree.SaveVersion()
	if err != nil {
		return store.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return store.CommitID{
		Version: version,
		Hash:    hash,
	}, nil
}

// LoadLatestVersion loads the latest persisted version. An empty database
// loads as version zero.
func (s CommitStore) LoadLatestVersion() error {
	if _, err := s.tree.Load(); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// LatestVersion returns info on the latest version saved to disk.
func (s CommitStore) LatestVersion() (store.CommitID, error) {
	return store.CommitID{
		Version: s.tree.Version(),
		Hash:    s.tree.Hash(),
	}, nil
}

// CacheWrap returns a btree cache whose Write applies the changes onto the
// working tree. They are persisted with the next Commit.
func (s CommitStore) CacheWrap() store.KVCacheWrap {
	w := working{tree: s.tree}
	return store.NewBTreeCacheWrap(w, w)
}

// working exposes the uncommitted state of the tree as a KVStore.
type working struct {
	tree *iavl.MutableTree
}

var _ store.KVStore = working{}

func (w working) Get(key []byte) ([]byte, error) {
	_, val := w.tree.Get(key)
	return val, nil
}

func (w working) Has(key []byte) (bool, error) {
	return w.tree.Has(key), nil
}

func (w working) Set(key, value []byte) error {
	w.tree.Set(key, value)
	return nil
}

func (w working) Delete(key []byte) error {
	w.tree.Remove(key)
	return nil
}

func (w working) Iterator(start, end []byte) (store.Iterator, error) {
	return w.iterate(start, end, true), nil
}

func (w working) ReverseIterator(start, end []byte) (store.Iterator, error) {
	return w.iterate(start, end, false), nil
}

func (w working) iterate(start, end []byte, ascending bool) store.Iterator {
	var res []store.Model
	w.tree.IterateRange(start, end, ascending, func(key, value []byte) bool {
		res = append(res, store.Model{Key: key, Value: value})
		return false
	})
	return store.NewSliceIterator(res)
}
