package app

import (
	"encoding/binary"

	"github.com/iov-one/poolweave"
	"github.com/iov-one/poolweave/errors"
)

// CommitStore handles loading from a CommitKVStore, maintaining different
// CacheWraps for Deliver and Check, and returning useful state info.
type CommitStore struct {
	committed poolweave.CommitKVStore
	deliver   poolweave.KVCacheWrap
	check     poolweave.KVCacheWrap
}

// NewCommitStore loads the latest version of the CommitKVStore and sets up
// the deliver and check caches.
func NewCommitStore(store poolweave.CommitKVStore) (*CommitStore, error) {
	if err := store.LoadLatestVersion(); err != nil {
		return nil, errors.Wrap(err, "load latest version")
	}
	return &CommitStore{
		committed: store,
		deliver:   store.CacheWrap(),
		check:     store.CacheWrap(),
	}, nil
}

// Commit will flush deliver to the underlying store and commit it to disk.
// It then regenerates new deliver and check caches.
func (cs *CommitStore) Commit() (poolweave.CommitID, error) {
	if err := cs.deliver.Write(); err != nil {
		return poolweave.CommitID{}, errors.Wrap(err, "flush deliver cache")
	}
	cs.check.Discard()

	res, err := cs.committed.Commit()
	if err != nil {
		return res, err
	}

	cs.deliver = cs.committed.CacheWrap()
	cs.check = cs.committed.CacheWrap()
	return res, nil
}

// CheckStore returns a store implementation that must be used during the
// checking phase.
func (cs *CommitStore) CheckStore() poolweave.CacheableKVStore {
	return cs.check
}

// DeliverStore returns a store implementation that must be used during the
// delivery phase.
func (cs *CommitStore) DeliverStore() poolweave.CacheableKVStore {
	return cs.deliver
}

// CommittedStore returns a read only view of the last committed state.
func (cs *CommitStore) CommittedStore() poolweave.ReadOnlyKVStore {
	return cs.committed.CacheWrap()
}

// _wv: is a prefix for framework internal data
const (
	chainIDKey = "_wv:chainID"
	heightKey  = "_wv:height"
)

// loadChainID returns the chain id stored if any
func loadChainID(kv poolweave.ReadOnlyKVStore) (string, error) {
	v, err := kv.Get([]byte(chainIDKey))
	if err != nil {
		return "", errors.Wrap(err, "load chain id")
	}
	return string(v), nil
}

// saveChainID stores a chain id in the kv store.
// Returns error if already set, or invalid name
func saveChainID(kv poolweave.KVStore, chainID string) error {
	if !poolweave.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}
	k := []byte(chainIDKey)
	exists, err := kv.Has(k)
	if err != nil {
		return errors.Wrap(err, "load chain id")
	}
	if exists {
		return errors.Wrap(errors.ErrUnauthorized, "can't modify chain id after genesis init")
	}
	if err := kv.Set(k, []byte(chainID)); err != nil {
		return errors.Wrap(err, "save chain id")
	}
	return nil
}

// loadHeight returns the height of the last committed block, or zero for a
// fresh database.
func loadHeight(kv poolweave.ReadOnlyKVStore) (int64, error) {
	v, err := kv.Get([]byte(heightKey))
	if err != nil {
		return 0, errors.Wrap(err, "load height")
	}
	if v == nil {
		return 0, nil
	}
	if len(v) != 8 {
		return 0, errors.Wrapf(errors.ErrDatabase, "height of %d bytes", len(v))
	}
	return int64(binary.BigEndian.Uint64(v)), nil
}

// saveHeight records the height of the block being committed, so that the
// block clock survives a restart.
func saveHeight(kv poolweave.KVStore, height int64) error {
	var v [8]byte
	binary.BigEndian.PutUint64(v[:], uint64(height))
	if err := kv.Set([]byte(heightKey), v[:]); err != nil {
		return errors.Wrap(err, "save height")
	}
	return nil
}
