package donationpool

import (
	"github.com/iov-one/poolweave"
	"github.com/iov-one/poolweave/errors"
	"github.com/iov-one/poolweave/gconf"
	"github.com/iov-one/poolweave/orm"
)

const packageName = "donationpool"

// LoadConfig returns the current pool configuration. The configuration is
// written at genesis, so a missing one is an error.
func LoadConfig(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, packageName, &conf); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return &conf, nil
}

// loadState returns the pool totals. Before the first deposit nothing is
// stored and all totals are zero.
func loadState(db poolweave.ReadOnlyKVStore, b Buckets) (*PoolState, error) {
	var state PoolState
	switch err := b.State.One(db, stateKey, &state); {
	case err == nil:
		return &state, nil
	case errors.ErrNotFound.Is(err):
		return &PoolState{}, nil
	default:
		return nil, errors.Wrap(err, "load pool state")
	}
}

func saveState(db poolweave.KVStore, b Buckets, state *PoolState) error {
	if _, err := b.State.Put(db, stateKey, state); err != nil {
		return errors.Wrap(err, "save pool state")
	}
	return nil
}

// loadPending returns the pending request with given id or
// ErrRequestNotFound.
func loadPending(db poolweave.ReadOnlyKVStore, b Buckets, id int64) (*PendingRequest, error) {
	if id <= 0 {
		return nil, errors.Wrapf(ErrRequestNotFound, "request %d", id)
	}
	var req PendingRequest
	switch err := b.Pending.One(db, idKey(id), &req); {
	case err == nil:
		return &req, nil
	case errors.ErrNotFound.Is(err):
		return nil, errors.Wrapf(ErrRequestNotFound, "request %d", id)
	default:
		return nil, errors.Wrap(err, "load request")
	}
}

func isAllowed(db poolweave.ReadOnlyKVStore, bucket orm.ModelBucket, code string) (bool, error) {
	ok, err := bucket.Has(db, []byte(code))
	if err != nil {
		return false, errors.Wrap(err, "allow list")
	}
	return ok, nil
}

// PoolBalance returns the funds currently held by the pool.
func PoolBalance(db poolweave.ReadOnlyKVStore) (int64, error) {
	state, err := loadState(db, NewBuckets())
	if err != nil {
		return 0, err
	}
	return state.Balance, nil
}

// TotalDistributed returns the sum of all executed distributions.
func TotalDistributed(db poolweave.ReadOnlyKVStore) (int64, error) {
	state, err := loadState(db, NewBuckets())
	if err != nil {
		return 0, err
	}
	return state.TotalDistributed, nil
}

// LastDistributionTimestamp returns the block height of the latest executed
// distribution or zero.
func LastDistributionTimestamp(db poolweave.ReadOnlyKVStore) (int64, error) {
	state, err := loadState(db, NewBuckets())
	if err != nil {
		return 0, err
	}
	return state.LastDistributionHeight, nil
}

// IsPaused returns true if the pool is paused.
func IsPaused(db poolweave.ReadOnlyKVStore) (bool, error) {
	conf, err := LoadConfig(db)
	if err != nil {
		return false, err
	}
	return conf.Paused, nil
}

// GetDistribution returns the latest distribution of a recipient or nil.
func GetDistribution(db poolweave.ReadOnlyKVStore, recipient poolweave.Address) (*Distribution, error) {
	var d Distribution
	switch err := NewBuckets().Distributions.One(db, recipient, &d); {
	case err == nil:
		return &d, nil
	case errors.ErrNotFound.Is(err):
		return nil, nil
	default:
		return nil, err
	}
}

// GetPendingRequest returns the pending request with given id or nil.
func GetPendingRequest(db poolweave.ReadOnlyKVStore, id int64) (*PendingRequest, error) {
	req, err := loadPending(db, NewBuckets(), id)
	if ErrRequestNotFound.Is(err) {
		return nil, nil
	}
	return req, err
}

// GetHistoryEntry returns the history entry with given id or nil.
func GetHistoryEntry(db poolweave.ReadOnlyKVStore, id int64) (*HistoryEntry, error) {
	if id <= 0 {
		return nil, nil
	}
	var h HistoryEntry
	switch err := NewBuckets().History.One(db, idKey(id), &h); {
	case err == nil:
		return &h, nil
	case errors.ErrNotFound.Is(err):
		return nil, nil
	default:
		return nil, err
	}
}

// IsCurrencyAllowed returns true if the currency code was approved.
func IsCurrencyAllowed(db poolweave.ReadOnlyKVStore, code string) (bool, error) {
	return isAllowed(db, NewBuckets().Currencies, code)
}

// IsLocationAllowed returns true if the location code was approved.
func IsLocationAllowed(db poolweave.ReadOnlyKVStore, code string) (bool, error) {
	return isAllowed(db, NewBuckets().Locations, code)
}

// GetThreshold returns the verification percentage of a program, zero if
// none was set.
func GetThreshold(db poolweave.ReadOnlyKVStore, programID int64) (int64, error) {
	var t Threshold
	switch err := NewBuckets().Thresholds.One(db, idKey(programID), &t); {
	case err == nil:
		return t.Percentage, nil
	case errors.ErrNotFound.Is(err):
		return 0, nil
	default:
		return 0, err
	}
}

// PendingByRecipient returns the ids and the requests waiting for given
// recipient, oldest first.
func PendingByRecipient(db poolweave.ReadOnlyKVStore, recipient poolweave.Address) ([]int64, []*PendingRequest, error) {
	var reqs []*PendingRequest
	keys, err := NewBuckets().Pending.ByIndex(db, "recipient", recipient, &reqs)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]int64, len(keys))
	for i, k := range keys {
		ids[i] = orm.DecodeSequence(k)
	}
	return ids, reqs, nil
}

// HistoryCount returns the number of executed distributions. History ids
// run from 1 to this value.
func HistoryCount(db poolweave.ReadOnlyKVStore) (int64, error) {
	return historySeq.Latest(db)
}

// HistoryByRecipient returns all executed distributions of a recipient,
// oldest first.
func HistoryByRecipient(db poolweave.ReadOnlyKVStore, recipient poolweave.Address) ([]*HistoryEntry, error) {
	var entries []*HistoryEntry
	if _, err := NewBuckets().History.ByIndex(db, "recipient", recipient, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// RegisterQuery exposes the pool collections under /donationpool.
func RegisterQuery(qr poolweave.QueryRouter) {
	b := NewBuckets()
	b.State.Register(packageName+"/state", qr)
	b.Pending.Register(packageName+"/pending", qr)
	b.Distributions.Register(packageName+"/distributions", qr)
	b.History.Register(packageName+"/history", qr)
	b.Currencies.Register(packageName+"/currencies", qr)
	b.Locations.Register(packageName+"/locations", qr)
	b.Thresholds.Register(packageName+"/thresholds", qr)
}
