package orm

import (
	"github.com/iov-one/poolweave"
	"github.com/iov-one/poolweave/errors"
)

// bucketQuery exposes the primary key space of a bucket. With the default
// modifier data is a primary key, with the prefix modifier it is a key
// prefix and an empty prefix returns everything.
type bucketQuery struct {
	bucket *modelBucket
}

func (q bucketQuery) Query(db poolweave.ReadOnlyKVStore, mod string, data []byte) ([]poolweave.Model, error) {
	switch mod {
	case poolweave.KeyQueryMod:
		raw, err := db.Get(q.bucket.dbKey(data))
		if err != nil {
			return nil, err
		}
		if raw == nil {
			return nil, nil
		}
		return []poolweave.Model{poolweave.Pair(data, raw)}, nil
	case poolweave.PrefixQueryMod:
		return q.bucket.prefixScan(db, data)
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown query modifier %q", mod)
	}
}

// indexQuery returns all entities indexed under the value given as data.
type indexQuery struct {
	bucket *modelBucket
	idx    *index
}

func (q indexQuery) Query(db poolweave.ReadOnlyKVStore, mod string, data []byte) ([]poolweave.Model, error) {
	if mod != poolweave.KeyQueryMod {
		return nil, errors.Wrapf(errors.ErrInput, "unsupported index query modifier %q", mod)
	}
	keys, err := q.idx.keys(db, data)
	if err != nil {
		return nil, err
	}
	res := make([]poolweave.Model, 0, len(keys))
	for _, key := range keys {
		raw, err := db.Get(q.bucket.dbKey(key))
		if err != nil {
			return nil, err
		}
		res = append(res, poolweave.Pair(key, raw))
	}
	return res, nil
}
