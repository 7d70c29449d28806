package orm

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/iov-one/poolweave"
	"github.com/iov-one/poolweave/errors"
	"github.com/iov-one/poolweave/store"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,14}$`).MatchString

// ModelBucket stores models of a single type under a common key prefix.
type ModelBucket interface {
	// One queries the database for a single model instance, using the
	// primary key. Result is loaded into given destination model.
	// Returns ErrNotFound if the entity does not exist.
	One(db poolweave.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns true if an entity with given primary key exists.
	Has(db poolweave.ReadOnlyKVStore, key []byte) (bool, error)

	// Put saves given model in the database. If key is nil, a new key is
	// acquired from the bucket sequence. The key used is returned.
	Put(db poolweave.KVStore, key []byte, m Model) ([]byte, error)

	// Delete removes an entity with given primary key from the database.
	// Returns ErrNotFound if an entity with given key does not exist.
	Delete(db poolweave.KVStore, key []byte) error

	// ByIndex loads all entities indexed under given value. Destination
	// must be a pointer to a slice of model pointers. Primary keys of the
	// loaded entities are returned in the same order.
	ByIndex(db poolweave.ReadOnlyKVStore, indexName string, value []byte, dest interface{}) ([][]byte, error)

	// All loads every entity of this bucket, in primary key order, into a
	// pointer to a slice of model pointers.
	All(db poolweave.ReadOnlyKVStore, dest interface{}) ([][]byte, error)

	// Register exposes the bucket and its indexes to the query router
	// under /<name> and /<name>/<index>.
	Register(name string, r poolweave.QueryRouter)
}

// ModelBucketOption configures a model bucket.
type ModelBucketOption func(*modelBucket)

// WithIndex adds a secondary index, computed by given function from every
// stored model.
func WithIndex(name string, indexer Indexer) ModelBucketOption {
	return func(mb *modelBucket) {
		if _, ok := mb.indexes[name]; ok {
			panic(fmt.Sprintf("index %q already declared", name))
		}
		mb.indexes[name] = newIndex(mb.name, name, indexer)
	}
}

// WithIDSequence assigns keys to models saved with a nil key.
func WithIDSequence(s Sequence) ModelBucketOption {
	return func(mb *modelBucket) {
		mb.seq = &s
	}
}

// NewModelBucket returns a bucket for models of the same type as the given
// prototype. Name is the key prefix and must be unique in the application.
func NewModelBucket(name string, proto Model, opts ...ModelBucketOption) ModelBucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("illegal bucket name: %q", name))
	}
	mb := &modelBucket{
		name:    name,
		prefix:  []byte(name + ":"),
		model:   reflect.TypeOf(proto),
		indexes: make(map[string]*index),
	}
	for _, fn := range opts {
		fn(mb)
	}
	return mb
}

type modelBucket struct {
	name    string
	prefix  []byte
	model   reflect.Type
	seq     *Sequence
	indexes map[string]*index
}

var _ ModelBucket = (*modelBucket)(nil)

func (mb *modelBucket) dbKey(key []byte) []byte {
	return append(append([]byte{}, mb.prefix...), key...)
}

func (mb *modelBucket) One(db poolweave.ReadOnlyKVStore, key []byte, dest Model) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrNotFound, "empty key")
	}
	if reflect.TypeOf(dest) != mb.model {
		return errors.Wrapf(errors.ErrType, "%T cannot be represented as %s", dest, mb.model)
	}
	raw, err := db.Get(mb.dbKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot load from the database")
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", mb.name, key)
	}
	return Unmarshal(raw, dest)
}

func (mb *modelBucket) Has(db poolweave.ReadOnlyKVStore, key []byte) (bool, error) {
	if len(key) == 0 {
		return false, nil
	}
	return db.Has(mb.dbKey(key))
}

func (mb *modelBucket) Put(db poolweave.KVStore, key []byte, m Model) ([]byte, error) {
	if reflect.TypeOf(m) != mb.model {
		return nil, errors.Wrapf(errors.ErrType, "cannot store %T in %s bucket", m, mb.name)
	}
	raw, err := Marshal(m)
	if err != nil {
		return nil, err
	}

	if len(key) == 0 {
		if mb.seq == nil {
			return nil, errors.Wrap(errors.ErrHuman, "key is required for a bucket without a sequence")
		}
		if key, err = mb.seq.NextVal(db); err != nil {
			return nil, errors.Wrap(err, "next id")
		}
	}

	if len(mb.indexes) != 0 {
		prev, err := mb.load(db, key)
		if err != nil {
			return nil, err
		}
		for _, idx := range mb.indexes {
			if err := idx.update(db, key, prev, m); err != nil {
				return nil, errors.Wrapf(err, "index %s", idx.name)
			}
		}
	}

	if err := db.Set(mb.dbKey(key), raw); err != nil {
		return nil, errors.Wrap(err, "cannot store in the database")
	}
	return key, nil
}

func (mb *modelBucket) Delete(db poolweave.KVStore, key []byte) error {
	prev, err := mb.load(db, key)
	if err != nil {
		return err
	}
	if prev == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", mb.name, key)
	}
	for _, idx := range mb.indexes {
		if err := idx.update(db, key, prev, nil); err != nil {
			return errors.Wrapf(err, "index %s", idx.name)
		}
	}
	if err := db.Delete(mb.dbKey(key)); err != nil {
		return errors.Wrap(err, "cannot delete from the database")
	}
	return nil
}

// load returns the stored model or nil if absent.
func (mb *modelBucket) load(db poolweave.ReadOnlyKVStore, key []byte) (Model, error) {
	raw, err := db.Get(mb.dbKey(key))
	if err != nil {
		return nil, errors.Wrap(err, "cannot load from the database")
	}
	if raw == nil {
		return nil, nil
	}
	m := mb.newModel()
	if err := Unmarshal(raw, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (mb *modelBucket) newModel() Model {
	return reflect.New(mb.model.Elem()).Interface().(Model)
}

func (mb *modelBucket) ByIndex(db poolweave.ReadOnlyKVStore, indexName string, value []byte, dest interface{}) ([][]byte, error) {
	idx, ok := mb.indexes[indexName]
	if !ok {
		return nil, errors.Wrapf(errors.ErrHuman, "unknown index %q", indexName)
	}
	keys, err := idx.keys(db, value)
	if err != nil {
		return nil, err
	}
	var models []poolweave.Model
	for _, key := range keys {
		raw, err := db.Get(mb.dbKey(key))
		if err != nil {
			return nil, errors.Wrap(err, "cannot load from the database")
		}
		if raw == nil {
			return nil, errors.Wrapf(errors.ErrDatabase, "index %s points to a missing %X", indexName, key)
		}
		models = append(models, poolweave.Pair(key, raw))
	}
	if err := mb.fill(models, dest); err != nil {
		return nil, err
	}
	return keys, nil
}

func (mb *modelBucket) All(db poolweave.ReadOnlyKVStore, dest interface{}) ([][]byte, error) {
	models, err := mb.prefixScan(db, nil)
	if err != nil {
		return nil, err
	}
	if err := mb.fill(models, dest); err != nil {
		return nil, err
	}
	keys := make([][]byte, len(models))
	for i, m := range models {
		keys[i] = m.Key
	}
	return keys, nil
}

// prefixScan returns all entities whose primary key starts with given prefix.
// Returned keys are stripped of the bucket prefix.
func (mb *modelBucket) prefixScan(db poolweave.ReadOnlyKVStore, prefix []byte) ([]poolweave.Model, error) {
	start := mb.dbKey(prefix)
	it, err := db.Iterator(start, store.PrefixEnd(start))
	if err != nil {
		return nil, errors.Wrap(err, "iterator")
	}
	models, err := store.ReadAll(it)
	if err != nil {
		return nil, errors.Wrap(err, "iterate")
	}
	for i := range models {
		models[i].Key = models[i].Key[len(mb.prefix):]
	}
	return models, nil
}

// fill unmarshals raw models into a pointer to a slice of model pointers.
func (mb *modelBucket) fill(models []poolweave.Model, dest interface{}) error {
	ptr := reflect.ValueOf(dest)
	if ptr.Kind() != reflect.Ptr || ptr.Elem().Kind() != reflect.Slice {
		return errors.Wrapf(errors.ErrType, "destination must be a pointer to a slice, got %T", dest)
	}
	slice := ptr.Elem()
	if slice.Type().Elem() != mb.model {
		return errors.Wrapf(errors.ErrType, "cannot load %s into %T", mb.model, dest)
	}
	for _, m := range models {
		obj := mb.newModel()
		if err := Unmarshal(m.Value, obj); err != nil {
			return err
		}
		slice = reflect.Append(slice, reflect.ValueOf(obj))
	}
	ptr.Elem().Set(slice)
	return nil
}

func (mb *modelBucket) Register(name string, r poolweave.QueryRouter) {
	if name == "" {
		name = mb.name
	}
	root := "/" + name
	r.Register(root, bucketQuery{mb})
	for idxName, idx := range mb.indexes {
		r.Register(root+"/"+idxName, indexQuery{bucket: mb, idx: idx})
	}
}
