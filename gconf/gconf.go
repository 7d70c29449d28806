package gconf

import (
	"github.com/iov-one/poolweave"
	"github.com/iov-one/poolweave/errors"
	"github.com/iov-one/poolweave/orm"
)

// ReadStore is a subset of poolweave.ReadOnlyKVStore.
type ReadStore interface {
	Get([]byte) ([]byte, error)
}

// Store is a subset of poolweave.KVStore.
type Store interface {
	ReadStore
	Set([]byte, []byte) error
}

// Configuration is implemented by any protobuf message that knows how to
// validate its own state.
type Configuration interface {
	orm.Model
}

func key(pkg string) []byte {
	return []byte("_c:" + pkg)
}

// Save will validate the object, before writing it to a special
// "configuration" singleton for that package name.
func Save(db Store, pkg string, src Configuration) error {
	k := key(pkg)
	raw, err := orm.Marshal(src)
	if err != nil {
		return errors.Wrapf(err, "key %q", k)
	}
	return db.Set(k, raw)
}

// Load reads the configuration of given package into dst. ErrNotFound is
// returned if the configuration was never saved.
func Load(db ReadStore, pkg string, dst Configuration) error {
	k := key(pkg)
	raw, err := db.Get(k)
	if err != nil {
		return err
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "key %q", k)
	}
	if err := orm.Unmarshal(raw, dst); err != nil {
		return errors.Wrapf(err, "key %q", k)
	}
	return nil
}

// InitConfig will take opts["conf"][pkg], parse it into the given
// Configuration object, validate it and store under the proper key in the
// database.
func InitConfig(db Store, opts poolweave.Options, pkg string, conf Configuration) error {
	var confOptions poolweave.Options
	if err := opts.ReadOptions("conf", &confOptions); err != nil {
		return errors.Wrap(err, "read conf")
	}
	if confOptions[pkg] == nil {
		return errors.Wrapf(errors.ErrNotFound, "no configuration in genesis for %q package", pkg)
	}
	if err := confOptions.ReadOptions(pkg, conf); err != nil {
		return errors.Wrapf(err, "read configuration for %s", pkg)
	}
	if err := Save(db, pkg, conf); err != nil {
		return errors.Wrapf(err, "save configuration for %s", pkg)
	}
	return nil
}
