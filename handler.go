package poolweave

import (
	"encoding/json"

	"github.com/iov-one/poolweave/errors"
)

// Handler is a core engine that can process a few specific messages, for
// example "deposit" or "execute a distribution".
type Handler interface {
	Checker
	Deliverer
}

// Checker is a subset of Handler to verify the validity of a transaction
// without persisting its effects.
type Checker interface {
	Check(ctx Context, store KVStore, tx Tx) (*CheckResult, error)
}

// Deliverer is a subset of Handler to execute a transaction.
type Deliverer interface {
	Deliver(ctx Context, store KVStore, tx Tx) (*DeliverResult, error)
}

// Decorator wraps a Handler to provide common functionality like
// authentication or atomicity to many Handlers.
type Decorator interface {
	Check(ctx Context, store KVStore, tx Tx, next Checker) (*CheckResult, error)
	Deliver(ctx Context, store KVStore, tx Tx, next Deliverer) (*DeliverResult, error)
}

// Registry is an interface to register your handler, the setup side of a
// Router.
type Registry interface {
	// Handle assigns given handler to handle processing of every message
	// of the same path as the given one.
	Handle(Msg, Handler)
}

// CheckResult captures any non-error result of a Check call.
type CheckResult struct {
	// Log contains a human readable note.
	Log string
	// GasAllocated is the estimated cost of executing the transaction.
	GasAllocated int64
}

// DeliverResult captures any non-error result of a Deliver call.
type DeliverResult struct {
	// Data is a machine-parseable return value, like the id of a newly
	// created entity.
	Data []byte
	// Log is human-readable informational string.
	Log string
}

// Options are the app options loaded from the genesis file.
// Each extension can look up its key and parse the json as desired.
type Options map[string]json.RawMessage

// ReadOptions reads the values stored under a given key, and parses the json
// into the given obj. Missing key is a noop.
func (o Options) ReadOptions(key string, obj interface{}) error {
	msg := o[key]
	if len(msg) == 0 {
		return nil
	}
	if err := json.Unmarshal(msg, obj); err != nil {
		return errors.Wrapf(errors.ErrInput, "option %q: %s", key, err)
	}
	return nil
}

// Initializer implementations are used to initialize extensions from genesis
// file contents.
type Initializer interface {
	FromGenesis(Options, KVStore) error
}
