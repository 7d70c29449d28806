package app

import (
	"github.com/iov-one/poolweave"
)

// Decorators holds a chain of decorators, not yet resolved by a Handler
type Decorators struct {
	chain []poolweave.Decorator
}

/*
ChainDecorators takes a chain of decorators, and upon adding a final Handler
(often a Router), returns a Handler that will execute this whole stack.

	app.ChainDecorators(
	  utils.NewLogging(),
	  utils.NewRecovery(),
	  auth.NewDecorator(),
	  utils.NewSavepoint().OnDeliver(),
	).WithHandler(
	  router,
	)
*/
func ChainDecorators(chain ...poolweave.Decorator) Decorators {
	return Decorators{}.Chain(chain...)
}

// Chain allows us to keep adding more Decorators to the chain. Nil
// decorators are skipped, so that optional ones can be passed inline.
func (d Decorators) Chain(chain ...poolweave.Decorator) Decorators {
	next := make([]poolweave.Decorator, 0, len(d.chain)+len(chain))
	next = append(next, d.chain...)
	for _, dec := range chain {
		if dec != nil {
			next = append(next, dec)
		}
	}
	return Decorators{chain: next}
}

// WithHandler resolves the stack and returns a concrete Handler that will
// pass through the chain of decorators before calling the final Handler.
func (d Decorators) WithHandler(h poolweave.Handler) poolweave.Handler {
	// The top of the chain is executed first, so wrap from the bottom.
	for i := len(d.chain) - 1; i >= 0; i-- {
		h = step{d: d.chain[i], next: h}
	}
	return h
}

// step captures one step executing a decorator around a specific Handler.
type step struct {
	d    poolweave.Decorator
	next poolweave.Handler
}

var _ poolweave.Handler = step{}

func (s step) Check(ctx poolweave.Context, store poolweave.KVStore, tx poolweave.Tx) (*poolweave.CheckResult, error) {
	return s.d.Check(ctx, store, tx, s.next)
}

func (s step) Deliver(ctx poolweave.Context, store poolweave.KVStore, tx poolweave.Tx) (*poolweave.DeliverResult, error) {
	return s.d.Deliver(ctx, store, tx, s.next)
}
