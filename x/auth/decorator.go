/*
Package auth provides the authentication middleware. It reads the signers
declared by a transaction, validates them and exposes them to the handlers
through the Authenticate type.
*/
package auth

import (
	"github.com/iov-one/poolweave"
	"github.com/iov-one/poolweave/errors"
)

// SignedTx is a transaction that declares its signers.
type SignedTx interface {
	poolweave.Tx
	GetSigners() []poolweave.Condition
}

// Decorator puts the signers of a transaction on the context, so that
// Authenticate can find them later. By default a transaction that declares
// no signer is rejected with ErrUnauthorized. With AllowMissingSigs it
// reaches the next handler with no principal on the context.
type Decorator struct {
	allowMissing bool
}

var _ poolweave.Decorator = Decorator{}

// NewDecorator returns a decorator that rejects transactions without any
// signer.
func NewDecorator() Decorator {
	return Decorator{}
}

// AllowMissingSigs lets transactions without signers through, so that the
// handlers report their own errors for anonymous callers.
func (d Decorator) AllowMissingSigs() Decorator {
	d.allowMissing = true
	return d
}

// Check verifies signers before calling down the stack.
func (d Decorator) Check(ctx poolweave.Context, store poolweave.KVStore, tx poolweave.Tx, next poolweave.Checker) (*poolweave.CheckResult, error) {
	ctx, err := d.authenticate(ctx, tx)
	if err != nil {
		return nil, err
	}
	return next.Check(ctx, store, tx)
}

// Deliver verifies signers before calling down the stack.
func (d Decorator) Deliver(ctx poolweave.Context, store poolweave.KVStore, tx poolweave.Tx, next poolweave.Deliverer) (*poolweave.DeliverResult, error) {
	ctx, err := d.authenticate(ctx, tx)
	if err != nil {
		return nil, err
	}
	return next.Deliver(ctx, store, tx)
}

func (d Decorator) authenticate(ctx poolweave.Context, tx poolweave.Tx) (poolweave.Context, error) {
	var signers []poolweave.Condition
	if stx, ok := tx.(SignedTx); ok {
		signers = stx.GetSigners()
	}
	if len(signers) == 0 {
		if d.allowMissing {
			return ctx, nil
		}
		return nil, errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	for i, s := range signers {
		if err := s.Validate(); err != nil {
			return nil, errors.Wrapf(err, "signer %d", i)
		}
	}
	return withSigners(ctx, signers), nil
}
