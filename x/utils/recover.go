package utils

import (
	"github.com/iov-one/poolweave"
	"github.com/iov-one/poolweave/errors"
)

// Recovery is a decorator to recover from panics in transactions, so that a
// broken handler fails the transaction instead of the node.
type Recovery struct{}

var _ poolweave.Decorator = Recovery{}

// NewRecovery creates a Recovery decorator
func NewRecovery() Recovery {
	return Recovery{}
}

// Check turns panics into ErrPanic
func (Recovery) Check(ctx poolweave.Context, store poolweave.KVStore, tx poolweave.Tx, next poolweave.Checker) (_ *poolweave.CheckResult, err error) {
	defer logPanic(ctx, &err)
	defer errors.Recover(&err)
	return next.Check(ctx, store, tx)
}

// Deliver turns panics into ErrPanic
func (Recovery) Deliver(ctx poolweave.Context, store poolweave.KVStore, tx poolweave.Tx, next poolweave.Deliverer) (_ *poolweave.DeliverResult, err error) {
	defer logPanic(ctx, &err)
	defer errors.Recover(&err)
	return next.Deliver(ctx, store, tx)
}

func logPanic(ctx poolweave.Context, err *error) {
	if errors.ErrPanic.Is(*err) {
		poolweave.GetLogger(ctx).Error("recovered from panic", "err", *err)
	}
}
