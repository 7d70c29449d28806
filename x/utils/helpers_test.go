package utils

import (
	"github.com/iov-one/poolweave"
)

// writeHandler writes the key, value pair and returns the error (may be nil)
type writeHandler struct {
	key   []byte
	value []byte
	err   error
}

var _ poolweave.Handler = writeHandler{}

func (h writeHandler) Check(ctx poolweave.Context, store poolweave.KVStore, tx poolweave.Tx) (*poolweave.CheckResult, error) {
	if err := store.Set(h.key, h.value); err != nil {
		return nil, err
	}
	return &poolweave.CheckResult{}, h.err
}

func (h writeHandler) Deliver(ctx poolweave.Context, store poolweave.KVStore, tx poolweave.Tx) (*poolweave.DeliverResult, error) {
	if err := store.Set(h.key, h.value); err != nil {
		return nil, err
	}
	return &poolweave.DeliverResult{Log: "written"}, h.err
}

// writeDecorator writes the key, value pair either before or after calling
// the handlers.
type writeDecorator struct {
	key   []byte
	value []byte
	after bool
}

var _ poolweave.Decorator = writeDecorator{}

func (d writeDecorator) Check(ctx poolweave.Context, store poolweave.KVStore, tx poolweave.Tx, next poolweave.Checker) (*poolweave.CheckResult, error) {
	if !d.after {
		_ = store.Set(d.key, d.value)
	}
	res, err := next.Check(ctx, store, tx)
	if d.after {
		_ = store.Set(d.key, d.value)
	}
	return res, err
}

func (d writeDecorator) Deliver(ctx poolweave.Context, store poolweave.KVStore, tx poolweave.Tx, next poolweave.Deliverer) (*poolweave.DeliverResult, error) {
	if !d.after {
		_ = store.Set(d.key, d.value)
	}
	res, err := next.Deliver(ctx, store, tx)
	if d.after {
		_ = store.Set(d.key, d.value)
	}
	return res, err
}

type panicHandler struct{}

var _ poolweave.Handler = panicHandler{}

func (panicHandler) Check(ctx poolweave.Context, store poolweave.KVStore, tx poolweave.Tx) (*poolweave.CheckResult, error) {
	panic("check panic")
}

func (panicHandler) Deliver(ctx poolweave.Context, store poolweave.KVStore, tx poolweave.Tx) (*poolweave.DeliverResult, error) {
	panic("deliver panic")
}
