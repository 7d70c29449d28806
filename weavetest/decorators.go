package weavetest

import "github.com/iov-one/poolweave"

// Decorator is a mock implementation of the poolweave.Decorator interface.
//
// Set CheckErr or DeliverErr to force error response for corresponding method.
// If error attributes are not set then wrapped handler method is called and
// its result returned. Each method call is counted, regardless of its result.
type Decorator struct {
	checkCall int
	// CheckErr if set is returned by the Check method before calling
	// the wrapped handler.
	CheckErr error

	deliverCall int
	// DeliverErr if set is returned by the Deliver method before calling
	// the wrapped handler.
	DeliverErr error
}

var _ poolweave.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx poolweave.Context, db poolweave.KVStore, tx poolweave.Tx, next poolweave.Checker) (*poolweave.CheckResult, error) {
	d.checkCall++
	if d.CheckErr != nil {
		return nil, d.CheckErr
	}
	return next.Check(ctx, db, tx)
}

func (d *Decorator) Deliver(ctx poolweave.Context, db poolweave.KVStore, tx poolweave.Tx, next poolweave.Deliverer) (*poolweave.DeliverResult, error) {
	d.deliverCall++
	if d.DeliverErr != nil {
		return nil, d.DeliverErr
	}
	return next.Deliver(ctx, db, tx)
}

func (d *Decorator) CheckCallCount() int {
	return d.checkCall
}

func (d *Decorator) DeliverCallCount() int {
	return d.deliverCall
}

func (d *Decorator) CallCount() int {
	return d.checkCall + d.deliverCall
}

// Decorate returns a handler that calls given decorator first.
func Decorate(h poolweave.Handler, d poolweave.Decorator) poolweave.Handler {
	return &decoratedHandler{hn: h, dc: d}
}

type decoratedHandler struct {
	hn poolweave.Handler
	dc poolweave.Decorator
}

var _ poolweave.Handler = (*decoratedHandler)(nil)

func (d *decoratedHandler) Check(ctx poolweave.Context, db poolweave.KVStore, tx poolweave.Tx) (*poolweave.CheckResult, error) {
	return d.dc.Check(ctx, db, tx, d.hn)
}

func (d *decoratedHandler) Deliver(ctx poolweave.Context, db poolweave.KVStore, tx poolweave.Tx) (*poolweave.DeliverResult, error) {
	return d.dc.Deliver(ctx, db, tx, d.hn)
}
