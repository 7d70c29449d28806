package weavetest

import "github.com/iov-one/poolweave"

// Handler is a mock implementation of the poolweave.Handler interface.
//
// Every call is counted and returns the configured result and error.
type Handler struct {
	checkCall   int
	CheckResult poolweave.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult poolweave.DeliverResult
	DeliverErr    error
}

var _ poolweave.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx poolweave.Context, db poolweave.KVStore, tx poolweave.Tx) (*poolweave.CheckResult, error) {
	h.checkCall++
	if h.CheckErr != nil {
		return nil, h.CheckErr
	}
	res := h.CheckResult
	return &res, nil
}

func (h *Handler) Deliver(ctx poolweave.Context, db poolweave.KVStore, tx poolweave.Tx) (*poolweave.DeliverResult, error) {
	h.deliverCall++
	if h.DeliverErr != nil {
		return nil, h.DeliverErr
	}
	res := h.DeliverResult
	return &res, nil
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}
