package app

import (
	"fmt"
	"regexp"

	"github.com/iov-one/poolweave"
	"github.com/iov-one/poolweave/errors"
)

// isPath is the RegExp to ensure the routes make sense
var isPath = regexp.MustCompile(`^[a-z0-9_]+(/[a-z0-9_]+)*$`).MatchString

// Router allows us to register many handlers with different message paths
// and then direct each message to the proper handler.
//
// Minimal interface modeled after net/http.ServeMux.
type Router struct {
	routes map[string]poolweave.Handler
}

var _ poolweave.Registry = (*Router)(nil)
var _ poolweave.Handler = (*Router)(nil)

// NewRouter returns a new empty router instance.
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]poolweave.Handler, 16),
	}
}

// Handle adds a new Handler for the path of given message. Panics if another
// Handler was already registered or the path is malformed.
func (r *Router) Handle(m poolweave.Msg, h poolweave.Handler) {
	path := m.Path()
	if !isPath(path) {
		panic(fmt.Sprintf("invalid path: %q", path))
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("re-registering route: %s", path))
	}
	r.routes[path] = h
}

// Handler returns the registered Handler for this path. If no path is found,
// returns a handler that always fails with ErrNotFound.
func (r *Router) Handler(path string) poolweave.Handler {
	if h, ok := r.routes[path]; ok {
		return h
	}
	return notFoundHandler(path)
}

// Check dispatches to the proper handler based on path.
func (r *Router) Check(ctx poolweave.Context, store poolweave.KVStore, tx poolweave.Tx) (*poolweave.CheckResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	if msg == nil {
		return nil, errors.Wrap(errors.ErrMsg, "missing message")
	}
	return r.Handler(msg.Path()).Check(ctx, store, tx)
}

// Deliver dispatches to the proper handler based on path.
func (r *Router) Deliver(ctx poolweave.Context, store poolweave.KVStore, tx poolweave.Tx) (*poolweave.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	if msg == nil {
		return nil, errors.Wrap(errors.ErrMsg, "missing message")
	}
	return r.Handler(msg.Path()).Deliver(ctx, store, tx)
}

// notFoundHandler always returns ErrNotFound error regardless of the
// arguments.
type notFoundHandler string

func (path notFoundHandler) Check(poolweave.Context, poolweave.KVStore, poolweave.Tx) (*poolweave.CheckResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", string(path))
}

func (path notFoundHandler) Deliver(poolweave.Context, poolweave.KVStore, poolweave.Tx) (*poolweave.DeliverResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", string(path))
}
