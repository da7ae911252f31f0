package app

import (
	"fmt"
	"regexp"

	coffer "github.com/iov-one/coffer"
	"github.com/iov-one/coffer/errors"
)

var isPath = regexp.MustCompile(`^[a-z0-9_]+(/[a-z0-9_]+)*$`).MatchString

// Router allows us to register many handlers with different paths and then
// direct each message to the registered handler.
type Router struct {
	routes map[string]coffer.Handler
}

var _ coffer.Registry = (*Router)(nil)
var _ coffer.Handler = (*Router)(nil)

// NewRouter initializes a router with no routes.
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]coffer.Handler),
	}
}

// Handle registers a handler for the given message path. Registering two
// handlers for the same path or using an invalid path is a programmer error
// and panics.
func (r *Router) Handle(path string, h coffer.Handler) {
	if !isPath(path) {
		panic(fmt.Sprintf("invalid path %q", path))
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("re-registering route %q", path))
	}
	r.routes[path] = h
}

// handler returns the registered Handler for this message path. A handler
// that always fails is returned for an unknown path.
func (r *Router) handler(tx coffer.Tx) coffer.Handler {
	path := coffer.GetPath(tx)
	if h, ok := r.routes[path]; ok {
		return h
	}
	return notFoundHandler(path)
}

// Check dispatches to the proper handler based on the message path.
func (r *Router) Check(ctx coffer.Context, store coffer.KVStore, tx coffer.Tx) (*coffer.CheckResult, error) {
	return r.handler(tx).Check(ctx, store, tx)
}

// Deliver dispatches to the proper handler based on the message path.
func (r *Router) Deliver(ctx coffer.Context, store coffer.KVStore, tx coffer.Tx) (*coffer.DeliverResult, error) {
	return r.handler(tx).Deliver(ctx, store, tx)
}

// notFoundHandler always returns an unknown path error.
type notFoundHandler string

var _ coffer.Handler = notFoundHandler("")

func (h notFoundHandler) Check(ctx coffer.Context, store coffer.KVStore, tx coffer.Tx) (*coffer.CheckResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for path %q", string(h))
}

func (h notFoundHandler) Deliver(ctx coffer.Context, store coffer.KVStore, tx coffer.Tx) (*coffer.DeliverResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for path %q", string(h))
}
