package registry

import (
	"context"
	"errors"
)

// ErrNoSession is the panic value of FromContext outside a desktop session.
var ErrNoSession = errors.New("registry: no window registry in context (FromContext called outside a desktop session)")

type sessionKey struct{}

// NewContext binds reg to ctx for the lifetime of a desktop session.
func NewContext(ctx context.Context, reg *Registry) context.Context {
	return context.WithValue(ctx, sessionKey{}, reg)
}

// FromContext returns the session's registry. It panics with ErrNoSession
// when ctx does not carry one: that is a wiring bug in the caller, not a
// condition to recover from.
func FromContext(ctx context.Context) *Registry {
	reg, ok := Lookup(ctx)
	if !ok {
		panic(ErrNoSession)
	}
	return reg
}

// Lookup returns the session's registry, if ctx carries one.
func Lookup(ctx context.Context) (*Registry, bool) {
	if ctx == nil {
		return nil, false
	}
	reg, ok := ctx.Value(sessionKey{}).(*Registry)
	return reg, ok && reg != nil
}
