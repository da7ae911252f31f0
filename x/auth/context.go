package auth

import (
	"context"

	coffer "github.com/iov-one/coffer"
	"github.com/iov-one/coffer/x"
)

type contextKey int // local to the auth module

const (
	contextKeyConditions contextKey = iota
)

// SetConditions stamps the fulfilled conditions into the context. Only the
// operation entry point should establish identities, everything downstream
// reads them through Authenticate.
func SetConditions(ctx coffer.Context, perms ...coffer.Condition) coffer.Context {
	return context.WithValue(ctx, contextKeyConditions, perms)
}

// Authenticate implements x.Authenticator on top of the conditions stored in
// the context.
type Authenticate struct{}

var _ x.Authenticator = Authenticate{}

// GetConditions returns all conditions stamped into the context, may be
// empty.
func (a Authenticate) GetConditions(ctx coffer.Context) []coffer.Condition {
	// (val, ok) form to return nil instead of panic if unset
	val, _ := ctx.Value(contextKeyConditions).([]coffer.Condition)
	return val
}

// HasAddress returns true iff any stamped condition matches this address.
func (a Authenticate) HasAddress(ctx coffer.Context, addr coffer.Address) bool {
	for _, perm := range a.GetConditions(ctx) {
		if addr.Equals(perm.Address()) {
			return true
		}
	}
	return false
}
