package weavetest

import (
	"context"
	"fmt"

	"github.com/iov-one/poolweave"
)

// Auth is a mock implementing x.Authenticator interface that always
// authenticates the same principals, regardless of the context.
type Auth struct {
	// Signer is a single authenticated principal.
	Signer poolweave.Condition

	// Signers are additional authenticated principals.
	Signers []poolweave.Condition
}

func (a *Auth) GetConditions(poolweave.Context) []poolweave.Condition {
	if a.Signer != nil {
		return append([]poolweave.Condition{a.Signer}, a.Signers...)
	}
	return a.Signers
}

func (a *Auth) HasAddress(ctx poolweave.Context, addr poolweave.Address) bool {
	for _, s := range a.Signers {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	if a.Signer == nil {
		return false
	}
	return addr.Equals(a.Signer.Address())
}

// CtxAuth is a mock implementing x.Authenticator interface.
//
// Conditions are stored on the context, so that a single handler instance
// can be called by different principals within one test.
type CtxAuth struct {
	// Key used to set and retrieve conditions from the context.
	Key string
}

// SetConditions returns a context authenticating given principals.
func (a *CtxAuth) SetConditions(ctx poolweave.Context, permissions ...poolweave.Condition) poolweave.Context {
	return context.WithValue(ctx, ctxAuthKey(a.Key), permissions)
}

func (a *CtxAuth) GetConditions(ctx poolweave.Context) []poolweave.Condition {
	val := ctx.Value(ctxAuthKey(a.Key))
	if val == nil {
		return nil
	}
	conds, ok := val.([]poolweave.Condition)
	if !ok {
		panic(fmt.Sprintf("instead of []poolweave.Condition got %T", val))
	}
	return conds
}

func (a *CtxAuth) HasAddress(ctx poolweave.Context, addr poolweave.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}

// ctxAuthKey avoids collisions with string keys set by other packages.
type ctxAuthKey string
