package x

import (
	"github.com/iov-one/poolweave"
)

// Authenticator tells a handler which principals approved the current
// transaction. Pool handlers take one in their constructor, so the host can
// decide how callers are identified.
type Authenticator interface {
	// GetConditions returns every condition fulfilled by the caller, in the
	// order the host declared them.
	GetConditions(poolweave.Context) []poolweave.Condition
	// HasAddress reports whether any fulfilled condition has this address.
	HasAddress(poolweave.Context, poolweave.Address) bool
}

// MultiAuth merges the principals known to several authenticators.
type MultiAuth struct {
	impls []Authenticator
}

var _ Authenticator = MultiAuth{}

// ChainAuth returns an authenticator consulting all given ones in order.
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth{impls}
}

func (m MultiAuth) GetConditions(ctx poolweave.Context) []poolweave.Condition {
	var res []poolweave.Condition
	for _, impl := range m.impls {
		res = append(res, impl.GetConditions(ctx)...)
	}
	return res
}

func (m MultiAuth) HasAddress(ctx poolweave.Context, addr poolweave.Address) bool {
	for _, impl := range m.impls {
		if impl.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// MainSigner returns the first declared principal, the one a deposit is
// attributed to, or nil for an anonymous transaction.
func MainSigner(ctx poolweave.Context, auth Authenticator) poolweave.Condition {
	signers := auth.GetConditions(ctx)
	if len(signers) == 0 {
		return nil
	}
	return signers[0]
}
