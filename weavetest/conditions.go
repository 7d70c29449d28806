package weavetest

import (
	"crypto/rand"

	"github.com/iov-one/poolweave"
	"golang.org/x/crypto/ed25519"
)

// NewCondition returns a condition of a freshly generated ed25519 public key.
// Every call returns a unique principal.
func NewCondition() poolweave.Condition {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}
	return poolweave.NewCondition("sigs", "ed25519", pub)
}

// NewAddress returns the address of a new, unique condition.
func NewAddress() poolweave.Address {
	return NewCondition().Address()
}
