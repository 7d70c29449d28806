package app

import (
	"github.com/iov-one/poolweave"
	"github.com/iov-one/poolweave/errors"
	"github.com/iov-one/poolweave/x/auth"
)

// Tx is the transaction processed by the application. It carries a single
// message together with the conditions of the callers that authorized it.
type Tx struct {
	Signers []poolweave.Condition
	Msg     poolweave.Msg
}

var _ poolweave.Tx = (*Tx)(nil)
var _ auth.SignedTx = (*Tx)(nil)

// NewTx returns a transaction signed by given conditions.
func NewTx(msg poolweave.Msg, signers ...poolweave.Condition) *Tx {
	return &Tx{Signers: signers, Msg: msg}
}

// GetMsg returns the carried message.
func (tx *Tx) GetMsg() (poolweave.Msg, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrMsg, "transaction without a message")
	}
	return tx.Msg, nil
}

// GetSigners returns the conditions that authorized this transaction.
func (tx *Tx) GetSigners() []poolweave.Condition {
	return tx.Signers
}
