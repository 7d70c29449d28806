package weavetest

import "github.com/iov-one/poolweave"

// Tx represents a single message transaction. Authentication is provided by
// the context, see CtxAuth.
type Tx struct {
	// Msg is the message that is to be processed by this transaction.
	Msg poolweave.Msg
	// Err if set is returned by GetMsg.
	Err error
}

var _ poolweave.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (poolweave.Msg, error) {
	return tx.Msg, tx.Err
}
