package poolweave

import (
	"reflect"

	"github.com/iov-one/poolweave/errors"
)

// Msg is a request for the ledger to take an action (make a state
// transition). It is just the request, and must be validated by the
// Handlers. All authentication information is in the wrapping Tx.
type Msg interface {
	// Path returns the message path. This is used by the Router to locate
	// the proper Handler.
	//
	// Must be alphanumeric with underscores and slashes.
	Path() string

	// Validate performs structural checks of the message content. It must
	// not depend on the state of the ledger.
	Validate() error
}

// Tx represents the data sent from a caller to the ledger. It includes the
// actual message, along with the information needed to authenticate the
// caller.
//
// Each application defines its own tx type, that embeds the interfaces
// required by its decorators.
type Tx interface {
	// GetMsg returns the action we wish to communicate.
	GetMsg() (Msg, error)
}

// GetPath returns the path of the message, or (missing) if no message.
func GetPath(tx Tx) string {
	msg, err := tx.GetMsg()
	if err == nil && msg != nil {
		return msg.Path()
	}
	return "(missing)"
}

// LoadMsg extracts the message from given transaction, validates it and
// assigns its value to given destination. Destination must be a pointer to
// the message type.
func LoadMsg(tx Tx, destination interface{}) error {
	msg, err := tx.GetMsg()
	if err != nil {
		return errors.Wrap(err, "cannot get transaction message")
	}
	if msg == nil {
		return errors.Wrap(errors.ErrMsg, "no message")
	}
	if err := msg.Validate(); err != nil {
		return err
	}

	dest := reflect.ValueOf(destination)
	if dest.Kind() != reflect.Ptr || dest.IsNil() {
		return errors.Wrap(errors.ErrHuman, "destination must be a non nil pointer")
	}
	src := reflect.ValueOf(msg)
	switch {
	case src.Type() == dest.Type():
		dest.Elem().Set(src.Elem())
	case src.Type() == dest.Elem().Type():
		dest.Elem().Set(src)
	default:
		return errors.Wrapf(errors.ErrType, "want %T, got %T", destination, msg)
	}
	return nil
}
