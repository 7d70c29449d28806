/*
Package orm provides an easy to use db wrapper.

State space is broken into prefixed sections called buckets.
* Each bucket contains only one type of model.
* It has a primary key and may possess secondary indexes.
* Keys of new entities are assigned from a persisted Sequence.

Models are protobuf messages, serialized with the gogo/protobuf codec.
*/
package orm

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/poolweave/errors"
)

// Model is implemented by any entity that can be stored using a ModelBucket.
type Model interface {
	proto.Message
	Validate() error
}

// Marshal validates the model and returns its binary representation.
func Marshal(m Model) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid %T", m)
	}
	raw, err := proto.Marshal(m)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrModel, "marshal %T: %s", m, err)
	}
	return raw, nil
}

// Unmarshal loads the model state from its binary representation.
func Unmarshal(raw []byte, dest Model) error {
	if err := proto.Unmarshal(raw, dest); err != nil {
		return errors.Wrapf(errors.ErrModel, "unmarshal %T: %s", dest, err)
	}
	return nil
}
