package transfer

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/poolweave"
	"github.com/iov-one/poolweave/errors"
	"github.com/iov-one/poolweave/orm"
)

// Transfer is a single recorded movement of funds.
type Transfer struct {
	Source      poolweave.Address `protobuf:"bytes,1,opt,name=source,proto3" json:"source,omitempty"`
	Destination poolweave.Address `protobuf:"bytes,2,opt,name=destination,proto3" json:"destination,omitempty"`
	Amount      int64             `protobuf:"varint,3,opt,name=amount,proto3" json:"amount,omitempty"`
	// Height of the block in which the transfer happened.
	Height int64  `protobuf:"varint,4,opt,name=height,proto3" json:"height,omitempty"`
	Memo   string `protobuf:"bytes,5,opt,name=memo,proto3" json:"memo,omitempty"`
}

var _ orm.Model = (*Transfer)(nil)

func (m *Transfer) Reset()         { *m = Transfer{} }
func (m *Transfer) String() string { return proto.CompactTextString(m) }
func (*Transfer) ProtoMessage()    {}

const maxMemoSize = 128

// Validate ensures the transfer moves a positive amount between two valid
// addresses.
func (m *Transfer) Validate() error {
	if err := m.Source.Validate(); err != nil {
		return errors.Wrap(err, "source")
	}
	if err := m.Destination.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	if m.Amount <= 0 {
		return errors.Wrapf(errors.ErrAmount, "non positive amount %d", m.Amount)
	}
	if m.Height < 0 {
		return errors.Wrap(errors.ErrModel, "negative height")
	}
	if len(m.Memo) > maxMemoSize {
		return errors.Wrapf(errors.ErrInput, "memo longer than %d characters", maxMemoSize)
	}
	return nil
}

// NewBucket returns a bucket for storing transfers. Keys are assigned from a
// sequence, so the key order is the order in which transfers happened.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket("transfers", &Transfer{},
		orm.WithIDSequence(orm.NewSequence("transfers", "id")),
		orm.WithIndex("source", sourceIndex),
		orm.WithIndex("destination", destinationIndex),
	)
}

func sourceIndex(obj orm.Model) ([]byte, error) {
	t, ok := obj.(*Transfer)
	if !ok {
		return nil, errors.WithType(errors.ErrModel, obj)
	}
	return t.Source, nil
}

func destinationIndex(obj orm.Model) ([]byte, error) {
	t, ok := obj.(*Transfer)
	if !ok {
		return nil, errors.WithType(errors.ErrModel, obj)
	}
	return t.Destination, nil
}
