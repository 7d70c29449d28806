package orm

import (
	"encoding/binary"

	"github.com/iov-one/poolweave"
	"github.com/iov-one/poolweave/errors"
)

// Sequence maintains a persisted counter and generates a series of keys.
// Each key is greater than the last, both by DecodeSequence as well as by
// bytes.Compare on NextVal. A value is never handed out twice, even when the
// entity created with it is deleted later.
type Sequence struct {
	id []byte
}

// NewSequence returns a sequence counter. Sequence is using following pattern
// to construct a key:
//    _s.<bucket>:<name>
func NewSequence(bucket, name string) Sequence {
	id := "_s." + bucket + ":" + name
	return Sequence{
		id: []byte(id),
	}
}

// NextVal increments the sequence and returns its state as 8 bytes.
func (s *Sequence) NextVal(db poolweave.KVStore) ([]byte, error) {
	_, bz, err := s.increment(db, 1)
	return bz, err
}

// Latest returns the most recently handed out value of the sequence, zero if
// none. This method does not modify the sequence state.
func (s *Sequence) Latest(db poolweave.ReadOnlyKVStore) (int64, error) {
	raw, err := db.Get(s.id)
	if err != nil {
		return 0, errors.Wrap(err, "sequence")
	}
	return DecodeSequence(raw), nil
}

func (s *Sequence) increment(db poolweave.KVStore, inc int64) (int64, []byte, error) {
	val, err := s.Latest(db)
	if err != nil {
		return 0, nil, err
	}
	val += inc
	raw := EncodeSequence(val)
	if err := db.Set(s.id, raw); err != nil {
		return 0, nil, errors.Wrap(err, "sequence")
	}
	return val, raw, nil
}

// DecodeSequence reads the 8 byte big-endian representation of a sequence
// value. Nil decodes to zero.
func DecodeSequence(bz []byte) int64 {
	if len(bz) != 8 {
		return 0
	}
	return int64(binary.BigEndian.Uint64(bz))
}

// EncodeSequence returns the 8 byte big-endian representation of a sequence
// value, so that the byte order of keys follows the numeric order.
func EncodeSequence(val int64) []byte {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, uint64(val))
	return bz
}
