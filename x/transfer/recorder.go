package transfer

import (
	"github.com/iov-one/poolweave"
	"github.com/iov-one/poolweave/errors"
	"github.com/iov-one/poolweave/orm"
)

// Recorder is implemented by anything that can apply a movement of funds.
// A host ledger that holds real funds plugs in by implementing it.
type Recorder interface {
	Record(ctx poolweave.Context, db poolweave.KVStore, src, dst poolweave.Address, amount int64, memo string) error
}

// Log is a Recorder that persists every transfer in the database and writes
// it to the context logger.
type Log struct {
	bucket orm.ModelBucket
}

var _ Recorder = (*Log)(nil)

// NewLog returns a recorder persisting transfers in the transfers bucket.
func NewLog() *Log {
	return &Log{bucket: NewBucket()}
}

// Record stores a transfer at the current block height.
func (l *Log) Record(ctx poolweave.Context, db poolweave.KVStore, src, dst poolweave.Address, amount int64, memo string) error {
	height, _ := poolweave.GetHeight(ctx)
	t := &Transfer{
		Source:      src,
		Destination: dst,
		Amount:      amount,
		Height:      height,
		Memo:        memo,
	}
	key, err := l.bucket.Put(db, nil, t)
	if err != nil {
		return errors.Wrap(err, "cannot record transfer")
	}
	poolweave.GetLogger(ctx).Debug("transfer",
		"id", orm.DecodeSequence(key),
		"src", src,
		"dst", dst,
		"amount", amount,
	)
	return nil
}

// BySource returns all transfers sent from given address.
func (l *Log) BySource(db poolweave.ReadOnlyKVStore, src poolweave.Address) ([]*Transfer, error) {
	var res []*Transfer
	if _, err := l.bucket.ByIndex(db, "source", src, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// ByDestination returns all transfers received by given address.
func (l *Log) ByDestination(db poolweave.ReadOnlyKVStore, dst poolweave.Address) ([]*Transfer, error) {
	var res []*Transfer
	if _, err := l.bucket.ByIndex(db, "destination", dst, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// RegisterQuery registers transfers under /transfers, /transfers/source and
// /transfers/destination.
func RegisterQuery(qr poolweave.QueryRouter) {
	NewBucket().Register("transfers", qr)
}
