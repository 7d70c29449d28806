package utils

import (
	"time"

	"github.com/iov-one/poolweave"
)

// Logging is a decorator to log messages as they pass through. Every entry
// carries the message path, the block height and the chain id, so the
// history of a pool can be followed in the node output.
type Logging struct{}

var _ poolweave.Decorator = Logging{}

// NewLogging creates a Logging decorator
func NewLogging() Logging {
	return Logging{}
}

// Check logs error -> info, success -> debug
func (Logging) Check(ctx poolweave.Context, store poolweave.KVStore, tx poolweave.Tx, next poolweave.Checker) (*poolweave.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, store, tx)
	var resLog string
	if err == nil {
		resLog = res.Log
	}
	logDuration(ctx, tx, start, resLog, err, true)
	return res, err
}

// Deliver logs error -> error, success -> info
func (Logging) Deliver(ctx poolweave.Context, store poolweave.KVStore, tx poolweave.Tx, next poolweave.Deliverer) (*poolweave.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, store, tx)
	var resLog string
	if err == nil {
		resLog = res.Log
	}
	logDuration(ctx, tx, start, resLog, err, false)
	return res, err
}

func logDuration(ctx poolweave.Context, tx poolweave.Tx, start time.Time, msg string, err error, check bool) {
	logger := poolweave.GetLogger(ctx).With(
		"path", txPath(tx),
		"duration", time.Since(start)/time.Microsecond,
	)
	if height, ok := poolweave.GetHeight(ctx); ok {
		logger = logger.With("height", height)
	}
	if chainID := poolweave.GetChainID(ctx); chainID != "" {
		logger = logger.With("chain", chainID)
	}

	// An empty message is still logged, the key values are what matters.
	switch {
	case err != nil && check:
		logger.Info(msg, "err", err)
	case err != nil:
		logger.Error(msg, "err", err)
	case check:
		logger.Debug(msg)
	default:
		logger.Info(msg)
	}
}

func txPath(tx poolweave.Tx) string {
	if tx == nil {
		return ""
	}
	return poolweave.GetPath(tx)
}
