package poolweave_test

import (
	"context"
	"testing"

	"github.com/iov-one/poolweave"
	"github.com/stretchr/testify/assert"
	"github.com/tendermint/tendermint/libs/log"
)

func TestContextHeight(t *testing.T) {
	bg := context.Background()
	_, ok := poolweave.GetHeight(bg)
	assert.False(t, ok)

	ctx := poolweave.WithHeight(bg, 42)
	h, ok := poolweave.GetHeight(ctx)
	assert.True(t, ok)
	assert.EqualValues(t, 42, h)

	assert.Panics(t, func() { poolweave.WithHeight(ctx, 43) })
}

func TestContextChainID(t *testing.T) {
	bg := context.Background()
	assert.Equal(t, "", poolweave.GetChainID(bg))

	ctx := poolweave.WithChainID(bg, "pool-test")
	assert.Equal(t, "pool-test", poolweave.GetChainID(ctx))

	assert.Panics(t, func() { poolweave.WithChainID(ctx, "another-one") })
	assert.Panics(t, func() { poolweave.WithChainID(bg, "no") })
}

func TestContextLogger(t *testing.T) {
	bg := context.Background()
	assert.Equal(t, poolweave.DefaultLogger, poolweave.GetLogger(bg))

	logger := log.TestingLogger()
	ctx := poolweave.WithLogger(bg, logger)
	assert.Equal(t, logger, poolweave.GetLogger(ctx))

	ctx = poolweave.WithLogInfo(ctx, "request", 7)
	assert.NotNil(t, poolweave.GetLogger(ctx))
}
