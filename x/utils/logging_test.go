package utils

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/iov-one/poolweave"
	"github.com/iov-one/poolweave/store"
	"github.com/stretchr/testify/assert"
	"github.com/tendermint/tendermint/libs/log"
)

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewTMLogger(log.NewSyncWriter(&buf))
	ctx := poolweave.WithLogger(context.Background(), logger)
	ctx = poolweave.WithHeight(ctx, 7)
	ctx = poolweave.WithChainID(ctx, "pool-chain")
	db := store.MemStore()

	l := NewLogging()

	_, err := l.Deliver(ctx, db, nil, writeHandler{key: []byte("a"), value: []byte("b")})
	assert.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "written")
	assert.Contains(t, out, "height=7")
	assert.Contains(t, out, "chain=pool-chain")

	buf.Reset()
	_, err = l.Deliver(ctx, db, nil, writeHandler{key: []byte("a"), value: []byte("b"), err: fmt.Errorf("boom")})
	assert.Error(t, err)
	assert.Contains(t, buf.String(), "err=boom")
}
