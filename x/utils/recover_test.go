package utils

import (
	"context"
	"testing"

	"github.com/iov-one/poolweave/errors"
	"github.com/iov-one/poolweave/store"
	"github.com/stretchr/testify/assert"
)

func TestRecovery(t *testing.T) {
	var h panicHandler
	r := NewRecovery()

	ctx := context.Background()
	s := store.MemStore()

	assert.Panics(t, func() { _, _ = h.Check(ctx, s, nil) })
	assert.Panics(t, func() { _, _ = h.Deliver(ctx, s, nil) })

	_, err := r.Check(ctx, s, nil, h)
	assert.True(t, errors.ErrPanic.Is(err))

	_, err = r.Deliver(ctx, s, nil, h)
	assert.True(t, errors.ErrPanic.Is(err))

	// A handler that does not panic is untouched.
	res, err := r.Deliver(ctx, s, nil, writeHandler{key: []byte("a"), value: []byte("b")})
	assert.NoError(t, err)
	assert.Equal(t, "written", res.Log)
}
