package orm

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/iov-one/poolweave/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence(t *testing.T) {
	db := store.MemStore()

	cases := []struct {
		bucket, name string
		init         int64
		increments   int64
	}{
		0: {"pending", "id", 0, 22},
		1: {"history", "id", 0, 11},
		2: {"pending", "id", 22, 18},
		3: {"transfer", "id", 0, 300},
	}

	for i, tc := range cases {
		t.Run(fmt.Sprintf("case-%d", i), func(t *testing.T) {
			s := NewSequence(tc.bucket, tc.name)
			orig, err := s.Latest(db)
			require.NoError(t, err)
			assert.Equal(t, tc.init, orig)

			var val int64
			var raw, prev []byte
			for i := int64(0); i < tc.increments; i++ {
				raw, err = s.NextVal(db)
				require.NoError(t, err)
				if prev != nil {
					assert.Equal(t, 1, bytes.Compare(raw, prev))
				}
				prev = raw
			}
			val = DecodeSequence(raw)
			assert.Equal(t, tc.init+tc.increments, val)

			latest, err := s.Latest(db)
			require.NoError(t, err)
			assert.Equal(t, val, latest)
		})
	}
}

func TestSequenceEncoding(t *testing.T) {
	assert.Equal(t, int64(0), DecodeSequence(nil))
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 1, 0}, EncodeSequence(256))
	assert.Equal(t, int64(256), DecodeSequence(EncodeSequence(256)))
}
