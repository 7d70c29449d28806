package poolweave_test

import (
	"testing"

	"github.com/iov-one/poolweave"
	"github.com/iov-one/poolweave/errors"
	"github.com/iov-one/poolweave/weavetest"
	"github.com/iov-one/poolweave/weavetest/assert"
)

type depositMsg struct {
	Amount int64
}

func (depositMsg) Path() string { return "test/deposit" }

func (m depositMsg) Validate() error {
	if m.Amount < 0 {
		return errors.ErrAmount
	}
	return nil
}

type otherMsg struct{}

func (otherMsg) Path() string    { return "test/other" }
func (otherMsg) Validate() error { return nil }

func TestLoadMsg(t *testing.T) {
	cases := map[string]struct {
		tx      poolweave.Tx
		dest    interface{}
		wantErr *errors.Error
		want    int64
	}{
		"pointer message": {
			tx:   &weavetest.Tx{Msg: &depositMsg{Amount: 5}},
			dest: &depositMsg{},
			want: 5,
		},
		"value message": {
			tx:   &weavetest.Tx{Msg: depositMsg{Amount: 3}},
			dest: &depositMsg{},
			want: 3,
		},
		"invalid message": {
			tx:      &weavetest.Tx{Msg: &depositMsg{Amount: -1}},
			dest:    &depositMsg{},
			wantErr: errors.ErrAmount,
		},
		"missing message": {
			tx:      &weavetest.Tx{},
			dest:    &depositMsg{},
			wantErr: errors.ErrMsg,
		},
		"transaction error": {
			tx:      &weavetest.Tx{Err: errors.ErrInput},
			dest:    &depositMsg{},
			wantErr: errors.ErrInput,
		},
		"wrong destination type": {
			tx:      &weavetest.Tx{Msg: &depositMsg{Amount: 1}},
			dest:    &otherMsg{},
			wantErr: errors.ErrType,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := poolweave.LoadMsg(tc.tx, tc.dest)
			assert.IsErr(t, tc.wantErr, err)
			if tc.wantErr == nil {
				assert.Equal(t, tc.want, tc.dest.(*depositMsg).Amount)
			}
		})
	}
}

func TestGetPath(t *testing.T) {
	assert.Equal(t, "test/deposit", poolweave.GetPath(&weavetest.Tx{Msg: depositMsg{}}))
	assert.Equal(t, "(missing)", poolweave.GetPath(&weavetest.Tx{}))
}
