package app

import (
	"testing"

	"github.com/iov-one/poolweave"
	"github.com/iov-one/poolweave/app"
	"github.com/iov-one/poolweave/x/donationpool"
	"github.com/stretchr/testify/require"
)

type appUnderTest struct {
	*app.StoreApp
}

// totals returns the current, possibly not committed, pool balance and total
// distributed.
func (a *appUnderTest) totals(t *testing.T) (balance, total int64) {
	t.Helper()
	err := a.View(func(db poolweave.ReadOnlyKVStore) error {
		var err error
		if balance, err = donationpool.PoolBalance(db); err != nil {
			return err
		}
		total, err = donationpool.TotalDistributed(db)
		return err
	})
	require.NoError(t, err)
	return balance, total
}
