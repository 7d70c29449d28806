/*
Package app links together all the various components
to construct the poold application.
*/
package app

import (
	"context"
	"os"

	"github.com/iov-one/poolweave"
	"github.com/iov-one/poolweave/app"
	"github.com/iov-one/poolweave/errors"
	"github.com/iov-one/poolweave/store/iavl"
	"github.com/iov-one/poolweave/x"
	"github.com/iov-one/poolweave/x/auth"
	"github.com/iov-one/poolweave/x/donationpool"
	"github.com/iov-one/poolweave/x/transfer"
	"github.com/iov-one/poolweave/x/utils"
	"github.com/tendermint/tendermint/libs/log"
)

// Authenticator returns the authentication used by all handlers. Signers are
// declared by the transaction.
func Authenticator() x.Authenticator {
	return x.ChainAuth(auth.Authenticate{})
}

// Chain returns a chain of decorators, to handle logging, recovery and
// authentication. Unsigned transactions reach the handlers, which decide
// whether a signer is required.
func Chain() app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		auth.NewDecorator().AllowMissingSigs(),
		// a failed message leaves no partial writes
		utils.NewSavepoint().OnDeliver(),
	)
}

// Router returns a router dispatching all pool messages.
func Router(authFn x.Authenticator, recorder transfer.Recorder) *app.Router {
	r := app.NewRouter()
	donationpool.RegisterRoutes(r, authFn, recorder)
	return r
}

// QueryRouter returns a query router giving access to "/donationpool/..."
// and "/transfers" paths.
func QueryRouter() poolweave.QueryRouter {
	r := poolweave.NewQueryRouter()
	r.RegisterAll(
		donationpool.RegisterQuery,
		transfer.RegisterQuery,
	)
	return r
}

// Stack wires up a standard router with a standard decorator chain.
func Stack() poolweave.Handler {
	return Chain().WithHandler(Router(Authenticator(), transfer.NewLog()))
}

// Application constructs the pool application on top of given store.
func Application(name string, kv poolweave.CommitKVStore, logger log.Logger) (*app.StoreApp, error) {
	sa, err := app.NewStoreApp(name, kv, Stack(), QueryRouter(), context.Background())
	if err != nil {
		return nil, err
	}
	return sa.WithInit(&donationpool.Initializer{}).WithLogger(logger), nil
}

// Transfers returns the transfers sent from and received by given address,
// oldest first.
func Transfers(sa *app.StoreApp, addr poolweave.Address) (sent, received []*transfer.Transfer, err error) {
	l := transfer.NewLog()
	err = sa.View(func(db poolweave.ReadOnlyKVStore) error {
		var err error
		if sent, err = l.BySource(db, addr); err != nil {
			return err
		}
		received, err = l.ByDestination(db, addr)
		return err
	})
	return sent, received, err
}

// CommitKVStore returns an initialized KVStore that persists the data in
// given directory. An empty directory results in an in-memory store.
func CommitKVStore(dir string) (poolweave.CommitKVStore, error) {
	if dir == "" {
		return iavl.MockCommitStore(), nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "create %s: %s", dir, err)
	}
	kv, err := iavl.NewCommitStore(dir, "pool")
	if err != nil {
		return nil, err
	}
	if err := kv.LoadLatestVersion(); err != nil {
		return nil, err
	}
	return kv, nil
}
