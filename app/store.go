package app

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/iov-one/poolweave"
	"github.com/iov-one/poolweave/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// StoreApp contains a data store and all info needed to process
// transactions and queries against it.
//
// Every method call is serialized by a single lock, so that an operation
// always observes the effects of all the operations completed before it.
type StoreApp struct {
	mu sync.Mutex

	logger log.Logger

	// name is used in the log output
	name string

	// Database state (committed, check, deliver....)
	store *CommitStore

	// handler processes every transaction, usually a decorated Router
	handler poolweave.Handler

	// Code to initialize from a genesis file
	initializer poolweave.Initializer

	// How to handle queries
	queryRouter poolweave.QueryRouter

	// chainID is loaded from db in initialization
	// saved once in InitChain
	chainID string

	// height of the block currently processed
	height int64

	// baseContext contains context info that is valid for
	// lifetime of this app (eg. chainID)
	baseContext poolweave.Context

	// blockContext contains context info that is valid for the
	// current block (eg. height), reset on BeginBlock
	blockContext poolweave.Context
}

// NewStoreApp initializes this app into a ready state with some defaults.
func NewStoreApp(
	name string,
	store poolweave.CommitKVStore,
	handler poolweave.Handler,
	queryRouter poolweave.QueryRouter,
	baseContext poolweave.Context,
) (*StoreApp, error) {
	cs, err := NewCommitStore(store)
	if err != nil {
		return nil, err
	}
	s := &StoreApp{
		name:        name,
		store:       cs,
		handler:     handler,
		queryRouter: queryRouter,
		baseContext: baseContext,
		logger:      log.NewNopLogger(),
	}

	chainID, err := loadChainID(s.store.DeliverStore())
	if err != nil {
		return nil, err
	}
	if chainID != "" {
		s.chainID = chainID
		s.baseContext = poolweave.WithChainID(s.baseContext, chainID)
	}

	height, err := loadHeight(s.store.DeliverStore())
	if err != nil {
		return nil, err
	}
	s.height = height
	s.blockContext = poolweave.WithHeight(s.baseContext, s.height)
	return s, nil
}

// WithInit is used to set the init function we call
func (s *StoreApp) WithInit(init poolweave.Initializer) *StoreApp {
	s.initializer = init
	return s
}

// WithLogger sets the logger on the StoreApp and returns it,
// to make it easy to chain in initialization.
func (s *StoreApp) WithLogger(logger log.Logger) *StoreApp {
	s.logger = logger.With("app", s.name)
	s.baseContext = poolweave.WithLogger(s.baseContext, s.logger)
	s.blockContext = poolweave.WithLogger(s.blockContext, s.logger)
	return s
}

// Logger returns the application base logger
func (s *StoreApp) Logger() log.Logger {
	return s.logger
}

// ChainID returns the chain id set at genesis, or an empty string.
func (s *StoreApp) ChainID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chainID
}

// Height returns the height of the block currently processed.
func (s *StoreApp) Height() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.height
}

// InitChain stores the chain id and loads the genesis application state. It
// can be called only once in the lifetime of a database.
func (s *StoreApp) InitChain(chainID string, appState []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.chainID != "" {
		return errors.Wrapf(errors.ErrState, "app state previously loaded for chain %s", s.chainID)
	}
	if len(appState) == 0 {
		return errors.Wrap(errors.ErrEmpty, "app_state not set in genesis")
	}
	var opts poolweave.Options
	if err := json.Unmarshal(appState, &opts); err != nil {
		return errors.Wrapf(errors.ErrInput, "app_state: %s", err)
	}

	cache := s.store.DeliverStore().CacheWrap()
	if err := saveChainID(cache, chainID); err != nil {
		cache.Discard()
		return err
	}
	if s.initializer != nil {
		if err := s.initializer.FromGenesis(opts, cache); err != nil {
			cache.Discard()
			return errors.Wrap(err, "genesis")
		}
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "genesis")
	}

	s.chainID = chainID
	s.baseContext = poolweave.WithChainID(s.baseContext, chainID)
	s.blockContext = poolweave.WithHeight(s.baseContext, s.height)
	s.logger.Info("chain initialized", "chain_id", chainID)
	return nil
}

// BeginBlock sets up the block context for given height. The height is the
// logical clock of the ledger and cannot go back.
func (s *StoreApp) BeginBlock(height int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if height < s.height {
		return errors.Wrapf(errors.ErrState, "height %d is lower than current %d", height, s.height)
	}
	s.height = height
	s.blockContext = poolweave.WithHeight(s.baseContext, height)
	return nil
}

// CheckTx validates given transaction against the check state, without
// affecting the state used by DeliverTx.
func (s *StoreApp) CheckTx(tx poolweave.Tx) (*poolweave.CheckResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handler.Check(s.blockContext, s.store.CheckStore(), tx)
}

// DeliverTx processes given transaction and applies its effects to the
// deliver state. Effects become persistent on Commit.
func (s *StoreApp) DeliverTx(tx poolweave.Tx) (*poolweave.DeliverResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deliver(tx)
}

// Execute signs given message with the conditions provided and delivers it.
func (s *StoreApp) Execute(msg poolweave.Msg, signers ...poolweave.Condition) (*poolweave.DeliverResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deliver(NewTx(msg, signers...))
}

func (s *StoreApp) deliver(tx poolweave.Tx) (*poolweave.DeliverResult, error) {
	if s.chainID == "" {
		return nil, errors.Wrap(errors.ErrState, "chain not initialized")
	}
	return s.handler.Deliver(s.blockContext, s.store.DeliverStore(), tx)
}

// Commit persists the deliver state together with the current height and
// returns the new version.
func (s *StoreApp) Commit() (poolweave.CommitID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := saveHeight(s.store.DeliverStore(), s.height); err != nil {
		return poolweave.CommitID{}, err
	}
	commitID, err := s.store.Commit()
	if err != nil {
		return commitID, errors.Wrap(err, "commit")
	}
	s.logger.Debug("commit synced",
		"height", s.height,
		"version", commitID.Version,
		"hash", fmt.Sprintf("%X", commitID.Hash),
	)
	return commitID, nil
}

// View calls fn with a read only view of the latest, possibly not yet
// committed, state.
func (s *StoreApp) View(fn func(poolweave.ReadOnlyKVStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.store.DeliverStore())
}

/*
Query gets data from the committed state.

Path may be "/<bucket>" or "/<bucket>/<index>". It may be followed by
"?prefix" to make a prefix query. Data is interpreted by the handler of the
path, usually a key or an index value.
*/
func (s *StoreApp) Query(path string, data []byte) ([]poolweave.Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, mod := splitPath(path)
	qh := s.queryRouter.Handler(path)
	if qh == nil {
		paths := s.queryRouter.Paths()
		sort.Strings(paths)
		return nil, errors.Wrapf(errors.ErrNotFound, "unexpected query path %q, known paths: %s",
			path, strings.Join(paths, ", "))
	}
	return qh.Query(s.store.CommittedStore(), mod, data)
}

// splitPath splits out the real path along with the query
// modifier (everything after the ?)
func splitPath(path string) (string, string) {
	var mod string
	chunks := strings.SplitN(path, "?", 2)
	if len(chunks) == 2 {
		path = chunks[0]
		mod = chunks[1]
	}
	return path, mod
}
