package donationpool

import (
	"github.com/iov-one/poolweave"
	"github.com/iov-one/poolweave/errors"
	"github.com/iov-one/poolweave/orm"
)

// Executor delivers messages on behalf of the given signers and provides
// read access to the resulting state. app.StoreApp implements it.
type Executor interface {
	Execute(msg poolweave.Msg, signers ...poolweave.Condition) (*poolweave.DeliverResult, error)
	View(fn func(poolweave.ReadOnlyKVStore) error) error
}

// Pool is a typed client of the pool. Every write is a single message
// executed by the caller.
type Pool struct {
	exec Executor
}

// NewPool returns a client executing messages with given executor.
func NewPool(exec Executor) *Pool {
	return &Pool{exec: exec}
}

func (p *Pool) run(caller poolweave.Condition, msg poolweave.Msg) (*poolweave.DeliverResult, error) {
	return p.exec.Execute(msg, caller)
}

func (p *Pool) SetGovernanceContract(caller poolweave.Condition, addr poolweave.Address) error {
	_, err := p.run(caller, &SetGovernanceMsg{Address: addr})
	return err
}

func (p *Pool) SetOracleContract(caller poolweave.Condition, addr poolweave.Address) error {
	_, err := p.run(caller, &SetOracleMsg{Address: addr})
	return err
}

func (p *Pool) SetRegistryContract(caller poolweave.Condition, addr poolweave.Address) error {
	_, err := p.run(caller, &SetRegistryMsg{Address: addr})
	return err
}

func (p *Pool) SetDistributionFeeRate(caller poolweave.Condition, rate int64) error {
	_, err := p.run(caller, &SetFeeRateMsg{Rate: rate})
	return err
}

func (p *Pool) SetMaxDistribution(caller poolweave.Condition, max int64) error {
	_, err := p.run(caller, &SetMaxDistributionMsg{Max: max})
	return err
}

func (p *Pool) PausePool(caller poolweave.Condition) error {
	_, err := p.run(caller, &PauseMsg{})
	return err
}

func (p *Pool) UnpausePool(caller poolweave.Condition) error {
	_, err := p.run(caller, &UnpauseMsg{})
	return err
}

func (p *Pool) AddAllowedCurrency(caller poolweave.Condition, code string) error {
	_, err := p.run(caller, &AddCurrencyMsg{Code: code})
	return err
}

func (p *Pool) AddAllowedLocation(caller poolweave.Condition, code string) error {
	_, err := p.run(caller, &AddLocationMsg{Code: code})
	return err
}

func (p *Pool) SetVerificationThreshold(caller poolweave.Condition, programID, percentage int64) error {
	_, err := p.run(caller, &SetThresholdMsg{ProgramID: programID, Percentage: percentage})
	return err
}

func (p *Pool) Deposit(caller poolweave.Condition, amount int64) error {
	_, err := p.run(caller, &DepositMsg{Amount: amount})
	return err
}

// RequestDistribution returns the id of the created request.
func (p *Pool) RequestDistribution(caller poolweave.Condition, msg RequestDistributionMsg) (int64, error) {
	res, err := p.run(caller, &msg)
	if err != nil {
		return 0, err
	}
	if len(res.Data) != 8 {
		return 0, errors.Wrapf(errors.ErrState, "unexpected request id %X", res.Data)
	}
	return orm.DecodeSequence(res.Data), nil
}

func (p *Pool) ExecuteDistribution(caller poolweave.Condition, requestID int64) error {
	_, err := p.run(caller, &ExecuteDistributionMsg{RequestID: requestID})
	return err
}

func (p *Pool) CancelPendingRequest(caller poolweave.Condition, requestID int64) error {
	_, err := p.run(caller, &CancelRequestMsg{RequestID: requestID})
	return err
}

// Balance returns the funds held by the pool.
func (p *Pool) Balance() (balance int64, err error) {
	err = p.exec.View(func(db poolweave.ReadOnlyKVStore) error {
		balance, err = PoolBalance(db)
		return err
	})
	return balance, err
}

func (p *Pool) TotalDistributed() (total int64, err error) {
	err = p.exec.View(func(db poolweave.ReadOnlyKVStore) error {
		total, err = TotalDistributed(db)
		return err
	})
	return total, err
}

func (p *Pool) LastDistributionTimestamp() (ts int64, err error) {
	err = p.exec.View(func(db poolweave.ReadOnlyKVStore) error {
		ts, err = LastDistributionTimestamp(db)
		return err
	})
	return ts, err
}

func (p *Pool) IsPaused() (paused bool, err error) {
	err = p.exec.View(func(db poolweave.ReadOnlyKVStore) error {
		paused, err = IsPaused(db)
		return err
	})
	return paused, err
}

// Distribution returns nil if the recipient never received a distribution.
func (p *Pool) Distribution(recipient poolweave.Address) (d *Distribution, err error) {
	err = p.exec.View(func(db poolweave.ReadOnlyKVStore) error {
		d, err = GetDistribution(db, recipient)
		return err
	})
	return d, err
}

// PendingRequest returns nil if no request with given id is pending.
func (p *Pool) PendingRequest(id int64) (req *PendingRequest, err error) {
	err = p.exec.View(func(db poolweave.ReadOnlyKVStore) error {
		req, err = GetPendingRequest(db, id)
		return err
	})
	return req, err
}

// HistoryEntry returns nil for an unknown id.
// HistoryCount returns the number of executed distributions.
func (p *Pool) HistoryCount() (n int64, err error) {
	err = p.exec.View(func(db poolweave.ReadOnlyKVStore) error {
		n, err = HistoryCount(db)
		return err
	})
	return n, err
}

func (p *Pool) HistoryEntry(id int64) (h *HistoryEntry, err error) {
	err = p.exec.View(func(db poolweave.ReadOnlyKVStore) error {
		h, err = GetHistoryEntry(db, id)
		return err
	})
	return h, err
}
