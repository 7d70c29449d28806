package donationpool

import (
	"github.com/iov-one/poolweave"
	"github.com/iov-one/poolweave/errors"
)

// Message paths handled by this extension.
const (
	pathSetGovernance       = "donationpool/set_governance"
	pathSetOracle           = "donationpool/set_oracle"
	pathSetRegistry         = "donationpool/set_registry"
	pathSetFeeRate          = "donationpool/set_fee_rate"
	pathSetMaxDistribution  = "donationpool/set_max_distribution"
	pathPause               = "donationpool/pause"
	pathUnpause             = "donationpool/unpause"
	pathAddCurrency         = "donationpool/add_currency"
	pathAddLocation         = "donationpool/add_location"
	pathSetThreshold        = "donationpool/set_threshold"
	pathDeposit             = "donationpool/deposit"
	pathRequestDistribution = "donationpool/request_distribution"
	pathExecuteDistribution = "donationpool/execute_distribution"
	pathCancelRequest       = "donationpool/cancel_request"
)

// Message validation only rejects malformed input. Every business rule,
// including the ones about amounts, is checked by the handlers, so that
// their order is preserved.

// SetGovernanceMsg sets the address of the governance contract.
type SetGovernanceMsg struct {
	Address poolweave.Address `json:"address"`
}

func (SetGovernanceMsg) Path() string { return pathSetGovernance }

func (m *SetGovernanceMsg) Validate() error {
	return errors.Wrap(m.Address.Validate(), "address")
}

// SetOracleMsg sets the address of the oracle contract.
type SetOracleMsg struct {
	Address poolweave.Address `json:"address"`
}

func (SetOracleMsg) Path() string { return pathSetOracle }

func (m *SetOracleMsg) Validate() error {
	return errors.Wrap(m.Address.Validate(), "address")
}

// SetRegistryMsg sets the address of the registry contract.
type SetRegistryMsg struct {
	Address poolweave.Address `json:"address"`
}

func (SetRegistryMsg) Path() string { return pathSetRegistry }

func (m *SetRegistryMsg) Validate() error {
	return errors.Wrap(m.Address.Validate(), "address")
}

// SetFeeRateMsg changes the distribution fee rate, in percent.
type SetFeeRateMsg struct {
	Rate int64 `json:"rate"`
}

func (SetFeeRateMsg) Path() string     { return pathSetFeeRate }
func (*SetFeeRateMsg) Validate() error { return nil }

// SetMaxDistributionMsg changes the highest gross amount of a single request.
type SetMaxDistributionMsg struct {
	Max int64 `json:"max"`
}

func (SetMaxDistributionMsg) Path() string     { return pathSetMaxDistribution }
func (*SetMaxDistributionMsg) Validate() error { return nil }

// PauseMsg stops deposits, requests and executions.
type PauseMsg struct{}

func (PauseMsg) Path() string     { return pathPause }
func (*PauseMsg) Validate() error { return nil }

// UnpauseMsg resumes the pool.
type UnpauseMsg struct{}

func (UnpauseMsg) Path() string     { return pathUnpause }
func (*UnpauseMsg) Validate() error { return nil }

// AddCurrencyMsg approves a currency code.
type AddCurrencyMsg struct {
	Code string `json:"code"`
}

func (AddCurrencyMsg) Path() string { return pathAddCurrency }

func (m *AddCurrencyMsg) Validate() error {
	return (&Allowance{Code: m.Code}).Validate()
}

// AddLocationMsg approves a location code.
type AddLocationMsg struct {
	Code string `json:"code"`
}

func (AddLocationMsg) Path() string { return pathAddLocation }

func (m *AddLocationMsg) Validate() error {
	return (&Allowance{Code: m.Code}).Validate()
}

// SetThresholdMsg sets the verification percentage of a program.
type SetThresholdMsg struct {
	ProgramID  int64 `json:"program_id"`
	Percentage int64 `json:"percentage"`
}

func (SetThresholdMsg) Path() string     { return pathSetThreshold }
func (*SetThresholdMsg) Validate() error { return nil }

// DepositMsg adds funds of the signer to the pool.
type DepositMsg struct {
	Amount int64 `json:"amount"`
}

func (DepositMsg) Path() string     { return pathDeposit }
func (*DepositMsg) Validate() error { return nil }

// RequestDistributionMsg asks for a payout to the recipient. The request must
// be executed by the admin before any funds move.
type RequestDistributionMsg struct {
	ProgramID  int64             `json:"program_id"`
	Amount     int64             `json:"amount"`
	Recipient  poolweave.Address `json:"recipient"`
	ProposalID int64             `json:"proposal_id"`
	Currency   string            `json:"currency"`
	Location   string            `json:"location"`
}

func (RequestDistributionMsg) Path() string { return pathRequestDistribution }

func (m *RequestDistributionMsg) Validate() error {
	return errors.Wrap(m.Recipient.Validate(), "recipient")
}

// ExecuteDistributionMsg pays out a pending request.
type ExecuteDistributionMsg struct {
	RequestID int64 `json:"request_id"`
}

func (ExecuteDistributionMsg) Path() string     { return pathExecuteDistribution }
func (*ExecuteDistributionMsg) Validate() error { return nil }

// CancelRequestMsg withdraws a pending request. Only its recipient can do it.
type CancelRequestMsg struct {
	RequestID int64 `json:"request_id"`
}

func (CancelRequestMsg) Path() string     { return pathCancelRequest }
func (*CancelRequestMsg) Validate() error { return nil }
