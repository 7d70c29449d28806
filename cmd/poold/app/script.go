package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/iov-one/poolweave"
	"github.com/iov-one/poolweave/app"
	"github.com/iov-one/poolweave/errors"
	"github.com/iov-one/poolweave/orm"
	"github.com/iov-one/poolweave/x/donationpool"
	"gopkg.in/yaml.v3"
)

// Script is a list of blocks executed in order. Every block is committed
// separately.
type Script struct {
	Blocks []Block `yaml:"blocks"`
}

// Block groups operations executed at the same height.
type Block struct {
	Height int64 `yaml:"height"`
	Ops    []Op  `yaml:"ops"`
}

// Op is a single pool operation. Only the fields used by the action are
// read. Addresses are given either as a principal name or in any format
// accepted by poolweave.ParseAddress, prefixed with the format name.
type Op struct {
	Caller     string `yaml:"caller"`
	Action     string `yaml:"action"`
	Address    string `yaml:"address,omitempty"`
	Amount     int64  `yaml:"amount,omitempty"`
	Rate       int64  `yaml:"rate,omitempty"`
	Max        int64  `yaml:"max,omitempty"`
	Code       string `yaml:"code,omitempty"`
	ProgramID  int64  `yaml:"program_id,omitempty"`
	Percentage int64  `yaml:"percentage,omitempty"`
	Recipient  string `yaml:"recipient,omitempty"`
	ProposalID int64  `yaml:"proposal_id,omitempty"`
	Currency   string `yaml:"currency,omitempty"`
	Location   string `yaml:"location,omitempty"`
	RequestID  int64  `yaml:"request_id,omitempty"`
}

// ParseScript decodes a YAML script. Unknown fields are rejected.
func ParseScript(r io.Reader) (*Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var s Script
	if err := dec.Decode(&s); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "script: %s", err)
	}
	for i, b := range s.Blocks {
		if i > 0 && b.Height <= s.Blocks[i-1].Height {
			return nil, errors.Wrapf(errors.ErrInput, "block %d: height %d not increasing", i, b.Height)
		}
	}
	return &s, nil
}

// resolveAddress returns the address of a named principal, or decodes it.
func resolveAddress(s string) (poolweave.Address, error) {
	if strings.Contains(s, ":") {
		return poolweave.ParseAddress(s)
	}
	if s == "" {
		return nil, nil
	}
	return Principal(s).Address(), nil
}

// Msg returns the pool message described by this operation.
func (op Op) Msg() (poolweave.Msg, error) {
	switch op.Action {
	case "set_governance", "set_oracle", "set_registry":
		addr, err := resolveAddress(op.Address)
		if err != nil {
			return nil, errors.Wrap(err, "address")
		}
		switch op.Action {
		case "set_governance":
			return &donationpool.SetGovernanceMsg{Address: addr}, nil
		case "set_oracle":
			return &donationpool.SetOracleMsg{Address: addr}, nil
		default:
			return &donationpool.SetRegistryMsg{Address: addr}, nil
		}
	case "set_fee_rate":
		return &donationpool.SetFeeRateMsg{Rate: op.Rate}, nil
	case "set_max_distribution":
		return &donationpool.SetMaxDistributionMsg{Max: op.Max}, nil
	case "pause":
		return &donationpool.PauseMsg{}, nil
	case "unpause":
		return &donationpool.UnpauseMsg{}, nil
	case "add_currency":
		return &donationpool.AddCurrencyMsg{Code: op.Code}, nil
	case "add_location":
		return &donationpool.AddLocationMsg{Code: op.Code}, nil
	case "set_threshold":
		return &donationpool.SetThresholdMsg{ProgramID: op.ProgramID, Percentage: op.Percentage}, nil
	case "deposit":
		return &donationpool.DepositMsg{Amount: op.Amount}, nil
	case "request_distribution":
		recipient, err := resolveAddress(op.Recipient)
		if err != nil {
			return nil, errors.Wrap(err, "recipient")
		}
		return &donationpool.RequestDistributionMsg{
			ProgramID:  op.ProgramID,
			Amount:     op.Amount,
			Recipient:  recipient,
			ProposalID: op.ProposalID,
			Currency:   op.Currency,
			Location:   op.Location,
		}, nil
	case "execute_distribution":
		return &donationpool.ExecuteDistributionMsg{RequestID: op.RequestID}, nil
	case "cancel_request":
		return &donationpool.CancelRequestMsg{RequestID: op.RequestID}, nil
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown action %q", op.Action)
	}
}

// Result is the outcome of a single operation. Code is zero on success.
type Result struct {
	Height int64
	Caller string
	Action string
	Code   uint32
	Log    string
}

func (r Result) String() string {
	return fmt.Sprintf("height=%d caller=%s action=%s code=%d %s", r.Height, r.Caller, r.Action, r.Code, r.Log)
}

// Run executes all blocks of the script, committing after every block, and
// writes one line per operation to out. A failing operation does not stop
// the script. Errors are returned only if the application itself fails. In
// debug mode the full error, with its stack trace, is reported.
func Run(sa *app.StoreApp, s *Script, out io.Writer, debug bool) ([]Result, error) {
	var results []Result
	for _, b := range s.Blocks {
		if err := sa.BeginBlock(b.Height); err != nil {
			return results, err
		}
		for _, op := range b.Ops {
			res := Result{Height: b.Height, Caller: op.Caller, Action: op.Action}
			res.Code, res.Log = execute(sa, op, debug)
			results = append(results, res)
			if _, err := fmt.Fprintln(out, res); err != nil {
				return results, errors.Wrap(errors.ErrHuman, err.Error())
			}
		}
		if _, err := sa.Commit(); err != nil {
			return results, err
		}
	}
	return results, nil
}

func execute(sa *app.StoreApp, op Op, debug bool) (uint32, string) {
	msg, err := op.Msg()
	if err != nil {
		return errors.ResultInfo(err, debug)
	}
	var signers []poolweave.Condition
	if op.Caller != "" {
		signers = append(signers, Principal(op.Caller))
	}
	res, err := sa.DeliverTx(app.NewTx(msg, signers...))
	if err != nil {
		return errors.ResultInfo(err, debug)
	}
	if op.Action == "request_distribution" {
		return 0, fmt.Sprintf("request_id=%d", orm.DecodeSequence(res.Data))
	}
	return 0, res.Log
}
