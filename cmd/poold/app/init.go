package app

import (
	"encoding/json"

	"github.com/iov-one/poolweave"
	"github.com/iov-one/poolweave/errors"
	"github.com/iov-one/poolweave/x/donationpool"
)

// Genesis is the content of the genesis file read by the exec command.
type Genesis struct {
	ChainID  string          `json:"chain_id"`
	AppState json.RawMessage `json:"app_state"`
}

// Principal returns the condition of a named script participant. The same
// name always results in the same condition.
func Principal(name string) poolweave.Condition {
	return poolweave.NewCondition("poold", "name", []byte(name))
}

// GenInitOptions returns the default application state of a pool managed by
// given admin. Contract addresses are left unset.
func GenInitOptions(admin poolweave.Address) (json.RawMessage, error) {
	if err := admin.Validate(); err != nil {
		return nil, errors.Wrap(err, "admin")
	}
	opts := map[string]interface{}{
		"conf": map[string]interface{}{
			"donationpool": donationpool.Configuration{
				Admin:           admin,
				FeeRate:         donationpool.DefaultFeeRate,
				MaxDistribution: donationpool.DefaultMaxDistribution,
			},
		},
		"donationpool": map[string]interface{}{
			"currencies": []string{"USD"},
			"locations":  []string{},
			"thresholds": []interface{}{},
		},
	}
	raw, err := json.MarshalIndent(opts, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return raw, nil
}

// NewGenesis returns the genesis document of a new chain.
func NewGenesis(chainID string, admin poolweave.Address) (*Genesis, error) {
	if chainID == "" {
		return nil, errors.Wrap(errors.ErrEmpty, "chain id")
	}
	state, err := GenInitOptions(admin)
	if err != nil {
		return nil, err
	}
	return &Genesis{ChainID: chainID, AppState: state}, nil
}
