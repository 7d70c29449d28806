package donationpool

import (
	"github.com/iov-one/poolweave"
	"github.com/iov-one/poolweave/errors"
	"github.com/iov-one/poolweave/gconf"
)

// Defaults applied when the genesis configuration omits a value.
const (
	DefaultFeeRate         = 5
	DefaultMaxDistribution = 1000000
)

// Initializer fulfils the poolweave.Initializer interface to load the pool
// configuration and allow lists from the genesis file.
type Initializer struct{}

var _ poolweave.Initializer = (*Initializer)(nil)

type genesisThreshold struct {
	ProgramID  int64 `json:"program_id"`
	Percentage int64 `json:"percentage"`
}

// genesis is the "donationpool" section of the genesis file.
type genesis struct {
	Currencies []string           `json:"currencies"`
	Locations  []string           `json:"locations"`
	Thresholds []genesisThreshold `json:"thresholds"`
}

// FromGenesis stores the configuration found under conf.donationpool and
// the allow lists found under donationpool.
func (*Initializer) FromGenesis(opts poolweave.Options, db poolweave.KVStore) error {
	conf := Configuration{
		FeeRate:         DefaultFeeRate,
		MaxDistribution: DefaultMaxDistribution,
	}
	if err := gconf.InitConfig(db, opts, packageName, &conf); err != nil {
		return errors.Wrap(err, "init config")
	}

	var gen genesis
	if err := opts.ReadOptions(packageName, &gen); err != nil {
		return err
	}
	b := NewBuckets()
	for _, code := range gen.Currencies {
		if _, err := b.Currencies.Put(db, []byte(code), &Allowance{Code: code}); err != nil {
			return errors.Wrapf(err, "currency %q", code)
		}
	}
	for _, code := range gen.Locations {
		if _, err := b.Locations.Put(db, []byte(code), &Allowance{Code: code}); err != nil {
			return errors.Wrapf(err, "location %q", code)
		}
	}
	for _, t := range gen.Thresholds {
		th := &Threshold{ProgramID: t.ProgramID, Percentage: t.Percentage}
		if _, err := b.Thresholds.Put(db, idKey(t.ProgramID), th); err != nil {
			return errors.Wrapf(err, "threshold of program %d", t.ProgramID)
		}
	}
	return nil
}
