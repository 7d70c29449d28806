package donationpool

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/iov-one/poolweave"
	"github.com/iov-one/poolweave/app"
	"github.com/iov-one/poolweave/errors"
	"github.com/iov-one/poolweave/gconf"
	"github.com/iov-one/poolweave/orm"
	"github.com/iov-one/poolweave/store"
	"github.com/iov-one/poolweave/weavetest"
	"github.com/iov-one/poolweave/weavetest/assert"
	"github.com/iov-one/poolweave/x/transfer"
	"github.com/tendermint/tendermint/libs/log"
)

// fixture is a pool with a balance of 1000, all contracts set and USD/KE
// allowed.
type fixture struct {
	admin poolweave.Condition
	alice poolweave.Condition
	auth  *weavetest.CtxAuth
	rt    *app.Router
	db    store.CacheableKVStore
}

func newFixture(t testing.TB) *fixture {
	t.Helper()
	f := &fixture{
		admin: weavetest.NewCondition(),
		alice: weavetest.NewCondition(),
		auth:  &weavetest.CtxAuth{Key: "auth"},
		rt:    app.NewRouter(),
		db:    store.MemStore(),
	}
	RegisterRoutes(f.rt, f.auth, transfer.NewLog())

	conf := &Configuration{
		Admin:           f.admin.Address(),
		Governance:      weavetest.NewAddress(),
		Oracle:          weavetest.NewAddress(),
		Registry:        weavetest.NewAddress(),
		FeeRate:         5,
		MaxDistribution: 1000000,
	}
	assert.Nil(t, gconf.Save(f.db, packageName, conf))
	b := NewBuckets()
	assert.Nil(t, saveState(f.db, b, &PoolState{Balance: 1000}))
	_, err := b.Currencies.Put(f.db, []byte("USD"), &Allowance{Code: "USD"})
	assert.Nil(t, err)
	_, err = b.Locations.Put(f.db, []byte("KE"), &Allowance{Code: "KE"})
	assert.Nil(t, err)
	return f
}

func (f *fixture) ctx(height int64, signers ...poolweave.Condition) poolweave.Context {
	ctx := poolweave.WithHeight(context.Background(), height)
	return f.auth.SetConditions(ctx, signers...)
}

func (f *fixture) deliver(ctx poolweave.Context, msg poolweave.Msg) (*poolweave.DeliverResult, error) {
	return f.rt.Deliver(ctx, f.db, &weavetest.Tx{Msg: msg})
}

func (f *fixture) check(ctx poolweave.Context, msg poolweave.Msg) (*poolweave.CheckResult, error) {
	return f.rt.Check(ctx, f.db, &weavetest.Tx{Msg: msg})
}

func (f *fixture) updateConf(t testing.TB, fn func(*Configuration)) {
	t.Helper()
	conf, err := LoadConfig(f.db)
	assert.Nil(t, err)
	fn(conf)
	assert.Nil(t, gconf.Save(f.db, packageName, conf))
}

func (f *fixture) state(t testing.TB) *PoolState {
	t.Helper()
	s, err := loadState(f.db, NewBuckets())
	assert.Nil(t, err)
	return s
}

func (f *fixture) validRequest() *RequestDistributionMsg {
	return &RequestDistributionMsg{
		ProgramID:  1,
		Amount:     500,
		Recipient:  f.alice.Address(),
		ProposalID: 1,
		Currency:   "USD",
		Location:   "KE",
	}
}

func TestConfigHandlers(t *testing.T) {
	governance := weavetest.NewAddress()
	stranger := weavetest.NewCondition()

	cases := map[string]struct {
		msg      poolweave.Msg
		notAdmin bool
		wantErr  *errors.Error
		wantConf func(*testing.T, *Configuration)
	}{
		"set governance": {
			msg: &SetGovernanceMsg{Address: governance},
			wantConf: func(t *testing.T, c *Configuration) {
				assert.Equal(t, true, governance.Equals(c.Governance))
			},
		},
		"set governance by a stranger": {
			msg:      &SetGovernanceMsg{Address: governance},
			notAdmin: true,
			wantErr:  ErrNotAuthorized,
		},
		"set oracle with a malformed address": {
			msg:     &SetOracleMsg{Address: poolweave.Address("short")},
			wantErr: errors.ErrInput,
		},
		"set fee rate": {
			msg: &SetFeeRateMsg{Rate: 10},
			wantConf: func(t *testing.T, c *Configuration) {
				assert.Equal(t, int64(10), c.FeeRate)
			},
		},
		"set zero fee rate": {
			msg: &SetFeeRateMsg{Rate: 0},
			wantConf: func(t *testing.T, c *Configuration) {
				assert.Equal(t, int64(0), c.FeeRate)
			},
		},
		"fee rate above the maximum": {
			msg:     &SetFeeRateMsg{Rate: 15},
			wantErr: ErrInvalidFeeRate,
		},
		"negative fee rate": {
			msg:     &SetFeeRateMsg{Rate: -1},
			wantErr: ErrInvalidFeeRate,
		},
		"admin is checked before the fee rate": {
			msg:      &SetFeeRateMsg{Rate: 15},
			notAdmin: true,
			wantErr:  ErrNotAuthorized,
		},
		"set max distribution": {
			msg: &SetMaxDistributionMsg{Max: 300},
			wantConf: func(t *testing.T, c *Configuration) {
				assert.Equal(t, int64(300), c.MaxDistribution)
			},
		},
		"zero max distribution": {
			msg:     &SetMaxDistributionMsg{Max: 0},
			wantErr: ErrInvalidAmount,
		},
		"pause": {
			msg: &PauseMsg{},
			wantConf: func(t *testing.T, c *Configuration) {
				assert.Equal(t, true, c.Paused)
			},
		},
		"unpause a running pool": {
			msg: &UnpauseMsg{},
			wantConf: func(t *testing.T, c *Configuration) {
				assert.Equal(t, false, c.Paused)
			},
		},
		"pause by a stranger": {
			msg:      &PauseMsg{},
			notAdmin: true,
			wantErr:  ErrNotAuthorized,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			before, err := LoadConfig(f.db)
			assert.Nil(t, err)

			signer := f.admin
			if tc.notAdmin {
				signer = stranger
			}
			ctx := f.ctx(1, signer)

			_, err = f.check(ctx, tc.msg)
			assert.IsErr(t, tc.wantErr, err)
			_, err = f.deliver(ctx, tc.msg)
			assert.IsErr(t, tc.wantErr, err)

			after, err := LoadConfig(f.db)
			assert.Nil(t, err)
			if tc.wantErr != nil {
				assert.Equal(t, before, after)
				return
			}
			assert.Equal(t, true, f.admin.Address().Equals(after.Admin))
			if tc.wantConf != nil {
				tc.wantConf(t, after)
			}
		})
	}
}

func TestAllowListHandlers(t *testing.T) {
	f := newFixture(t)
	admin := f.ctx(1, f.admin)

	// Adding a code twice is not an error.
	for i := 0; i < 2; i++ {
		_, err := f.deliver(admin, &AddCurrencyMsg{Code: "EUR"})
		assert.Nil(t, err)
		_, err = f.deliver(admin, &AddLocationMsg{Code: "UG"})
		assert.Nil(t, err)
	}
	ok, err := IsCurrencyAllowed(f.db, "EUR")
	assert.Nil(t, err)
	assert.Equal(t, true, ok)
	ok, err = IsLocationAllowed(f.db, "UG")
	assert.Nil(t, err)
	assert.Equal(t, true, ok)
	ok, err = IsCurrencyAllowed(f.db, "UG")
	assert.Nil(t, err)
	assert.Equal(t, false, ok)

	var all []*Allowance
	_, err = NewBuckets().Currencies.All(f.db, &all)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(all))

	_, err = f.deliver(f.ctx(1, f.alice), &AddCurrencyMsg{Code: "GBP"})
	assert.IsErr(t, ErrNotAuthorized, err)
	_, err = f.deliver(admin, &AddLocationMsg{Code: ""})
	assert.IsErr(t, errors.ErrInput, err)
	_, err = f.deliver(admin, &AddLocationMsg{Code: strings.Repeat("x", maxCodeLength+1)})
	assert.IsErr(t, errors.ErrInput, err)

	// Codes are stored as given.
	for _, code := range []string{"City", "São Paulo/Centro", "stx"} {
		_, err = f.deliver(admin, &AddLocationMsg{Code: code})
		assert.Nil(t, err)
		ok, err = IsLocationAllowed(f.db, code)
		assert.Nil(t, err)
		assert.Equal(t, true, ok)
	}
	ok, err = IsLocationAllowed(f.db, "city")
	assert.Nil(t, err)
	assert.Equal(t, false, ok)
}

func TestThresholdHandler(t *testing.T) {
	cases := map[string]struct {
		signer     func(*fixture) poolweave.Condition
		percentage int64
		wantErr    *errors.Error
	}{
		"lower bound": {percentage: 1},
		"upper bound": {percentage: 100},
		"zero":        {percentage: 0, wantErr: ErrInvalidThreshold},
		"above 100":   {percentage: 101, wantErr: ErrInvalidThreshold},
		"not admin": {
			signer:     func(f *fixture) poolweave.Condition { return f.alice },
			percentage: 50,
			wantErr:    ErrNotAuthorized,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			signer := f.admin
			if tc.signer != nil {
				signer = tc.signer(f)
			}
			_, err := f.deliver(f.ctx(1, signer), &SetThresholdMsg{ProgramID: 3, Percentage: tc.percentage})
			assert.IsErr(t, tc.wantErr, err)

			got, err := GetThreshold(f.db, 3)
			assert.Nil(t, err)
			if tc.wantErr != nil {
				assert.Equal(t, int64(0), got)
			} else {
				assert.Equal(t, tc.percentage, got)
			}
		})
	}
}

func TestThresholdOverwrite(t *testing.T) {
	f := newFixture(t)
	admin := f.ctx(1, f.admin)
	_, err := f.deliver(admin, &SetThresholdMsg{ProgramID: 3, Percentage: 60})
	assert.Nil(t, err)
	_, err = f.deliver(admin, &SetThresholdMsg{ProgramID: 3, Percentage: 60})
	assert.Nil(t, err)
	_, err = f.deliver(admin, &SetThresholdMsg{ProgramID: 3, Percentage: 75})
	assert.Nil(t, err)

	got, err := GetThreshold(f.db, 3)
	assert.Nil(t, err)
	assert.Equal(t, int64(75), got)
}

func TestDepositHandler(t *testing.T) {
	cases := map[string]struct {
		amount      int64
		noSigner    bool
		paused      bool
		balance     int64
		wantErr     *errors.Error
		wantBalance int64
	}{
		"deposit": {
			amount: 250, balance: 1000, wantBalance: 1250,
		},
		"zero amount": {
			amount: 0, balance: 1000, wantErr: ErrInvalidAmount, wantBalance: 1000,
		},
		"negative amount": {
			amount: -5, balance: 1000, wantErr: ErrInvalidAmount, wantBalance: 1000,
		},
		"paused pool": {
			amount: 0, paused: true, balance: 1000, wantErr: ErrPoolPaused, wantBalance: 1000,
		},
		"anonymous": {
			amount: 10, noSigner: true, balance: 1000, wantErr: ErrNotAuthorized, wantBalance: 1000,
		},
		"overflow": {
			amount: 2, balance: 1<<63 - 2, wantErr: errors.ErrOverflow, wantBalance: 1<<63 - 2,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			assert.Nil(t, saveState(f.db, NewBuckets(), &PoolState{Balance: tc.balance}))
			if tc.paused {
				f.updateConf(t, func(c *Configuration) { c.Paused = true })
			}
			ctx := f.ctx(4, f.alice)
			if tc.noSigner {
				ctx = f.ctx(4)
			}

			_, err := f.deliver(ctx, &DepositMsg{Amount: tc.amount})
			assert.IsErr(t, tc.wantErr, err)
			assert.Equal(t, tc.wantBalance, f.state(t).Balance)

			in, err := transfer.NewLog().ByDestination(f.db, PoolAddress)
			assert.Nil(t, err)
			if tc.wantErr != nil {
				assert.Equal(t, 0, len(in))
				return
			}
			assert.Equal(t, 1, len(in))
			assert.Equal(t, tc.amount, in[0].Amount)
			assert.Equal(t, true, f.alice.Address().Equals(in[0].Source))
		})
	}
}

func TestRequestDistributionOrder(t *testing.T) {
	cases := map[string]struct {
		conf    func(*Configuration)
		msg     func(*RequestDistributionMsg)
		wantErr *errors.Error
	}{
		"valid": {},
		"paused is checked before the amount": {
			conf:    func(c *Configuration) { c.Paused = true },
			msg:     func(m *RequestDistributionMsg) { m.Amount = 0 },
			wantErr: ErrPoolPaused,
		},
		"amount is checked before the program": {
			msg:     func(m *RequestDistributionMsg) { m.Amount = 0; m.ProgramID = 0 },
			wantErr: ErrInvalidAmount,
		},
		"negative amount": {
			msg:     func(m *RequestDistributionMsg) { m.Amount = -1 },
			wantErr: ErrInvalidAmount,
		},
		"program is checked before the proposal": {
			msg:     func(m *RequestDistributionMsg) { m.ProgramID = 0; m.ProposalID = 0 },
			wantErr: ErrInvalidProgramID,
		},
		"proposal is checked before the currency": {
			msg:     func(m *RequestDistributionMsg) { m.ProposalID = -2; m.Currency = "XXX" },
			wantErr: ErrInvalidProposalID,
		},
		"currency is checked before the location": {
			msg:     func(m *RequestDistributionMsg) { m.Currency = "XXX"; m.Location = "XX" },
			wantErr: ErrInvalidCurrency,
		},
		"location is checked before the balance": {
			msg:     func(m *RequestDistributionMsg) { m.Location = "XX"; m.Amount = 5000 },
			wantErr: ErrInvalidLocation,
		},
		"balance is checked before the maximum": {
			conf:    func(c *Configuration) { c.MaxDistribution = 100 },
			msg:     func(m *RequestDistributionMsg) { m.Amount = 1001 },
			wantErr: ErrInsufficientBalance,
		},
		"whole balance": {
			msg: func(m *RequestDistributionMsg) { m.Amount = 1000 },
		},
		"maximum is checked before the contracts": {
			conf: func(c *Configuration) {
				c.MaxDistribution = 100
				c.Governance = nil
			},
			wantErr: ErrMaxDistributionExceeded,
		},
		"governance is checked before the oracle": {
			conf: func(c *Configuration) {
				c.Governance = nil
				c.Oracle = nil
			},
			wantErr: ErrInvalidGovernance,
		},
		"oracle is checked before the registry": {
			conf: func(c *Configuration) {
				c.Oracle = nil
				c.Registry = nil
			},
			wantErr: ErrInvalidOracle,
		},
		"registry": {
			conf:    func(c *Configuration) { c.Registry = nil },
			wantErr: ErrInvalidRegistry,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			if tc.conf != nil {
				f.updateConf(t, tc.conf)
			}
			msg := f.validRequest()
			if tc.msg != nil {
				tc.msg(msg)
			}
			ctx := f.ctx(9, f.alice)

			_, err := f.check(ctx, msg)
			assert.IsErr(t, tc.wantErr, err)
			res, err := f.deliver(ctx, msg)
			assert.IsErr(t, tc.wantErr, err)

			// A request never changes the balance.
			assert.Equal(t, int64(1000), f.state(t).Balance)

			got, err := GetPendingRequest(f.db, 1)
			assert.Nil(t, err)
			if tc.wantErr != nil {
				assert.Equal(t, (*PendingRequest)(nil), got)
				return
			}
			assert.Equal(t, int64(1), orm.DecodeSequence(res.Data))
			net, fee, err := NetAmount(msg.Amount, 5)
			assert.Nil(t, err)
			assert.Equal(t, net, got.Amount)
			assert.Equal(t, fee, got.Fee)
			assert.Equal(t, msg.Amount, got.Gross)
			assert.Equal(t, int64(9), got.CreatedAt)
			assert.Equal(t, true, f.alice.Address().Equals(got.Recipient))
		})
	}
}

func TestRequestIDsAreNotReused(t *testing.T) {
	f := newFixture(t)
	alice := f.ctx(1, f.alice)

	for want := int64(1); want <= 3; want++ {
		res, err := f.deliver(alice, f.validRequest())
		assert.Nil(t, err)
		assert.Equal(t, want, orm.DecodeSequence(res.Data))
	}
	_, err := f.deliver(alice, &CancelRequestMsg{RequestID: 3})
	assert.Nil(t, err)

	res, err := f.deliver(alice, f.validRequest())
	assert.Nil(t, err)
	assert.Equal(t, int64(4), orm.DecodeSequence(res.Data))

	ids, reqs, err := PendingByRecipient(f.db, f.alice.Address())
	assert.Nil(t, err)
	assert.Equal(t, []int64{1, 2, 4}, ids)
	assert.Equal(t, 3, len(reqs))
}

func TestExecuteDistribution(t *testing.T) {
	f := newFixture(t)
	res, err := f.deliver(f.ctx(2, f.alice), f.validRequest())
	assert.Nil(t, err)
	id := orm.DecodeSequence(res.Data)

	_, err = f.deliver(f.ctx(5, f.admin), &ExecuteDistributionMsg{RequestID: id})
	assert.Nil(t, err)

	state := f.state(t)
	assert.Equal(t, int64(525), state.Balance)
	assert.Equal(t, int64(475), state.TotalDistributed)
	assert.Equal(t, int64(5), state.LastDistributionHeight)

	d, err := GetDistribution(f.db, f.alice.Address())
	assert.Nil(t, err)
	assert.Equal(t, &Distribution{
		ProgramID: 1,
		Amount:    475,
		Verified:  true,
		Timestamp: 5,
		Status:    StatusExecuted,
		RequestID: id,
	}, d)

	h, err := GetHistoryEntry(f.db, 1)
	assert.Nil(t, err)
	assert.Equal(t, int64(475), h.Amount)
	assert.Equal(t, id, h.RequestID)
	hs, err := HistoryByRecipient(f.db, f.alice.Address())
	assert.Nil(t, err)
	assert.Equal(t, []*HistoryEntry{h}, hs)

	req, err := GetPendingRequest(f.db, id)
	assert.Nil(t, err)
	assert.Equal(t, (*PendingRequest)(nil), req)

	out, err := transfer.NewLog().BySource(f.db, PoolAddress)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(out))
	assert.Equal(t, int64(475), out[0].Amount)
	assert.Equal(t, true, f.alice.Address().Equals(out[0].Destination))

	// A request is executed once.
	_, err = f.deliver(f.ctx(6, f.admin), &ExecuteDistributionMsg{RequestID: id})
	assert.IsErr(t, ErrRequestNotFound, err)
	assert.Equal(t, int64(525), f.state(t).Balance)
}

func TestExecuteDistributionOrder(t *testing.T) {
	cases := map[string]struct {
		requestID func(id int64) int64
		paused    bool
		notAdmin  bool
		balance   int64
		wantErr   *errors.Error
	}{
		"unknown request is checked before the pause": {
			requestID: func(id int64) int64 { return id + 1 },
			paused:    true,
			wantErr:   ErrRequestNotFound,
		},
		"zero id": {
			requestID: func(int64) int64 { return 0 },
			wantErr:   ErrRequestNotFound,
		},
		"pause is checked before the admin": {
			paused:   true,
			notAdmin: true,
			wantErr:  ErrPoolPaused,
		},
		"not admin": {
			notAdmin: true,
			wantErr:  ErrNotAuthorized,
		},
		"balance drained after the request": {
			balance: 400,
			wantErr: ErrInsufficientBalance,
		},
		"exact balance": {
			balance: 475,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			res, err := f.deliver(f.ctx(2, f.alice), f.validRequest())
			assert.Nil(t, err)
			id := orm.DecodeSequence(res.Data)

			if tc.balance != 0 {
				assert.Nil(t, saveState(f.db, NewBuckets(), &PoolState{Balance: tc.balance}))
			}
			if tc.paused {
				f.updateConf(t, func(c *Configuration) { c.Paused = true })
			}
			before := f.state(t)

			execID := id
			if tc.requestID != nil {
				execID = tc.requestID(id)
			}
			signer := f.admin
			if tc.notAdmin {
				signer = f.alice
			}
			_, err = f.deliver(f.ctx(3, signer), &ExecuteDistributionMsg{RequestID: execID})
			assert.IsErr(t, tc.wantErr, err)

			if tc.wantErr != nil {
				assert.Equal(t, before, f.state(t))
				req, err := GetPendingRequest(f.db, id)
				assert.Nil(t, err)
				assert.Equal(t, true, req != nil)
				return
			}
			assert.Equal(t, before.Balance-475, f.state(t).Balance)
		})
	}
}

func TestCancelRequest(t *testing.T) {
	cases := map[string]struct {
		signer    func(*fixture) poolweave.Condition
		requestID int64
		wantErr   *errors.Error
	}{
		"recipient": {
			signer:    func(f *fixture) poolweave.Condition { return f.alice },
			requestID: 1,
		},
		"admin is not the recipient": {
			signer:    func(f *fixture) poolweave.Condition { return f.admin },
			requestID: 1,
			wantErr:   ErrNotAuthorized,
		},
		"unknown request": {
			signer:    func(f *fixture) poolweave.Condition { return f.alice },
			requestID: 2,
			wantErr:   ErrRequestNotFound,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.deliver(f.ctx(2, f.alice), f.validRequest())
			assert.Nil(t, err)

			_, err = f.deliver(f.ctx(3, tc.signer(f)), &CancelRequestMsg{RequestID: tc.requestID})
			assert.IsErr(t, tc.wantErr, err)

			// Cancelling never moves funds.
			assert.Equal(t, &PoolState{Balance: 1000}, f.state(t))

			req, err := GetPendingRequest(f.db, 1)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantErr != nil, req != nil)
		})
	}
}

func TestCancelledRequestCannotBeExecuted(t *testing.T) {
	f := newFixture(t)
	_, err := f.deliver(f.ctx(2, f.alice), f.validRequest())
	assert.Nil(t, err)
	_, err = f.deliver(f.ctx(3, f.alice), &CancelRequestMsg{RequestID: 1})
	assert.Nil(t, err)

	_, err = f.deliver(f.ctx(4, f.admin), &ExecuteDistributionMsg{RequestID: 1})
	assert.IsErr(t, ErrRequestNotFound, err)
	_, err = f.deliver(f.ctx(4, f.alice), &CancelRequestMsg{RequestID: 1})
	assert.IsErr(t, ErrRequestNotFound, err)
}

func TestMissingConfiguration(t *testing.T) {
	rt := app.NewRouter()
	auth := &weavetest.CtxAuth{Key: "auth"}
	RegisterRoutes(rt, auth, transfer.NewLog())
	db := store.MemStore()
	ctx := auth.SetConditions(context.Background(), weavetest.NewCondition())

	_, err := rt.Deliver(ctx, db, &weavetest.Tx{Msg: &DepositMsg{Amount: 10}})
	assert.IsErr(t, errors.ErrNotFound, err)
}

func TestHandlerLogsCarryRequestID(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	withLog := func(ctx poolweave.Context) poolweave.Context {
		return poolweave.WithLogger(ctx, log.NewTMLogger(log.NewSyncWriter(&buf)))
	}

	_, err := f.deliver(withLog(f.ctx(2, f.alice)), f.validRequest())
	assert.Nil(t, err)
	_, err = f.deliver(withLog(f.ctx(2, f.alice)), f.validRequest())
	assert.Nil(t, err)
	out := buf.String()
	if !strings.Contains(out, "distribution requested") || !strings.Contains(out, "request=2") {
		t.Fatalf("unexpected request log: %s", out)
	}

	buf.Reset()
	_, err = f.deliver(withLog(f.ctx(3, f.admin)), &ExecuteDistributionMsg{RequestID: 1})
	assert.Nil(t, err)
	out = buf.String()
	if !strings.Contains(out, "distribution executed") || !strings.Contains(out, "request=1") {
		t.Fatalf("unexpected execute log: %s", out)
	}

	buf.Reset()
	_, err = f.deliver(withLog(f.ctx(3, f.alice)), &CancelRequestMsg{RequestID: 2})
	assert.Nil(t, err)
	out = buf.String()
	if !strings.Contains(out, "request cancelled") || !strings.Contains(out, "request=2") {
		t.Fatalf("unexpected cancel log: %s", out)
	}

	n, err := HistoryCount(f.db)
	assert.Nil(t, err)
	assert.Equal(t, int64(1), n)
}
