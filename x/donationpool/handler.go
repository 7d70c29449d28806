package donationpool

import (
	"fmt"
	"reflect"

	"github.com/iov-one/poolweave"
	"github.com/iov-one/poolweave/errors"
	"github.com/iov-one/poolweave/gconf"
	"github.com/iov-one/poolweave/orm"
	"github.com/iov-one/poolweave/x"
	"github.com/iov-one/poolweave/x/transfer"
)

const (
	configCost    int64 = 10
	allowanceCost int64 = 20
	depositCost   int64 = 50
	requestCost   int64 = 100
	executeCost   int64 = 200
	cancelCost    int64 = 50
)

// RegisterRoutes registers handlers for all pool messages. Funds movements
// are applied with the given recorder.
func RegisterRoutes(r poolweave.Registry, auth x.Authenticator, recorder transfer.Recorder) {
	b := NewBuckets()
	for _, msg := range []poolweave.Msg{
		&SetGovernanceMsg{},
		&SetOracleMsg{},
		&SetRegistryMsg{},
		&SetFeeRateMsg{},
		&SetMaxDistributionMsg{},
		&PauseMsg{},
		&UnpauseMsg{},
	} {
		r.Handle(msg, &configHandler{auth: auth, msg: reflect.TypeOf(msg).Elem()})
	}
	r.Handle(&AddCurrencyMsg{}, &allowanceHandler{auth: auth, bucket: b.Currencies})
	r.Handle(&AddLocationMsg{}, &allowanceHandler{auth: auth, bucket: b.Locations})
	r.Handle(&SetThresholdMsg{}, &thresholdHandler{auth: auth, b: b})
	r.Handle(&DepositMsg{}, &depositHandler{auth: auth, b: b, recorder: recorder})
	r.Handle(&RequestDistributionMsg{}, &requestHandler{auth: auth, b: b})
	r.Handle(&ExecuteDistributionMsg{}, &executeHandler{auth: auth, b: b, recorder: recorder})
	r.Handle(&CancelRequestMsg{}, &cancelHandler{auth: auth, b: b})
}

// isAdmin returns true if the admin of the pool signed the transaction.
func isAdmin(ctx poolweave.Context, auth x.Authenticator, conf *Configuration) bool {
	return auth.HasAddress(ctx, conf.Admin)
}

// configHandler applies an admin change to the pool configuration.
type configHandler struct {
	auth x.Authenticator
	// msg is the type of the handled message.
	msg reflect.Type
}

var _ poolweave.Handler = (*configHandler)(nil)

func (h *configHandler) Check(ctx poolweave.Context, db poolweave.KVStore, tx poolweave.Tx) (*poolweave.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &poolweave.CheckResult{GasAllocated: configCost}, nil
}

func (h *configHandler) Deliver(ctx poolweave.Context, db poolweave.KVStore, tx poolweave.Tx) (*poolweave.DeliverResult, error) {
	conf, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := gconf.Save(db, packageName, conf); err != nil {
		return nil, errors.Wrap(err, "save configuration")
	}
	poolweave.GetLogger(ctx).Info("pool configuration changed", "conf", conf.String())
	return &poolweave.DeliverResult{}, nil
}

// validate returns the configuration with the change applied.
func (h *configHandler) validate(ctx poolweave.Context, db poolweave.KVStore, tx poolweave.Tx) (*Configuration, error) {
	msg := reflect.New(h.msg).Interface()
	if err := poolweave.LoadMsg(tx, msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}

	conf, err := LoadConfig(db)
	if err != nil {
		return nil, err
	}
	if !isAdmin(ctx, h.auth, conf) {
		return nil, errors.Wrap(ErrNotAuthorized, "admin signature required")
	}

	switch m := msg.(type) {
	case *SetGovernanceMsg:
		conf.Governance = m.Address
	case *SetOracleMsg:
		conf.Oracle = m.Address
	case *SetRegistryMsg:
		conf.Registry = m.Address
	case *SetFeeRateMsg:
		if m.Rate < 0 || m.Rate > MaxFeeRate {
			return nil, errors.Wrapf(ErrInvalidFeeRate, "rate %d not in [0, %d]", m.Rate, MaxFeeRate)
		}
		conf.FeeRate = m.Rate
	case *SetMaxDistributionMsg:
		if m.Max <= 0 {
			return nil, errors.Wrapf(ErrInvalidAmount, "max distribution %d", m.Max)
		}
		conf.MaxDistribution = m.Max
	case *PauseMsg:
		conf.Paused = true
	case *UnpauseMsg:
		conf.Paused = false
	default:
		return nil, errors.Wrapf(errors.ErrHuman, "unsupported configuration message %T", msg)
	}
	return conf, nil
}

// allowanceHandler adds a code to an allow list. Adding a code twice has
// no further effect.
type allowanceHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
}

var _ poolweave.Handler = (*allowanceHandler)(nil)

func (h *allowanceHandler) Check(ctx poolweave.Context, db poolweave.KVStore, tx poolweave.Tx) (*poolweave.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &poolweave.CheckResult{GasAllocated: allowanceCost}, nil
}

func (h *allowanceHandler) Deliver(ctx poolweave.Context, db poolweave.KVStore, tx poolweave.Tx) (*poolweave.DeliverResult, error) {
	code, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if _, err := h.bucket.Put(db, []byte(code), &Allowance{Code: code}); err != nil {
		return nil, errors.Wrap(err, "cannot store allowance")
	}
	return &poolweave.DeliverResult{}, nil
}

func (h *allowanceHandler) validate(ctx poolweave.Context, db poolweave.KVStore, tx poolweave.Tx) (string, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return "", errors.Wrap(err, "load msg")
	}
	var code string
	switch m := msg.(type) {
	case *AddCurrencyMsg:
		code = m.Code
	case *AddLocationMsg:
		code = m.Code
	default:
		return "", errors.WithType(errors.ErrType, msg)
	}
	if err := msg.Validate(); err != nil {
		return "", err
	}

	conf, err := LoadConfig(db)
	if err != nil {
		return "", err
	}
	if !isAdmin(ctx, h.auth, conf) {
		return "", errors.Wrap(ErrNotAuthorized, "admin signature required")
	}
	return code, nil
}

// thresholdHandler stores the verification percentage of a program,
// overwriting the previous one.
type thresholdHandler struct {
	auth x.Authenticator
	b    Buckets
}

var _ poolweave.Handler = (*thresholdHandler)(nil)

func (h *thresholdHandler) Check(ctx poolweave.Context, db poolweave.KVStore, tx poolweave.Tx) (*poolweave.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &poolweave.CheckResult{GasAllocated: allowanceCost}, nil
}

func (h *thresholdHandler) Deliver(ctx poolweave.Context, db poolweave.KVStore, tx poolweave.Tx) (*poolweave.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	t := &Threshold{ProgramID: msg.ProgramID, Percentage: msg.Percentage}
	if _, err := h.b.Thresholds.Put(db, idKey(msg.ProgramID), t); err != nil {
		return nil, errors.Wrap(err, "cannot store threshold")
	}
	return &poolweave.DeliverResult{}, nil
}

func (h *thresholdHandler) validate(ctx poolweave.Context, db poolweave.KVStore, tx poolweave.Tx) (*SetThresholdMsg, error) {
	var msg SetThresholdMsg
	if err := poolweave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	conf, err := LoadConfig(db)
	if err != nil {
		return nil, err
	}
	if !isAdmin(ctx, h.auth, conf) {
		return nil, errors.Wrap(ErrNotAuthorized, "admin signature required")
	}
	if msg.Percentage < 1 || msg.Percentage > 100 {
		return nil, errors.Wrapf(ErrInvalidThreshold, "percentage %d not in [1, 100]", msg.Percentage)
	}
	return &msg, nil
}

// depositHandler moves funds of the signer into the pool. Anyone can
// deposit.
type depositHandler struct {
	auth     x.Authenticator
	b        Buckets
	recorder transfer.Recorder
}

var _ poolweave.Handler = (*depositHandler)(nil)

func (h *depositHandler) Check(ctx poolweave.Context, db poolweave.KVStore, tx poolweave.Tx) (*poolweave.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &poolweave.CheckResult{GasAllocated: depositCost}, nil
}

func (h *depositHandler) Deliver(ctx poolweave.Context, db poolweave.KVStore, tx poolweave.Tx) (*poolweave.DeliverResult, error) {
	msg, donor, state, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.recorder.Record(ctx, db, donor, PoolAddress, msg.Amount, "deposit"); err != nil {
		return nil, errors.Wrap(err, "deposit transfer")
	}
	// Overflow was excluded by validate.
	state.Balance += msg.Amount
	if err := saveState(db, h.b, state); err != nil {
		return nil, err
	}
	poolweave.GetLogger(ctx).Info("deposit received", "donor", donor, "amount", msg.Amount)
	return &poolweave.DeliverResult{Log: fmt.Sprintf("pool balance %d", state.Balance)}, nil
}

func (h *depositHandler) validate(ctx poolweave.Context, db poolweave.KVStore, tx poolweave.Tx) (*DepositMsg, poolweave.Address, *PoolState, error) {
	var msg DepositMsg
	if err := poolweave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	conf, err := LoadConfig(db)
	if err != nil {
		return nil, nil, nil, err
	}
	if conf.Paused {
		return nil, nil, nil, errors.Wrap(ErrPoolPaused, "deposit")
	}
	if msg.Amount <= 0 {
		return nil, nil, nil, errors.Wrapf(ErrInvalidAmount, "deposit of %d", msg.Amount)
	}
	signer := x.MainSigner(ctx, h.auth)
	if signer == nil {
		return nil, nil, nil, errors.Wrap(ErrNotAuthorized, "deposit must be signed")
	}
	state, err := loadState(db, h.b)
	if err != nil {
		return nil, nil, nil, err
	}
	if _, err := addChecked(state.Balance, msg.Amount); err != nil {
		return nil, nil, nil, errors.Wrap(err, "pool balance")
	}
	return &msg, signer.Address(), state, nil
}

// requestHandler validates a distribution request and stores it as pending.
// The pool balance is not reserved.
type requestHandler struct {
	auth x.Authenticator
	b    Buckets
}

var _ poolweave.Handler = (*requestHandler)(nil)

func (h *requestHandler) Check(ctx poolweave.Context, db poolweave.KVStore, tx poolweave.Tx) (*poolweave.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &poolweave.CheckResult{GasAllocated: requestCost}, nil
}

func (h *requestHandler) Deliver(ctx poolweave.Context, db poolweave.KVStore, tx poolweave.Tx) (*poolweave.DeliverResult, error) {
	req, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	key, err := h.b.Pending.Put(db, nil, req)
	if err != nil {
		return nil, errors.Wrap(err, "cannot store request")
	}
	id := orm.DecodeSequence(key)
	ctx = poolweave.WithLogInfo(ctx, "request", id)
	poolweave.GetLogger(ctx).Info("distribution requested",
		"recipient", req.Recipient,
		"net", req.Amount,
		"fee", req.Fee,
	)
	return &poolweave.DeliverResult{Data: key, Log: fmt.Sprintf("request %d", id)}, nil
}

// validate checks the request in a fixed order and reports the first
// failure only.
func (h *requestHandler) validate(ctx poolweave.Context, db poolweave.KVStore, tx poolweave.Tx) (*PendingRequest, error) {
	var msg RequestDistributionMsg
	if err := poolweave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	conf, err := LoadConfig(db)
	if err != nil {
		return nil, err
	}
	if conf.Paused {
		return nil, errors.Wrap(ErrPoolPaused, "request")
	}
	if msg.Amount <= 0 {
		return nil, errors.Wrapf(ErrInvalidAmount, "request of %d", msg.Amount)
	}
	if msg.ProgramID <= 0 {
		return nil, errors.Wrapf(ErrInvalidProgramID, "program %d", msg.ProgramID)
	}
	if msg.ProposalID <= 0 {
		return nil, errors.Wrapf(ErrInvalidProposalID, "proposal %d", msg.ProposalID)
	}
	if ok, err := isAllowed(db, h.b.Currencies, msg.Currency); err != nil {
		return nil, err
	} else if !ok {
		return nil, errors.Wrapf(ErrInvalidCurrency, "currency %q not allowed", msg.Currency)
	}
	if ok, err := isAllowed(db, h.b.Locations, msg.Location); err != nil {
		return nil, err
	} else if !ok {
		return nil, errors.Wrapf(ErrInvalidLocation, "location %q not allowed", msg.Location)
	}
	state, err := loadState(db, h.b)
	if err != nil {
		return nil, err
	}
	if msg.Amount > state.Balance {
		return nil, errors.Wrapf(ErrInsufficientBalance, "request of %d, pool holds %d", msg.Amount, state.Balance)
	}
	if msg.Amount > conf.MaxDistribution {
		return nil, errors.Wrapf(ErrMaxDistributionExceeded, "request of %d, max is %d", msg.Amount, conf.MaxDistribution)
	}
	if len(conf.Governance) == 0 {
		return nil, errors.Wrap(ErrInvalidGovernance, "governance contract not set")
	}
	if len(conf.Oracle) == 0 {
		return nil, errors.Wrap(ErrInvalidOracle, "oracle contract not set")
	}
	if len(conf.Registry) == 0 {
		return nil, errors.Wrap(ErrInvalidRegistry, "registry contract not set")
	}

	net, fee, err := NetAmount(msg.Amount, conf.FeeRate)
	if err != nil {
		return nil, err
	}
	height, _ := poolweave.GetHeight(ctx)
	return &PendingRequest{
		Recipient:  msg.Recipient,
		Amount:     net,
		Gross:      msg.Amount,
		Fee:        fee,
		ProgramID:  msg.ProgramID,
		ProposalID: msg.ProposalID,
		Currency:   msg.Currency,
		Location:   msg.Location,
		CreatedAt:  height,
	}, nil
}

// executeHandler pays out a pending request. All state changes happen
// together or not at all.
type executeHandler struct {
	auth     x.Authenticator
	b        Buckets
	recorder transfer.Recorder
}

var _ poolweave.Handler = (*executeHandler)(nil)

func (h *executeHandler) Check(ctx poolweave.Context, db poolweave.KVStore, tx poolweave.Tx) (*poolweave.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &poolweave.CheckResult{GasAllocated: executeCost}, nil
}

func (h *executeHandler) Deliver(ctx poolweave.Context, db poolweave.KVStore, tx poolweave.Tx) (*poolweave.DeliverResult, error) {
	id, req, state, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	ctx = poolweave.WithLogInfo(ctx, "request", id)
	total, err := addChecked(state.TotalDistributed, req.Amount)
	if err != nil {
		return nil, errors.Wrap(err, "total distributed")
	}
	height, _ := poolweave.GetHeight(ctx)

	memo := fmt.Sprintf("distribution %d", id)
	if err := h.recorder.Record(ctx, db, PoolAddress, req.Recipient, req.Amount, memo); err != nil {
		return nil, errors.Wrap(err, "distribution transfer")
	}

	state.Balance -= req.Amount
	state.TotalDistributed = total
	state.LastDistributionHeight = height
	if err := saveState(db, h.b, state); err != nil {
		return nil, err
	}

	dist := &Distribution{
		ProgramID: req.ProgramID,
		Amount:    req.Amount,
		Verified:  true,
		Timestamp: height,
		Status:    StatusExecuted,
		RequestID: id,
	}
	if _, err := h.b.Distributions.Put(db, req.Recipient, dist); err != nil {
		return nil, errors.Wrap(err, "cannot store distribution")
	}
	entry := &HistoryEntry{
		ProgramID: req.ProgramID,
		Amount:    req.Amount,
		Timestamp: height,
		Recipient: req.Recipient,
		RequestID: id,
	}
	historyKey, err := h.b.History.Put(db, nil, entry)
	if err != nil {
		return nil, errors.Wrap(err, "cannot store history")
	}
	if err := h.b.Pending.Delete(db, idKey(id)); err != nil {
		return nil, errors.Wrap(err, "cannot delete request")
	}

	poolweave.GetLogger(ctx).Info("distribution executed",
		"history", orm.DecodeSequence(historyKey),
		"recipient", req.Recipient,
		"amount", req.Amount,
	)
	return &poolweave.DeliverResult{Data: historyKey, Log: fmt.Sprintf("pool balance %d", state.Balance)}, nil
}

func (h *executeHandler) validate(ctx poolweave.Context, db poolweave.KVStore, tx poolweave.Tx) (int64, *PendingRequest, *PoolState, error) {
	var msg ExecuteDistributionMsg
	if err := poolweave.LoadMsg(tx, &msg); err != nil {
		return 0, nil, nil, errors.Wrap(err, "load msg")
	}
	req, err := loadPending(db, h.b, msg.RequestID)
	if err != nil {
		return 0, nil, nil, err
	}
	conf, err := LoadConfig(db)
	if err != nil {
		return 0, nil, nil, err
	}
	if conf.Paused {
		return 0, nil, nil, errors.Wrap(ErrPoolPaused, "execute")
	}
	if !isAdmin(ctx, h.auth, conf) {
		return 0, nil, nil, errors.Wrap(ErrNotAuthorized, "admin signature required")
	}
	state, err := loadState(db, h.b)
	if err != nil {
		return 0, nil, nil, err
	}
	if req.Amount > state.Balance {
		return 0, nil, nil, errors.Wrapf(ErrInsufficientBalance, "payout of %d, pool holds %d", req.Amount, state.Balance)
	}
	return msg.RequestID, req, state, nil
}

// cancelHandler removes a pending request on behalf of its recipient.
type cancelHandler struct {
	auth x.Authenticator
	b    Buckets
}

var _ poolweave.Handler = (*cancelHandler)(nil)

func (h *cancelHandler) Check(ctx poolweave.Context, db poolweave.KVStore, tx poolweave.Tx) (*poolweave.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &poolweave.CheckResult{GasAllocated: cancelCost}, nil
}

func (h *cancelHandler) Deliver(ctx poolweave.Context, db poolweave.KVStore, tx poolweave.Tx) (*poolweave.DeliverResult, error) {
	id, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.b.Pending.Delete(db, idKey(id)); err != nil {
		return nil, errors.Wrap(err, "cannot delete request")
	}
	poolweave.GetLogger(poolweave.WithLogInfo(ctx, "request", id)).Info("request cancelled")
	return &poolweave.DeliverResult{}, nil
}

func (h *cancelHandler) validate(ctx poolweave.Context, db poolweave.KVStore, tx poolweave.Tx) (int64, error) {
	var msg CancelRequestMsg
	if err := poolweave.LoadMsg(tx, &msg); err != nil {
		return 0, errors.Wrap(err, "load msg")
	}
	req, err := loadPending(db, h.b, msg.RequestID)
	if err != nil {
		return 0, err
	}
	// The recipient of a request, not the admin, may cancel it.
	if !h.auth.HasAddress(ctx, req.Recipient) {
		return 0, errors.Wrap(ErrNotAuthorized, "recipient signature required")
	}
	return msg.RequestID, nil
}
