package donationpool

import (
	"unicode/utf8"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/poolweave"
	"github.com/iov-one/poolweave/errors"
	"github.com/iov-one/poolweave/orm"
)

const (
	// MaxFeeRate is the highest distribution fee rate, in percent.
	MaxFeeRate = 10

	// StatusExecuted is the status of every distribution record.
	StatusExecuted = "executed"
)

// PoolAddress is the address the deposits are transferred to and the
// distributions are paid from.
var PoolAddress = poolweave.NewCondition("donationpool", "pool", []byte("main")).Address()

// maxCodeLength bounds currency and location codes, which are used as keys.
const maxCodeLength = 64

// isCode accepts any non empty UTF-8 text. Codes are compared as given, with
// no case folding.
func isCode(code string) bool {
	return code != "" && len(code) <= maxCodeLength && utf8.ValidString(code)
}

// Configuration is the administrative state of the pool, stored with gconf.
type Configuration struct {
	// Admin is set at genesis and no pool operation can change it.
	Admin poolweave.Address `protobuf:"bytes,1,opt,name=admin,proto3" json:"admin,omitempty"`
	// Governance, Oracle and Registry are referenced by address only. A nil
	// value means not set.
	Governance poolweave.Address `protobuf:"bytes,2,opt,name=governance,proto3" json:"governance,omitempty"`
	Oracle     poolweave.Address `protobuf:"bytes,3,opt,name=oracle,proto3" json:"oracle,omitempty"`
	Registry   poolweave.Address `protobuf:"bytes,4,opt,name=registry,proto3" json:"registry,omitempty"`
	// FeeRate is the distribution fee, in percent.
	FeeRate int64 `protobuf:"varint,5,opt,name=fee_rate,json=feeRate,proto3" json:"fee_rate"`
	// MaxDistribution caps the gross amount of a single request.
	MaxDistribution int64 `protobuf:"varint,6,opt,name=max_distribution,json=maxDistribution,proto3" json:"max_distribution,omitempty"`
	Paused          bool  `protobuf:"varint,7,opt,name=paused,proto3" json:"paused,omitempty"`
}

var _ orm.Model = (*Configuration)(nil)

func (m *Configuration) Reset()         { *m = Configuration{} }
func (m *Configuration) String() string { return proto.CompactTextString(m) }
func (*Configuration) ProtoMessage()    {}

func (m *Configuration) Validate() error {
	if err := m.Admin.Validate(); err != nil {
		return errors.Wrapf(ErrInvalidAdmin, "admin: %s", err)
	}
	if err := validOptional(m.Governance); err != nil {
		return errors.Wrapf(ErrInvalidGovernance, "governance: %s", err)
	}
	if err := validOptional(m.Oracle); err != nil {
		return errors.Wrapf(ErrInvalidOracle, "oracle: %s", err)
	}
	if err := validOptional(m.Registry); err != nil {
		return errors.Wrapf(ErrInvalidRegistry, "registry: %s", err)
	}
	if m.FeeRate < 0 || m.FeeRate > MaxFeeRate {
		return errors.Wrapf(ErrInvalidFeeRate, "fee rate %d not in [0, %d]", m.FeeRate, MaxFeeRate)
	}
	if m.MaxDistribution <= 0 {
		return errors.Wrapf(ErrInvalidAmount, "max distribution %d", m.MaxDistribution)
	}
	return nil
}

func validOptional(a poolweave.Address) error {
	if len(a) == 0 {
		return nil
	}
	return a.Validate()
}

// PoolState holds the pool totals.
type PoolState struct {
	Balance                int64 `protobuf:"varint,1,opt,name=balance,proto3" json:"balance,omitempty"`
	TotalDistributed       int64 `protobuf:"varint,2,opt,name=total_distributed,json=totalDistributed,proto3" json:"total_distributed,omitempty"`
	LastDistributionHeight int64 `protobuf:"varint,3,opt,name=last_distribution_height,json=lastDistributionHeight,proto3" json:"last_distribution_height,omitempty"`
}

var _ orm.Model = (*PoolState)(nil)

func (m *PoolState) Reset()         { *m = PoolState{} }
func (m *PoolState) String() string { return proto.CompactTextString(m) }
func (*PoolState) ProtoMessage()    {}

func (m *PoolState) Validate() error {
	if m.Balance < 0 {
		return errors.Wrapf(ErrInsufficientBalance, "negative balance %d", m.Balance)
	}
	if m.TotalDistributed < 0 {
		return errors.Wrap(errors.ErrModel, "negative total distributed")
	}
	if m.LastDistributionHeight < 0 {
		return errors.Wrap(ErrInvalidTimestamp, "negative last distribution height")
	}
	return nil
}

// PendingRequest is a distribution waiting for the admin decision. It is
// never modified, only created and deleted.
type PendingRequest struct {
	Recipient poolweave.Address `protobuf:"bytes,1,opt,name=recipient,proto3" json:"recipient,omitempty"`
	// Amount is the net amount, paid out on execution.
	Amount int64 `protobuf:"varint,2,opt,name=amount,proto3" json:"amount,omitempty"`
	// Gross is the requested amount, Fee the part of it kept by the pool.
	Gross      int64  `protobuf:"varint,3,opt,name=gross,proto3" json:"gross,omitempty"`
	Fee        int64  `protobuf:"varint,4,opt,name=fee,proto3" json:"fee,omitempty"`
	ProgramID  int64  `protobuf:"varint,5,opt,name=program_id,json=programId,proto3" json:"program_id,omitempty"`
	ProposalID int64  `protobuf:"varint,6,opt,name=proposal_id,json=proposalId,proto3" json:"proposal_id,omitempty"`
	Currency   string `protobuf:"bytes,7,opt,name=currency,proto3" json:"currency,omitempty"`
	Location   string `protobuf:"bytes,8,opt,name=location,proto3" json:"location,omitempty"`
	// CreatedAt is the block height of the request.
	CreatedAt int64 `protobuf:"varint,9,opt,name=created_at,json=createdAt,proto3" json:"created_at,omitempty"`
}

var _ orm.Model = (*PendingRequest)(nil)

func (m *PendingRequest) Reset()         { *m = PendingRequest{} }
func (m *PendingRequest) String() string { return proto.CompactTextString(m) }
func (*PendingRequest) ProtoMessage()    {}

func (m *PendingRequest) Validate() error {
	if err := m.Recipient.Validate(); err != nil {
		return errors.Wrap(err, "recipient")
	}
	if m.Amount <= 0 || m.Gross <= 0 || m.Fee < 0 || m.Amount+m.Fee != m.Gross {
		return errors.Wrapf(ErrInvalidAmount, "amount %d, fee %d, gross %d", m.Amount, m.Fee, m.Gross)
	}
	if m.ProgramID <= 0 {
		return errors.Wrap(ErrInvalidProgramID, "program id")
	}
	if m.ProposalID <= 0 {
		return errors.Wrap(ErrInvalidProposalID, "proposal id")
	}
	if m.CreatedAt < 0 {
		return errors.Wrap(ErrInvalidTimestamp, "created at")
	}
	return nil
}

// Distribution is the latest executed distribution of a recipient.
type Distribution struct {
	ProgramID int64  `protobuf:"varint,1,opt,name=program_id,json=programId,proto3" json:"program_id,omitempty"`
	Amount    int64  `protobuf:"varint,2,opt,name=amount,proto3" json:"amount,omitempty"`
	Verified  bool   `protobuf:"varint,3,opt,name=verified,proto3" json:"verified,omitempty"`
	Timestamp int64  `protobuf:"varint,4,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
	Status    string `protobuf:"bytes,5,opt,name=status,proto3" json:"status,omitempty"`
	RequestID int64  `protobuf:"varint,6,opt,name=request_id,json=requestId,proto3" json:"request_id,omitempty"`
}

var _ orm.Model = (*Distribution)(nil)

func (m *Distribution) Reset()         { *m = Distribution{} }
func (m *Distribution) String() string { return proto.CompactTextString(m) }
func (*Distribution) ProtoMessage()    {}

func (m *Distribution) Validate() error {
	if m.Amount <= 0 {
		return errors.Wrap(ErrInvalidAmount, "amount")
	}
	if m.Status != StatusExecuted {
		return errors.Wrapf(ErrInvalidStatus, "status %q", m.Status)
	}
	if m.Timestamp < 0 {
		return errors.Wrap(ErrInvalidTimestamp, "timestamp")
	}
	return nil
}

// HistoryEntry is an append-only record of an executed distribution.
type HistoryEntry struct {
	ProgramID int64             `protobuf:"varint,1,opt,name=program_id,json=programId,proto3" json:"program_id,omitempty"`
	Amount    int64             `protobuf:"varint,2,opt,name=amount,proto3" json:"amount,omitempty"`
	Timestamp int64             `protobuf:"varint,3,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
	Recipient poolweave.Address `protobuf:"bytes,4,opt,name=recipient,proto3" json:"recipient,omitempty"`
	RequestID int64             `protobuf:"varint,5,opt,name=request_id,json=requestId,proto3" json:"request_id,omitempty"`
}

var _ orm.Model = (*HistoryEntry)(nil)

func (m *HistoryEntry) Reset()         { *m = HistoryEntry{} }
func (m *HistoryEntry) String() string { return proto.CompactTextString(m) }
func (*HistoryEntry) ProtoMessage()    {}

func (m *HistoryEntry) Validate() error {
	if err := m.Recipient.Validate(); err != nil {
		return errors.Wrap(err, "recipient")
	}
	if m.Amount <= 0 {
		return errors.Wrap(ErrInvalidAmount, "amount")
	}
	if m.Timestamp < 0 {
		return errors.Wrap(ErrInvalidTimestamp, "timestamp")
	}
	return nil
}

// Allowance marks a currency or a location code as approved.
type Allowance struct {
	Code string `protobuf:"bytes,1,opt,name=code,proto3" json:"code,omitempty"`
}

var _ orm.Model = (*Allowance)(nil)

func (m *Allowance) Reset()         { *m = Allowance{} }
func (m *Allowance) String() string { return proto.CompactTextString(m) }
func (*Allowance) ProtoMessage()    {}

func (m *Allowance) Validate() error {
	if !isCode(m.Code) {
		return errors.Wrapf(errors.ErrInput, "invalid code %q", m.Code)
	}
	return nil
}

// Threshold is the verification percentage required for a program. It is
// stored for an external verifier and not enforced by the pool.
type Threshold struct {
	ProgramID  int64 `protobuf:"varint,1,opt,name=program_id,json=programId,proto3" json:"program_id,omitempty"`
	Percentage int64 `protobuf:"varint,2,opt,name=percentage,proto3" json:"percentage,omitempty"`
}

var _ orm.Model = (*Threshold)(nil)

func (m *Threshold) Reset()         { *m = Threshold{} }
func (m *Threshold) String() string { return proto.CompactTextString(m) }
func (*Threshold) ProtoMessage()    {}

func (m *Threshold) Validate() error {
	if m.Percentage < 1 || m.Percentage > 100 {
		return errors.Wrapf(ErrInvalidThreshold, "percentage %d not in [1, 100]", m.Percentage)
	}
	return nil
}

// Buckets groups all collections of the pool.
type Buckets struct {
	State         orm.ModelBucket
	Pending       orm.ModelBucket
	Distributions orm.ModelBucket
	History       orm.ModelBucket
	Currencies    orm.ModelBucket
	Locations     orm.ModelBucket
	Thresholds    orm.ModelBucket
}

// NewBuckets returns all buckets used by the pool.
// historySeq numbers the history entries. History is never deleted, so its
// latest value is also the number of entries.
var historySeq = orm.NewSequence("history", "id")

func NewBuckets() Buckets {
	return Buckets{
		State: orm.NewModelBucket("pool", &PoolState{}),
		Pending: orm.NewModelBucket("pending", &PendingRequest{},
			orm.WithIDSequence(orm.NewSequence("pending", "id")),
			orm.WithIndex("recipient", pendingRecipient),
		),
		Distributions: orm.NewModelBucket("distribution", &Distribution{}),
		History: orm.NewModelBucket("history", &HistoryEntry{},
			orm.WithIDSequence(historySeq),
			orm.WithIndex("recipient", historyRecipient),
		),
		Currencies: orm.NewModelBucket("currency", &Allowance{}),
		Locations:  orm.NewModelBucket("location", &Allowance{}),
		Thresholds: orm.NewModelBucket("threshold", &Threshold{}),
	}
}

func pendingRecipient(obj orm.Model) ([]byte, error) {
	r, ok := obj.(*PendingRequest)
	if !ok {
		return nil, errors.WithType(errors.ErrModel, obj)
	}
	return r.Recipient, nil
}

func historyRecipient(obj orm.Model) ([]byte, error) {
	h, ok := obj.(*HistoryEntry)
	if !ok {
		return nil, errors.WithType(errors.ErrModel, obj)
	}
	return h.Recipient, nil
}

var stateKey = []byte("state")

// idKey returns the key of an entity with a numeric id.
func idKey(id int64) []byte {
	return orm.EncodeSequence(id)
}
