package donationpool

import (
	"github.com/iov-one/poolweave/errors"
)

// Pool error codes. They are part of the public interface and must never
// change.
var (
	ErrNotAuthorized           = errors.Register(100, "not authorized")
	ErrInsufficientBalance     = errors.Register(101, "insufficient balance")
	ErrInvalidAmount           = errors.Register(102, "invalid amount")
	ErrInvalidProgramID        = errors.Register(103, "invalid program id")
	ErrNotVerified             = errors.Register(104, "not verified")
	ErrAlreadyDistributed      = errors.Register(105, "already distributed")
	ErrInvalidAdmin            = errors.Register(106, "invalid admin")
	ErrPoolPaused              = errors.Register(107, "pool paused")
	ErrInvalidTimestamp        = errors.Register(108, "invalid timestamp")
	ErrAuthorityNotSet         = errors.Register(109, "authority not set")
	ErrInvalidFeeRate          = errors.Register(110, "invalid fee rate")
	ErrMaxDistributionExceeded = errors.Register(111, "max distribution exceeded")
	ErrInvalidGovernance       = errors.Register(112, "invalid governance")
	ErrInvalidOracle           = errors.Register(113, "invalid oracle")
	ErrInvalidRegistry         = errors.Register(114, "invalid registry")
	ErrPauseNotAllowed         = errors.Register(115, "pause not allowed")
	ErrInvalidStatus           = errors.Register(116, "invalid status")
	ErrInvalidCurrency         = errors.Register(117, "invalid currency")
	ErrInvalidLocation         = errors.Register(118, "invalid location")
	ErrInvalidThreshold        = errors.Register(119, "invalid threshold")
	ErrInvalidProposalID       = errors.Register(120, "invalid proposal id")

	// ErrRequestNotFound is returned by execute and cancel when no pending
	// request with the given id exists.
	ErrRequestNotFound = errors.Register(121, "request not found")
)
