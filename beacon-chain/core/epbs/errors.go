package epbs

import "github.com/pkg/errors"

// Structural errors: the object itself is malformed.
var (
	ErrNilObject             = errors.New("nil object")
	ErrTooManyKzgCommitments = errors.New("too many blob kzg commitments")
)

// Consistency errors: the object contradicts the committed bid or the state.
var (
	ErrInvalidSlot            = errors.New("slot does not match expected slot")
	ErrInvalidParentBlockHash = errors.New("parent block hash does not match latest block hash")
	ErrInvalidParentBlockRoot = errors.New("parent block root does not match latest block header root")
	ErrInvalidPrevRandao      = errors.New("prev randao does not match state randao mix")
	ErrInvalidBeaconBlockRoot = errors.New("beacon block root does not match latest block header root")
	ErrBuilderMismatch        = errors.New("builder index does not match committed bid")
	ErrInvalidGasLimit        = errors.New("gas limit does not match committed bid")
	ErrInvalidBlockHash       = errors.New("block hash does not match committed bid")
	ErrInvalidPayloadParent   = errors.New("payload parent hash does not match committed bid")
	ErrInvalidTimestamp       = errors.New("payload timestamp does not match slot start")
	ErrInvalidWithdrawalsRoot = errors.New("payload withdrawals root does not match expected withdrawals")
	ErrInvalidKzgCommitments  = errors.New("blob kzg commitments root does not match committed bid")
	ErrStateRootMismatch      = errors.New("post state root does not match envelope state root")
	ErrDuplicateEnvelope      = errors.New("payload for this bid was already revealed")
)

// Economic errors: the builder cannot back the committed value.
var (
	ErrUnknownBuilder   = errors.New("unknown builder index")
	ErrBuilderInactive  = errors.New("builder has exited and is not eligible to bid")
	ErrBuilderInsolvent = errors.New("builder balance cannot cover outstanding obligations")
	ErrInvalidSelfBuild = errors.New("self-build bid must carry zero value and infinity signature")
)

// Payload attestation errors.
var (
	ErrEmptyIndices     = errors.New("attesting indices are empty")
	ErrIndicesNotSorted = errors.New("attesting indices are not sorted and unique")
	ErrNotPtcMember     = errors.New("validator is not a payload timeliness committee member")
)
