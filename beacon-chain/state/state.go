// Package state defines the beacon state container for the ePBS fork. All
// accessors are guarded by a single read-write lock; the state transition
// mutates a copy and swaps it in on success, so a failed operation never
// leaves partial mutations behind.
package state

import (
	"sync"

	"github.com/pkg/errors"

	fieldparams "github.com/gloaslabs/gloas/config/fieldparams"
	"github.com/gloaslabs/gloas/config/params"
	"github.com/gloaslabs/gloas/consensus-types/blocks"
	"github.com/gloaslabs/gloas/consensus-types/epbs"
	"github.com/gloaslabs/gloas/consensus-types/primitives"
	"github.com/gloaslabs/gloas/consensus-types/validator"
)

// ErrNilState is returned when a nil state is passed to a processor.
var ErrNilState = errors.New("nil beacon state")

// BeaconState is the gloas beacon state. Field layout follows the order the
// epoch and block processors touch them.
type BeaconState struct {
	lock sync.RWMutex

	genesisTime           uint64
	genesisValidatorsRoot [32]byte
	slot                  primitives.Slot
	forkVersion           []byte
	latestBlockHeader     *blocks.BeaconBlockHeader
	randaoMixes           [][]byte

	validators []*validator.Validator
	balances   []primitives.Gwei
	builders   []*epbs.Builder

	// ePBS fields.
	latestExecutionPayloadBid    *epbs.ExecutionPayloadBid
	latestBlockHash              [32]byte
	latestFullSlot               primitives.Slot
	executionPayloadAvailability []byte
	builderPendingPayments       []*epbs.BuilderPendingPayment
	builderPendingWithdrawals    []*epbs.BuilderPendingWithdrawal
	pendingPartialWithdrawals    []*epbs.PendingPartialWithdrawal
	lastWithdrawalsRoot          [32]byte

	// Withdrawal sweep cursors.
	nextWithdrawalIndex          uint64
	nextWithdrawalValidatorIndex primitives.ValidatorIndex
	nextWithdrawalBuilderIndex   uint64
}

// Options configure the initial beacon state.
type Options struct {
	GenesisTime           uint64
	GenesisValidatorsRoot [32]byte
	Slot                  primitives.Slot
	Validators            []*validator.Validator
	Balances              []primitives.Gwei
	Builders              []*epbs.Builder
	LatestBlockHeader     *blocks.BeaconBlockHeader
	LatestBlockHash       [32]byte
	RandaoMixes           [][]byte
}

// New creates a beacon state from the given options. The payment ring
// buffer is allocated to twice the configured epoch length so rotation never
// reallocates.
func New(opts Options) *BeaconState {
	cfg := params.BeaconConfig()
	payments := make([]*epbs.BuilderPendingPayment, 2*uint64(cfg.SlotsPerEpoch))
	for i := range payments {
		payments[i] = &epbs.BuilderPendingPayment{Withdrawal: &epbs.BuilderPendingWithdrawal{FeeRecipient: make([]byte, 20)}}
	}
	header := opts.LatestBlockHeader
	if header == nil {
		header = &blocks.BeaconBlockHeader{
			ParentRoot: make([]byte, 32),
			StateRoot:  make([]byte, 32),
			BodyRoot:   make([]byte, 32),
		}
	}
	mixes := opts.RandaoMixes
	if mixes == nil {
		mixes = make([][]byte, 64)
		for i := range mixes {
			mixes[i] = make([]byte, 32)
		}
	}
	// The last applied withdrawal list at genesis is the empty list, not the
	// zero root.
	emptyWithdrawalsRoot, err := epbs.WithdrawalsRoot(nil, fieldparams.MaxWithdrawalsPerPayload)
	if err != nil {
		emptyWithdrawalsRoot = [32]byte{}
	}
	// The anchor payload is revealed by definition.
	availability := make([]byte, 1024)
	availability[0] = 1
	return &BeaconState{
		genesisTime:                  opts.GenesisTime,
		genesisValidatorsRoot:        opts.GenesisValidatorsRoot,
		slot:                         opts.Slot,
		forkVersion:                  cfg.GloasForkVersion,
		latestBlockHeader:            header,
		randaoMixes:                  mixes,
		validators:                   opts.Validators,
		balances:                     opts.Balances,
		builders:                     opts.Builders,
		latestExecutionPayloadBid:    &epbs.ExecutionPayloadBid{ParentBlockHash: make([]byte, 32), ParentBlockRoot: make([]byte, 32), BlockHash: make([]byte, 32), PrevRandao: make([]byte, 32), BlobKzgCommitmentsRoot: make([]byte, 32)},
		latestBlockHash:              opts.LatestBlockHash,
		executionPayloadAvailability: availability,
		builderPendingPayments:       payments,
		builderPendingWithdrawals:    make([]*epbs.BuilderPendingWithdrawal, 0),
		pendingPartialWithdrawals:    make([]*epbs.PendingPartialWithdrawal, 0),
		lastWithdrawalsRoot:          emptyWithdrawalsRoot,
	}
}

// Slot of the beacon state.
func (b *BeaconState) Slot() primitives.Slot {
	b.lock.RLock()
	defer b.lock.RUnlock()

	return b.slot
}

// SetSlot of the beacon state.
func (b *BeaconState) SetSlot(slot primitives.Slot) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.slot = slot
}

// GenesisTime of the beacon state.
func (b *BeaconState) GenesisTime() uint64 {
	b.lock.RLock()
	defer b.lock.RUnlock()

	return b.genesisTime
}

// GenesisValidatorsRoot of the beacon state.
func (b *BeaconState) GenesisValidatorsRoot() [32]byte {
	b.lock.RLock()
	defer b.lock.RUnlock()

	return b.genesisValidatorsRoot
}

// ForkVersion of the beacon state.
func (b *BeaconState) ForkVersion() []byte {
	b.lock.RLock()
	defer b.lock.RUnlock()

	return b.forkVersion
}

// LatestBlockHeader returns a copy of the latest block header in state.
func (b *BeaconState) LatestBlockHeader() *blocks.BeaconBlockHeader {
	b.lock.RLock()
	defer b.lock.RUnlock()

	return b.latestBlockHeader.Copy()
}

// SetLatestBlockHeader in state.
func (b *BeaconState) SetLatestBlockHeader(h *blocks.BeaconBlockHeader) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.latestBlockHeader = h.Copy()
}

// SetLatestBlockHeaderStateRoot caches the state root into the header kept
// in state. The envelope processor calls this before computing the post
// state root.
func (b *BeaconState) SetLatestBlockHeaderStateRoot(root [32]byte) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.latestBlockHeader.StateRoot = root[:]
}

// RandaoMix returns the randao mix of a given epoch.
func (b *BeaconState) RandaoMix(epoch primitives.Epoch) [32]byte {
	b.lock.RLock()
	defer b.lock.RUnlock()

	var mix [32]byte
	copy(mix[:], b.randaoMixes[uint64(epoch)%uint64(len(b.randaoMixes))])
	return mix
}

// SetRandaoMixAtEpoch overwrites the mix at the epoch's vector position.
func (b *BeaconState) SetRandaoMixAtEpoch(epoch primitives.Epoch, mix [32]byte) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.randaoMixes[uint64(epoch)%uint64(len(b.randaoMixes))] = mix[:]
}
