package state

import (
	"github.com/gloaslabs/gloas/consensus-types/epbs"
	"github.com/gloaslabs/gloas/consensus-types/primitives"
	"github.com/gloaslabs/gloas/consensus-types/validator"
	"github.com/gloaslabs/gloas/encoding/bytesutil"
)

// Copy returns a deep copy of the beacon state. Processors mutate the copy
// and the caller swaps it in only after the whole operation succeeds.
func (b *BeaconState) Copy() *BeaconState {
	b.lock.RLock()
	defer b.lock.RUnlock()

	validators := make([]*validator.Validator, len(b.validators))
	for i, v := range b.validators {
		validators[i] = v.Copy()
	}
	balances := make([]primitives.Gwei, len(b.balances))
	copy(balances, b.balances)
	builders := make([]*epbs.Builder, len(b.builders))
	for i, bd := range b.builders {
		builders[i] = bd.Copy()
	}
	payments := make([]*epbs.BuilderPendingPayment, len(b.builderPendingPayments))
	for i, p := range b.builderPendingPayments {
		payments[i] = p.Copy()
	}
	builderWithdrawals := make([]*epbs.BuilderPendingWithdrawal, len(b.builderPendingWithdrawals))
	for i, w := range b.builderPendingWithdrawals {
		builderWithdrawals[i] = w.Copy()
	}
	partials := make([]*epbs.PendingPartialWithdrawal, len(b.pendingPartialWithdrawals))
	for i, w := range b.pendingPartialWithdrawals {
		partials[i] = w.Copy()
	}

	return &BeaconState{
		genesisTime:                  b.genesisTime,
		genesisValidatorsRoot:        b.genesisValidatorsRoot,
		slot:                         b.slot,
		forkVersion:                  bytesutil.SafeCopyBytes(b.forkVersion),
		latestBlockHeader:            b.latestBlockHeader.Copy(),
		randaoMixes:                  bytesutil.SafeCopy2dBytes(b.randaoMixes),
		validators:                   validators,
		balances:                     balances,
		builders:                     builders,
		latestExecutionPayloadBid:    b.latestExecutionPayloadBid.Copy(),
		latestBlockHash:              b.latestBlockHash,
		latestFullSlot:               b.latestFullSlot,
		executionPayloadAvailability: bytesutil.SafeCopyBytes(b.executionPayloadAvailability),
		builderPendingPayments:       payments,
		builderPendingWithdrawals:    builderWithdrawals,
		pendingPartialWithdrawals:    partials,
		lastWithdrawalsRoot:          b.lastWithdrawalsRoot,
		nextWithdrawalIndex:          b.nextWithdrawalIndex,
		nextWithdrawalValidatorIndex: b.nextWithdrawalValidatorIndex,
		nextWithdrawalBuilderIndex:   b.nextWithdrawalBuilderIndex,
	}
}
