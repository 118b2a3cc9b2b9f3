package state

import (
	"github.com/gloaslabs/gloas/consensus-types/primitives"
)

// NextWithdrawalIndex returns the index that will be assigned to the next
// withdrawal.
func (b *BeaconState) NextWithdrawalIndex() uint64 {
	b.lock.RLock()
	defer b.lock.RUnlock()

	return b.nextWithdrawalIndex
}

// SetNextWithdrawalIndex sets the index that will be assigned to the next
// withdrawal.
func (b *BeaconState) SetNextWithdrawalIndex(i uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.nextWithdrawalIndex = i
}

// NextWithdrawalValidatorIndex returns the sweep cursor into the validator
// registry.
func (b *BeaconState) NextWithdrawalValidatorIndex() primitives.ValidatorIndex {
	b.lock.RLock()
	defer b.lock.RUnlock()

	return b.nextWithdrawalValidatorIndex
}

// SetNextWithdrawalValidatorIndex sets the sweep cursor into the validator
// registry.
func (b *BeaconState) SetNextWithdrawalValidatorIndex(i primitives.ValidatorIndex) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.nextWithdrawalValidatorIndex = i
}

// NextWithdrawalBuilderIndex returns the sweep cursor into the builder
// registry.
func (b *BeaconState) NextWithdrawalBuilderIndex() uint64 {
	b.lock.RLock()
	defer b.lock.RUnlock()

	return b.nextWithdrawalBuilderIndex
}

// SetNextWithdrawalBuilderIndex sets the sweep cursor into the builder
// registry.
func (b *BeaconState) SetNextWithdrawalBuilderIndex(i uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.nextWithdrawalBuilderIndex = i
}
