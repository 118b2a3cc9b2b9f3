package state

import (
	"github.com/pkg/errors"

	"github.com/gloaslabs/gloas/consensus-types/primitives"
	"github.com/gloaslabs/gloas/consensus-types/validator"
)

// ErrUnknownValidator is returned for indices outside the registry.
var ErrUnknownValidator = errors.New("unknown validator index")

// NumValidators returns the size of the validator registry.
func (b *BeaconState) NumValidators() uint64 {
	b.lock.RLock()
	defer b.lock.RUnlock()

	return uint64(len(b.validators))
}

// ValidatorAtIndex returns a copy of the validator at the given index.
func (b *BeaconState) ValidatorAtIndex(idx primitives.ValidatorIndex) (*validator.Validator, error) {
	b.lock.RLock()
	defer b.lock.RUnlock()

	if uint64(idx) >= uint64(len(b.validators)) {
		return nil, ErrUnknownValidator
	}
	return b.validators[idx].Copy(), nil
}

// BalanceAtIndex returns the balance of the validator at the given index.
func (b *BeaconState) BalanceAtIndex(idx primitives.ValidatorIndex) (primitives.Gwei, error) {
	b.lock.RLock()
	defer b.lock.RUnlock()

	if uint64(idx) >= uint64(len(b.balances)) {
		return 0, ErrUnknownValidator
	}
	return b.balances[idx], nil
}

// ReadFromEveryValidator applies the callback to every validator in the
// registry without copying entries. The callback must not retain the
// validator reference.
func (b *BeaconState) ReadFromEveryValidator(f func(idx int, val *validator.Validator) error) error {
	b.lock.RLock()
	defer b.lock.RUnlock()

	for i, v := range b.validators {
		if err := f(i, v); err != nil {
			return err
		}
	}
	return nil
}

// ActiveValidatorIndices returns the indices of validators active at the
// given epoch.
func (b *BeaconState) ActiveValidatorIndices(epoch primitives.Epoch) []primitives.ValidatorIndex {
	b.lock.RLock()
	defer b.lock.RUnlock()

	indices := make([]primitives.ValidatorIndex, 0, len(b.validators))
	for i, v := range b.validators {
		if v.IsActive(epoch) {
			indices = append(indices, primitives.ValidatorIndex(i))
		}
	}
	return indices
}

// TotalActiveBalance returns the sum of effective balances of validators
// active at the given epoch, floored at one effective balance increment.
func (b *BeaconState) TotalActiveBalance(epoch primitives.Epoch) primitives.Gwei {
	b.lock.RLock()
	defer b.lock.RUnlock()

	total := primitives.Gwei(0)
	for _, v := range b.validators {
		if v.IsActive(epoch) {
			total += v.EffectiveBalance
		}
	}
	if total == 0 {
		return primitives.Gwei(1e9)
	}
	return total
}

// DecreaseBalance subtracts delta from the validator's balance, flooring at
// zero.
func (b *BeaconState) DecreaseBalance(idx primitives.ValidatorIndex, delta primitives.Gwei) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	if uint64(idx) >= uint64(len(b.balances)) {
		return ErrUnknownValidator
	}
	if delta > b.balances[idx] {
		b.balances[idx] = 0
		return nil
	}
	b.balances[idx] -= delta
	return nil
}

// IncreaseBalance adds delta to the validator's balance.
func (b *BeaconState) IncreaseBalance(idx primitives.ValidatorIndex, delta primitives.Gwei) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	if uint64(idx) >= uint64(len(b.balances)) {
		return ErrUnknownValidator
	}
	b.balances[idx] += delta
	return nil
}
