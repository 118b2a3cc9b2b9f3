package state

import (
	"github.com/pkg/errors"

	"github.com/gloaslabs/gloas/consensus-types/epbs"
	"github.com/gloaslabs/gloas/consensus-types/primitives"
)

// ErrUnknownBuilder is returned when a bid or envelope references a builder
// index outside the registry.
var ErrUnknownBuilder = errors.New("unknown builder index")

// NumBuilders returns the size of the builder registry.
func (b *BeaconState) NumBuilders() uint64 {
	b.lock.RLock()
	defer b.lock.RUnlock()

	return uint64(len(b.builders))
}

// BuilderAtIndex returns a copy of the builder at the given wire index.
func (b *BeaconState) BuilderAtIndex(idx primitives.BuilderIndex) (*epbs.Builder, error) {
	b.lock.RLock()
	defer b.lock.RUnlock()

	i := idx.RegistryIndex()
	if i >= uint64(len(b.builders)) {
		return nil, ErrUnknownBuilder
	}
	return b.builders[i].Copy(), nil
}

// BuilderBalance returns the current balance of the builder at the given
// wire index.
func (b *BeaconState) BuilderBalance(idx primitives.BuilderIndex) (primitives.Gwei, error) {
	b.lock.RLock()
	defer b.lock.RUnlock()

	i := idx.RegistryIndex()
	if i >= uint64(len(b.builders)) {
		return 0, ErrUnknownBuilder
	}
	return b.builders[i].Balance, nil
}

// Builders returns a copy of the builder registry.
func (b *BeaconState) Builders() []*epbs.Builder {
	b.lock.RLock()
	defer b.lock.RUnlock()

	builders := make([]*epbs.Builder, len(b.builders))
	for i, builder := range b.builders {
		builders[i] = builder.Copy()
	}
	return builders
}

// AppendBuilder adds a new builder entry to the registry and returns its
// wire index.
func (b *BeaconState) AppendBuilder(builder *epbs.Builder) primitives.BuilderIndex {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.builders = append(b.builders, builder.Copy())
	return primitives.BuilderIndexFromRegistry(uint64(len(b.builders) - 1))
}

// IncreaseBuilderBalance adds delta to the builder's balance.
func (b *BeaconState) IncreaseBuilderBalance(idx primitives.BuilderIndex, delta primitives.Gwei) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	i := idx.RegistryIndex()
	if i >= uint64(len(b.builders)) {
		return ErrUnknownBuilder
	}
	b.builders[i].Balance += delta
	return nil
}

// DecreaseBuilderBalance subtracts delta from the builder's balance,
// flooring at zero.
func (b *BeaconState) DecreaseBuilderBalance(idx primitives.BuilderIndex, delta primitives.Gwei) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	i := idx.RegistryIndex()
	if i >= uint64(len(b.builders)) {
		return ErrUnknownBuilder
	}
	if delta > b.builders[i].Balance {
		b.builders[i].Balance = 0
		return nil
	}
	b.builders[i].Balance -= delta
	return nil
}

// SetBuilderWithdrawableEpoch marks the builder as exiting at the given
// epoch.
func (b *BeaconState) SetBuilderWithdrawableEpoch(idx primitives.BuilderIndex, epoch primitives.Epoch) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	i := idx.RegistryIndex()
	if i >= uint64(len(b.builders)) {
		return ErrUnknownBuilder
	}
	b.builders[i].WithdrawableEpoch = epoch
	return nil
}
