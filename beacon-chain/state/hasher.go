package state

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/gloaslabs/gloas/encoding/ssz"
)

const (
	validatorRegistryLimit = 1 << 40
	builderRegistryLimit   = 1 << 40
	partialWithdrawalLimit = 1 << 27
)

// HashTreeRoot computes the ssz root of the beacon state. The envelope
// processor checks the envelope's committed state root against this value
// after applying all mutations.
func (b *BeaconState) HashTreeRoot() ([32]byte, error) {
	b.lock.RLock()
	defer b.lock.RUnlock()

	var gvr [32]byte = b.genesisValidatorsRoot
	var fork [32]byte
	copy(fork[:], b.forkVersion)

	headerRoot, err := b.latestBlockHeader.HashTreeRoot()
	if err != nil {
		return [32]byte{}, errors.Wrap(err, "could not compute latest block header root")
	}
	mixesRoot, err := bytesVectorRoot(b.randaoMixes)
	if err != nil {
		return [32]byte{}, errors.Wrap(err, "could not compute randao mixes root")
	}
	validatorsRoot, err := b.validatorRegistryRoot()
	if err != nil {
		return [32]byte{}, errors.Wrap(err, "could not compute validator registry root")
	}
	balancesRoot, err := b.balancesRoot()
	if err != nil {
		return [32]byte{}, errors.Wrap(err, "could not compute balances root")
	}
	buildersRoot, err := b.builderRegistryRoot()
	if err != nil {
		return [32]byte{}, errors.Wrap(err, "could not compute builder registry root")
	}
	bidRoot, err := b.latestExecutionPayloadBid.HashTreeRoot()
	if err != nil {
		return [32]byte{}, errors.Wrap(err, "could not compute latest bid root")
	}
	availabilityRoot, err := ssz.Merkleize(ssz.PackBytes(b.executionPayloadAvailability), uint64(len(b.executionPayloadAvailability)+31)/32)
	if err != nil {
		return [32]byte{}, errors.Wrap(err, "could not compute payload availability root")
	}
	paymentsRoot, err := b.pendingPaymentsRoot()
	if err != nil {
		return [32]byte{}, errors.Wrap(err, "could not compute pending payments root")
	}
	builderWithdrawalsRoot, err := b.builderWithdrawalsRoot()
	if err != nil {
		return [32]byte{}, errors.Wrap(err, "could not compute builder withdrawals root")
	}
	partialsRoot, err := b.partialWithdrawalsRoot()
	if err != nil {
		return [32]byte{}, errors.Wrap(err, "could not compute partial withdrawals root")
	}

	fieldRoots := [][32]byte{
		ssz.Uint64Root(b.genesisTime),
		gvr,
		ssz.Uint64Root(uint64(b.slot)),
		fork,
		headerRoot,
		mixesRoot,
		validatorsRoot,
		balancesRoot,
		buildersRoot,
		bidRoot,
		b.latestBlockHash,
		ssz.Uint64Root(uint64(b.latestFullSlot)),
		availabilityRoot,
		paymentsRoot,
		builderWithdrawalsRoot,
		partialsRoot,
		b.lastWithdrawalsRoot,
		ssz.Uint64Root(b.nextWithdrawalIndex),
		ssz.Uint64Root(uint64(b.nextWithdrawalValidatorIndex)),
		ssz.Uint64Root(b.nextWithdrawalBuilderIndex),
	}
	return ssz.Merkleize(fieldRoots, uint64(len(fieldRoots)))
}

func bytesVectorRoot(vec [][]byte) ([32]byte, error) {
	chunks := make([][32]byte, len(vec))
	for i, b := range vec {
		copy(chunks[i][:], b)
	}
	return ssz.Merkleize(chunks, uint64(len(chunks)))
}

func (b *BeaconState) validatorRegistryRoot() ([32]byte, error) {
	roots := make([][32]byte, len(b.validators))
	for i, v := range b.validators {
		r, err := v.HashTreeRoot()
		if err != nil {
			return [32]byte{}, err
		}
		roots[i] = r
	}
	root, err := ssz.Merkleize(roots, validatorRegistryLimit)
	if err != nil {
		return [32]byte{}, err
	}
	return ssz.MixInLength(root, uint64(len(b.validators))), nil
}

func (b *BeaconState) balancesRoot() ([32]byte, error) {
	packed := make([]byte, len(b.balances)*8)
	for i, bal := range b.balances {
		binary.LittleEndian.PutUint64(packed[i*8:], uint64(bal))
	}
	root, err := ssz.Merkleize(ssz.PackBytes(packed), (validatorRegistryLimit*8+31)/32)
	if err != nil {
		return [32]byte{}, err
	}
	return ssz.MixInLength(root, uint64(len(b.balances))), nil
}

func (b *BeaconState) builderRegistryRoot() ([32]byte, error) {
	roots := make([][32]byte, len(b.builders))
	for i, builder := range b.builders {
		r, err := builder.HashTreeRoot()
		if err != nil {
			return [32]byte{}, err
		}
		roots[i] = r
	}
	root, err := ssz.Merkleize(roots, builderRegistryLimit)
	if err != nil {
		return [32]byte{}, err
	}
	return ssz.MixInLength(root, uint64(len(b.builders))), nil
}

func (b *BeaconState) pendingPaymentsRoot() ([32]byte, error) {
	roots := make([][32]byte, len(b.builderPendingPayments))
	for i, p := range b.builderPendingPayments {
		r, err := p.HashTreeRoot()
		if err != nil {
			return [32]byte{}, err
		}
		roots[i] = r
	}
	return ssz.Merkleize(roots, uint64(len(roots)))
}

func (b *BeaconState) builderWithdrawalsRoot() ([32]byte, error) {
	roots := make([][32]byte, len(b.builderPendingWithdrawals))
	for i, w := range b.builderPendingWithdrawals {
		r, err := w.HashTreeRoot()
		if err != nil {
			return [32]byte{}, err
		}
		roots[i] = r
	}
	root, err := ssz.Merkleize(roots, partialWithdrawalLimit)
	if err != nil {
		return [32]byte{}, err
	}
	return ssz.MixInLength(root, uint64(len(b.builderPendingWithdrawals))), nil
}

func (b *BeaconState) partialWithdrawalsRoot() ([32]byte, error) {
	roots := make([][32]byte, len(b.pendingPartialWithdrawals))
	for i, w := range b.pendingPartialWithdrawals {
		r, err := w.HashTreeRoot()
		if err != nil {
			return [32]byte{}, err
		}
		roots[i] = r
	}
	root, err := ssz.Merkleize(roots, partialWithdrawalLimit)
	if err != nil {
		return [32]byte{}, err
	}
	return ssz.MixInLength(root, uint64(len(b.pendingPartialWithdrawals))), nil
}
