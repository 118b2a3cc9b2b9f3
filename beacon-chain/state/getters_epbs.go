package state

import (
	"github.com/gloaslabs/gloas/consensus-types/epbs"
	"github.com/gloaslabs/gloas/consensus-types/primitives"
	"github.com/gloaslabs/gloas/encoding/bytesutil"
)

// LatestExecutionPayloadBid retrieves a copy of the committed bid for the
// block currently being processed.
func (b *BeaconState) LatestExecutionPayloadBid() *epbs.ExecutionPayloadBid {
	b.lock.RLock()
	defer b.lock.RUnlock()

	return b.latestExecutionPayloadBid.Copy()
}

// IsParentBlockFull checks if the last committed payload bid was fulfilled.
// Returns true if both the beacon block and payload were present.
// Call this function on a beacon state before processing the execution payload bid.
func (b *BeaconState) IsParentBlockFull() bool {
	b.lock.RLock()
	defer b.lock.RUnlock()

	bidBlockHash := bytesutil.ToBytes32(b.latestExecutionPayloadBid.BlockHash)
	return bidBlockHash == b.latestBlockHash
}

// LatestBlockHash returns the latest execution block hash seen in an applied
// envelope.
func (b *BeaconState) LatestBlockHash() [32]byte {
	b.lock.RLock()
	defer b.lock.RUnlock()

	return b.latestBlockHash
}

// LatestFullSlot returns the slot of the latest full block.
func (b *BeaconState) LatestFullSlot() primitives.Slot {
	b.lock.RLock()
	defer b.lock.RUnlock()

	return b.latestFullSlot
}

// LastWithdrawalsRoot returns the latest withdrawal root committed by an
// applied envelope.
func (b *BeaconState) LastWithdrawalsRoot() [32]byte {
	b.lock.RLock()
	defer b.lock.RUnlock()

	return b.lastWithdrawalsRoot
}

// IsPayloadAvailable returns the availability bit for the block at the given
// slot.
func (b *BeaconState) IsPayloadAvailable(slot primitives.Slot) bool {
	b.lock.RLock()
	defer b.lock.RUnlock()

	i := uint64(slot) % uint64(len(b.executionPayloadAvailability)*8)
	return b.executionPayloadAvailability[i/8]&(1<<(i%8)) != 0
}

// BuilderPendingPayments returns a copy of the two-epoch payment ring buffer.
func (b *BeaconState) BuilderPendingPayments() []*epbs.BuilderPendingPayment {
	b.lock.RLock()
	defer b.lock.RUnlock()

	payments := make([]*epbs.BuilderPendingPayment, len(b.builderPendingPayments))
	for i, p := range b.builderPendingPayments {
		payments[i] = p.Copy()
	}
	return payments
}

// BuilderPendingPaymentAtIndex returns a copy of the ring buffer entry.
func (b *BeaconState) BuilderPendingPaymentAtIndex(i uint64) (*epbs.BuilderPendingPayment, error) {
	b.lock.RLock()
	defer b.lock.RUnlock()

	if i >= uint64(len(b.builderPendingPayments)) {
		return nil, errPaymentIndexOutOfRange
	}
	return b.builderPendingPayments[i].Copy(), nil
}

// PendingPaymentsForBuilder sums the not-yet-settled payment amounts backed
// by the given builder. The bid processor charges these against the
// builder's balance when checking solvency.
func (b *BeaconState) PendingPaymentsForBuilder(idx primitives.BuilderIndex) primitives.Gwei {
	b.lock.RLock()
	defer b.lock.RUnlock()

	total := primitives.Gwei(0)
	for _, p := range b.builderPendingPayments {
		if p.IsEmpty() {
			continue
		}
		if p.Withdrawal.BuilderIndex == idx {
			total += p.Withdrawal.Amount
		}
	}
	return total
}

// PendingWithdrawalsForBuilder sums the queued withdrawal amounts owed by
// the given builder.
func (b *BeaconState) PendingWithdrawalsForBuilder(idx primitives.BuilderIndex) primitives.Gwei {
	b.lock.RLock()
	defer b.lock.RUnlock()

	total := primitives.Gwei(0)
	for _, w := range b.builderPendingWithdrawals {
		if w.BuilderIndex == idx {
			total += w.Amount
		}
	}
	return total
}

// BuilderPendingWithdrawals returns a copy of the builder withdrawal queue.
func (b *BeaconState) BuilderPendingWithdrawals() []*epbs.BuilderPendingWithdrawal {
	b.lock.RLock()
	defer b.lock.RUnlock()

	ws := make([]*epbs.BuilderPendingWithdrawal, len(b.builderPendingWithdrawals))
	for i, w := range b.builderPendingWithdrawals {
		ws[i] = w.Copy()
	}
	return ws
}

// PendingPartialWithdrawals returns a copy of the validator partial
// withdrawal queue.
func (b *BeaconState) PendingPartialWithdrawals() []*epbs.PendingPartialWithdrawal {
	b.lock.RLock()
	defer b.lock.RUnlock()

	ws := make([]*epbs.PendingPartialWithdrawal, len(b.pendingPartialWithdrawals))
	for i, w := range b.pendingPartialWithdrawals {
		ws[i] = w.Copy()
	}
	return ws
}
