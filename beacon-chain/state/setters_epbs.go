package state

import (
	"github.com/pkg/errors"

	"github.com/gloaslabs/gloas/consensus-types/epbs"
	"github.com/gloaslabs/gloas/consensus-types/primitives"
)

var errPaymentIndexOutOfRange = errors.New("builder pending payment index out of range")

// SetLatestExecutionPayloadBid caches the committed bid for the block being
// processed. The envelope processor later checks the reveal against it.
func (b *BeaconState) SetLatestExecutionPayloadBid(bid *epbs.ExecutionPayloadBid) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.latestExecutionPayloadBid = bid.Copy()
}

// SetLatestBlockHash updates the chain's view of the latest revealed
// execution block hash. This is the single mutation fork choice treats as
// the payload-revealed signal.
func (b *BeaconState) SetLatestBlockHash(hash [32]byte) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.latestBlockHash = hash
}

// SetLatestFullSlot records the slot whose payload was most recently revealed.
func (b *BeaconState) SetLatestFullSlot(slot primitives.Slot) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.latestFullSlot = slot
}

// SetLastWithdrawalsRoot records the withdrawals root the applied envelope
// committed to.
func (b *BeaconState) SetLastWithdrawalsRoot(root [32]byte) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.lastWithdrawalsRoot = root
}

// SetPayloadAvailability sets the availability bit for the block at the
// given slot. The transition is append-only: bits are set when an envelope
// is applied and never cleared within the vector's horizon.
func (b *BeaconState) SetPayloadAvailability(slot primitives.Slot) {
	b.lock.Lock()
	defer b.lock.Unlock()

	i := uint64(slot) % uint64(len(b.executionPayloadAvailability)*8)
	b.executionPayloadAvailability[i/8] |= 1 << (i % 8)
}

// SetBuilderPendingPayment writes the ring buffer entry at the given index.
func (b *BeaconState) SetBuilderPendingPayment(i uint64, p *epbs.BuilderPendingPayment) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	if i >= uint64(len(b.builderPendingPayments)) {
		return errPaymentIndexOutOfRange
	}
	b.builderPendingPayments[i] = p.Copy()
	return nil
}

// AddBuilderPendingPaymentWeight accrues payload timeliness weight to the
// ring buffer entry at the given index.
func (b *BeaconState) AddBuilderPendingPaymentWeight(i uint64, weight primitives.Gwei) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	if i >= uint64(len(b.builderPendingPayments)) {
		return errPaymentIndexOutOfRange
	}
	b.builderPendingPayments[i].Weight += weight
	return nil
}

// RotateBuilderPendingPayments copies the second half of the ring buffer
// into the first half and resets the second half. Runs in place: epoch
// boundary processing is allocation-free.
func (b *BeaconState) RotateBuilderPendingPayments() {
	b.lock.Lock()
	defer b.lock.Unlock()

	half := len(b.builderPendingPayments) / 2
	for i := 0; i < half; i++ {
		b.builderPendingPayments[i] = b.builderPendingPayments[half+i]
		b.builderPendingPayments[half+i] = &epbs.BuilderPendingPayment{Withdrawal: &epbs.BuilderPendingWithdrawal{FeeRecipient: make([]byte, 20)}}
	}
}

// AppendBuilderPendingWithdrawal queues a promoted builder payment for the
// per-slot withdrawal sweep.
func (b *BeaconState) AppendBuilderPendingWithdrawal(w *epbs.BuilderPendingWithdrawal) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.builderPendingWithdrawals = append(b.builderPendingWithdrawals, w.Copy())
}

// SetBuilderPendingWithdrawals replaces the builder withdrawal queue.
func (b *BeaconState) SetBuilderPendingWithdrawals(ws []*epbs.BuilderPendingWithdrawal) {
	b.lock.Lock()
	defer b.lock.Unlock()

	copied := make([]*epbs.BuilderPendingWithdrawal, len(ws))
	for i, w := range ws {
		copied[i] = w.Copy()
	}
	b.builderPendingWithdrawals = copied
}

// AppendPendingPartialWithdrawal queues a validator partial withdrawal.
func (b *BeaconState) AppendPendingPartialWithdrawal(w *epbs.PendingPartialWithdrawal) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.pendingPartialWithdrawals = append(b.pendingPartialWithdrawals, w.Copy())
}

// SetPendingPartialWithdrawals replaces the validator partial withdrawal queue.
func (b *BeaconState) SetPendingPartialWithdrawals(ws []*epbs.PendingPartialWithdrawal) {
	b.lock.Lock()
	defer b.lock.Unlock()

	copied := make([]*epbs.PendingPartialWithdrawal, len(ws))
	for i, w := range ws {
		copied[i] = w.Copy()
	}
	b.pendingPartialWithdrawals = copied
}
