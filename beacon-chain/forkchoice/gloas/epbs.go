package gloas

import (
	"context"

	"go.opencensus.io/trace"

	"github.com/gloaslabs/gloas/consensus-types/primitives"
	"github.com/gloaslabs/gloas/time/slots"
)

// InsertPayloadEnvelope marks the block's payload as revealed. The
// transition is append-only: a node never leaves FULL. A reveal whose payload
// hash does not match the committed bid is rejected; a repeated reveal for
// the same block is a no-op.
func (f *ForkChoice) InsertPayloadEnvelope(ctx context.Context, blockRoot, payloadHash [32]byte) error {
	_, span := trace.StartSpan(ctx, "gloas.InsertPayloadEnvelope")
	defer span.End()

	f.Lock()
	defer f.Unlock()

	s := f.store
	n, ok := s.nodeByRoot[blockRoot]
	if !ok {
		return ErrNilNode
	}
	if n.payloadHash != payloadHash {
		return errUnknownPayloadHash
	}
	if n.revealed {
		return nil
	}
	n.revealed = true
	processedPayloadCount.Inc()

	if s.highestReceivedNode != nil && n.slot >= s.highestReceivedNode.slot {
		s.highestReceivedNode = n
	}
	return nil
}

// GetPTCVote returns the payload timeliness vote a committee member should
// cast for the current slot: PRESENT when the highest received block's
// payload arrived, ABSENT otherwise or when the block is from an older slot.
func (f *ForkChoice) GetPTCVote() primitives.PTCStatus {
	f.RLock()
	defer f.RUnlock()

	highestNode := f.store.highestReceivedNode
	if highestNode == nil {
		return primitives.PAYLOAD_ABSENT
	}
	if slots.CurrentSlot(f.store.genesisTime) > highestNode.slot {
		return primitives.PAYLOAD_ABSENT
	}
	if highestNode.revealed {
		return primitives.PAYLOAD_PRESENT
	}
	return primitives.PAYLOAD_ABSENT
}

// HighestReceivedBlockRoot returns the root of the latest block inserted
// into fork choice, the reference a payload attestation should vote on.
func (f *ForkChoice) HighestReceivedBlockRoot() [32]byte {
	f.RLock()
	defer f.RUnlock()

	if f.store.highestReceivedNode == nil {
		return [32]byte{}
	}
	return f.store.highestReceivedNode.root
}
