// Package transition sequences the per-slot and per-block processing of the
// ePBS state transition. Every step is terminal on error: callers operate on
// a state copy and discard it when any step fails.
package transition

import (
	"bytes"
	"context"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"github.com/gloaslabs/gloas/beacon-chain/core/epbs"
	"github.com/gloaslabs/gloas/beacon-chain/state"
	"github.com/gloaslabs/gloas/config/params"
	"github.com/gloaslabs/gloas/consensus-types/blocks"
	"github.com/gloaslabs/gloas/consensus-types/primitives"
	"github.com/gloaslabs/gloas/encoding/bytesutil"
	"github.com/gloaslabs/gloas/time/slots"
)

var errSlotBehindState = errors.New("target slot is behind state slot")
var errBlockSlotMismatch = errors.New("block slot does not match state slot")
var errParentRootMismatch = errors.New("block parent root does not match latest block header")

// ProcessSlots advances the state to the target slot, running epoch boundary
// processing whenever a slot crosses into a new epoch.
func ProcessSlots(ctx context.Context, st *state.BeaconState, slot primitives.Slot) error {
	ctx, span := trace.StartSpan(ctx, "transition.ProcessSlots")
	defer span.End()

	if st == nil {
		return state.ErrNilState
	}
	if slot < st.Slot() {
		return errors.Wrapf(errSlotBehindState, "state slot %d, target slot %d", st.Slot(), slot)
	}
	for st.Slot() < slot {
		// An empty slot leaves the header's state root unfilled; cache it
		// so the header root is stable for children of empty blocks.
		header := st.LatestBlockHeader()
		if bytesutil.ToBytes32(header.StateRoot) == params.BeaconConfig().ZeroHash {
			root, err := st.HashTreeRoot()
			if err != nil {
				return errors.Wrap(err, "could not compute state root")
			}
			st.SetLatestBlockHeaderStateRoot(root)
		}
		if slots.IsEpochEnd(st.Slot()) {
			if err := epbs.ProcessBuilderPendingPayments(ctx, st); err != nil {
				return errors.Wrap(err, "could not process builder pending payments")
			}
		}
		st.SetSlot(st.Slot() + 1)
	}
	return nil
}

// ProcessBlock runs the block portion of the transition: header accounting,
// the withdrawal sweep, the committed bid, and the payload attestations
// voting on the parent block.
func ProcessBlock(ctx context.Context, st *state.BeaconState, block *blocks.BeaconBlock) error {
	ctx, span := trace.StartSpan(ctx, "transition.ProcessBlock")
	defer span.End()

	if st == nil {
		return state.ErrNilState
	}
	if block == nil || block.Body == nil {
		return errors.New("nil block")
	}

	// Bid and attestation checks compare against the parent header still in
	// state, so the block's own header is stored only after they pass.
	if err := verifyBlockHeader(st, block); err != nil {
		return errors.Wrap(err, "could not verify block header")
	}
	if err := epbs.ProcessWithdrawals(ctx, st); err != nil {
		return errors.Wrap(err, "could not process withdrawals")
	}
	if err := epbs.ProcessExecutionPayloadBid(ctx, st, block.Body.SignedBid); err != nil {
		return errors.Wrap(err, "could not process execution payload bid")
	}
	if err := epbs.ProcessPayloadAttestations(ctx, st, block.Body.PayloadAttestations); err != nil {
		return errors.Wrap(err, "could not process payload attestations")
	}
	if err := storeBlockHeader(st, block); err != nil {
		return errors.Wrap(err, "could not store block header")
	}
	return nil
}

// verifyBlockHeader checks the block extends the state's latest header.
func verifyBlockHeader(st *state.BeaconState, block *blocks.BeaconBlock) error {
	if block.Slot != st.Slot() {
		return errors.Wrapf(errBlockSlotMismatch, "block slot %d, state slot %d", block.Slot, st.Slot())
	}
	parentRoot, err := st.LatestBlockHeader().HashTreeRoot()
	if err != nil {
		return errors.Wrap(err, "could not compute latest block header root")
	}
	if !bytes.Equal(block.ParentRoot, parentRoot[:]) {
		return errParentRootMismatch
	}
	return nil
}

// storeBlockHeader caches the block's header with a zeroed state root. The
// root is back-filled when the envelope for this block is processed.
func storeBlockHeader(st *state.BeaconState, block *blocks.BeaconBlock) error {
	header, err := block.Header()
	if err != nil {
		return errors.Wrap(err, "could not compute block header")
	}
	header.StateRoot = make([]byte, 32)
	st.SetLatestBlockHeader(header)
	return nil
}
