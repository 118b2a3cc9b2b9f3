package epbs

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"

	"github.com/gloaslabs/gloas/beacon-chain/core/signing"
	"github.com/gloaslabs/gloas/beacon-chain/state"
	"github.com/gloaslabs/gloas/config/params"
	"github.com/gloaslabs/gloas/consensus-types/epbs"
	"github.com/gloaslabs/gloas/encoding/bytesutil"
	"github.com/gloaslabs/gloas/time/slots"
)

// ProcessExecutionPayloadEnvelope validates the payload reveal against the
// committed bid and applies it. All mutations happen on a copy of the state;
// the copy is returned only when every check passes, so a failed envelope
// never touches head state. A payload that was already revealed for this bid
// is rejected as a duplicate, never reapplied.
func ProcessExecutionPayloadEnvelope(ctx context.Context, st *state.BeaconState, signed *epbs.SignedExecutionPayloadEnvelope) (*state.BeaconState, error) {
	_, span := trace.StartSpan(ctx, "epbs.ProcessExecutionPayloadEnvelope")
	defer span.End()

	if st == nil {
		return nil, state.ErrNilState
	}
	if signed == nil || signed.Message == nil || signed.Message.Payload == nil {
		return nil, ErrNilObject
	}
	envelope := signed.Message
	payload := envelope.Payload

	bid := st.LatestExecutionPayloadBid()
	if st.IsParentBlockFull() {
		return nil, ErrDuplicateEnvelope
	}

	// Step 1: builder signature over the envelope. Self-build reveals carry
	// the infinity marker and skip cryptographic verification.
	if err := verifyEnvelopeSignature(st, signed); err != nil {
		return nil, err
	}

	cp := st.Copy()
	if err := applyEnvelope(cp, envelope, bid); err != nil {
		return nil, err
	}

	// Step 10: the envelope commits to the post state.
	postRoot, err := cp.HashTreeRoot()
	if err != nil {
		return nil, errors.Wrap(err, "could not compute post-envelope state root")
	}
	if !bytes.Equal(envelope.StateRoot, postRoot[:]) {
		return nil, errors.Wrapf(ErrStateRootMismatch, "envelope %#x, computed %#x", bytesutil.Trunc(envelope.StateRoot), bytesutil.Trunc(postRoot[:]))
	}

	envelopesProcessed.Inc()
	log.WithFields(logrus.Fields{
		"slot":      envelope.Slot,
		"blockHash": fmt.Sprintf("%#x", bytesutil.Trunc(payload.BlockHash)),
	}).Debug("Processed execution payload envelope")
	return cp, nil
}

// PostEnvelopeStateRoot computes the state root an envelope must commit to.
// Builders call this to fill the envelope's StateRoot before signing.
func PostEnvelopeStateRoot(ctx context.Context, st *state.BeaconState, envelope *epbs.ExecutionPayloadEnvelope) ([32]byte, error) {
	_, span := trace.StartSpan(ctx, "epbs.PostEnvelopeStateRoot")
	defer span.End()

	if st == nil {
		return [32]byte{}, state.ErrNilState
	}
	if envelope == nil || envelope.Payload == nil {
		return [32]byte{}, ErrNilObject
	}
	cp := st.Copy()
	if err := applyEnvelope(cp, envelope, st.LatestExecutionPayloadBid()); err != nil {
		return [32]byte{}, err
	}
	return cp.HashTreeRoot()
}

// applyEnvelope runs the reveal checks against the committed bid and mutates
// the given state in place.
func applyEnvelope(cp *state.BeaconState, envelope *epbs.ExecutionPayloadEnvelope, bid *epbs.ExecutionPayloadBid) error {
	payload := envelope.Payload
	cfg := params.BeaconConfig()

	// Step 2: the header committed a zero state root at block time; fill it
	// with the pre-envelope state root so the header root is stable.
	header := cp.LatestBlockHeader()
	if bytesutil.ToBytes32(header.StateRoot) == cfg.ZeroHash {
		prevRoot, err := cp.HashTreeRoot()
		if err != nil {
			return errors.Wrap(err, "could not compute pre-envelope state root")
		}
		cp.SetLatestBlockHeaderStateRoot(prevRoot)
	}

	// Step 3: the envelope must reveal the payload of the latest block.
	blockRoot, err := cp.LatestBlockHeader().HashTreeRoot()
	if err != nil {
		return errors.Wrap(err, "could not compute latest block header root")
	}
	if !bytes.Equal(envelope.BeaconBlockRoot, blockRoot[:]) {
		return ErrInvalidBeaconBlockRoot
	}
	if envelope.Slot != bid.Slot {
		return errors.Wrapf(ErrInvalidSlot, "envelope slot %d, bid slot %d", envelope.Slot, bid.Slot)
	}

	// Step 4: identity and randomness are pinned at bid time.
	if envelope.BuilderIndex != bid.BuilderIndex {
		return errors.Wrapf(ErrBuilderMismatch, "envelope builder %d, bid builder %d", envelope.BuilderIndex, bid.BuilderIndex)
	}
	if !bytes.Equal(payload.PrevRandao, bid.PrevRandao) {
		return ErrInvalidPrevRandao
	}

	// Step 5: the payload must be the one the bid committed to.
	if payload.GasLimit != bid.GasLimit {
		return ErrInvalidGasLimit
	}
	if !bytes.Equal(payload.BlockHash, bid.BlockHash) {
		return ErrInvalidBlockHash
	}
	if !bytes.Equal(payload.ParentHash, bid.ParentBlockHash) {
		return ErrInvalidPayloadParent
	}
	expectedTime := slots.StartTime(cp.GenesisTime(), envelope.Slot)
	if payload.Timestamp != uint64(expectedTime.Unix()) {
		return ErrInvalidTimestamp
	}
	if uint64(len(envelope.BlobKzgCommitments)) > cfg.MaxBlobCommitmentsPerBlock {
		return ErrTooManyKzgCommitments
	}
	commitmentsRoot, err := envelope.BlobKzgCommitmentsRoot()
	if err != nil {
		return errors.Wrap(err, "could not compute blob kzg commitments root")
	}
	if !bytes.Equal(commitmentsRoot[:], bid.BlobKzgCommitmentsRoot) {
		return ErrInvalidKzgCommitments
	}

	// Step 6: the payload's withdrawals must match the sweep the block
	// committed to.
	payloadWithdrawalsRoot, err := payload.WithdrawalsRoot()
	if err != nil {
		return errors.Wrap(err, "could not compute payload withdrawals root")
	}
	if payloadWithdrawalsRoot != cp.LastWithdrawalsRoot() {
		return ErrInvalidWithdrawalsRoot
	}

	// Step 7: deposits, exits and consolidations embedded in the payload
	// belong to the shared request pipeline outside this core.

	// Step 8: queue the builder payment one epoch out. Weight starts at
	// zero and accrues from payload attestations in the next block.
	if !bid.IsSelfBuild() && bid.Value > 0 {
		paymentIndex := uint64(cfg.SlotsPerEpoch) + uint64(envelope.Slot.ModSlot(cfg.SlotsPerEpoch))
		payment := &epbs.BuilderPendingPayment{
			Withdrawal: &epbs.BuilderPendingWithdrawal{
				FeeRecipient:      payload.FeeRecipient,
				Amount:            bid.Value,
				BuilderIndex:      bid.BuilderIndex,
				WithdrawableEpoch: slots.ToEpoch(envelope.Slot) + cfg.MinValidatorWithdrawabilityDelay,
			},
		}
		if err := cp.SetBuilderPendingPayment(paymentIndex, payment); err != nil {
			return err
		}
	}

	// Step 9: the single mutation fork choice reads as "payload revealed".
	cp.SetPayloadAvailability(envelope.Slot)
	cp.SetLatestBlockHash(bytesutil.ToBytes32(payload.BlockHash))
	cp.SetLatestFullSlot(envelope.Slot)
	return nil
}

func verifyEnvelopeSignature(st *state.BeaconState, signed *epbs.SignedExecutionPayloadEnvelope) error {
	if signed.Message.BuilderIndex.IsSelfBuild() {
		if bytesutil.ToBytes96(signed.Signature) != params.BeaconConfig().InfiniteSignature {
			return errors.Wrap(ErrInvalidSelfBuild, "envelope signature is not the infinity marker")
		}
		return nil
	}
	builder, err := st.BuilderAtIndex(signed.Message.BuilderIndex)
	if err != nil {
		return errors.Wrapf(ErrUnknownBuilder, "index %d", signed.Message.BuilderIndex.RegistryIndex())
	}
	gvr := st.GenesisValidatorsRoot()
	domain, err := signing.ComputeDomain(params.BeaconConfig().DomainBeaconBuilder, st.ForkVersion(), gvr[:])
	if err != nil {
		return err
	}
	return signing.VerifySigningRoot(signed.Message, builder.PublicKey, signed.Signature, domain)
}
