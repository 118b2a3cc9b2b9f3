package epbs

import (
	"bytes"
	"context"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"github.com/gloaslabs/gloas/beacon-chain/core/signing"
	"github.com/gloaslabs/gloas/beacon-chain/state"
	"github.com/gloaslabs/gloas/config/params"
	"github.com/gloaslabs/gloas/consensus-types/epbs"
	"github.com/gloaslabs/gloas/consensus-types/primitives"
	"github.com/gloaslabs/gloas/encoding/bytesutil"
	"github.com/gloaslabs/gloas/time/slots"
)

// ProcessExecutionPayloadBid validates the bid committed in a proposed block
// and caches it as the latest committed bid. No balance moves at bid time:
// the payment is queued when the envelope reveals the payload and settled by
// the withdrawal sweep after quorum promotion.
func ProcessExecutionPayloadBid(ctx context.Context, st *state.BeaconState, signed *epbs.SignedExecutionPayloadBid) error {
	_, span := trace.StartSpan(ctx, "epbs.ProcessExecutionPayloadBid")
	defer span.End()

	if st == nil {
		return state.ErrNilState
	}
	if signed == nil || signed.Message == nil {
		return ErrNilObject
	}
	bid := signed.Message

	if bid.IsSelfBuild() {
		if err := verifySelfBuildBid(signed); err != nil {
			return err
		}
	} else {
		if err := verifyBuilderSolvency(st, bid); err != nil {
			return err
		}
		if err := verifyBidSignature(st, signed); err != nil {
			return err
		}
	}

	if err := verifyBidContinuity(st, bid); err != nil {
		return err
	}

	st.SetLatestExecutionPayloadBid(bid)
	bidsProcessed.Inc()
	return nil
}

// verifySelfBuildBid enforces the self-build sentinel rules: the proposer
// acts as its own builder, so the bid carries no value and no real signature.
func verifySelfBuildBid(signed *epbs.SignedExecutionPayloadBid) error {
	if signed.Message.Value != 0 {
		return errors.Wrap(ErrInvalidSelfBuild, "nonzero value")
	}
	if bytesutil.ToBytes96(signed.Signature) != params.BeaconConfig().InfiniteSignature {
		return errors.Wrap(ErrInvalidSelfBuild, "signature is not the infinity marker")
	}
	return nil
}

// verifyBuilderSolvency resolves the bidding builder and checks that its
// balance covers the bid value on top of every obligation it already owes:
//
//	balance >= MIN_DEPOSIT_AMOUNT + value + pending payments + pending withdrawals
//
// Pending obligations count because balances are only debited when the
// withdrawal sweep settles them, so the raw balance overstates what the
// builder can still commit.
func verifyBuilderSolvency(st *state.BeaconState, bid *epbs.ExecutionPayloadBid) error {
	builder, err := st.BuilderAtIndex(bid.BuilderIndex)
	if err != nil {
		return errors.Wrapf(ErrUnknownBuilder, "index %d", bid.BuilderIndex.RegistryIndex())
	}
	epoch := slots.ToEpoch(bid.Slot)
	if !builder.IsActive(epoch) {
		return ErrBuilderInactive
	}
	pendingPayments := st.PendingPaymentsForBuilder(bid.BuilderIndex)
	pendingWithdrawals := st.PendingWithdrawalsForBuilder(bid.BuilderIndex)
	required := primitives.Gwei(params.BeaconConfig().MinDepositAmount) + bid.Value + pendingPayments + pendingWithdrawals
	if builder.Balance < required {
		return errors.Wrapf(ErrBuilderInsolvent, "balance %d gwei, required %d gwei", builder.Balance, required)
	}
	return nil
}

func verifyBidSignature(st *state.BeaconState, signed *epbs.SignedExecutionPayloadBid) error {
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

// verifyBidContinuity checks the bid builds on the chain the state describes:
// same slot as the block, parent hash equal to the last revealed block hash,
// parent root equal to the latest block header root, and the randao mix of
// the current epoch.
func verifyBidContinuity(st *state.BeaconState, bid *epbs.ExecutionPayloadBid) error {
	if bid.Slot != st.Slot() {
		return errors.Wrapf(ErrInvalidSlot, "bid slot %d, state slot %d", bid.Slot, st.Slot())
	}
	latestHash := st.LatestBlockHash()
	if !bytes.Equal(bid.ParentBlockHash, latestHash[:]) {
		return ErrInvalidParentBlockHash
	}
	header := st.LatestBlockHeader()
	parentRoot, err := header.HashTreeRoot()
	if err != nil {
		return errors.Wrap(err, "could not compute latest block header root")
	}
	if !bytes.Equal(bid.ParentBlockRoot, parentRoot[:]) {
		return ErrInvalidParentBlockRoot
	}
	mix := st.RandaoMix(slots.ToEpoch(bid.Slot))
	if !bytes.Equal(bid.PrevRandao, mix[:]) {
		return ErrInvalidPrevRandao
	}
	return nil
}
