package sync

import (
	"bytes"
	"context"

	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/peer"
	"go.opencensus.io/trace"

	"github.com/gloaslabs/gloas/beacon-chain/core/epbs"
	"github.com/gloaslabs/gloas/beacon-chain/core/signing"
	"github.com/gloaslabs/gloas/config/params"
	epbstypes "github.com/gloaslabs/gloas/consensus-types/epbs"
	"github.com/gloaslabs/gloas/consensus-types/primitives"
	"github.com/gloaslabs/gloas/encoding/bytesutil"
	"github.com/gloaslabs/gloas/time/slots"
)

// ValidateExecutionPayloadBid validates a gossiped signed bid. Bids for past
// slots or duplicate (builder, slot) pairs are ignored; structural,
// economic and cryptographic failures are rejected.
func (s *Service) ValidateExecutionPayloadBid(ctx context.Context, pid peer.ID, signed *epbstypes.SignedExecutionPayloadBid) (pubsub.ValidationResult, error) {
	_, span := trace.StartSpan(ctx, "sync.ValidateExecutionPayloadBid")
	defer span.End()

	if signed == nil || signed.Message == nil {
		return pubsub.ValidationReject, epbs.ErrNilObject
	}
	bid := signed.Message

	currentSlot := slots.CurrentSlot(s.chain.HeadState().GenesisTime())
	if bid.Slot < currentSlot {
		return pubsub.ValidationIgnore, nil
	}

	key := bidCacheKey{builder: uint64(bid.BuilderIndex), slot: uint64(bid.Slot)}
	if s.seenBidCache.Contains(key) {
		return pubsub.ValidationIgnore, nil
	}

	st := s.chain.HeadState()

	if bid.IsSelfBuild() {
		if bid.Value != 0 || bytesutil.ToBytes96(signed.Signature) != params.BeaconConfig().InfiniteSignature {
			return pubsub.ValidationReject, epbs.ErrInvalidSelfBuild
		}
		s.seenBidCache.Add(key, struct{}{})
		return pubsub.ValidationAccept, nil
	}

	builder, err := st.BuilderAtIndex(bid.BuilderIndex)
	if err != nil {
		// The builder may appear once pending deposits are processed.
		return pubsub.ValidationIgnore, nil
	}
	if !builder.IsActive(slots.ToEpoch(bid.Slot)) {
		return pubsub.ValidationReject, epbs.ErrBuilderInactive
	}
	required := primitives.Gwei(params.BeaconConfig().MinDepositAmount) + bid.Value +
		st.PendingPaymentsForBuilder(bid.BuilderIndex) + st.PendingWithdrawalsForBuilder(bid.BuilderIndex)
	if builder.Balance < required {
		return pubsub.ValidationReject, epbs.ErrBuilderInsolvent
	}

	// The bid must build on a known chain tip. A mismatched parent hash is
	// expected while this node is catching up, so no peer penalty.
	latestHash := st.LatestBlockHash()
	if !bytes.Equal(bid.ParentBlockHash, latestHash[:]) {
		return pubsub.ValidationIgnore, nil
	}

	gvr := st.GenesisValidatorsRoot()
	domain, err := signing.ComputeDomain(params.BeaconConfig().DomainBeaconBuilder, st.ForkVersion(), gvr[:])
	if err != nil {
		return pubsub.ValidationIgnore, err
	}
	if err := signing.VerifySigningRoot(bid, builder.PublicKey, signed.Signature, domain); err != nil {
		log.WithError(err).WithField("peer", pid).Debug("Rejecting execution payload bid")
		return pubsub.ValidationReject, err
	}

	s.seenBidCache.Add(key, struct{}{})
	return pubsub.ValidationAccept, nil
}
