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
	"github.com/gloaslabs/gloas/encoding/bytesutil"
)

// ValidateExecutionPayloadEnvelope validates a gossiped payload reveal. An
// envelope referencing a block this node has not seen yet is ignored so the
// caller can buffer and retry once the block arrives; contradictions with
// the committed bid are rejected.
func (s *Service) ValidateExecutionPayloadEnvelope(ctx context.Context, pid peer.ID, signed *epbstypes.SignedExecutionPayloadEnvelope) (pubsub.ValidationResult, error) {
	_, span := trace.StartSpan(ctx, "sync.ValidateExecutionPayloadEnvelope")
	defer span.End()

	if signed == nil || signed.Message == nil || signed.Message.Payload == nil {
		return pubsub.ValidationReject, epbs.ErrNilObject
	}
	envelope := signed.Message
	blockRoot := bytesutil.ToBytes32(envelope.BeaconBlockRoot)

	if s.seenEnvelopeCache.Contains(blockRoot) {
		return pubsub.ValidationIgnore, nil
	}

	// Unknown referenced block: a timing condition, not a fault.
	if !s.chain.ForkChoicer().HasNode(blockRoot) {
		return pubsub.ValidationIgnore, nil
	}
	revealed, err := s.chain.ForkChoicer().PayloadRevealed(blockRoot)
	if err != nil {
		return pubsub.ValidationIgnore, err
	}
	if revealed {
		return pubsub.ValidationIgnore, nil
	}

	st := s.chain.HeadState()
	bid := st.LatestExecutionPayloadBid()
	if envelope.BuilderIndex != bid.BuilderIndex {
		return pubsub.ValidationReject, epbs.ErrBuilderMismatch
	}
	if !bytes.Equal(envelope.Payload.BlockHash, bid.BlockHash) {
		return pubsub.ValidationReject, epbs.ErrInvalidBlockHash
	}

	if envelope.BuilderIndex.IsSelfBuild() {
		if bytesutil.ToBytes96(signed.Signature) != params.BeaconConfig().InfiniteSignature {
			return pubsub.ValidationReject, epbs.ErrInvalidSelfBuild
		}
	} else {
		builder, err := st.BuilderAtIndex(envelope.BuilderIndex)
		if err != nil {
			return pubsub.ValidationReject, epbs.ErrUnknownBuilder
		}
		gvr := st.GenesisValidatorsRoot()
		domain, err := signing.ComputeDomain(params.BeaconConfig().DomainBeaconBuilder, st.ForkVersion(), gvr[:])
		if err != nil {
			return pubsub.ValidationIgnore, err
		}
		if err := signing.VerifySigningRoot(envelope, builder.PublicKey, signed.Signature, domain); err != nil {
			log.WithError(err).WithField("peer", pid).Debug("Rejecting execution payload envelope")
			return pubsub.ValidationReject, err
		}
	}

	s.seenEnvelopeCache.Add(blockRoot, struct{}{})
	return pubsub.ValidationAccept, nil
}
