package sync

import (
	"context"

	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/peer"
	"go.opencensus.io/trace"

	"github.com/gloaslabs/gloas/beacon-chain/core/epbs"
	"github.com/gloaslabs/gloas/beacon-chain/core/helpers"
	"github.com/gloaslabs/gloas/beacon-chain/core/signing"
	"github.com/gloaslabs/gloas/config/params"
	epbstypes "github.com/gloaslabs/gloas/consensus-types/epbs"
	"github.com/gloaslabs/gloas/encoding/bytesutil"
	"github.com/gloaslabs/gloas/time/slots"
)

// ValidatePayloadAttestationMessage validates a single PTC member's gossiped
// vote. A vote asserting payload presence for a block whose payload this
// node has not seen revealed is ignored, not rejected: the reveal may simply
// not have arrived here yet.
func (s *Service) ValidatePayloadAttestationMessage(ctx context.Context, pid peer.ID, msg *epbstypes.PayloadAttestationMessage) (pubsub.ValidationResult, error) {
	_, span := trace.StartSpan(ctx, "sync.ValidatePayloadAttestationMessage")
	defer span.End()

	if msg == nil || msg.Data == nil {
		return pubsub.ValidationReject, epbs.ErrNilObject
	}
	data := msg.Data

	currentSlot := slots.CurrentSlot(s.chain.HeadState().GenesisTime())
	if data.Slot != currentSlot && data.Slot+1 != currentSlot {
		return pubsub.ValidationIgnore, nil
	}

	key := ptcCacheKey{validator: uint64(msg.ValidatorIndex), slot: uint64(data.Slot)}
	if s.seenPtcCache.Contains(key) {
		return pubsub.ValidationIgnore, nil
	}

	blockRoot := bytesutil.ToBytes32(data.BeaconBlockRoot)
	if !s.chain.ForkChoicer().HasNode(blockRoot) {
		return pubsub.ValidationIgnore, nil
	}

	// A presence vote needs the reveal to have happened. Until it does the
	// vote is premature: no penalty, no fork choice weight.
	if data.PayloadPresent {
		revealed, err := s.chain.ForkChoicer().PayloadRevealed(blockRoot)
		if err != nil {
			return pubsub.ValidationIgnore, err
		}
		if !revealed {
			return pubsub.ValidationIgnore, nil
		}
	}

	st := s.chain.HeadState()
	committee, err := helpers.PtcCommittee(st, data.Slot)
	if err != nil {
		return pubsub.ValidationIgnore, err
	}
	member := false
	for _, idx := range committee {
		if idx == msg.ValidatorIndex {
			member = true
			break
		}
	}
	if !member {
		return pubsub.ValidationReject, epbs.ErrNotPtcMember
	}

	v, err := st.ValidatorAtIndex(msg.ValidatorIndex)
	if err != nil {
		return pubsub.ValidationReject, err
	}
	gvr := st.GenesisValidatorsRoot()
	domain, err := signing.ComputeDomain(params.BeaconConfig().DomainPtcAttester, st.ForkVersion(), gvr[:])
	if err != nil {
		return pubsub.ValidationIgnore, err
	}
	if err := signing.VerifySigningRoot(data, v.PublicKey, msg.Signature, domain); err != nil {
		log.WithError(err).WithField("peer", pid).Debug("Rejecting payload attestation")
		return pubsub.ValidationReject, err
	}

	s.seenPtcCache.Add(key, struct{}{})
	return pubsub.ValidationAccept, nil
}
