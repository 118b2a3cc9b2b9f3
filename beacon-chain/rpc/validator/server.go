// Package validator exposes the duty and submission surface the validator
// client consumes for payload timeliness work: committee membership, the
// data to vote on, and submission of bids, envelopes and attestations.
package validator

import (
	"context"

	"github.com/ethereum/go-ethereum/common/hexutil"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/gloaslabs/gloas/beacon-chain/blockchain"
	"github.com/gloaslabs/gloas/beacon-chain/core/helpers"
	gossip "github.com/gloaslabs/gloas/beacon-chain/sync"
	"github.com/gloaslabs/gloas/consensus-types/epbs"
	"github.com/gloaslabs/gloas/consensus-types/primitives"
	"github.com/gloaslabs/gloas/time/slots"
)

var log = logrus.WithField("prefix", "rpc/validator")

var errRejectedByGossip = errors.New("message failed gossip validation")

// selfPeer marks locally produced messages at the gossip boundary.
const selfPeer = peer.ID("")

// Server provides the duty and submission endpoints.
type Server struct {
	Chain  *blockchain.Service
	Gossip *gossip.Service
}

// PtcDuty describes a validator's payload timeliness committee assignment.
type PtcDuty struct {
	ValidatorIndex primitives.ValidatorIndex
	Slot           primitives.Slot
	CommitteeIndex uint64
}

// GetPtcDuties returns the PTC assignments of the requested validators for
// every slot of the given epoch.
func (s *Server) GetPtcDuties(ctx context.Context, epoch primitives.Epoch, validators []primitives.ValidatorIndex) ([]*PtcDuty, error) {
	st := s.Chain.HeadState()
	requested := make(map[primitives.ValidatorIndex]bool, len(validators))
	for _, v := range validators {
		requested[v] = true
	}

	var duties []*PtcDuty
	start := slots.EpochStart(epoch)
	end := slots.EpochEnd(epoch)
	for slot := start; slot <= end; slot++ {
		committee, err := helpers.PtcCommittee(st, slot)
		if err != nil {
			return nil, errors.Wrapf(err, "could not compute ptc committee for slot %d", slot)
		}
		for i, idx := range committee {
			if requested[idx] {
				duties = append(duties, &PtcDuty{
					ValidatorIndex: idx,
					Slot:           slot,
					CommitteeIndex: uint64(i),
				})
			}
		}
	}
	return duties, nil
}

// GetPayloadAttestationData returns the vote a PTC member should cast for
// the given slot: the highest received block root and whether its payload
// has been revealed.
func (s *Server) GetPayloadAttestationData(ctx context.Context, slot primitives.Slot) (*epbs.PayloadAttestationData, error) {
	fc := s.Chain.ForkChoicer()
	root := fc.HighestReceivedBlockRoot()
	status := fc.GetPTCVote()
	return &epbs.PayloadAttestationData{
		BeaconBlockRoot: root[:],
		Slot:            slot,
		PayloadPresent:  status == primitives.PAYLOAD_PRESENT,
	}, nil
}

// SubmitPayloadAttestation accepts a locally produced PTC vote. Validation
// is the same the gossip boundary applies: a message this node would not
// propagate is not published either.
func (s *Server) SubmitPayloadAttestation(ctx context.Context, msg *epbs.PayloadAttestationMessage) error {
	result, err := s.Gossip.ValidatePayloadAttestationMessage(ctx, selfPeer, msg)
	if result != pubsub.ValidationAccept {
		log.WithError(err).Warn("Rejected locally produced payload attestation")
		return errRejectedByGossip
	}
	return nil
}

// SubmitSignedExecutionPayloadBid accepts a locally produced bid.
func (s *Server) SubmitSignedExecutionPayloadBid(ctx context.Context, bid *epbs.SignedExecutionPayloadBid) error {
	result, err := s.Gossip.ValidateExecutionPayloadBid(ctx, selfPeer, bid)
	if result != pubsub.ValidationAccept {
		log.WithError(err).Warn("Rejected locally produced execution payload bid")
		return errRejectedByGossip
	}
	return nil
}

// SubmitSignedExecutionPayloadEnvelope accepts a locally produced envelope
// and applies it to the chain on success.
func (s *Server) SubmitSignedExecutionPayloadEnvelope(ctx context.Context, envelope *epbs.SignedExecutionPayloadEnvelope) error {
	result, err := s.Gossip.ValidateExecutionPayloadEnvelope(ctx, selfPeer, envelope)
	if result != pubsub.ValidationAccept {
		log.WithError(err).Warn("Rejected locally produced execution payload envelope")
		return errRejectedByGossip
	}
	log.WithFields(logrus.Fields{
		"slot":      envelope.Message.Slot,
		"blockHash": hexutil.Encode(envelope.Message.Payload.BlockHash),
	}).Debug("Submitting execution payload envelope")
	return s.Chain.ReceiveExecutionPayloadEnvelope(ctx, envelope)
}
