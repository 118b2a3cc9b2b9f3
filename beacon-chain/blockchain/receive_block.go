package blockchain

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"

	"github.com/gloaslabs/gloas/beacon-chain/core/epbs"
	"github.com/gloaslabs/gloas/beacon-chain/core/transition"
	"github.com/gloaslabs/gloas/beacon-chain/state"
	"github.com/gloaslabs/gloas/config/params"
	"github.com/gloaslabs/gloas/consensus-types/blocks"
	"github.com/gloaslabs/gloas/consensus-types/primitives"
	"github.com/gloaslabs/gloas/consensus-types/validator"
	"github.com/gloaslabs/gloas/encoding/bytesutil"
	"github.com/gloaslabs/gloas/time/slots"
)

// ReceiveBlock runs the state transition for the incoming block on a copy of
// the head state, inserts the block into fork choice, and promotes the copy
// to head. A failure anywhere discards the copy, leaving head untouched.
func (s *Service) ReceiveBlock(ctx context.Context, block *blocks.BeaconBlock) error {
	ctx, span := trace.StartSpan(ctx, "blockchain.ReceiveBlock")
	defer span.End()

	if block == nil || block.Body == nil || block.Body.SignedBid == nil {
		return errors.New("nil block")
	}
	receivedTime := time.Now()
	root, err := block.HashTreeRoot()
	if err != nil {
		return errors.Wrap(err, "could not compute block root")
	}

	s.headLock.Lock()
	defer s.headLock.Unlock()

	cp := s.headState.Copy()
	if err := transition.ProcessSlots(ctx, cp, block.Slot); err != nil {
		return errors.Wrap(err, "could not process slots")
	}
	if err := transition.ProcessBlock(ctx, cp, block); err != nil {
		return errors.Wrap(err, "could not process block")
	}

	bid := block.Body.SignedBid.Message
	if err := s.forkChoicer.InsertNode(ctx, block.Slot, root,
		bytesutil.ToBytes32(block.ParentRoot),
		bytesutil.ToBytes32(bid.BlockHash),
		bytesutil.ToBytes32(bid.ParentBlockHash),
	); err != nil {
		return errors.Wrap(err, "could not insert block into fork choice")
	}
	if isTimelyProposal(s.genesisTime, block.Slot, receivedTime) {
		s.forkChoicer.SetProposerBoost(root)
	}

	// The block's payload attestations double as fork choice votes on the
	// parent block's payload status.
	for _, att := range block.Body.PayloadAttestations {
		indexed, err := epbs.ConvertToIndexed(ctx, cp, att)
		if err != nil {
			return errors.Wrap(err, "could not convert payload attestation")
		}
		s.forkChoicer.ProcessAttestation(ctx, indexed.AttestingIndices,
			bytesutil.ToBytes32(att.Data.BeaconBlockRoot), att.Data.Slot, att.Data.PayloadPresent)
	}

	epoch := slots.ToEpoch(block.Slot)
	s.forkChoicer.UpdateJustifiedBalances(activeBalances(cp, epoch))

	s.headState = cp
	s.headRoot = root

	log.WithFields(logrus.Fields{
		"slot":  block.Slot,
		"root":  fmt.Sprintf("%#x", bytesutil.Trunc(root[:])),
		"value": bid.Value,
	}).Info("Processed beacon block")
	return nil
}

// isTimelyProposal reports whether the block arrived within the first
// interval of its slot, qualifying it for proposer boost.
func isTimelyProposal(genesisTime uint64, slot primitives.Slot, received time.Time) bool {
	cfg := params.BeaconConfig()
	start := slots.StartTime(genesisTime, slot)
	cutoff := start.Add(time.Duration(cfg.SecondsPerSlot/cfg.IntervalsPerSlot) * time.Second)
	return received.Before(cutoff)
}

// activeBalances projects the effective balances of active validators, zero
// for the inactive, indexed by validator position.
func activeBalances(st *state.BeaconState, epoch primitives.Epoch) []primitives.Gwei {
	balances := make([]primitives.Gwei, st.NumValidators())
	_ = st.ReadFromEveryValidator(func(idx int, val *validator.Validator) error {
		if val.IsActive(epoch) {
			balances[idx] = val.EffectiveBalance
		}
		return nil
	})
	return balances
}
