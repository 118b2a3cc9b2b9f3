package blockchain

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"
	"golang.org/x/sync/errgroup"

	"github.com/gloaslabs/gloas/beacon-chain/core/epbs"
	"github.com/gloaslabs/gloas/beacon-chain/state"
	epbstypes "github.com/gloaslabs/gloas/consensus-types/epbs"
	"github.com/gloaslabs/gloas/encoding/bytesutil"
)

var errEnvelopeUnknownBlock = errors.New("envelope references a block unknown to fork choice")

// ReceiveExecutionPayloadEnvelope validates and applies a payload reveal.
// The consensus transition and the fork choice consistency check run as
// parallel legs; both must pass before the post state is swapped in and the
// reveal is reported to fork choice. Callers buffering envelopes for
// not-yet-seen blocks can retry safely: a failed envelope leaves no trace.
func (s *Service) ReceiveExecutionPayloadEnvelope(ctx context.Context, signed *epbstypes.SignedExecutionPayloadEnvelope) error {
	ctx, span := trace.StartSpan(ctx, "blockchain.ReceiveExecutionPayloadEnvelope")
	defer span.End()

	if signed == nil || signed.Message == nil || signed.Message.Payload == nil {
		return errors.New("nil envelope")
	}
	envelope := signed.Message
	blockRoot := bytesutil.ToBytes32(envelope.BeaconBlockRoot)
	payloadHash := bytesutil.ToBytes32(envelope.Payload.BlockHash)

	s.headLock.Lock()
	defer s.headLock.Unlock()

	var postState *state.BeaconState
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		st, err := epbs.ProcessExecutionPayloadEnvelope(gctx, s.headState, signed)
		if err != nil {
			return errors.Wrap(err, "could not process envelope")
		}
		postState = st
		return nil
	})
	g.Go(func() error {
		if !s.forkChoicer.HasNode(blockRoot) {
			return errEnvelopeUnknownBlock
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if err := s.forkChoicer.InsertPayloadEnvelope(ctx, blockRoot, payloadHash); err != nil {
		return errors.Wrap(err, "could not insert payload into fork choice")
	}
	s.headState = postState

	if _, err := s.forkChoicer.Head(ctx); err != nil {
		log.WithError(err).Error("Could not compute head after payload reveal")
	}
	log.WithFields(logrus.Fields{
		"slot":      envelope.Slot,
		"blockHash": fmt.Sprintf("%#x", bytesutil.Trunc(envelope.Payload.BlockHash)),
	}).Info("Processed execution payload envelope")
	return nil
}

// UpdateHead recomputes the fork choice head.
func (s *Service) UpdateHead(ctx context.Context) ([32]byte, error) {
	return s.forkChoicer.Head(ctx)
}
