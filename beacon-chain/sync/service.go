// Package sync implements the gossip validation boundary for the ePBS
// message kinds. Every failure is classified into the three-way pubsub
// outcome: Reject penalizes the sending peer, Ignore drops the message
// without penalty, and only fully valid messages propagate.
package sync

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/sirupsen/logrus"

	"github.com/gloaslabs/gloas/beacon-chain/blockchain"
)

var log = logrus.WithField("prefix", "sync")

const seenCacheSize = 1024

// Service handles gossip message validation for bids, envelopes and payload
// attestations.
type Service struct {
	chain *blockchain.Service

	seenBidCache      *lru.Cache // keyed by builder index and slot
	seenEnvelopeCache *lru.Cache // keyed by beacon block root
	seenPtcCache      *lru.Cache // keyed by validator index and slot
}

// NewService instantiates the gossip validation service.
func NewService(chain *blockchain.Service) *Service {
	bidCache, _ := lru.New(seenCacheSize)
	envCache, _ := lru.New(seenCacheSize)
	ptcCache, _ := lru.New(seenCacheSize)
	return &Service{
		chain:             chain,
		seenBidCache:      bidCache,
		seenEnvelopeCache: envCache,
		seenPtcCache:      ptcCache,
	}
}

type bidCacheKey struct {
	builder uint64
	slot    uint64
}

type ptcCacheKey struct {
	validator uint64
	slot      uint64
}
