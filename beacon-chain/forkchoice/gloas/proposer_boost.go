package gloas

import (
	"context"

	"github.com/gloaslabs/gloas/config/params"
)

// SetProposerBoost marks the given root as the timely proposal of the
// current slot.
func (f *ForkChoice) SetProposerBoost(root [32]byte) {
	f.Lock()
	defer f.Unlock()

	f.store.proposerBoostRoot = root
}

// ResetBoostedProposerRoot sets the value of the proposer boosted root to zeros.
func (f *ForkChoice) ResetBoostedProposerRoot(_ context.Context) error {
	f.Lock()
	defer f.Unlock()

	f.store.proposerBoostRoot = [32]byte{}
	return nil
}

// applyProposerBoostScore applies the current proposer boost to the boosted
// node and its ancestors. Weights are recomputed from scratch on every head
// call, so there is no previous score to back out.
func (f *ForkChoice) applyProposerBoostScore() {
	s := f.store
	if s.proposerBoostRoot == params.BeaconConfig().ZeroHash {
		return
	}
	node, ok := s.nodeByRoot[s.proposerBoostRoot]
	if !ok || node == nil {
		log.Errorf("invalid proposer boost root %#x", s.proposerBoostRoot)
		return
	}
	score := (s.committeeWeight * params.BeaconConfig().ProposerScoreBoost) / 100
	if node.revealed {
		node.fullWeight += score
	} else {
		node.emptyWeight += score
	}
	for child, ancestor := node, node.parent; ancestor != nil; child, ancestor = ancestor, ancestor.parent {
		if child.builtOnFull() {
			ancestor.fullWeight += score
		} else {
			ancestor.emptyWeight += score
		}
	}
}
