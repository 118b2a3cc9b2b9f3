package gloas

import (
	"context"

	"go.opencensus.io/trace"

	"github.com/gloaslabs/gloas/consensus-types/primitives"
)

// ProcessAttestation records payload timeliness votes for the given block
// root. Only the newest vote per validator is kept; an older vote never
// overwrites a newer one.
func (f *ForkChoice) ProcessAttestation(ctx context.Context, indices []primitives.ValidatorIndex, blockRoot [32]byte, slot primitives.Slot, payloadPresent bool) {
	_, span := trace.StartSpan(ctx, "gloas.ProcessAttestation")
	defer span.End()

	f.Lock()
	defer f.Unlock()

	for _, idx := range indices {
		prev, ok := f.votes[idx]
		if ok && prev.Slot >= slot {
			continue
		}
		f.votes[idx] = Vote{Root: blockRoot, Slot: slot, PayloadPresent: payloadPresent}
	}
	processedAttestationCount.Inc()
}

// computeWeights walks every tracked vote and accumulates attesting weight
// onto the payload-status views of the voted node and its ancestors. Called
// under the write lock by head.
func (f *ForkChoice) computeWeights() {
	s := f.store
	for _, n := range s.nodeByRoot {
		n.emptyWeight = 0
		n.fullWeight = 0
		n.pendingWeight = 0
	}

	for idx, vote := range f.votes {
		if uint64(idx) >= uint64(len(f.balances)) {
			continue
		}
		balance := uint64(f.balances[idx])
		if balance == 0 {
			continue
		}
		target, ok := s.nodeByRoot[vote.Root]
		if !ok {
			continue
		}
		applyVoteToNode(target, vote, balance)

		// Ancestors receive the vote's weight through whichever view the
		// descending chain passes.
		for child, ancestor := target, target.parent; ancestor != nil; child, ancestor = ancestor, ancestor.parent {
			if child.builtOnFull() {
				ancestor.fullWeight += balance
			} else {
				ancestor.emptyWeight += balance
			}
		}
	}
}

// applyVoteToNode credits the vote's weight to the view of the node it
// supports. PENDING nodes always receive support: an undecided node matches
// either eventual outcome. A definite vote supports FULL only if it asserts
// payload presence and the payload was actually revealed, and supports EMPTY
// only if it neither asserts presence nor votes for the node's own slot.
func applyVoteToNode(n *BlockNode, vote Vote, balance uint64) {
	switch n.status() {
	case statusPending:
		n.pendingWeight += balance
	case statusFull:
		if vote.PayloadPresent {
			n.fullWeight += balance
		} else if vote.Slot != n.slot {
			n.emptyWeight += balance
		}
	case statusEmpty:
		if !vote.PayloadPresent && vote.Slot != n.slot {
			n.emptyWeight += balance
		}
	}
}
