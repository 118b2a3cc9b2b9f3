package gloas

import (
	"bytes"
	"context"

	"go.opencensus.io/trace"

	"github.com/gloaslabs/gloas/consensus-types/primitives"
)

// Head returns the fork choice head root. Weights are recomputed from the
// tracked votes on every call, then the tree is descended from the justified
// root picking the heaviest child at each step.
func (f *ForkChoice) Head(ctx context.Context) ([32]byte, error) {
	_, span := trace.StartSpan(ctx, "gloas.Head")
	defer span.End()

	f.Lock()
	defer f.Unlock()
	calledHeadCount.Inc()

	s := f.store
	justified, ok := s.nodeByRoot[s.justifiedRoot]
	if !ok {
		return [32]byte{}, errUnknownJustifiedRoot
	}

	f.computeWeights()
	f.applyProposerBoostScore()

	node := justified
	for {
		best := bestChild(node)
		if best == nil {
			break
		}
		node = best
	}

	status := statusEmpty
	if node.revealed && node.fullWeight >= node.emptyWeight {
		// FULL wins the tie against EMPTY.
		status = statusFull
	}
	if s.headNode != node || s.headStatus != status {
		headChangesCount.Inc()
		headSlotNumber.Set(float64(node.slot))
	}
	s.headNode = node
	s.headStatus = status
	return node.root, nil
}

// bestChild picks the heaviest eligible child of the node. Children that
// claim the node's payload while it is still unrevealed are not eligible:
// their claimed parent view does not exist yet, and counting them would
// weigh a transient placeholder. Ties break by root byte order.
func bestChild(n *BlockNode) *BlockNode {
	var best *BlockNode
	for _, c := range n.children {
		if !n.revealed && c.builtOnFull() {
			continue
		}
		if best == nil {
			best = c
			continue
		}
		cw, bw := c.weight(), best.weight()
		if cw > bw || (cw == bw && bytes.Compare(c.root[:], best.root[:]) > 0) {
			best = c
		}
	}
	return best
}

// HeadPayloadStatus reports whether the selected head is the FULL or EMPTY
// view of its block.
func (f *ForkChoice) HeadPayloadStatus() primitives.PTCStatus {
	f.RLock()
	defer f.RUnlock()

	if f.store.headStatus == statusFull {
		return primitives.PAYLOAD_PRESENT
	}
	return primitives.PAYLOAD_ABSENT
}

// HeadSlot returns the slot of the selected head.
func (f *ForkChoice) HeadSlot() primitives.Slot {
	f.RLock()
	defer f.RUnlock()

	if f.store.headNode == nil {
		return 0
	}
	return f.store.headNode.slot
}
