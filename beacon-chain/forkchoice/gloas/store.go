package gloas

import (
	"context"

	"go.opencensus.io/trace"

	"github.com/gloaslabs/gloas/config/params"
	"github.com/gloaslabs/gloas/consensus-types/primitives"
)

// New initializes a fork choice store anchored at the given block. The
// anchor's payload is considered revealed: the finalized checkpoint is always
// full.
func New(genesisTime uint64, anchorSlot primitives.Slot, anchorRoot, anchorPayloadHash [32]byte) *ForkChoice {
	anchor := &BlockNode{
		slot:        anchorSlot,
		root:        anchorRoot,
		payloadHash: anchorPayloadHash,
		revealed:    true,
		children:    make([]*BlockNode, 0),
	}
	s := &Store{
		justifiedRoot:       anchorRoot,
		finalizedRoot:       anchorRoot,
		treeRootNode:        anchor,
		headNode:            anchor,
		headStatus:          statusFull,
		highestReceivedNode: anchor,
		nodeByRoot:          map[[32]byte]*BlockNode{anchorRoot: anchor},
		genesisTime:         genesisTime,
	}
	return &ForkChoice{
		store: s,
		votes: make(map[primitives.ValidatorIndex]Vote),
	}
}

// InsertNode adds a block to the fork choice tree. The block's committed bid
// pins its payload hash and its parent payload hash; the latter decides
// whether the block descends from the parent's FULL or EMPTY view.
func (f *ForkChoice) InsertNode(ctx context.Context, slot primitives.Slot, root, parentRoot, payloadHash, parentPayloadHash [32]byte) error {
	_, span := trace.StartSpan(ctx, "gloas.InsertNode")
	defer span.End()

	f.Lock()
	defer f.Unlock()

	s := f.store
	if _, ok := s.nodeByRoot[root]; ok {
		return errDuplicateRoot
	}
	parent, ok := s.nodeByRoot[parentRoot]
	if !ok {
		return errInvalidParentRoot
	}
	n := &BlockNode{
		slot:              slot,
		root:              root,
		payloadHash:       payloadHash,
		parentPayloadHash: parentPayloadHash,
		parent:            parent,
		children:          make([]*BlockNode, 0),
	}
	parent.children = append(parent.children, n)
	s.nodeByRoot[root] = n

	if s.highestReceivedNode == nil || slot > s.highestReceivedNode.slot {
		s.highestReceivedNode = n
	}
	processedBlockCount.Inc()
	nodeCount.Set(float64(len(s.nodeByRoot)))
	return nil
}

// HasNode reports whether the root is tracked by fork choice.
func (f *ForkChoice) HasNode(root [32]byte) bool {
	f.RLock()
	defer f.RUnlock()

	_, ok := f.store.nodeByRoot[root]
	return ok
}

// PayloadRevealed reports whether the envelope for the given block root has
// been processed.
func (f *ForkChoice) PayloadRevealed(root [32]byte) (bool, error) {
	f.RLock()
	defer f.RUnlock()

	n, ok := f.store.nodeByRoot[root]
	if !ok {
		return false, ErrNilNode
	}
	return n.revealed, nil
}

// NodeCount returns the number of block nodes in the store.
func (f *ForkChoice) NodeCount() int {
	f.RLock()
	defer f.RUnlock()

	return len(f.store.nodeByRoot)
}

// UpdateJustifiedBalances sets the effective balances used to weigh votes.
// The caller passes the justified state's active balances; the committee
// weight for proposer boost derives from their total.
func (f *ForkChoice) UpdateJustifiedBalances(balances []primitives.Gwei) {
	f.Lock()
	defer f.Unlock()

	f.balances = balances
	total := uint64(0)
	for _, b := range balances {
		total += uint64(b)
	}
	f.store.committeeWeight = total / uint64(params.BeaconConfig().SlotsPerEpoch)
}

// UpdateJustifiedCheckpoint moves the justified root head selection starts
// from.
func (f *ForkChoice) UpdateJustifiedCheckpoint(root [32]byte) error {
	f.Lock()
	defer f.Unlock()

	if _, ok := f.store.nodeByRoot[root]; !ok {
		return errUnknownJustifiedRoot
	}
	f.store.justifiedRoot = root
	return nil
}

// Prune discards every branch not descending from the finalized root and
// re-anchors the tree at it.
func (f *ForkChoice) Prune(ctx context.Context, finalizedRoot [32]byte) error {
	_, span := trace.StartSpan(ctx, "gloas.Prune")
	defer span.End()

	f.Lock()
	defer f.Unlock()

	s := f.store
	finalized, ok := s.nodeByRoot[finalizedRoot]
	if !ok {
		return errUnknownFinalizedRoot
	}
	if finalized == s.treeRootNode {
		return nil
	}

	kept := make(map[[32]byte]*BlockNode)
	var keep func(n *BlockNode)
	keep = func(n *BlockNode) {
		kept[n.root] = n
		for _, c := range n.children {
			keep(c)
		}
	}
	keep(finalized)

	finalized.parent = nil
	s.treeRootNode = finalized
	s.finalizedRoot = finalizedRoot
	s.nodeByRoot = kept
	if _, ok := kept[s.justifiedRoot]; !ok {
		s.justifiedRoot = finalizedRoot
	}
	if s.headNode != nil {
		if _, ok := kept[s.headNode.root]; !ok {
			s.headNode = finalized
			s.headStatus = finalized.status()
		}
	}
	if s.highestReceivedNode != nil {
		if _, ok := kept[s.highestReceivedNode.root]; !ok {
			s.highestReceivedNode = finalized
		}
	}

	prunedCount.Inc()
	nodeCount.Set(float64(len(kept)))
	return nil
}
