package gloas

import (
	"sync"

	"github.com/gloaslabs/gloas/consensus-types/primitives"
)

// payloadStatus is the resolved view of a block's payload in fork choice.
type payloadStatus uint8

const (
	statusPending payloadStatus = iota
	statusEmpty
	statusFull
)

// ForkChoice defines the overall fork choice store which includes all block
// nodes, the latest payload timeliness votes, and balance information.
type ForkChoice struct {
	sync.RWMutex
	store    *Store
	votes    map[primitives.ValidatorIndex]Vote
	balances []primitives.Gwei
}

// Store defines the fork choice store which includes block nodes and the last
// view of checkpoint information.
type Store struct {
	justifiedRoot       [32]byte
	finalizedRoot       [32]byte
	treeRootNode        *BlockNode
	headNode            *BlockNode
	headStatus          payloadStatus
	highestReceivedNode *BlockNode
	nodeByRoot          map[[32]byte]*BlockNode
	genesisTime         uint64
	committeeWeight     uint64

	proposerBoostRoot [32]byte
}

// BlockNode is a physical block in the fork choice tree. Its payload status
// is derived, not stored: EMPTY and FULL are virtual views of the node, and
// PENDING exists only while a child arrives before the payload resolves.
type BlockNode struct {
	slot              primitives.Slot
	root              [32]byte
	payloadHash       [32]byte
	parentPayloadHash [32]byte
	parent            *BlockNode
	children          []*BlockNode
	revealed          bool

	// Weights recomputed on every head call.
	emptyWeight   uint64
	fullWeight    uint64
	pendingWeight uint64
}

// Vote is the latest payload timeliness vote tracked per validator.
type Vote struct {
	Root           [32]byte
	Slot           primitives.Slot
	PayloadPresent bool
}

// status derives the node's payload state machine position: PENDING while a
// descendant exists before the payload resolved, otherwise the EMPTY/FULL
// outcome known so far.
func (n *BlockNode) status() payloadStatus {
	if n.revealed {
		return statusFull
	}
	if len(n.children) > 0 {
		return statusPending
	}
	return statusEmpty
}

// weight is the total attesting weight supporting any view of this node.
func (n *BlockNode) weight() uint64 {
	return n.emptyWeight + n.fullWeight + n.pendingWeight
}

// builtOnFull reports whether the child block consumed its parent's revealed
// payload, distinguishing the parent's FULL view from its EMPTY view.
func (n *BlockNode) builtOnFull() bool {
	if n.parent == nil {
		return true
	}
	return n.parentPayloadHash == n.parent.payloadHash
}
