// Package blocks defines the beacon block header type the ePBS core keeps
// in state for parent-root and state-root bookkeeping.
package blocks

import (
	"github.com/gloaslabs/gloas/consensus-types/primitives"
	"github.com/gloaslabs/gloas/encoding/bytesutil"
	"github.com/gloaslabs/gloas/encoding/ssz"
)

// BeaconBlockHeader is the summary of a beacon block kept in state.
type BeaconBlockHeader struct {
	Slot          primitives.Slot
	ProposerIndex primitives.ValidatorIndex
	ParentRoot    []byte
	StateRoot     []byte
	BodyRoot      []byte
}

// Copy returns a deep copy of the header.
func (h *BeaconBlockHeader) Copy() *BeaconBlockHeader {
	if h == nil {
		return nil
	}
	return &BeaconBlockHeader{
		Slot:          h.Slot,
		ProposerIndex: h.ProposerIndex,
		ParentRoot:    bytesutil.SafeCopyBytes(h.ParentRoot),
		StateRoot:     bytesutil.SafeCopyBytes(h.StateRoot),
		BodyRoot:      bytesutil.SafeCopyBytes(h.BodyRoot),
	}
}

// HashTreeRoot returns the ssz root of the header.
func (h *BeaconBlockHeader) HashTreeRoot() ([32]byte, error) {
	fieldRoots := [][32]byte{
		ssz.Uint64Root(uint64(h.Slot)),
		ssz.Uint64Root(uint64(h.ProposerIndex)),
		bytesutil.ToBytes32(h.ParentRoot),
		bytesutil.ToBytes32(h.StateRoot),
		bytesutil.ToBytes32(h.BodyRoot),
	}
	return ssz.Merkleize(fieldRoots, 8)
}
