package blocks

import (
	"github.com/gloaslabs/gloas/consensus-types/epbs"
	"github.com/gloaslabs/gloas/consensus-types/primitives"
	"github.com/gloaslabs/gloas/encoding/bytesutil"
	"github.com/gloaslabs/gloas/encoding/ssz"
)

// BeaconBlockBody carries the ePBS operations of a proposed block: the
// committed bid and the payload attestations voting on the parent block's
// timeliness.
type BeaconBlockBody struct {
	RandaoReveal        []byte
	SignedBid           *epbs.SignedExecutionPayloadBid
	PayloadAttestations []*epbs.PayloadAttestation
}

// HashTreeRoot returns the ssz root of the body.
func (b *BeaconBlockBody) HashTreeRoot() ([32]byte, error) {
	bidRoot := [32]byte{}
	if b.SignedBid != nil && b.SignedBid.Message != nil {
		r, err := b.SignedBid.Message.HashTreeRoot()
		if err != nil {
			return [32]byte{}, err
		}
		bidRoot = r
	}
	attRoots := make([][32]byte, len(b.PayloadAttestations))
	for i, att := range b.PayloadAttestations {
		r, err := att.HashTreeRoot()
		if err != nil {
			return [32]byte{}, err
		}
		attRoots[i] = r
	}
	attsRoot, err := ssz.Merkleize(attRoots, 4)
	if err != nil {
		return [32]byte{}, err
	}
	randaoChunks := ssz.PackBytes(b.RandaoReveal)
	randaoRoot, err := ssz.MerkleizeVector(randaoChunks, 3)
	if err != nil {
		return [32]byte{}, err
	}
	fieldRoots := [][32]byte{
		randaoRoot,
		bidRoot,
		ssz.MixInLength(attsRoot, uint64(len(b.PayloadAttestations))),
	}
	return ssz.Merkleize(fieldRoots, 4)
}

// BeaconBlock is the consensus block of the ePBS fork, reduced to the fields
// the core transition consumes.
type BeaconBlock struct {
	Slot          primitives.Slot
	ProposerIndex primitives.ValidatorIndex
	ParentRoot    []byte
	StateRoot     []byte
	Body          *BeaconBlockBody
}

// Header summarizes the block for state storage. The state root is zeroed at
// proposal time and back-filled when the envelope is processed.
func (b *BeaconBlock) Header() (*BeaconBlockHeader, error) {
	bodyRoot, err := b.Body.HashTreeRoot()
	if err != nil {
		return nil, err
	}
	return &BeaconBlockHeader{
		Slot:          b.Slot,
		ProposerIndex: b.ProposerIndex,
		ParentRoot:    bytesutil.SafeCopyBytes(b.ParentRoot),
		StateRoot:     bytesutil.SafeCopyBytes(b.StateRoot),
		BodyRoot:      bodyRoot[:],
	}, nil
}

// HashTreeRoot returns the ssz root of the block.
func (b *BeaconBlock) HashTreeRoot() ([32]byte, error) {
	header, err := b.Header()
	if err != nil {
		return [32]byte{}, err
	}
	return header.HashTreeRoot()
}
