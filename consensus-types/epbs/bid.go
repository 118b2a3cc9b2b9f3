package epbs

import (
	"github.com/gloaslabs/gloas/consensus-types/primitives"
	"github.com/gloaslabs/gloas/encoding/bytesutil"
	"github.com/gloaslabs/gloas/encoding/ssz"
)

// ExecutionPayloadBid is the builder's signed commitment to a specific
// execution payload, embedded in the beacon block body. Exactly one bid is
// committed per block and it is immutable once included.
type ExecutionPayloadBid struct {
	ParentBlockHash        []byte
	ParentBlockRoot        []byte
	BlockHash              []byte
	PrevRandao             []byte
	BlobKzgCommitmentsRoot []byte
	GasLimit               uint64
	BuilderIndex           primitives.BuilderIndex
	Slot                   primitives.Slot
	Value                  primitives.Gwei
}

// Copy returns a deep copy of the bid.
func (b *ExecutionPayloadBid) Copy() *ExecutionPayloadBid {
	if b == nil {
		return nil
	}
	return &ExecutionPayloadBid{
		ParentBlockHash:        bytesutil.SafeCopyBytes(b.ParentBlockHash),
		ParentBlockRoot:        bytesutil.SafeCopyBytes(b.ParentBlockRoot),
		BlockHash:              bytesutil.SafeCopyBytes(b.BlockHash),
		PrevRandao:             bytesutil.SafeCopyBytes(b.PrevRandao),
		BlobKzgCommitmentsRoot: bytesutil.SafeCopyBytes(b.BlobKzgCommitmentsRoot),
		GasLimit:               b.GasLimit,
		BuilderIndex:           b.BuilderIndex,
		Slot:                   b.Slot,
		Value:                  b.Value,
	}
}

// IsSelfBuild reports whether the bid uses the reserved self-build sentinel
// index, meaning the proposer reveals its own payload.
func (b *ExecutionPayloadBid) IsSelfBuild() bool {
	return b.BuilderIndex == primitives.SelfBuildIndex
}

// HashTreeRoot returns the ssz root of the bid. This is the message builders
// sign over, domain-separated by the beacon builder domain.
func (b *ExecutionPayloadBid) HashTreeRoot() ([32]byte, error) {
	fieldRoots := [][32]byte{
		bytesutil.ToBytes32(b.ParentBlockHash),
		bytesutil.ToBytes32(b.ParentBlockRoot),
		bytesutil.ToBytes32(b.BlockHash),
		bytesutil.ToBytes32(b.PrevRandao),
		bytesutil.ToBytes32(b.BlobKzgCommitmentsRoot),
		ssz.Uint64Root(b.GasLimit),
		ssz.Uint64Root(uint64(b.BuilderIndex)),
		ssz.Uint64Root(uint64(b.Slot)),
		ssz.Uint64Root(uint64(b.Value)),
	}
	return ssz.Merkleize(fieldRoots, 16)
}

// SignedExecutionPayloadBid is a bid plus the builder signature. Self-build
// bids carry the infinity signature marker instead of a real signature.
type SignedExecutionPayloadBid struct {
	Message   *ExecutionPayloadBid
	Signature []byte
}

// Copy returns a deep copy of the signed bid.
func (s *SignedExecutionPayloadBid) Copy() *SignedExecutionPayloadBid {
	if s == nil {
		return nil
	}
	return &SignedExecutionPayloadBid{
		Message:   s.Message.Copy(),
		Signature: bytesutil.SafeCopyBytes(s.Signature),
	}
}
