package epbs

import (
	fieldparams "github.com/gloaslabs/gloas/config/fieldparams"
	"github.com/gloaslabs/gloas/consensus-types/primitives"
	"github.com/gloaslabs/gloas/encoding/bytesutil"
	"github.com/gloaslabs/gloas/encoding/ssz"
)

// ExecutionPayload is the projection of the execution block contents the
// consensus layer validates. Transaction bytes are carried opaquely; the
// execution engine owns their semantics.
type ExecutionPayload struct {
	ParentHash    []byte
	FeeRecipient  []byte
	StateRoot     []byte
	ReceiptsRoot  []byte
	PrevRandao    []byte
	BlockNumber   uint64
	GasLimit      uint64
	GasUsed       uint64
	Timestamp     uint64
	BlockHash     []byte
	Transactions  [][]byte
	Withdrawals   []*Withdrawal
}

// Copy returns a deep copy of the payload.
func (p *ExecutionPayload) Copy() *ExecutionPayload {
	if p == nil {
		return nil
	}
	withdrawals := make([]*Withdrawal, len(p.Withdrawals))
	for i, w := range p.Withdrawals {
		withdrawals[i] = w.Copy()
	}
	return &ExecutionPayload{
		ParentHash:   bytesutil.SafeCopyBytes(p.ParentHash),
		FeeRecipient: bytesutil.SafeCopyBytes(p.FeeRecipient),
		StateRoot:    bytesutil.SafeCopyBytes(p.StateRoot),
		ReceiptsRoot: bytesutil.SafeCopyBytes(p.ReceiptsRoot),
		PrevRandao:   bytesutil.SafeCopyBytes(p.PrevRandao),
		BlockNumber:  p.BlockNumber,
		GasLimit:     p.GasLimit,
		GasUsed:      p.GasUsed,
		Timestamp:    p.Timestamp,
		BlockHash:    bytesutil.SafeCopyBytes(p.BlockHash),
		Transactions: bytesutil.SafeCopy2dBytes(p.Transactions),
		Withdrawals:  withdrawals,
	}
}

// WithdrawalsRoot returns the ssz list root of the payload's withdrawals.
func (p *ExecutionPayload) WithdrawalsRoot() ([32]byte, error) {
	return WithdrawalsRoot(p.Withdrawals, fieldparams.MaxWithdrawalsPerPayload)
}

// ExecutionPayloadEnvelope is the builder's later-published reveal of the
// payload its bid committed to. It is produced at most once per block and,
// once applied, permanently flips the block's payload-revealed flag.
type ExecutionPayloadEnvelope struct {
	Payload            *ExecutionPayload
	BuilderIndex       primitives.BuilderIndex
	BeaconBlockRoot    []byte
	Slot               primitives.Slot
	BlobKzgCommitments [][]byte
	StateRoot          []byte
}

// Copy returns a deep copy of the envelope.
func (e *ExecutionPayloadEnvelope) Copy() *ExecutionPayloadEnvelope {
	if e == nil {
		return nil
	}
	return &ExecutionPayloadEnvelope{
		Payload:            e.Payload.Copy(),
		BuilderIndex:       e.BuilderIndex,
		BeaconBlockRoot:    bytesutil.SafeCopyBytes(e.BeaconBlockRoot),
		Slot:               e.Slot,
		BlobKzgCommitments: bytesutil.SafeCopy2dBytes(e.BlobKzgCommitments),
		StateRoot:          bytesutil.SafeCopyBytes(e.StateRoot),
	}
}

// BlobKzgCommitmentsRoot returns the ssz list root of the envelope's blob
// commitments, the value the committed bid pinned in advance.
func (e *ExecutionPayloadEnvelope) BlobKzgCommitmentsRoot() ([32]byte, error) {
	roots := make([][32]byte, len(e.BlobKzgCommitments))
	for i, c := range e.BlobKzgCommitments {
		chunks := ssz.PackBytes(c)
		r, err := ssz.MerkleizeVector(chunks, 2)
		if err != nil {
			return [32]byte{}, err
		}
		roots[i] = r
	}
	root, err := ssz.Merkleize(roots, fieldparams.MaxBlobCommitmentsPerBlock)
	if err != nil {
		return [32]byte{}, err
	}
	return ssz.MixInLength(root, uint64(len(e.BlobKzgCommitments))), nil
}

// HashTreeRoot returns the ssz root of the envelope, the message builders
// sign over when revealing.
func (e *ExecutionPayloadEnvelope) HashTreeRoot() ([32]byte, error) {
	commitmentsRoot, err := e.BlobKzgCommitmentsRoot()
	if err != nil {
		return [32]byte{}, err
	}
	payloadRoot, err := e.payloadRoot()
	if err != nil {
		return [32]byte{}, err
	}
	fieldRoots := [][32]byte{
		payloadRoot,
		ssz.Uint64Root(uint64(e.BuilderIndex)),
		bytesutil.ToBytes32(e.BeaconBlockRoot),
		ssz.Uint64Root(uint64(e.Slot)),
		commitmentsRoot,
		bytesutil.ToBytes32(e.StateRoot),
	}
	return ssz.Merkleize(fieldRoots, 8)
}

func (e *ExecutionPayloadEnvelope) payloadRoot() ([32]byte, error) {
	p := e.Payload
	if p == nil {
		return [32]byte{}, nil
	}
	withdrawalsRoot, err := p.WithdrawalsRoot()
	if err != nil {
		return [32]byte{}, err
	}
	txRoots := make([][32]byte, len(p.Transactions))
	for i, tx := range p.Transactions {
		chunks := ssz.PackBytes(tx)
		r, merkleErr := ssz.Merkleize(chunks, 33554432)
		if merkleErr != nil {
			return [32]byte{}, merkleErr
		}
		txRoots[i] = ssz.MixInLength(r, uint64(len(tx)))
	}
	txsRoot, err := ssz.Merkleize(txRoots, 1048576)
	if err != nil {
		return [32]byte{}, err
	}
	txsRoot = ssz.MixInLength(txsRoot, uint64(len(p.Transactions)))
	var feeRecipient [32]byte
	copy(feeRecipient[:], p.FeeRecipient)
	fieldRoots := [][32]byte{
		bytesutil.ToBytes32(p.ParentHash),
		feeRecipient,
		bytesutil.ToBytes32(p.StateRoot),
		bytesutil.ToBytes32(p.ReceiptsRoot),
		bytesutil.ToBytes32(p.PrevRandao),
		ssz.Uint64Root(p.BlockNumber),
		ssz.Uint64Root(p.GasLimit),
		ssz.Uint64Root(p.GasUsed),
		ssz.Uint64Root(p.Timestamp),
		bytesutil.ToBytes32(p.BlockHash),
		txsRoot,
		withdrawalsRoot,
	}
	return ssz.Merkleize(fieldRoots, 16)
}

// SignedExecutionPayloadEnvelope is an envelope plus the builder signature.
// Self-build envelopes carry the infinity signature marker.
type SignedExecutionPayloadEnvelope struct {
	Message   *ExecutionPayloadEnvelope
	Signature []byte
}

// Copy returns a deep copy of the signed envelope.
func (s *SignedExecutionPayloadEnvelope) Copy() *SignedExecutionPayloadEnvelope {
	if s == nil {
		return nil
	}
	return &SignedExecutionPayloadEnvelope{
		Message:   s.Message.Copy(),
		Signature: bytesutil.SafeCopyBytes(s.Signature),
	}
}
