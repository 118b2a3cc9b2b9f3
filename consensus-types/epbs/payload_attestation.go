package epbs

import (
	"github.com/prysmaticlabs/go-bitfield"

	"github.com/gloaslabs/gloas/consensus-types/primitives"
	"github.com/gloaslabs/gloas/encoding/bytesutil"
	"github.com/gloaslabs/gloas/encoding/ssz"
)

// PayloadAttestationData is the payload timeliness committee's vote content:
// whether the payload for the block at the given root was revealed and
// available in time.
type PayloadAttestationData struct {
	BeaconBlockRoot []byte
	Slot            primitives.Slot
	PayloadPresent  bool
}

// Copy returns a deep copy of the attestation data.
func (d *PayloadAttestationData) Copy() *PayloadAttestationData {
	if d == nil {
		return nil
	}
	return &PayloadAttestationData{
		BeaconBlockRoot: bytesutil.SafeCopyBytes(d.BeaconBlockRoot),
		Slot:            d.Slot,
		PayloadPresent:  d.PayloadPresent,
	}
}

// HashTreeRoot returns the ssz root of the attestation data. PTC members
// sign over this root under the PTC attester domain.
func (d *PayloadAttestationData) HashTreeRoot() ([32]byte, error) {
	fieldRoots := [][32]byte{
		bytesutil.ToBytes32(d.BeaconBlockRoot),
		ssz.Uint64Root(uint64(d.Slot)),
		ssz.BoolRoot(d.PayloadPresent),
	}
	return ssz.Merkleize(fieldRoots, 4)
}

// PayloadAttestationMessage is a single PTC member's unaggregated vote.
type PayloadAttestationMessage struct {
	ValidatorIndex primitives.ValidatorIndex
	Data           *PayloadAttestationData
	Signature      []byte
}

// Copy returns a deep copy of the message.
func (m *PayloadAttestationMessage) Copy() *PayloadAttestationMessage {
	if m == nil {
		return nil
	}
	return &PayloadAttestationMessage{
		ValidatorIndex: m.ValidatorIndex,
		Data:           m.Data.Copy(),
		Signature:      bytesutil.SafeCopyBytes(m.Signature),
	}
}

// PayloadAttestation aggregates PTC votes over the same data into a
// committee bitfield plus an aggregate signature. The bit positions follow
// the stable, unshuffled PTC selection order for the slot.
type PayloadAttestation struct {
	AggregationBits bitfield.Bitvector512
	Data            *PayloadAttestationData
	Signature       []byte
}

// Copy returns a deep copy of the aggregate.
func (a *PayloadAttestation) Copy() *PayloadAttestation {
	if a == nil {
		return nil
	}
	return &PayloadAttestation{
		AggregationBits: bitfield.Bitvector512(bytesutil.SafeCopyBytes(a.AggregationBits)),
		Data:            a.Data.Copy(),
		Signature:       bytesutil.SafeCopyBytes(a.Signature),
	}
}

// HashTreeRoot returns the ssz root of the aggregate.
func (a *PayloadAttestation) HashTreeRoot() ([32]byte, error) {
	bitsRoot, err := ssz.MerkleizeVector(ssz.PackBytes(a.AggregationBits.Bytes()), 2)
	if err != nil {
		return [32]byte{}, err
	}
	dataRoot, err := a.Data.HashTreeRoot()
	if err != nil {
		return [32]byte{}, err
	}
	sigRoot, err := ssz.MerkleizeVector(ssz.PackBytes(a.Signature), 3)
	if err != nil {
		return [32]byte{}, err
	}
	fieldRoots := [][32]byte{bitsRoot, dataRoot, sigRoot}
	return ssz.Merkleize(fieldRoots, 4)
}

// IndexedPayloadAttestation is the aggregate resolved against the PTC for
// its slot: sorted, unique validator indices instead of committee bits.
type IndexedPayloadAttestation struct {
	AttestingIndices []primitives.ValidatorIndex
	Data             *PayloadAttestationData
	Signature        []byte
}

// GetAttestingIndices returns the attesting indices.
func (i *IndexedPayloadAttestation) GetAttestingIndices() []primitives.ValidatorIndex {
	if i == nil {
		return nil
	}
	return i.AttestingIndices
}

// GetData returns the attestation data.
func (i *IndexedPayloadAttestation) GetData() *PayloadAttestationData {
	if i == nil {
		return nil
	}
	return i.Data
}

// GetSignature returns the aggregate signature.
func (i *IndexedPayloadAttestation) GetSignature() []byte {
	if i == nil {
		return nil
	}
	return i.Signature
}
