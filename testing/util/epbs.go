package util

import (
	"context"
	"testing"

	"github.com/prysmaticlabs/go-bitfield"

	coreepbs "github.com/gloaslabs/gloas/beacon-chain/core/epbs"
	"github.com/gloaslabs/gloas/beacon-chain/core/helpers"
	"github.com/gloaslabs/gloas/beacon-chain/core/signing"
	"github.com/gloaslabs/gloas/beacon-chain/state"
	"github.com/gloaslabs/gloas/config/params"
	"github.com/gloaslabs/gloas/consensus-types/epbs"
	"github.com/gloaslabs/gloas/consensus-types/primitives"
	"github.com/gloaslabs/gloas/crypto/bls"
	"github.com/gloaslabs/gloas/encoding/bytesutil"
	"github.com/gloaslabs/gloas/testing/require"
	"github.com/gloaslabs/gloas/time/slots"
)

// DefaultBid returns a bid consistent with the given state: correct slot,
// parent block hash, parent block root and randao mix. Callers override
// fields to exercise specific failures.
func DefaultBid(t testing.TB, st *state.BeaconState) *epbs.ExecutionPayloadBid {
	headerRoot, err := st.LatestBlockHeader().HashTreeRoot()
	require.NoError(t, err)
	latestHash := st.LatestBlockHash()
	mix := st.RandaoMix(slots.ToEpoch(st.Slot()))
	// A block hash distinct from the parent's, so the state reads as
	// payload-pending until the envelope arrives.
	blockHash := bytesutil.PadTo([]byte("payload-block-hash"), 32)
	return &epbs.ExecutionPayloadBid{
		ParentBlockHash:        latestHash[:],
		ParentBlockRoot:        headerRoot[:],
		BlockHash:              blockHash,
		PrevRandao:             mix[:],
		BlobKzgCommitmentsRoot: make([]byte, 32),
		GasLimit:               30_000_000,
		Slot:                   st.Slot(),
	}
}

// SignBid signs the bid with the builder key under the builder domain.
func SignBid(t testing.TB, st *state.BeaconState, sk bls.SecretKey, bid *epbs.ExecutionPayloadBid) *epbs.SignedExecutionPayloadBid {
	return &epbs.SignedExecutionPayloadBid{
		Message:   bid,
		Signature: signWithDomain(t, st, sk, bid, params.BeaconConfig().DomainBeaconBuilder),
	}
}

// SelfBuildBid returns a signed self-build bid: the sentinel builder index,
// zero value and the infinity signature marker.
func SelfBuildBid(t testing.TB, st *state.BeaconState) *epbs.SignedExecutionPayloadBid {
	bid := DefaultBid(t, st)
	bid.BuilderIndex = primitives.SelfBuildIndex
	sig := params.BeaconConfig().InfiniteSignature
	return &epbs.SignedExecutionPayloadBid{Message: bid, Signature: sig[:]}
}

// DefaultEnvelope returns an envelope consistent with the state's committed
// bid and latest header, with the post state root already filled in.
func DefaultEnvelope(t testing.TB, st *state.BeaconState) *epbs.ExecutionPayloadEnvelope {
	// Mirror the reveal's header back-fill: the block root the envelope
	// references carries the pre-envelope state root, not a zero root.
	header := st.LatestBlockHeader()
	if bytesutil.ToBytes32(header.StateRoot) == params.BeaconConfig().ZeroHash {
		preRoot, err := st.HashTreeRoot()
		require.NoError(t, err)
		header.StateRoot = preRoot[:]
	}
	headerRoot, err := header.HashTreeRoot()
	require.NoError(t, err)
	bid := st.LatestExecutionPayloadBid()
	genesis := st.GenesisTime()
	envelope := &epbs.ExecutionPayloadEnvelope{
		Payload: &epbs.ExecutionPayload{
			ParentHash:   bid.ParentBlockHash,
			FeeRecipient: make([]byte, 20),
			StateRoot:    make([]byte, 32),
			ReceiptsRoot: make([]byte, 32),
			PrevRandao:   bid.PrevRandao,
			GasLimit:     bid.GasLimit,
			Timestamp:    uint64(slots.StartTime(genesis, bid.Slot).Unix()),
			BlockHash:    bid.BlockHash,
		},
		BuilderIndex:    bid.BuilderIndex,
		BeaconBlockRoot: headerRoot[:],
		Slot:            bid.Slot,
		StateRoot:       make([]byte, 32),
	}
	postRoot, err := coreepbs.PostEnvelopeStateRoot(context.Background(), st, envelope)
	require.NoError(t, err, "Could not compute post envelope state root")
	envelope.StateRoot = postRoot[:]
	return envelope
}

// SignEnvelope signs the envelope with the builder key under the builder
// domain.
func SignEnvelope(t testing.TB, st *state.BeaconState, sk bls.SecretKey, envelope *epbs.ExecutionPayloadEnvelope) *epbs.SignedExecutionPayloadEnvelope {
	return &epbs.SignedExecutionPayloadEnvelope{
		Message:   envelope,
		Signature: signWithDomain(t, st, sk, envelope, params.BeaconConfig().DomainBeaconBuilder),
	}
}

// SelfBuildEnvelope returns an envelope carrying the infinity signature
// marker for a state whose committed bid is a self-build.
func SelfBuildEnvelope(t testing.TB, st *state.BeaconState) *epbs.SignedExecutionPayloadEnvelope {
	envelope := DefaultEnvelope(t, st)
	sig := params.BeaconConfig().InfiniteSignature
	return &epbs.SignedExecutionPayloadEnvelope{Message: envelope, Signature: sig[:]}
}

// AggregatePayloadAttestation builds a full-participation aggregate vote for
// the data slot's payload timeliness committee. The committee is balance
// weighted and may seat the same validator several times; every seat's bit
// is set, and each distinct member contributes one signature. Keys are
// looked up by validator index.
func AggregatePayloadAttestation(t testing.TB, st *state.BeaconState, data *epbs.PayloadAttestationData, keys []bls.SecretKey) *epbs.PayloadAttestation {
	committee, err := helpers.PtcCommittee(st, data.Slot)
	require.NoError(t, err, "Could not compute ptc committee")

	gvr := st.GenesisValidatorsRoot()
	domain, err := signing.ComputeDomain(params.BeaconConfig().DomainPtcAttester, st.ForkVersion(), gvr[:])
	require.NoError(t, err)
	root, err := signing.ComputeSigningRoot(data, domain)
	require.NoError(t, err)

	bits := bitfield.NewBitvector512()
	seen := make(map[primitives.ValidatorIndex]bool, len(committee))
	var sigs []bls.Signature
	for i, idx := range committee {
		bits.SetBitAt(uint64(i), true)
		if seen[idx] {
			continue
		}
		seen[idx] = true
		sigs = append(sigs, keys[idx].Sign(root[:]))
	}
	return &epbs.PayloadAttestation{
		AggregationBits: bits,
		Data:            data,
		Signature:       bls.AggregateSignatures(sigs).Marshal(),
	}
}

// SignPayloadAttestationMessage signs a single PTC member's vote.
func SignPayloadAttestationMessage(t testing.TB, st *state.BeaconState, sk bls.SecretKey, idx primitives.ValidatorIndex, data *epbs.PayloadAttestationData) *epbs.PayloadAttestationMessage {
	return &epbs.PayloadAttestationMessage{
		ValidatorIndex: idx,
		Data:           data,
		Signature:      signWithDomain(t, st, sk, data, params.BeaconConfig().DomainPtcAttester),
	}
}

func signWithDomain(t testing.TB, st *state.BeaconState, sk bls.SecretKey, obj interface{ HashTreeRoot() ([32]byte, error) }, domainType [4]byte) []byte {
	gvr := st.GenesisValidatorsRoot()
	domain, err := signing.ComputeDomain(domainType, st.ForkVersion(), gvr[:])
	require.NoError(t, err)
	root, err := signing.ComputeSigningRoot(obj, domain)
	require.NoError(t, err)
	return sk.Sign(root[:]).Marshal()
}
