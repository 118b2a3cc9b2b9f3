package sync

import (
	"context"
	"testing"

	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/peer"

	"github.com/gloaslabs/gloas/beacon-chain/blockchain"
	"github.com/gloaslabs/gloas/beacon-chain/core/helpers"
	"github.com/gloaslabs/gloas/beacon-chain/core/transition"
	"github.com/gloaslabs/gloas/beacon-chain/state"
	"github.com/gloaslabs/gloas/consensus-types/blocks"
	epbstypes "github.com/gloaslabs/gloas/consensus-types/epbs"
	"github.com/gloaslabs/gloas/consensus-types/primitives"
	"github.com/gloaslabs/gloas/crypto/bls"
	"github.com/gloaslabs/gloas/encoding/bytesutil"
	"github.com/gloaslabs/gloas/testing/require"
	"github.com/gloaslabs/gloas/testing/util"
)

// newTestService anchors a chain at a fresh deterministic genesis. The
// genesis state pointer is returned so tests can mutate registry entries
// before the head is read.
func newTestService(t *testing.T) (*Service, *state.BeaconState, []bls.SecretKey) {
	helpers.ClearCache()
	st, keys := util.DeterministicGenesisState(t, 64, 2)
	root, err := st.LatestBlockHeader().HashTreeRoot()
	require.NoError(t, err)
	chain, err := blockchain.New(context.Background(), blockchain.WithGenesisState(st, root))
	require.NoError(t, err)
	return NewService(chain), st, keys
}

const testPID = peer.ID("test-peer")

func attData(root [32]byte, slot primitives.Slot, present bool) *epbstypes.PayloadAttestationData {
	return &epbstypes.PayloadAttestationData{
		BeaconBlockRoot: root[:],
		Slot:            slot,
		PayloadPresent:  present,
	}
}

// receiveSelfBuildBlock pushes a self-build block through the chain so fork
// choice tracks it, and returns the block root the envelope must reference.
func receiveSelfBuildBlock(t *testing.T, s *Service) [32]byte {
	chainHead := s.chain.HeadState()
	parentRoot, err := chainHead.LatestBlockHeader().HashTreeRoot()
	require.NoError(t, err)
	block := &blocks.BeaconBlock{
		Slot:       chainHead.Slot(),
		ParentRoot: parentRoot[:],
		Body: &blocks.BeaconBlockBody{
			RandaoReveal: make([]byte, 96),
			SignedBid:    util.SelfBuildBid(t, chainHead),
		},
	}
	// The block commits to the post block state root, which is also what the
	// envelope's header back-fill reproduces.
	cp := s.chain.HeadState()
	require.NoError(t, transition.ProcessBlock(context.Background(), cp, block))
	stateRoot, err := cp.HashTreeRoot()
	require.NoError(t, err)
	block.StateRoot = stateRoot[:]

	require.NoError(t, s.chain.ReceiveBlock(context.Background(), block))
	root, err := block.HashTreeRoot()
	require.NoError(t, err)
	return root
}

func TestValidateExecutionPayloadBid_Accept(t *testing.T) {
	s, _, keys := newTestService(t)
	bid := util.DefaultBid(t, s.chain.HeadState())
	bid.BuilderIndex = primitives.BuilderIndexFromRegistry(0)
	bid.Value = 1e9

	res, err := s.ValidateExecutionPayloadBid(context.Background(), testPID, util.SignBid(t, s.chain.HeadState(), keys[64], bid))
	require.NoError(t, err)
	require.Equal(t, pubsub.ValidationAccept, res)
}

func TestValidateExecutionPayloadBid_DuplicateIgnored(t *testing.T) {
	s, _, keys := newTestService(t)
	bid := util.DefaultBid(t, s.chain.HeadState())
	bid.BuilderIndex = primitives.BuilderIndexFromRegistry(0)
	signed := util.SignBid(t, s.chain.HeadState(), keys[64], bid)

	res, err := s.ValidateExecutionPayloadBid(context.Background(), testPID, signed)
	require.NoError(t, err)
	require.Equal(t, pubsub.ValidationAccept, res)

	res, err = s.ValidateExecutionPayloadBid(context.Background(), testPID, signed)
	require.NoError(t, err)
	require.Equal(t, pubsub.ValidationIgnore, res)
}

func TestValidateExecutionPayloadBid_UnknownBuilderIgnored(t *testing.T) {
	s, _, keys := newTestService(t)
	bid := util.DefaultBid(t, s.chain.HeadState())
	bid.BuilderIndex = primitives.BuilderIndexFromRegistry(9)

	res, err := s.ValidateExecutionPayloadBid(context.Background(), testPID, util.SignBid(t, s.chain.HeadState(), keys[64], bid))
	require.NoError(t, err)
	require.Equal(t, pubsub.ValidationIgnore, res)
}

func TestValidateExecutionPayloadBid_InactiveBuilderRejected(t *testing.T) {
	s, st, keys := newTestService(t)
	require.NoError(t, st.SetBuilderWithdrawableEpoch(primitives.BuilderIndexFromRegistry(0), 0))
	bid := util.DefaultBid(t, s.chain.HeadState())
	bid.BuilderIndex = primitives.BuilderIndexFromRegistry(0)

	res, err := s.ValidateExecutionPayloadBid(context.Background(), testPID, util.SignBid(t, s.chain.HeadState(), keys[64], bid))
	require.NotNil(t, err)
	require.Equal(t, pubsub.ValidationReject, res)
}

func TestValidateExecutionPayloadBid_InsolventRejected(t *testing.T) {
	s, _, keys := newTestService(t)
	bid := util.DefaultBid(t, s.chain.HeadState())
	bid.BuilderIndex = primitives.BuilderIndexFromRegistry(0)
	bid.Value = 32 * 1e9

	res, err := s.ValidateExecutionPayloadBid(context.Background(), testPID, util.SignBid(t, s.chain.HeadState(), keys[64], bid))
	require.NotNil(t, err)
	require.Equal(t, pubsub.ValidationReject, res)
}

func TestValidateExecutionPayloadBid_ParentHashMismatchIgnored(t *testing.T) {
	s, _, keys := newTestService(t)
	bid := util.DefaultBid(t, s.chain.HeadState())
	bid.BuilderIndex = primitives.BuilderIndexFromRegistry(0)
	bid.ParentBlockHash = bytesutil.PadTo([]byte("unseen tip"), 32)

	res, err := s.ValidateExecutionPayloadBid(context.Background(), testPID, util.SignBid(t, s.chain.HeadState(), keys[64], bid))
	require.NoError(t, err)
	require.Equal(t, pubsub.ValidationIgnore, res)
}

func TestValidateExecutionPayloadBid_BadSignatureRejected(t *testing.T) {
	s, _, keys := newTestService(t)
	bid := util.DefaultBid(t, s.chain.HeadState())
	bid.BuilderIndex = primitives.BuilderIndexFromRegistry(0)

	// Signed by the wrong builder key.
	res, err := s.ValidateExecutionPayloadBid(context.Background(), testPID, util.SignBid(t, s.chain.HeadState(), keys[65], bid))
	require.NotNil(t, err)
	require.Equal(t, pubsub.ValidationReject, res)
}

func TestValidateExecutionPayloadBid_SelfBuild(t *testing.T) {
	s, _, _ := newTestService(t)

	res, err := s.ValidateExecutionPayloadBid(context.Background(), testPID, util.SelfBuildBid(t, s.chain.HeadState()))
	require.NoError(t, err)
	require.Equal(t, pubsub.ValidationAccept, res)
}

func TestValidateExecutionPayloadBid_SelfBuildWithValueRejected(t *testing.T) {
	s, _, _ := newTestService(t)
	signed := util.SelfBuildBid(t, s.chain.HeadState())
	signed.Message.Value = 1

	res, err := s.ValidateExecutionPayloadBid(context.Background(), testPID, signed)
	require.NotNil(t, err)
	require.Equal(t, pubsub.ValidationReject, res)
}

func TestValidateExecutionPayloadEnvelope_UnknownBlockIgnored(t *testing.T) {
	s, _, _ := newTestService(t)
	envelope := util.SelfBuildEnvelope(t, s.chain.HeadState())
	envelope.Message.BeaconBlockRoot = bytesutil.PadTo([]byte("unknown block"), 32)

	res, err := s.ValidateExecutionPayloadEnvelope(context.Background(), testPID, envelope)
	require.NoError(t, err)
	require.Equal(t, pubsub.ValidationIgnore, res)
}

func TestValidateExecutionPayloadEnvelope_Accept(t *testing.T) {
	s, _, _ := newTestService(t)
	receiveSelfBuildBlock(t, s)

	envelope := util.SelfBuildEnvelope(t, s.chain.HeadState())
	res, err := s.ValidateExecutionPayloadEnvelope(context.Background(), testPID, envelope)
	require.NoError(t, err)
	require.Equal(t, pubsub.ValidationAccept, res)
}

func TestValidateExecutionPayloadEnvelope_BuilderMismatchRejected(t *testing.T) {
	s, _, _ := newTestService(t)
	receiveSelfBuildBlock(t, s)

	envelope := util.SelfBuildEnvelope(t, s.chain.HeadState())
	envelope.Message.BuilderIndex = primitives.BuilderIndexFromRegistry(0)

	res, err := s.ValidateExecutionPayloadEnvelope(context.Background(), testPID, envelope)
	require.NotNil(t, err)
	require.Equal(t, pubsub.ValidationReject, res)
}

func TestValidateExecutionPayloadEnvelope_WrongBlockHashRejected(t *testing.T) {
	s, _, _ := newTestService(t)
	receiveSelfBuildBlock(t, s)

	envelope := util.SelfBuildEnvelope(t, s.chain.HeadState())
	envelope.Message.Payload.BlockHash = bytesutil.PadTo([]byte("other payload"), 32)

	res, err := s.ValidateExecutionPayloadEnvelope(context.Background(), testPID, envelope)
	require.NotNil(t, err)
	require.Equal(t, pubsub.ValidationReject, res)
}

func TestValidateExecutionPayloadEnvelope_RevealedIgnored(t *testing.T) {
	s, _, _ := newTestService(t)
	receiveSelfBuildBlock(t, s)

	envelope := util.SelfBuildEnvelope(t, s.chain.HeadState())
	require.NoError(t, s.chain.ReceiveExecutionPayloadEnvelope(context.Background(), envelope))

	res, err := s.ValidateExecutionPayloadEnvelope(context.Background(), testPID, envelope)
	require.NoError(t, err)
	require.Equal(t, pubsub.ValidationIgnore, res)
}

func TestValidatePayloadAttestationMessage_AcceptAfterReveal(t *testing.T) {
	s, _, keys := newTestService(t)
	blockRoot := receiveSelfBuildBlock(t, s)
	envelope := util.SelfBuildEnvelope(t, s.chain.HeadState())
	require.NoError(t, s.chain.ReceiveExecutionPayloadEnvelope(context.Background(), envelope))

	head := s.chain.HeadState()
	committee, err := helpers.PtcCommittee(head, 0)
	require.NoError(t, err)
	member := committee[0]
	msg := util.SignPayloadAttestationMessage(t, head, keys[member], member, attData(blockRoot, 0, true))

	res, err := s.ValidatePayloadAttestationMessage(context.Background(), testPID, msg)
	require.NoError(t, err)
	require.Equal(t, pubsub.ValidationAccept, res)

	// Replays from the same member are ignored.
	res, err = s.ValidatePayloadAttestationMessage(context.Background(), testPID, msg)
	require.NoError(t, err)
	require.Equal(t, pubsub.ValidationIgnore, res)
}

func TestValidatePayloadAttestationMessage_PrematurePresenceIgnored(t *testing.T) {
	s, _, keys := newTestService(t)
	blockRoot := receiveSelfBuildBlock(t, s)

	head := s.chain.HeadState()
	committee, err := helpers.PtcCommittee(head, 0)
	require.NoError(t, err)
	member := committee[0]
	msg := util.SignPayloadAttestationMessage(t, head, keys[member], member, attData(blockRoot, 0, true))

	// The payload was never revealed here: a presence vote is premature but
	// not a peer fault.
	res, err := s.ValidatePayloadAttestationMessage(context.Background(), testPID, msg)
	require.NoError(t, err)
	require.Equal(t, pubsub.ValidationIgnore, res)
}

func TestValidatePayloadAttestationMessage_UnknownBlockIgnored(t *testing.T) {
	s, _, keys := newTestService(t)
	head := s.chain.HeadState()
	committee, err := helpers.PtcCommittee(head, 0)
	require.NoError(t, err)
	member := committee[0]
	msg := util.SignPayloadAttestationMessage(t, head, keys[member], member, attData(bytesutil.ToBytes32([]byte("unknown")), 0, false))

	res, err := s.ValidatePayloadAttestationMessage(context.Background(), testPID, msg)
	require.NoError(t, err)
	require.Equal(t, pubsub.ValidationIgnore, res)
}

func TestValidatePayloadAttestationMessage_StaleSlotIgnored(t *testing.T) {
	s, _, keys := newTestService(t)
	blockRoot := receiveSelfBuildBlock(t, s)
	head := s.chain.HeadState()
	committee, err := helpers.PtcCommittee(head, 5)
	require.NoError(t, err)
	member := committee[0]
	msg := util.SignPayloadAttestationMessage(t, head, keys[member], member, attData(blockRoot, 5, false))

	res, err := s.ValidatePayloadAttestationMessage(context.Background(), testPID, msg)
	require.NoError(t, err)
	require.Equal(t, pubsub.ValidationIgnore, res)
}

func TestValidatePayloadAttestationMessage_BadSignatureRejected(t *testing.T) {
	s, _, keys := newTestService(t)
	blockRoot := receiveSelfBuildBlock(t, s)
	envelope := util.SelfBuildEnvelope(t, s.chain.HeadState())
	require.NoError(t, s.chain.ReceiveExecutionPayloadEnvelope(context.Background(), envelope))

	head := s.chain.HeadState()
	committee, err := helpers.PtcCommittee(head, 0)
	require.NoError(t, err)
	member := committee[0]
	// Signed with another validator's key.
	other := (member + 1) % 64
	msg := util.SignPayloadAttestationMessage(t, head, keys[other], member, attData(blockRoot, 0, true))

	res, err := s.ValidatePayloadAttestationMessage(context.Background(), testPID, msg)
	require.NotNil(t, err)
	require.Equal(t, pubsub.ValidationReject, res)
}
