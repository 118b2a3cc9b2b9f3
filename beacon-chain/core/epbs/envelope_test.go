package epbs_test

import (
	"context"
	"testing"

	coreepbs "github.com/gloaslabs/gloas/beacon-chain/core/epbs"
	"github.com/gloaslabs/gloas/beacon-chain/state"
	"github.com/gloaslabs/gloas/config/params"
	"github.com/gloaslabs/gloas/consensus-types/primitives"
	"github.com/gloaslabs/gloas/crypto/bls"
	"github.com/gloaslabs/gloas/encoding/bytesutil"
	"github.com/gloaslabs/gloas/testing/require"
	"github.com/gloaslabs/gloas/testing/util"
)

// stateWithCommittedBid processes an external builder bid of the given value
// into a fresh genesis state.
func stateWithCommittedBid(t *testing.T, value primitives.Gwei) (*state.BeaconState, []bls.SecretKey) {
	st, keys := util.DeterministicGenesisState(t, 64, 2)
	bid := util.DefaultBid(t, st)
	bid.BuilderIndex = primitives.BuilderIndexFromRegistry(0)
	bid.Value = value
	require.NoError(t, coreepbs.ProcessExecutionPayloadBid(context.Background(), st, util.SignBid(t, st, keys[64], bid)))
	return st, keys
}

func TestProcessExecutionPayloadEnvelope_OK(t *testing.T) {
	st, keys := stateWithCommittedBid(t, 5*1e9)
	bid := st.LatestExecutionPayloadBid()
	signed := util.SignEnvelope(t, st, keys[64], util.DefaultEnvelope(t, st))

	post, err := coreepbs.ProcessExecutionPayloadEnvelope(context.Background(), st, signed)
	require.NoError(t, err)

	require.Equal(t, bytesutil.ToBytes32(bid.BlockHash), post.LatestBlockHash())
	require.Equal(t, bid.Slot, post.LatestFullSlot())
	require.Equal(t, true, post.IsParentBlockFull())
	require.Equal(t, true, post.IsPayloadAvailable(bid.Slot))

	// The payment is queued in the young half with zero weight.
	idx := uint64(params.BeaconConfig().SlotsPerEpoch) + uint64(bid.Slot.ModSlot(params.BeaconConfig().SlotsPerEpoch))
	payment, err := post.BuilderPendingPaymentAtIndex(idx)
	require.NoError(t, err)
	require.Equal(t, primitives.Gwei(0), payment.Weight)
	require.Equal(t, primitives.Gwei(5*1e9), payment.Withdrawal.Amount)
	require.Equal(t, bid.BuilderIndex, payment.Withdrawal.BuilderIndex)

	// The builder's balance is untouched until the sweep settles the payment.
	balance, err := post.BuilderBalance(bid.BuilderIndex)
	require.NoError(t, err)
	require.Equal(t, primitives.Gwei(params.BeaconConfig().MaxEffectiveBalance), balance)

	// The pre state is untouched.
	require.Equal(t, false, st.IsParentBlockFull())
}

func TestProcessExecutionPayloadEnvelope_BuilderMismatch(t *testing.T) {
	st, keys := stateWithCommittedBid(t, 1e9)
	envelope := util.DefaultEnvelope(t, st)
	// A different registered builder reveals, with a valid signature of its
	// own key.
	envelope.BuilderIndex = primitives.BuilderIndexFromRegistry(1)
	signed := util.SignEnvelope(t, st, keys[65], envelope)

	_, err := coreepbs.ProcessExecutionPayloadEnvelope(context.Background(), st, signed)
	require.ErrorIs(t, err, coreepbs.ErrBuilderMismatch)

	// The failed reveal leaves the state payload-pending.
	require.Equal(t, false, st.IsParentBlockFull())
	require.Equal(t, params.BeaconConfig().ZeroHash, st.LatestBlockHash())
}

func TestProcessExecutionPayloadEnvelope_Duplicate(t *testing.T) {
	st, keys := stateWithCommittedBid(t, 1e9)
	signed := util.SignEnvelope(t, st, keys[64], util.DefaultEnvelope(t, st))

	post, err := coreepbs.ProcessExecutionPayloadEnvelope(context.Background(), st, signed)
	require.NoError(t, err)

	_, err = coreepbs.ProcessExecutionPayloadEnvelope(context.Background(), post, signed)
	require.ErrorIs(t, err, coreepbs.ErrDuplicateEnvelope)
}

func TestProcessExecutionPayloadEnvelope_SelfBuild(t *testing.T) {
	st, _ := util.DeterministicGenesisState(t, 64, 0)
	require.NoError(t, coreepbs.ProcessExecutionPayloadBid(context.Background(), st, util.SelfBuildBid(t, st)))

	signed := util.SelfBuildEnvelope(t, st)
	post, err := coreepbs.ProcessExecutionPayloadEnvelope(context.Background(), st, signed)
	require.NoError(t, err)
	require.Equal(t, true, post.IsParentBlockFull())

	// Self-builds queue no payment.
	idx := uint64(params.BeaconConfig().SlotsPerEpoch)
	payment, err := post.BuilderPendingPaymentAtIndex(idx)
	require.NoError(t, err)
	require.Equal(t, true, payment.IsEmpty())
}

func TestProcessExecutionPayloadEnvelope_StateRootMismatch(t *testing.T) {
	st, keys := stateWithCommittedBid(t, 1e9)
	envelope := util.DefaultEnvelope(t, st)
	envelope.StateRoot = bytesutil.PadTo([]byte("wrong root"), 32)
	signed := util.SignEnvelope(t, st, keys[64], envelope)

	_, err := coreepbs.ProcessExecutionPayloadEnvelope(context.Background(), st, signed)
	require.ErrorIs(t, err, coreepbs.ErrStateRootMismatch)
}

func TestProcessExecutionPayloadEnvelope_WrongBlockHash(t *testing.T) {
	st, keys := stateWithCommittedBid(t, 1e9)
	envelope := util.DefaultEnvelope(t, st)
	envelope.Payload.BlockHash = bytesutil.PadTo([]byte("other hash"), 32)
	signed := util.SignEnvelope(t, st, keys[64], envelope)

	_, err := coreepbs.ProcessExecutionPayloadEnvelope(context.Background(), st, signed)
	require.ErrorIs(t, err, coreepbs.ErrInvalidBlockHash)
}

func TestProcessExecutionPayloadEnvelope_WrongTimestamp(t *testing.T) {
	st, keys := stateWithCommittedBid(t, 1e9)
	envelope := util.DefaultEnvelope(t, st)
	envelope.Payload.Timestamp++
	signed := util.SignEnvelope(t, st, keys[64], envelope)

	_, err := coreepbs.ProcessExecutionPayloadEnvelope(context.Background(), st, signed)
	require.ErrorIs(t, err, coreepbs.ErrInvalidTimestamp)
}
