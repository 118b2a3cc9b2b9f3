package epbs_test

import (
	"context"
	"testing"

	coreepbs "github.com/gloaslabs/gloas/beacon-chain/core/epbs"
	"github.com/gloaslabs/gloas/beacon-chain/core/signing"
	"github.com/gloaslabs/gloas/config/params"
	"github.com/gloaslabs/gloas/consensus-types/epbs"
	"github.com/gloaslabs/gloas/consensus-types/primitives"
	"github.com/gloaslabs/gloas/testing/require"
	"github.com/gloaslabs/gloas/testing/util"
)

func TestProcessExecutionPayloadBid_OK(t *testing.T) {
	st, keys := util.DeterministicGenesisState(t, 64, 2)
	bid := util.DefaultBid(t, st)
	bid.BuilderIndex = primitives.BuilderIndexFromRegistry(0)
	bid.Value = 1e9
	signed := util.SignBid(t, st, keys[64], bid)

	require.NoError(t, coreepbs.ProcessExecutionPayloadBid(context.Background(), st, signed))
	require.DeepEqual(t, bid, st.LatestExecutionPayloadBid())
}

func TestProcessExecutionPayloadBid_SolvencyBoundary(t *testing.T) {
	// Genesis builders hold 32 ETH. With a 1 ETH floor, a 31 ETH bid is the
	// exact boundary: balance == floor + value.
	st, keys := util.DeterministicGenesisState(t, 64, 2)
	bid := util.DefaultBid(t, st)
	bid.BuilderIndex = primitives.BuilderIndexFromRegistry(0)
	bid.Value = 31 * 1e9
	signed := util.SignBid(t, st, keys[64], bid)
	require.NoError(t, coreepbs.ProcessExecutionPayloadBid(context.Background(), st, signed))

	st2, keys2 := util.DeterministicGenesisState(t, 64, 2)
	over := util.DefaultBid(t, st2)
	over.BuilderIndex = primitives.BuilderIndexFromRegistry(0)
	over.Value = 31*1e9 + 1
	signedOver := util.SignBid(t, st2, keys2[64], over)
	err := coreepbs.ProcessExecutionPayloadBid(context.Background(), st2, signedOver)
	require.ErrorIs(t, err, coreepbs.ErrBuilderInsolvent)
}

func TestProcessExecutionPayloadBid_PendingObligationsReduceCapacity(t *testing.T) {
	st, keys := util.DeterministicGenesisState(t, 64, 2)
	builderIdx := primitives.BuilderIndexFromRegistry(0)

	// A queued 10 ETH payment from an earlier slot is still owed.
	require.NoError(t, st.SetBuilderPendingPayment(0, &epbs.BuilderPendingPayment{
		Withdrawal: &epbs.BuilderPendingWithdrawal{
			FeeRecipient: make([]byte, 20),
			Amount:       10 * 1e9,
			BuilderIndex: builderIdx,
		},
	}))

	bid := util.DefaultBid(t, st)
	bid.BuilderIndex = builderIdx
	bid.Value = 21 * 1e9
	require.NoError(t, coreepbs.ProcessExecutionPayloadBid(context.Background(), st, util.SignBid(t, st, keys[64], bid)))

	over := util.DefaultBid(t, st)
	over.BuilderIndex = builderIdx
	over.Value = 21*1e9 + 1
	err := coreepbs.ProcessExecutionPayloadBid(context.Background(), st, util.SignBid(t, st, keys[64], over))
	require.ErrorIs(t, err, coreepbs.ErrBuilderInsolvent)
}

func TestProcessExecutionPayloadBid_SelfBuild(t *testing.T) {
	st, _ := util.DeterministicGenesisState(t, 64, 0)
	signed := util.SelfBuildBid(t, st)
	require.NoError(t, coreepbs.ProcessExecutionPayloadBid(context.Background(), st, signed))

	t.Run("nonzero value rejected", func(t *testing.T) {
		st, _ := util.DeterministicGenesisState(t, 64, 0)
		signed := util.SelfBuildBid(t, st)
		signed.Message.Value = 1
		err := coreepbs.ProcessExecutionPayloadBid(context.Background(), st, signed)
		require.ErrorIs(t, err, coreepbs.ErrInvalidSelfBuild)
	})
	t.Run("real signature rejected", func(t *testing.T) {
		st, keys := util.DeterministicGenesisState(t, 64, 1)
		signed := util.SelfBuildBid(t, st)
		signed.Signature = keys[0].Sign([]byte("not infinity")).Marshal()
		err := coreepbs.ProcessExecutionPayloadBid(context.Background(), st, signed)
		require.ErrorIs(t, err, coreepbs.ErrInvalidSelfBuild)
	})
}

func TestProcessExecutionPayloadBid_Continuity(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*epbs.ExecutionPayloadBid)
		want   error
	}{
		{
			name:   "wrong slot",
			mutate: func(b *epbs.ExecutionPayloadBid) { b.Slot = b.Slot + 1 },
			want:   coreepbs.ErrInvalidSlot,
		},
		{
			name:   "wrong parent block hash",
			mutate: func(b *epbs.ExecutionPayloadBid) { b.ParentBlockHash[0] ^= 0xff },
			want:   coreepbs.ErrInvalidParentBlockHash,
		},
		{
			name:   "wrong parent block root",
			mutate: func(b *epbs.ExecutionPayloadBid) { b.ParentBlockRoot[0] ^= 0xff },
			want:   coreepbs.ErrInvalidParentBlockRoot,
		},
		{
			name:   "wrong prev randao",
			mutate: func(b *epbs.ExecutionPayloadBid) { b.PrevRandao[0] ^= 0xff },
			want:   coreepbs.ErrInvalidPrevRandao,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, keys := util.DeterministicGenesisState(t, 64, 1)
			bid := util.DefaultBid(t, st)
			bid.BuilderIndex = primitives.BuilderIndexFromRegistry(0)
			tt.mutate(bid)
			err := coreepbs.ProcessExecutionPayloadBid(context.Background(), st, util.SignBid(t, st, keys[64], bid))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestProcessExecutionPayloadBid_InactiveBuilder(t *testing.T) {
	st, keys := util.DeterministicGenesisState(t, 64, 1)
	builderIdx := primitives.BuilderIndexFromRegistry(0)
	require.NoError(t, st.SetBuilderWithdrawableEpoch(builderIdx, 0))

	bid := util.DefaultBid(t, st)
	bid.BuilderIndex = builderIdx
	err := coreepbs.ProcessExecutionPayloadBid(context.Background(), st, util.SignBid(t, st, keys[64], bid))
	require.ErrorIs(t, err, coreepbs.ErrBuilderInactive)
}

func TestProcessExecutionPayloadBid_UnknownBuilder(t *testing.T) {
	st, keys := util.DeterministicGenesisState(t, 64, 1)
	bid := util.DefaultBid(t, st)
	bid.BuilderIndex = primitives.BuilderIndexFromRegistry(7)
	err := coreepbs.ProcessExecutionPayloadBid(context.Background(), st, util.SignBid(t, st, keys[64], bid))
	require.ErrorIs(t, err, coreepbs.ErrUnknownBuilder)
}

func TestProcessExecutionPayloadBid_BadSignature(t *testing.T) {
	st, keys := util.DeterministicGenesisState(t, 64, 2)
	bid := util.DefaultBid(t, st)
	bid.BuilderIndex = primitives.BuilderIndexFromRegistry(0)
	// Signed by the wrong builder key.
	signed := util.SignBid(t, st, keys[65], bid)
	err := coreepbs.ProcessExecutionPayloadBid(context.Background(), st, signed)
	require.ErrorIs(t, err, signing.ErrSigFailedToVerify)
}

func TestPaymentQuorum(t *testing.T) {
	cfg := params.BeaconConfig()
	require.Equal(t, uint64(6), cfg.PayloadAttestationQuorumNumerator)
	require.Equal(t, uint64(10), cfg.PayloadAttestationQuorumDenominator)
	require.Equal(t, primitives.Gwei(60), coreepbs.PaymentQuorum(100))
	// Truncating division.
	require.Equal(t, primitives.Gwei(60), coreepbs.PaymentQuorum(101))
}
