package epbs_test

import (
	"context"
	"testing"

	coreepbs "github.com/gloaslabs/gloas/beacon-chain/core/epbs"
	"github.com/gloaslabs/gloas/config/params"
	"github.com/gloaslabs/gloas/consensus-types/epbs"
	"github.com/gloaslabs/gloas/consensus-types/primitives"
	"github.com/gloaslabs/gloas/encoding/bytesutil"
	"github.com/gloaslabs/gloas/testing/require"
	"github.com/gloaslabs/gloas/testing/util"
)

func builderWithdrawal(amount primitives.Gwei, epoch primitives.Epoch) *epbs.BuilderPendingWithdrawal {
	return &epbs.BuilderPendingWithdrawal{
		FeeRecipient:      bytesutil.PadTo([]byte("fee recipient"), 20),
		Amount:            amount,
		BuilderIndex:      primitives.BuilderIndexFromRegistry(0),
		WithdrawableEpoch: epoch,
	}
}

func TestProcessWithdrawals_SkipsWhenParentPayloadPending(t *testing.T) {
	st, keys := util.DeterministicGenesisState(t, 64, 1)
	bid := util.DefaultBid(t, st)
	bid.BuilderIndex = primitives.BuilderIndexFromRegistry(0)
	require.NoError(t, coreepbs.ProcessExecutionPayloadBid(context.Background(), st, util.SignBid(t, st, keys[64], bid)))
	require.Equal(t, false, st.IsParentBlockFull())

	st.AppendBuilderPendingWithdrawal(builderWithdrawal(5*1e9, 0))
	rootBefore := st.LastWithdrawalsRoot()

	require.NoError(t, coreepbs.ProcessWithdrawals(context.Background(), st))

	balance, err := st.BuilderBalance(primitives.BuilderIndexFromRegistry(0))
	require.NoError(t, err)
	require.Equal(t, primitives.Gwei(params.BeaconConfig().MaxEffectiveBalance), balance)
	require.Equal(t, 1, len(st.BuilderPendingWithdrawals()))
	require.Equal(t, rootBefore, st.LastWithdrawalsRoot())
}

func TestProcessWithdrawals_SettlesBuilderWithdrawal(t *testing.T) {
	st, _ := util.DeterministicGenesisState(t, 64, 1)
	st.AppendBuilderPendingWithdrawal(builderWithdrawal(5*1e9, 0))
	rootBefore := st.LastWithdrawalsRoot()

	require.NoError(t, coreepbs.ProcessWithdrawals(context.Background(), st))

	balance, err := st.BuilderBalance(primitives.BuilderIndexFromRegistry(0))
	require.NoError(t, err)
	require.Equal(t, primitives.Gwei(params.BeaconConfig().MaxEffectiveBalance-5*1e9), balance)
	require.Equal(t, 0, len(st.BuilderPendingWithdrawals()))
	require.Equal(t, uint64(1), st.NextWithdrawalIndex())
	require.NotEqual(t, rootBefore, st.LastWithdrawalsRoot())
}

func TestProcessWithdrawals_DefersUnripeBuilderWithdrawal(t *testing.T) {
	st, _ := util.DeterministicGenesisState(t, 64, 1)
	st.AppendBuilderPendingWithdrawal(builderWithdrawal(5*1e9, 10))

	require.NoError(t, coreepbs.ProcessWithdrawals(context.Background(), st))

	require.Equal(t, 1, len(st.BuilderPendingWithdrawals()))
	require.Equal(t, uint64(0), st.NextWithdrawalIndex())
}

func TestProcessWithdrawals_CapsAtBuilderBalance(t *testing.T) {
	st, _ := util.DeterministicGenesisState(t, 64, 1)
	st.AppendBuilderPendingWithdrawal(builderWithdrawal(50*1e9, 0))

	require.NoError(t, coreepbs.ProcessWithdrawals(context.Background(), st))

	balance, err := st.BuilderBalance(primitives.BuilderIndexFromRegistry(0))
	require.NoError(t, err)
	require.Equal(t, primitives.Gwei(0), balance)
	require.Equal(t, 0, len(st.BuilderPendingWithdrawals()))
}

func TestProcessWithdrawals_PartialWithdrawal(t *testing.T) {
	st, _ := util.DeterministicGenesisState(t, 64, 1)
	// Give validator 0 a 7 ETH excess over the activation minimum.
	require.NoError(t, st.IncreaseBalance(0, 7*1e9))
	st.AppendPendingPartialWithdrawal(&epbs.PendingPartialWithdrawal{
		ValidatorIndex:    0,
		Amount:            5 * 1e9,
		WithdrawableEpoch: 0,
	})

	require.NoError(t, coreepbs.ProcessWithdrawals(context.Background(), st))

	require.Equal(t, 0, len(st.PendingPartialWithdrawals()))
	balance, err := st.BalanceAtIndex(0)
	require.NoError(t, err)
	// 5 ETH drawn by the partial. The remaining 2 ETH excess is swept by the
	// validator sweep in the same slot.
	require.Equal(t, primitives.Gwei(params.BeaconConfig().MaxEffectiveBalance), balance)
	require.Equal(t, uint64(2), st.NextWithdrawalIndex())
}

func TestProcessWithdrawals_PartialSkippedAtMinBalance(t *testing.T) {
	st, _ := util.DeterministicGenesisState(t, 64, 1)
	st.AppendPendingPartialWithdrawal(&epbs.PendingPartialWithdrawal{
		ValidatorIndex:    0,
		Amount:            5 * 1e9,
		WithdrawableEpoch: 0,
	})

	require.NoError(t, coreepbs.ProcessWithdrawals(context.Background(), st))

	// No excess to draw from, but the queue entry is consumed.
	require.Equal(t, 0, len(st.PendingPartialWithdrawals()))
	require.Equal(t, uint64(0), st.NextWithdrawalIndex())
	balance, err := st.BalanceAtIndex(0)
	require.NoError(t, err)
	require.Equal(t, primitives.Gwei(params.BeaconConfig().MaxEffectiveBalance), balance)
}

func TestProcessWithdrawals_BuilderSweepAfterExit(t *testing.T) {
	st, _ := util.DeterministicGenesisState(t, 64, 2)
	idx := primitives.BuilderIndexFromRegistry(1)
	require.NoError(t, st.SetBuilderWithdrawableEpoch(idx, 0))

	require.NoError(t, coreepbs.ProcessWithdrawals(context.Background(), st))

	balance, err := st.BuilderBalance(idx)
	require.NoError(t, err)
	require.Equal(t, primitives.Gwei(0), balance)

	// The other builder is still active and untouched.
	other, err := st.BuilderBalance(primitives.BuilderIndexFromRegistry(0))
	require.NoError(t, err)
	require.Equal(t, primitives.Gwei(params.BeaconConfig().MaxEffectiveBalance), other)
}

func TestProcessWithdrawals_BuilderSweepRespectsObligations(t *testing.T) {
	st, _ := util.DeterministicGenesisState(t, 64, 1)
	idx := primitives.BuilderIndexFromRegistry(0)
	require.NoError(t, st.SetBuilderWithdrawableEpoch(idx, 0))
	// A pending payment holds back part of the exited builder's balance.
	require.NoError(t, st.SetBuilderPendingPayment(0, &epbs.BuilderPendingPayment{
		Withdrawal: &epbs.BuilderPendingWithdrawal{
			FeeRecipient: make([]byte, 20),
			Amount:       12 * 1e9,
			BuilderIndex: idx,
		},
	}))

	require.NoError(t, coreepbs.ProcessWithdrawals(context.Background(), st))

	balance, err := st.BuilderBalance(idx)
	require.NoError(t, err)
	require.Equal(t, primitives.Gwei(12*1e9), balance)
}

func TestProcessWithdrawals_PartialSweepBound(t *testing.T) {
	st, _ := util.DeterministicGenesisState(t, 64, 1)
	limit := params.BeaconConfig().MaxPendingPartialsPerWithdrawalsSweep

	for i := uint64(0); i < limit+3; i++ {
		st.AppendPendingPartialWithdrawal(&epbs.PendingPartialWithdrawal{
			ValidatorIndex:    primitives.ValidatorIndex(i),
			Amount:            1e9,
			WithdrawableEpoch: 0,
		})
	}

	require.NoError(t, coreepbs.ProcessWithdrawals(context.Background(), st))

	// One sweep consumes at most the partial limit; the rest stay queued.
	require.Equal(t, 3, len(st.PendingPartialWithdrawals()))
}

func TestExpectedWithdrawals_PhaseCaps(t *testing.T) {
	st, _ := util.DeterministicGenesisState(t, 64, 1)
	max := params.BeaconConfig().MaxWithdrawalsPerPayload

	// Overfill the builder withdrawal queue; phase one must stop one short
	// of the payload limit.
	for i := uint64(0); i < max+4; i++ {
		st.AppendBuilderPendingWithdrawal(builderWithdrawal(1e6, 0))
	}

	root, err := coreepbs.ExpectedWithdrawalsRoot(st)
	require.NoError(t, err)
	require.NotEqual(t, [32]byte{}, root)

	require.NoError(t, coreepbs.ProcessWithdrawals(context.Background(), st))
	// max-1 entries consumed, the rest remain queued.
	require.Equal(t, int(max+4-(max-1)), len(st.BuilderPendingWithdrawals()))
	require.Equal(t, max-1, st.NextWithdrawalIndex())
}

func TestExpectedWithdrawals_ReadOnly(t *testing.T) {
	st, _ := util.DeterministicGenesisState(t, 64, 1)
	st.AppendBuilderPendingWithdrawal(builderWithdrawal(5*1e9, 0))

	_, err := coreepbs.ExpectedWithdrawalsRoot(st)
	require.NoError(t, err)

	// The projection touched nothing.
	balance, err := st.BuilderBalance(primitives.BuilderIndexFromRegistry(0))
	require.NoError(t, err)
	require.Equal(t, primitives.Gwei(params.BeaconConfig().MaxEffectiveBalance), balance)
	require.Equal(t, 1, len(st.BuilderPendingWithdrawals()))
	require.Equal(t, uint64(0), st.NextWithdrawalIndex())
}
