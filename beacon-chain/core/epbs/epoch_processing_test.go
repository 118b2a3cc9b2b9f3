package epbs_test

import (
	"context"
	"testing"

	coreepbs "github.com/gloaslabs/gloas/beacon-chain/core/epbs"
	"github.com/gloaslabs/gloas/config/params"
	"github.com/gloaslabs/gloas/consensus-types/epbs"
	"github.com/gloaslabs/gloas/consensus-types/primitives"
	"github.com/gloaslabs/gloas/testing/require"
	"github.com/gloaslabs/gloas/testing/util"
)

func pendingPayment(weight primitives.Gwei, amount primitives.Gwei) *epbs.BuilderPendingPayment {
	return &epbs.BuilderPendingPayment{
		Weight: weight,
		Withdrawal: &epbs.BuilderPendingWithdrawal{
			FeeRecipient:      make([]byte, 20),
			Amount:            amount,
			BuilderIndex:      primitives.BuilderIndexFromRegistry(0),
			WithdrawableEpoch: 256,
		},
	}
}

func TestProcessBuilderPendingPayments_QuorumBoundary(t *testing.T) {
	st, _ := util.DeterministicGenesisState(t, 64, 1)
	quorum := coreepbs.PaymentQuorum(st.TotalActiveBalance(0))

	// Weight exactly at quorum settles; one gwei short forfeits.
	require.NoError(t, st.SetBuilderPendingPayment(0, pendingPayment(quorum, 3*1e9)))
	require.NoError(t, st.SetBuilderPendingPayment(1, pendingPayment(quorum-1, 7*1e9)))

	require.NoError(t, coreepbs.ProcessBuilderPendingPayments(context.Background(), st))

	withdrawals := st.BuilderPendingWithdrawals()
	require.Equal(t, 1, len(withdrawals))
	require.Equal(t, primitives.Gwei(3*1e9), withdrawals[0].Amount)
}

func TestProcessBuilderPendingPayments_RotatesRing(t *testing.T) {
	st, _ := util.DeterministicGenesisState(t, 64, 1)
	spe := uint64(params.BeaconConfig().SlotsPerEpoch)

	// A payment accrued this epoch sits in the young half. Settlement must
	// not touch it, only slide it into the mature half.
	require.NoError(t, st.SetBuilderPendingPayment(spe+3, pendingPayment(0, 9*1e9)))

	require.NoError(t, coreepbs.ProcessBuilderPendingPayments(context.Background(), st))

	require.Equal(t, 0, len(st.BuilderPendingWithdrawals()))
	matured, err := st.BuilderPendingPaymentAtIndex(3)
	require.NoError(t, err)
	require.Equal(t, primitives.Gwei(9*1e9), matured.Withdrawal.Amount)

	young, err := st.BuilderPendingPaymentAtIndex(spe + 3)
	require.NoError(t, err)
	require.Equal(t, true, young.IsEmpty())
}

func TestProcessBuilderPendingPayments_EmptyRingNoOp(t *testing.T) {
	st, _ := util.DeterministicGenesisState(t, 64, 1)
	require.NoError(t, coreepbs.ProcessBuilderPendingPayments(context.Background(), st))
	require.Equal(t, 0, len(st.BuilderPendingWithdrawals()))
}
