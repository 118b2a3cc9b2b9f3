package epbs

import (
	"bytes"
	"context"

	"go.opencensus.io/trace"

	"github.com/gloaslabs/gloas/beacon-chain/state"
	"github.com/gloaslabs/gloas/config/params"
	"github.com/gloaslabs/gloas/consensus-types/epbs"
	"github.com/gloaslabs/gloas/consensus-types/primitives"
	"github.com/gloaslabs/gloas/time/slots"
)

// ProcessBuilderDeposit applies a deposit carrying the builder withdrawal
// credential prefix. A deposit for a known public key tops up the existing
// entry; otherwise a new builder joins the registry. Returns the wire index
// of the credited builder.
func ProcessBuilderDeposit(ctx context.Context, st *state.BeaconState, pubKey, withdrawalCredentials []byte, amount primitives.Gwei) (primitives.BuilderIndex, error) {
	_, span := trace.StartSpan(ctx, "epbs.ProcessBuilderDeposit")
	defer span.End()

	if st == nil {
		return 0, state.ErrNilState
	}
	if !epbs.HasBuilderWithdrawalCredential(withdrawalCredentials) {
		return 0, ErrNilObject
	}

	if idx, ok := builderIndexByPubkey(st, pubKey); ok {
		if err := st.IncreaseBuilderBalance(idx, amount); err != nil {
			return 0, err
		}
		return idx, nil
	}

	builder := &epbs.Builder{
		PublicKey:             pubKey,
		WithdrawalCredentials: withdrawalCredentials,
		Balance:               amount,
		DepositEpoch:          slots.ToEpoch(st.Slot()),
		WithdrawableEpoch:     params.BeaconConfig().FarFutureEpoch,
	}
	idx := st.AppendBuilder(builder)
	log.WithField("index", idx.RegistryIndex()).WithField("amount", amount).Debug("Registered new builder")
	return idx, nil
}

// InitiateBuilderExit schedules a builder's exit. The builder stops being
// eligible to bid once the withdrawable epoch is reached; its balance is then
// swept by the round-robin builder sweep.
func InitiateBuilderExit(ctx context.Context, st *state.BeaconState, idx primitives.BuilderIndex) error {
	_, span := trace.StartSpan(ctx, "epbs.InitiateBuilderExit")
	defer span.End()

	if st == nil {
		return state.ErrNilState
	}
	builder, err := st.BuilderAtIndex(idx)
	if err != nil {
		return err
	}
	epoch := slots.ToEpoch(st.Slot())
	if builder.WithdrawableEpoch != params.BeaconConfig().FarFutureEpoch {
		// Exit already initiated.
		return nil
	}
	withdrawable := epoch + params.BeaconConfig().MinValidatorWithdrawabilityDelay
	return st.SetBuilderWithdrawableEpoch(idx, withdrawable)
}

func builderIndexByPubkey(st *state.BeaconState, pubKey []byte) (primitives.BuilderIndex, bool) {
	for i, b := range st.Builders() {
		if bytes.Equal(b.PublicKey, pubKey) {
			return primitives.BuilderIndexFromRegistry(uint64(i)), true
		}
	}
	return 0, false
}
