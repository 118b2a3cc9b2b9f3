package epbs

import (
	"context"

	"go.opencensus.io/trace"

	"github.com/gloaslabs/gloas/beacon-chain/state"
	"github.com/gloaslabs/gloas/config/params"
	"github.com/gloaslabs/gloas/consensus-types/primitives"
	"github.com/gloaslabs/gloas/time/slots"
)

// ProcessBuilderPendingPayments settles the mature half of the payment ring
// buffer at the epoch boundary. A payment whose accrued attestation weight
// meets the quorum is promoted into the builder withdrawal queue; anything
// below quorum is dropped, which is the builder's penalty for an unrevealed
// or untimely payload. The buffer then rotates in place: the young half
// becomes the mature half and the young half resets.
func ProcessBuilderPendingPayments(ctx context.Context, st *state.BeaconState) error {
	_, span := trace.StartSpan(ctx, "epbs.ProcessBuilderPendingPayments")
	defer span.End()

	if st == nil {
		return state.ErrNilState
	}
	cfg := params.BeaconConfig()
	epoch := slots.ToEpoch(st.Slot())
	quorum := PaymentQuorum(st.TotalActiveBalance(epoch))

	payments := st.BuilderPendingPayments()
	matureHalf := uint64(cfg.SlotsPerEpoch)
	promoted := 0
	forfeited := 0
	for i := uint64(0); i < matureHalf && i < uint64(len(payments)); i++ {
		p := payments[i]
		if p.IsEmpty() {
			continue
		}
		if p.Weight >= quorum {
			st.AppendBuilderPendingWithdrawal(p.Withdrawal)
			promoted++
		} else {
			forfeited++
		}
	}
	st.RotateBuilderPendingPayments()

	pendingPaymentsPromoted.Add(float64(promoted))
	pendingPaymentsForfeited.Add(float64(forfeited))
	if promoted > 0 || forfeited > 0 {
		log.WithField("epoch", epoch).WithField("promoted", promoted).WithField("forfeited", forfeited).Debug("Settled builder pending payments")
	}
	return nil
}

// PaymentQuorum returns the attestation weight a pending payment must accrue
// to settle: 60% of the total active balance, truncating.
func PaymentQuorum(totalActiveBalance primitives.Gwei) primitives.Gwei {
	cfg := params.BeaconConfig()
	return totalActiveBalance * primitives.Gwei(cfg.PayloadAttestationQuorumNumerator) / primitives.Gwei(cfg.PayloadAttestationQuorumDenominator)
}
