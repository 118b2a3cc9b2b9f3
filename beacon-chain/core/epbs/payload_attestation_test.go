package epbs_test

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
	"github.com/gloaslabs/gloas/testing/require"
	"github.com/gloaslabs/gloas/testing/util"
)

// stateAfterReveal runs a bid and its reveal through slot 0 and advances the
// state to slot 1, where the payload attestations for slot 0 arrive.
func stateAfterReveal(t *testing.T) (*state.BeaconState, []bls.SecretKey) {
	st, keys := stateWithCommittedBid(t, 5*1e9)
	post, err := coreepbs.ProcessExecutionPayloadEnvelope(context.Background(), st, util.SignEnvelope(t, st, keys[64], util.DefaultEnvelope(t, st)))
	require.NoError(t, err)
	post.SetSlot(1)
	return post, keys
}

func attestationData(t *testing.T, st *state.BeaconState, present bool) *epbs.PayloadAttestationData {
	headerRoot, err := st.LatestBlockHeader().HashTreeRoot()
	require.NoError(t, err)
	return &epbs.PayloadAttestationData{
		BeaconBlockRoot: headerRoot[:],
		Slot:            0,
		PayloadPresent:  present,
	}
}

// distinctCommitteeWeight sums each distinct committee member's effective
// balance once.
func distinctCommitteeWeight(t *testing.T, st *state.BeaconState, slot primitives.Slot) primitives.Gwei {
	committee, err := helpers.PtcCommittee(st, slot)
	require.NoError(t, err)
	seen := make(map[primitives.ValidatorIndex]bool)
	var total primitives.Gwei
	for _, idx := range committee {
		if seen[idx] {
			continue
		}
		seen[idx] = true
		v, err := st.ValidatorAtIndex(idx)
		require.NoError(t, err)
		total += v.EffectiveBalance
	}
	return total
}

func TestProcessPayloadAttestations_AccruesWeight(t *testing.T) {
	helpers.ClearCache()
	st, keys := stateAfterReveal(t)
	data := attestationData(t, st, true)
	att := util.AggregatePayloadAttestation(t, st, data, keys)

	require.NoError(t, coreepbs.ProcessPayloadAttestations(context.Background(), st, []*epbs.PayloadAttestation{att}))

	idx := uint64(params.BeaconConfig().SlotsPerEpoch)
	payment, err := st.BuilderPendingPaymentAtIndex(idx)
	require.NoError(t, err)
	require.Equal(t, distinctCommitteeWeight(t, st, 0), payment.Weight)
}

func TestProcessPayloadAttestations_AbsentVoteAccruesNothing(t *testing.T) {
	helpers.ClearCache()
	st, keys := stateAfterReveal(t)
	data := attestationData(t, st, false)
	att := util.AggregatePayloadAttestation(t, st, data, keys)

	require.NoError(t, coreepbs.ProcessPayloadAttestations(context.Background(), st, []*epbs.PayloadAttestation{att}))

	idx := uint64(params.BeaconConfig().SlotsPerEpoch)
	payment, err := st.BuilderPendingPaymentAtIndex(idx)
	require.NoError(t, err)
	require.Equal(t, primitives.Gwei(0), payment.Weight)
}

func TestProcessPayloadAttestations_PresentVoteOnUnrevealedPayload(t *testing.T) {
	helpers.ClearCache()
	// The bid is committed but never revealed: a presence vote passes
	// validation yet accrues no weight.
	st, keys := stateWithCommittedBid(t, 5*1e9)
	st.SetSlot(1)
	data := attestationData(t, st, true)
	att := util.AggregatePayloadAttestation(t, st, data, keys)

	require.NoError(t, coreepbs.ProcessPayloadAttestations(context.Background(), st, []*epbs.PayloadAttestation{att}))

	idx := uint64(params.BeaconConfig().SlotsPerEpoch)
	payment, err := st.BuilderPendingPaymentAtIndex(idx)
	require.NoError(t, err)
	require.Equal(t, primitives.Gwei(0), payment.Weight)
}

func TestProcessPayloadAttestations_WrongSlot(t *testing.T) {
	helpers.ClearCache()
	st, keys := stateAfterReveal(t)
	data := attestationData(t, st, true)
	data.Slot = 1
	att := util.AggregatePayloadAttestation(t, st, data, keys)

	err := coreepbs.ProcessPayloadAttestations(context.Background(), st, []*epbs.PayloadAttestation{att})
	require.ErrorIs(t, err, coreepbs.ErrInvalidSlot)
}

func TestProcessPayloadAttestations_TooMany(t *testing.T) {
	st, _ := util.DeterministicGenesisState(t, 64, 1)
	atts := make([]*epbs.PayloadAttestation, params.BeaconConfig().MaxPayloadAttestations+1)
	err := coreepbs.ProcessPayloadAttestations(context.Background(), st, atts)
	require.ErrorContains(t, "too many payload attestations", err)
}

func TestValidateIndexedPayloadAttestation_Indices(t *testing.T) {
	st, _ := util.DeterministicGenesisState(t, 64, 1)
	data := attestationData(t, st, true)

	t.Run("empty", func(t *testing.T) {
		err := coreepbs.ValidateIndexedPayloadAttestation(st, &epbs.IndexedPayloadAttestation{
			AttestingIndices: nil,
			Data:             data,
		})
		require.ErrorIs(t, err, coreepbs.ErrEmptyIndices)
	})
	t.Run("unsorted", func(t *testing.T) {
		err := coreepbs.ValidateIndexedPayloadAttestation(st, &epbs.IndexedPayloadAttestation{
			AttestingIndices: []primitives.ValidatorIndex{3, 1},
			Data:             data,
		})
		require.ErrorIs(t, err, coreepbs.ErrIndicesNotSorted)
	})
	t.Run("duplicate", func(t *testing.T) {
		err := coreepbs.ValidateIndexedPayloadAttestation(st, &epbs.IndexedPayloadAttestation{
			AttestingIndices: []primitives.ValidatorIndex{1, 1},
			Data:             data,
		})
		require.ErrorIs(t, err, coreepbs.ErrIndicesNotSorted)
	})
}

func TestProcessPayloadAttestations_RepeatedSeatCountsOnce(t *testing.T) {
	helpers.ClearCache()
	st, keys := stateAfterReveal(t)
	data := attestationData(t, st, true)

	// With fewer active validators than committee seats, selection with
	// replacement seats the same validator several times. Vote with every
	// seat of one such member set.
	committee, err := helpers.PtcCommittee(st, 0)
	require.NoError(t, err)
	positions := make(map[primitives.ValidatorIndex][]uint64)
	for i, idx := range committee {
		positions[idx] = append(positions[idx], uint64(i))
	}
	var member primitives.ValidatorIndex
	var seats []uint64
	for idx, ps := range positions {
		if len(ps) > 1 {
			member, seats = idx, ps
			break
		}
	}
	require.NotEqual(t, 0, len(seats), "no committee member holds repeated seats")

	bits := bitfield.NewBitvector512()
	for _, p := range seats {
		bits.SetBitAt(p, true)
	}
	gvr := st.GenesisValidatorsRoot()
	domain, err := signing.ComputeDomain(params.BeaconConfig().DomainPtcAttester, st.ForkVersion(), gvr[:])
	require.NoError(t, err)
	root, err := signing.ComputeSigningRoot(data, domain)
	require.NoError(t, err)
	att := &epbs.PayloadAttestation{
		AggregationBits: bits,
		Data:            data,
		Signature:       keys[member].Sign(root[:]).Marshal(),
	}

	indexed, err := coreepbs.ConvertToIndexed(context.Background(), st, att)
	require.NoError(t, err)
	require.Equal(t, 1, len(indexed.AttestingIndices))
	require.Equal(t, member, indexed.AttestingIndices[0])

	require.NoError(t, coreepbs.ProcessPayloadAttestations(context.Background(), st, []*epbs.PayloadAttestation{att}))

	v, err := st.ValidatorAtIndex(member)
	require.NoError(t, err)
	payment, err := st.BuilderPendingPaymentAtIndex(uint64(params.BeaconConfig().SlotsPerEpoch))
	require.NoError(t, err)
	require.Equal(t, v.EffectiveBalance, payment.Weight)
}

func TestProcessPayloadAttestations_LateVoteLandsInYoungHalf(t *testing.T) {
	helpers.ClearCache()
	spe := uint64(params.BeaconConfig().SlotsPerEpoch)
	st, keys := util.DeterministicGenesisState(t, 64, 1)
	st.SetSlot(primitives.Slot(spe))
	st.SetPayloadAvailability(primitives.Slot(spe - 1))

	headerRoot, err := st.LatestBlockHeader().HashTreeRoot()
	require.NoError(t, err)
	data := &epbs.PayloadAttestationData{
		BeaconBlockRoot: headerRoot[:],
		Slot:            primitives.Slot(spe - 1),
		PayloadPresent:  true,
	}
	att := util.AggregatePayloadAttestation(t, st, data, keys)

	require.NoError(t, coreepbs.ProcessPayloadAttestations(context.Background(), st, []*epbs.PayloadAttestation{att}))

	// A vote for the last slot of the prior epoch, processed in the first
	// block of the next one, accrues to the young-half entry for its slot.
	// The boundary rotation already moved that slot's payment into the
	// mature half, so the late weight does not reach it.
	young, err := st.BuilderPendingPaymentAtIndex(spe + (spe-1)%spe)
	require.NoError(t, err)
	require.Equal(t, distinctCommitteeWeight(t, st, primitives.Slot(spe-1)), young.Weight)
	mature, err := st.BuilderPendingPaymentAtIndex((spe - 1) % spe)
	require.NoError(t, err)
	require.Equal(t, primitives.Gwei(0), mature.Weight)
}

func TestConvertToIndexed_SortsAscending(t *testing.T) {
	helpers.ClearCache()
	st, keys := stateAfterReveal(t)
	data := attestationData(t, st, true)
	att := util.AggregatePayloadAttestation(t, st, data, keys)

	indexed, err := coreepbs.ConvertToIndexed(context.Background(), st, att)
	require.NoError(t, err)
	require.NotEqual(t, 0, len(indexed.AttestingIndices))
	for i := 1; i < len(indexed.AttestingIndices); i++ {
		if indexed.AttestingIndices[i-1] >= indexed.AttestingIndices[i] {
			t.Fatalf("indices not strictly ascending at %d", i)
		}
	}
}
