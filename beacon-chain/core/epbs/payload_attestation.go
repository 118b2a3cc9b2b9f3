package epbs

import (
	"bytes"
	"context"
	"sort"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"github.com/gloaslabs/gloas/beacon-chain/core/helpers"
	"github.com/gloaslabs/gloas/beacon-chain/core/signing"
	"github.com/gloaslabs/gloas/beacon-chain/state"
	"github.com/gloaslabs/gloas/config/params"
	"github.com/gloaslabs/gloas/consensus-types/epbs"
	"github.com/gloaslabs/gloas/consensus-types/primitives"
)

// ProcessPayloadAttestations validates the payload attestations included in a
// block and accrues their attesting weight into the builder pending payment
// ring buffer. Attestations vote on the parent block's payload timeliness,
// so the data slot is one behind the block's slot.
func ProcessPayloadAttestations(ctx context.Context, st *state.BeaconState, atts []*epbs.PayloadAttestation) error {
	ctx, span := trace.StartSpan(ctx, "epbs.ProcessPayloadAttestations")
	defer span.End()

	if st == nil {
		return state.ErrNilState
	}
	if uint64(len(atts)) > params.BeaconConfig().MaxPayloadAttestations {
		return errors.New("too many payload attestations")
	}
	for _, att := range atts {
		if err := processPayloadAttestation(ctx, st, att); err != nil {
			return err
		}
	}
	return nil
}

func processPayloadAttestation(ctx context.Context, st *state.BeaconState, att *epbs.PayloadAttestation) error {
	if att == nil || att.Data == nil {
		return ErrNilObject
	}
	data := att.Data

	header := st.LatestBlockHeader()
	parentRoot, err := header.HashTreeRoot()
	if err != nil {
		return errors.Wrap(err, "could not compute latest block header root")
	}
	if !bytes.Equal(data.BeaconBlockRoot, parentRoot[:]) {
		return ErrInvalidBeaconBlockRoot
	}
	if data.Slot+1 != st.Slot() {
		return errors.Wrapf(ErrInvalidSlot, "attestation slot %d, state slot %d", data.Slot, st.Slot())
	}

	indexed, err := ConvertToIndexed(ctx, st, att)
	if err != nil {
		return err
	}
	if err := ValidateIndexedPayloadAttestation(st, indexed); err != nil {
		return err
	}

	// Weight accrues toward the pending payment recorded for the voted
	// slot only when the vote matches the payload's actual availability.
	if !data.PayloadPresent || !st.IsPayloadAvailable(data.Slot) {
		payloadAttestationsProcessed.Inc()
		return nil
	}
	cfg := params.BeaconConfig()
	paymentIndex := uint64(cfg.SlotsPerEpoch) + uint64(data.Slot.ModSlot(cfg.SlotsPerEpoch))
	for _, idx := range indexed.AttestingIndices {
		v, err := st.ValidatorAtIndex(idx)
		if err != nil {
			return err
		}
		if err := st.AddBuilderPendingPaymentWeight(paymentIndex, v.EffectiveBalance); err != nil {
			return err
		}
	}
	payloadAttestationsProcessed.Inc()
	return nil
}

// ConvertToIndexed resolves the attestation's aggregation bits against the
// payload timeliness committee of the data slot and returns the attestation
// in indexed form with ascending attesting indices. The committee selects
// with replacement, so a validator seated at several positions contributes a
// single index no matter how many of its bits are set.
func ConvertToIndexed(ctx context.Context, st *state.BeaconState, att *epbs.PayloadAttestation) (*epbs.IndexedPayloadAttestation, error) {
	_, span := trace.StartSpan(ctx, "epbs.ConvertToIndexed")
	defer span.End()

	committee, err := helpers.PtcCommittee(st, att.Data.Slot)
	if err != nil {
		return nil, errors.Wrap(err, "could not get ptc committee")
	}
	seen := make(map[primitives.ValidatorIndex]bool, att.AggregationBits.Count())
	indices := make([]primitives.ValidatorIndex, 0, att.AggregationBits.Count())
	for i, idx := range committee {
		if att.AggregationBits.BitAt(uint64(i)) && !seen[idx] {
			seen[idx] = true
			indices = append(indices, idx)
		}
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	return &epbs.IndexedPayloadAttestation{
		AttestingIndices: indices,
		Data:             att.Data.Copy(),
		Signature:        att.Signature,
	}, nil
}

// ValidateIndexedPayloadAttestation checks the attesting index set is
// non-empty, sorted and unique, then verifies the aggregate signature over
// the attestation data.
func ValidateIndexedPayloadAttestation(st *state.BeaconState, att *epbs.IndexedPayloadAttestation) error {
	if att == nil || att.Data == nil {
		return ErrNilObject
	}
	indices := att.AttestingIndices
	if len(indices) == 0 {
		return ErrEmptyIndices
	}
	for i := 1; i < len(indices); i++ {
		if indices[i-1] >= indices[i] {
			return ErrIndicesNotSorted
		}
	}

	pubKeys := make([][]byte, len(indices))
	for i, idx := range indices {
		v, err := st.ValidatorAtIndex(idx)
		if err != nil {
			return err
		}
		pubKeys[i] = v.PublicKey
	}
	gvr := st.GenesisValidatorsRoot()
	domain, err := signing.ComputeDomain(params.BeaconConfig().DomainPtcAttester, st.ForkVersion(), gvr[:])
	if err != nil {
		return err
	}
	return signing.VerifyAggregateSigningRoot(att.Data, pubKeys, att.Signature, domain)
}
