// Package helpers contains committee selection and balance helpers shared by
// the state transition and the duty surface.
package helpers

import (
	"github.com/pkg/errors"

	"github.com/gloaslabs/gloas/beacon-chain/state"
	"github.com/gloaslabs/gloas/config/params"
	"github.com/gloaslabs/gloas/consensus-types/primitives"
	"github.com/gloaslabs/gloas/crypto/hash"
	"github.com/gloaslabs/gloas/encoding/bytesutil"
)

// ErrNilState is returned when a helper receives a nil beacon state.
var ErrNilState = errors.New("nil beacon state")

// Seed returns the randao seed used for a domain at the given epoch.
//
// Spec pseudocode definition:
//
//	def get_seed(state: BeaconState, epoch: Epoch, domain_type: DomainType) -> Bytes32:
//	  """
//	  Return the seed at ``epoch``.
//	  """
//	  mix = get_randao_mix(state, Epoch(epoch + EPOCHS_PER_HISTORICAL_VECTOR - MIN_SEED_LOOKAHEAD - 1))  # Avoid underflow
//	  return hash(domain_type + uint_to_bytes(epoch) + mix)
func Seed(st *state.BeaconState, epoch primitives.Epoch, domain [4]byte) ([32]byte, error) {
	if st == nil {
		return [32]byte{}, ErrNilState
	}
	lookahead := params.BeaconConfig().MinSeedLookahead + 1
	// Avoid underflow at genesis epochs.
	mixEpoch := epoch
	if mixEpoch > lookahead {
		mixEpoch = mixEpoch - lookahead
	}
	mix := st.RandaoMix(mixEpoch)

	seed := make([]byte, 0, 4+8+32)
	seed = append(seed, domain[:]...)
	seed = append(seed, bytesutil.Uint64ToBytesLittleEndian(uint64(epoch))...)
	seed = append(seed, mix[:]...)
	return hash.Hash(seed), nil
}
