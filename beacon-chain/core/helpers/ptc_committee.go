package helpers

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/gloaslabs/gloas/beacon-chain/state"
	"github.com/gloaslabs/gloas/config/params"
	"github.com/gloaslabs/gloas/consensus-types/primitives"
	"github.com/gloaslabs/gloas/crypto/hash"
	"github.com/gloaslabs/gloas/encoding/bytesutil"
	"github.com/gloaslabs/gloas/time/slots"
)

// ErrNoActiveValidators is returned when committee selection runs against an
// empty active set.
var ErrNoActiveValidators = errors.New("no active validator indices")

// maxRandomValue is the upper bound of the per-candidate random byte used by
// the balance-weighted filter.
const maxRandomValue = 255

// Committees for recent slots are reused by gossip validation, the duty
// surface, and block processing within the same slot.
var ptcCommitteeCache, _ = lru.New(8)

// PtcCommittee returns the payload timeliness committee for the given slot.
// Selection is balance weighted over the active set in registry order. There
// is no index shuffle: the seed folds in the slot, so the committee is stable
// for the slot and differs between slots.
func PtcCommittee(st *state.BeaconState, slot primitives.Slot) ([]primitives.ValidatorIndex, error) {
	if st == nil {
		return nil, ErrNilState
	}
	epoch := slots.ToEpoch(slot)
	epochSeed, err := Seed(st, epoch, params.BeaconConfig().DomainPtcAttester)
	if err != nil {
		return nil, errors.Wrap(err, "could not get seed")
	}
	seed := hash.Hash(append(epochSeed[:], bytesutil.Uint64ToBytesLittleEndian(uint64(slot))...))

	if c, ok := ptcCommitteeCache.Get(seed); ok {
		committee := c.([]primitives.ValidatorIndex)
		out := make([]primitives.ValidatorIndex, len(committee))
		copy(out, committee)
		return out, nil
	}

	active := st.ActiveValidatorIndices(epoch)
	if len(active) == 0 {
		return nil, ErrNoActiveValidators
	}
	cfg := params.BeaconConfig()
	committee := make([]primitives.ValidatorIndex, 0, cfg.PtcSize)
	hashFunc := hash.CustomSHA256Hasher()
	buf := make([]byte, 40)
	copy(buf, seed[:])

	for i := uint64(0); uint64(len(committee)) < cfg.PtcSize; i++ {
		candidate := active[i%uint64(len(active))]
		copy(buf[32:], bytesutil.Uint64ToBytesLittleEndian(i/32))
		randByte := hashFunc(buf)[i%32]
		v, err := st.ValidatorAtIndex(candidate)
		if err != nil {
			return nil, err
		}
		if uint64(v.EffectiveBalance)*maxRandomValue >= cfg.MaxEffectiveBalance*uint64(randByte) {
			committee = append(committee, candidate)
		}
	}
	ptcCommitteeCache.Add(seed, committee)

	out := make([]primitives.ValidatorIndex, len(committee))
	copy(out, committee)
	return out, nil
}

// ClearCache empties the committee cache. Tests that mutate balances between
// committee queries call this to avoid stale selections.
func ClearCache() {
	ptcCommitteeCache.Purge()
}
