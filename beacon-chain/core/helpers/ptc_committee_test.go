package helpers_test

import (
	"testing"

	"github.com/gloaslabs/gloas/beacon-chain/core/helpers"
	"github.com/gloaslabs/gloas/config/params"
	"github.com/gloaslabs/gloas/testing/require"
	"github.com/gloaslabs/gloas/testing/util"
)

func TestPtcCommittee_Size(t *testing.T) {
	helpers.ClearCache()
	st, _ := util.DeterministicGenesisState(t, 64, 1)

	committee, err := helpers.PtcCommittee(st, 0)
	require.NoError(t, err)
	require.Equal(t, int(params.BeaconConfig().PtcSize), len(committee))

	numValidators := st.NumValidators()
	for _, idx := range committee {
		if uint64(idx) >= numValidators {
			t.Fatalf("committee member %d outside the registry", idx)
		}
	}
}

func TestPtcCommittee_Deterministic(t *testing.T) {
	helpers.ClearCache()
	st, _ := util.DeterministicGenesisState(t, 64, 1)

	first, err := helpers.PtcCommittee(st, 0)
	require.NoError(t, err)

	// Second read comes from the cache and must match the first selection.
	second, err := helpers.PtcCommittee(st, 0)
	require.NoError(t, err)
	require.DeepEqual(t, first, second)

	// A cold recomputation also matches.
	helpers.ClearCache()
	third, err := helpers.PtcCommittee(st, 0)
	require.NoError(t, err)
	require.DeepEqual(t, first, third)
}

func TestPtcCommittee_DiffersBetweenSlots(t *testing.T) {
	helpers.ClearCache()
	st, _ := util.DeterministicGenesisState(t, 64, 1)

	slot0, err := helpers.PtcCommittee(st, 0)
	require.NoError(t, err)
	slot1, err := helpers.PtcCommittee(st, 1)
	require.NoError(t, err)
	require.DeepNotEqual(t, slot0, slot1)
}

func TestPtcCommittee_CachedResultIsIsolated(t *testing.T) {
	helpers.ClearCache()
	st, _ := util.DeterministicGenesisState(t, 64, 1)

	first, err := helpers.PtcCommittee(st, 0)
	require.NoError(t, err)
	first[0] = 12345

	second, err := helpers.PtcCommittee(st, 0)
	require.NoError(t, err)
	if second[0] == 12345 {
		t.Fatal("cache returned a shared slice")
	}
}
