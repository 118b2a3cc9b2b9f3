// Package util contains fixture builders shared by the consensus tests.
package util

import (
	"testing"
	"time"

	"github.com/gloaslabs/gloas/beacon-chain/state"
	"github.com/gloaslabs/gloas/crypto/bls"
	"github.com/gloaslabs/gloas/runtime/interop"
	"github.com/gloaslabs/gloas/testing/require"
)

// DeterministicGenesisState returns a genesis beacon state with the requested
// numbers of validators and builders, plus every secret key backing them.
// Validator i holds keys[i]; builder j holds keys[numValidators+j]. Genesis
// time is set to now so the wall clock slot is zero.
func DeterministicGenesisState(t testing.TB, numValidators, numBuilders uint64) (*state.BeaconState, []bls.SecretKey) {
	st, keys, err := interop.GenerateGenesisState(uint64(time.Now().Unix()), numValidators, numBuilders)
	require.NoError(t, err, "Could not generate genesis state")
	return st, keys
}
