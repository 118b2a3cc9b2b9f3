package interop_test

import (
	"bytes"
	"testing"

	"github.com/gloaslabs/gloas/config/params"
	"github.com/gloaslabs/gloas/consensus-types/primitives"
	"github.com/gloaslabs/gloas/runtime/interop"
	"github.com/gloaslabs/gloas/testing/require"
)

func TestDeterministicallyGenerateKeys(t *testing.T) {
	first, err := interop.DeterministicallyGenerateKeys(0, 8)
	require.NoError(t, err)
	second, err := interop.DeterministicallyGenerateKeys(0, 8)
	require.NoError(t, err)

	for i := range first {
		require.DeepEqual(t, first[i].Marshal(), second[i].Marshal())
	}

	// Offset ranges line up with the zero-offset sequence.
	tail, err := interop.DeterministicallyGenerateKeys(4, 4)
	require.NoError(t, err)
	for i := range tail {
		require.DeepEqual(t, first[4+i].Marshal(), tail[i].Marshal())
	}

	// No two indices share a key.
	for i := 0; i < len(first); i++ {
		for j := i + 1; j < len(first); j++ {
			if bytes.Equal(first[i].Marshal(), first[j].Marshal()) {
				t.Fatalf("indices %d and %d derived the same key", i, j)
			}
		}
	}
}

func TestGenerateGenesisState(t *testing.T) {
	st, keys, err := interop.GenerateGenesisState(1700000000, 16, 4)
	require.NoError(t, err)
	require.Equal(t, 20, len(keys))
	require.Equal(t, uint64(16), st.NumValidators())
	require.Equal(t, uint64(4), st.NumBuilders())
	require.Equal(t, uint64(1700000000), st.GenesisTime())

	cfg := params.BeaconConfig()
	for i := uint64(0); i < 16; i++ {
		v, err := st.ValidatorAtIndex(primitives.ValidatorIndex(i))
		require.NoError(t, err)
		require.DeepEqual(t, keys[i].PublicKey().Marshal(), v.PublicKey)
		require.Equal(t, cfg.ETH1AddressWithdrawalPrefixByte, v.WithdrawalCredentials[0])
		require.Equal(t, primitives.Gwei(cfg.MaxEffectiveBalance), v.EffectiveBalance)
	}
	for i := uint64(0); i < 4; i++ {
		b, err := st.BuilderAtIndex(primitives.BuilderIndexFromRegistry(i))
		require.NoError(t, err)
		require.DeepEqual(t, keys[16+i].PublicKey().Marshal(), b.PublicKey)
		require.Equal(t, cfg.BuilderWithdrawalPrefixByte, b.WithdrawalCredentials[0])
		require.Equal(t, primitives.Gwei(cfg.MaxEffectiveBalance), b.Balance)
		require.Equal(t, cfg.FarFutureEpoch, b.WithdrawableEpoch)
	}

	// The registry root is reproducible.
	again, _, err := interop.GenerateGenesisState(1700000000, 16, 4)
	require.NoError(t, err)
	require.Equal(t, st.GenesisValidatorsRoot(), again.GenesisValidatorsRoot())
}
