package primitives_test

import (
	"math"
	"testing"

	"github.com/gloaslabs/gloas/consensus-types/primitives"
	"github.com/gloaslabs/gloas/testing/require"
)

func TestBuilderIndexRoundTrip(t *testing.T) {
	for _, registry := range []uint64{0, 1, 7, 1<<40 + 3} {
		idx := primitives.BuilderIndexFromRegistry(registry)
		require.Equal(t, registry, idx.RegistryIndex())
		require.Equal(t, true, primitives.IsBuilderIndex(uint64(idx)))
		require.Equal(t, false, idx.IsSelfBuild())
	}
}

func TestBuilderIndexFlagDisjointFromValidators(t *testing.T) {
	// A dense validator index never reads as a builder index.
	require.Equal(t, false, primitives.IsBuilderIndex(0))
	require.Equal(t, false, primitives.IsBuilderIndex(1<<62))
}

func TestSelfBuildSentinel(t *testing.T) {
	require.Equal(t, true, primitives.SelfBuildIndex.IsSelfBuild())
	require.Equal(t, primitives.BuilderIndex(math.MaxUint64), primitives.SelfBuildIndex)
	// The sentinel also carries the builder flag.
	require.Equal(t, true, primitives.IsBuilderIndex(uint64(primitives.SelfBuildIndex)))
}
