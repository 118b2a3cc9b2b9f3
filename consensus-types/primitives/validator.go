package primitives

import "math"

// ValidatorIndex in the validator registry.
type ValidatorIndex uint64

// Gwei is a denomination of 1e9 wei.
type Gwei uint64

// BuilderIndex in the builder registry. Builder indices share the wire
// representation of validator indices but carry a high-bit flag so the two
// registries can never be confused when an index travels inside a bid or an
// envelope.
type BuilderIndex uint64

// BuilderIndexFlag is the high bit distinguishing builder indices from
// validator indices on the wire.
const BuilderIndexFlag = BuilderIndex(1) << 63

// SelfBuildIndex is the reserved sentinel denoting that the proposer acts
// as its own builder. Self-build bids must carry a zero value and the
// infinity signature marker.
const SelfBuildIndex = BuilderIndex(math.MaxUint64)

// IsSelfBuild reports whether the index is the self-build sentinel.
func (b BuilderIndex) IsSelfBuild() bool {
	return b == SelfBuildIndex
}

// IsBuilderIndex reports whether the raw wire index carries the builder flag.
func IsBuilderIndex(raw uint64) bool {
	return BuilderIndex(raw)&BuilderIndexFlag != 0
}

// RegistryIndex strips the builder flag, yielding the dense position of the
// builder in the registry.
func (b BuilderIndex) RegistryIndex() uint64 {
	return uint64(b &^ BuilderIndexFlag)
}

// BuilderIndexFromRegistry tags a dense registry position with the builder
// flag for wire use.
func BuilderIndexFromRegistry(i uint64) BuilderIndex {
	return BuilderIndex(i) | BuilderIndexFlag
}
