// Package slots includes ticker and timer-related functions for the
// consensus clock.
package slots

import (
	"time"

	"github.com/gloaslabs/gloas/config/params"
	types "github.com/gloaslabs/gloas/consensus-types/primitives"
)

// CurrentSlot returns the current slot as determined by the local clock and
// provided genesis time.
func CurrentSlot(genesisTimeSec uint64) types.Slot {
	now := uint64(time.Now().Unix())
	if now < genesisTimeSec {
		return 0
	}
	return types.Slot((now - genesisTimeSec) / params.BeaconConfig().SecondsPerSlot)
}

// ToEpoch returns the epoch number of the input slot.
func ToEpoch(slot types.Slot) types.Epoch {
	return types.Epoch(slot.Div(uint64(params.BeaconConfig().SlotsPerEpoch)))
}

// EpochStart returns the first slot number of the current epoch.
func EpochStart(epoch types.Epoch) types.Slot {
	return types.Slot(uint64(epoch) * uint64(params.BeaconConfig().SlotsPerEpoch))
}

// EpochEnd returns the last slot number of the current epoch.
func EpochEnd(epoch types.Epoch) types.Slot {
	return EpochStart(epoch+1) - 1
}

// IsEpochStart returns true if the given slot number is an epoch starting slot.
func IsEpochStart(slot types.Slot) bool {
	return slot.ModSlot(params.BeaconConfig().SlotsPerEpoch) == 0
}

// IsEpochEnd returns true if the given slot number is an epoch ending slot.
func IsEpochEnd(slot types.Slot) bool {
	return IsEpochStart(slot + 1)
}

// SinceEpochStarts returns number of slots since the start of the epoch.
func SinceEpochStarts(slot types.Slot) types.Slot {
	return slot.ModSlot(params.BeaconConfig().SlotsPerEpoch)
}

// StartTime returns the unix start time of the given slot.
func StartTime(genesisTimeSec uint64, slot types.Slot) time.Time {
	duration := time.Duration(uint64(slot)*params.BeaconConfig().SecondsPerSlot) * time.Second
	return time.Unix(int64(genesisTimeSec), 0).Add(duration)
}
