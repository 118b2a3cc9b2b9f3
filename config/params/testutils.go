package params

import "testing"

// SetupTestConfigCleanup preserves the global beacon chain config for the
// duration of a test and restores it on cleanup. Tests that override
// parameters must call this first.
func SetupTestConfigCleanup(t testing.TB) {
	prevConfig := BeaconConfig().Copy()
	t.Cleanup(func() {
		OverrideBeaconConfig(prevConfig)
	})
}

// MinimalSpecConfig returns a config with a reduced PTC size, suitable for
// tests exercising committee selection on small registries.
func MinimalSpecConfig() *BeaconChainConfig {
	minimal := mainnetBeaconConfig.Copy()
	minimal.ConfigName = "minimal"
	minimal.SlotsPerEpoch = 8
	minimal.PtcSize = 2
	minimal.MaxValidatorsPerWithdrawalsSweep = 16
	return minimal
}
