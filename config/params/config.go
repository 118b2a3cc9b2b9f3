// Package params defines the chain constants every consensus component
// reads. The active configuration is a process-wide singleton, matching how
// the rest of the codebase consumes it.
package params

import (
	types "github.com/gloaslabs/gloas/consensus-types/primitives"
)

// BeaconChainConfig contains the constant configs the node participates in
// the beacon chain with, restricted to the fields the ePBS core consumes.
type BeaconChainConfig struct {
	ConfigName string `yaml:"CONFIG_NAME" spec:"true"`
	PresetBase string `yaml:"PRESET_BASE" spec:"true"`

	// Time parameters.
	SecondsPerSlot   uint64      `yaml:"SECONDS_PER_SLOT" spec:"true"`
	SlotsPerEpoch    types.Slot  `yaml:"SLOTS_PER_EPOCH" spec:"true"`
	MinSeedLookahead types.Epoch `yaml:"MIN_SEED_LOOKAHEAD" spec:"true"`
	GenesisSlot      types.Slot  `yaml:"GENESIS_SLOT"`
	GenesisEpoch     types.Epoch `yaml:"GENESIS_EPOCH"`
	FarFutureEpoch   types.Epoch `yaml:"FAR_FUTURE_EPOCH"`
	FarFutureSlot    types.Slot  `yaml:"FAR_FUTURE_SLOT"`

	// Balance parameters, in Gwei.
	MinDepositAmount          uint64 `yaml:"MIN_DEPOSIT_AMOUNT" spec:"true"`
	MaxEffectiveBalance       uint64 `yaml:"MAX_EFFECTIVE_BALANCE" spec:"true"`
	MinActivationBalance      uint64 `yaml:"MIN_ACTIVATION_BALANCE" spec:"true"`
	EffectiveBalanceIncrement uint64 `yaml:"EFFECTIVE_BALANCE_INCREMENT" spec:"true"`
	EjectionBalance           uint64 `yaml:"EJECTION_BALANCE" spec:"true"`

	// Registry limits.
	ValidatorRegistryLimit uint64 `yaml:"VALIDATOR_REGISTRY_LIMIT" spec:"true"`
	BuilderRegistryLimit   uint64 `yaml:"BUILDER_REGISTRY_LIMIT" spec:"true"`

	// Withdrawal processing.
	MaxWithdrawalsPerPayload              uint64      `yaml:"MAX_WITHDRAWALS_PER_PAYLOAD" spec:"true"`
	MaxValidatorsPerWithdrawalsSweep      uint64      `yaml:"MAX_VALIDATORS_PER_WITHDRAWALS_SWEEP" spec:"true"`
	MaxPendingPartialsPerWithdrawalsSweep uint64      `yaml:"MAX_PENDING_PARTIALS_PER_WITHDRAWALS_SWEEP" spec:"true"`
	MinValidatorWithdrawabilityDelay      types.Epoch `yaml:"MIN_VALIDATOR_WITHDRAWABILITY_DELAY" spec:"true"`

	// Payload timeliness committee.
	PtcSize                             uint64 `yaml:"PTC_SIZE" spec:"true"`
	PayloadAttestationQuorumNumerator   uint64 // 6: quorum is total_active_balance * 6 / 10.
	PayloadAttestationQuorumDenominator uint64 // 10
	MaxPayloadAttestations              uint64 `yaml:"MAX_PAYLOAD_ATTESTATIONS" spec:"true"`
	MaxBlobCommitmentsPerBlock          uint64 `yaml:"MAX_BLOB_COMMITMENTS_PER_BLOCK" spec:"true"`

	// Fork choice.
	ProposerScoreBoost uint64 `yaml:"PROPOSER_SCORE_BOOST" spec:"true"`
	IntervalsPerSlot   uint64 `yaml:"INTERVALS_PER_SLOT" spec:"true"`

	// Signature domains.
	DomainBeaconProposer [4]byte `yaml:"DOMAIN_BEACON_PROPOSER" spec:"true"`
	DomainBeaconAttester [4]byte `yaml:"DOMAIN_BEACON_ATTESTER" spec:"true"`
	DomainRandao         [4]byte `yaml:"DOMAIN_RANDAO" spec:"true"`
	DomainBeaconBuilder  [4]byte `yaml:"DOMAIN_BEACON_BUILDER" spec:"true"`
	DomainPtcAttester    [4]byte `yaml:"DOMAIN_PTC_ATTESTER" spec:"true"`

	// Withdrawal credential prefixes.
	BLSWithdrawalPrefixByte         byte `yaml:"BLS_WITHDRAWAL_PREFIX" spec:"true"`
	ETH1AddressWithdrawalPrefixByte byte `yaml:"ETH1_ADDRESS_WITHDRAWAL_PREFIX" spec:"true"`
	BuilderWithdrawalPrefixByte     byte `yaml:"BUILDER_WITHDRAWAL_PREFIX" spec:"true"`

	// Fork schedule.
	GenesisForkVersion []byte      `yaml:"GENESIS_FORK_VERSION" spec:"true"`
	GloasForkVersion   []byte      `yaml:"GLOAS_FORK_VERSION" spec:"true"`
	GloasForkEpoch     types.Epoch `yaml:"GLOAS_FORK_EPOCH" spec:"true"`

	// Constant placeholders.
	ZeroHash          [32]byte
	InfiniteSignature [96]byte
}

var beaconConfig = MainnetConfig()

// BeaconConfig retrieves the beacon chain config.
func BeaconConfig() *BeaconChainConfig {
	return beaconConfig
}

// OverrideBeaconConfig by replacing the config. The preferred pattern is to
// call BeaconConfig(), change the specific parameters, and then call
// OverrideBeaconConfig(c). Any subsequent calls to params.BeaconConfig()
// will return this new configuration.
func OverrideBeaconConfig(c *BeaconChainConfig) {
	beaconConfig = c
}

// Copy returns a copy of the config object.
func (b *BeaconChainConfig) Copy() *BeaconChainConfig {
	config := *b
	return &config
}
