package params

import (
	fieldparams "github.com/gloaslabs/gloas/config/fieldparams"
	types "github.com/gloaslabs/gloas/consensus-types/primitives"
)

// MainnetConfig returns the configuration to be used in the main network.
func MainnetConfig() *BeaconChainConfig {
	return mainnetBeaconConfig.Copy()
}

// infiniteSignature is the G2 point at infinity in compressed form. It marks
// a self-build bid or envelope that carries no real builder signature.
var infiniteSignature = [96]byte{0xC0}

var mainnetBeaconConfig = &BeaconChainConfig{
	ConfigName: "mainnet",
	PresetBase: fieldparams.Preset,

	// Time parameters.
	SecondsPerSlot:   12,
	SlotsPerEpoch:    fieldparams.SlotsPerEpoch,
	MinSeedLookahead: 1,
	GenesisSlot:      0,
	GenesisEpoch:     0,
	FarFutureEpoch:   types.FarFutureEpoch,
	FarFutureSlot:    types.FarFutureSlot,

	// Balance parameters.
	MinDepositAmount:          1 * 1e9,
	MaxEffectiveBalance:       32 * 1e9,
	MinActivationBalance:      32 * 1e9,
	EffectiveBalanceIncrement: 1 * 1e9,
	EjectionBalance:           16 * 1e9,

	// Registry limits.
	ValidatorRegistryLimit: fieldparams.ValidatorRegistryLimit,
	BuilderRegistryLimit:   fieldparams.BuilderRegistryLimit,

	// Withdrawal processing.
	MaxWithdrawalsPerPayload:              fieldparams.MaxWithdrawalsPerPayload,
	MaxValidatorsPerWithdrawalsSweep:      16384,
	MaxPendingPartialsPerWithdrawalsSweep: 8,
	MinValidatorWithdrawabilityDelay:      256,

	// Payload timeliness committee.
	PtcSize:                             fieldparams.PTCSize,
	PayloadAttestationQuorumNumerator:   6,
	PayloadAttestationQuorumDenominator: 10,
	MaxPayloadAttestations:              4,
	MaxBlobCommitmentsPerBlock:          fieldparams.MaxBlobCommitmentsPerBlock,

	// Fork choice.
	ProposerScoreBoost: 40,
	IntervalsPerSlot:   4,

	// Signature domains.
	DomainBeaconProposer: [4]byte{0x00, 0x00, 0x00, 0x00},
	DomainBeaconAttester: [4]byte{0x01, 0x00, 0x00, 0x00},
	DomainRandao:         [4]byte{0x02, 0x00, 0x00, 0x00},
	DomainBeaconBuilder:  [4]byte{0x1b, 0x00, 0x00, 0x00},
	DomainPtcAttester:    [4]byte{0x0c, 0x00, 0x00, 0x00},

	// Withdrawal credential prefixes.
	BLSWithdrawalPrefixByte:         byte(0),
	ETH1AddressWithdrawalPrefixByte: byte(1),
	BuilderWithdrawalPrefixByte:     byte(3),

	// Fork schedule.
	GenesisForkVersion: []byte{0, 0, 0, 0},
	GloasForkVersion:   []byte{8, 0, 0, 0},
	GloasForkEpoch:     types.FarFutureEpoch,

	ZeroHash:          [32]byte{},
	InfiniteSignature: infiniteSignature,
}
