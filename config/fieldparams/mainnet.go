package field_params

const (
	Preset                         = "mainnet"
	RootLength                     = 32            // RootLength defines the byte length of a Merkle root.
	BLSSignatureLength             = 96            // BLSSignatureLength defines the byte length of a BLSSignature.
	BLSPubkeyLength                = 48            // BLSPubkeyLength defines the byte length of a BLSPubkey.
	FeeRecipientLength             = 20            // FeeRecipientLength defines the byte length of a fee recipient.
	VersionLength                  = 4             // VersionLength defines the byte length of a fork version number.
	SlotsPerEpoch                  = 32            // SlotsPerEpoch defines the number of slots per epoch.
	RandaoMixesLength              = 65536         // EPOCHS_PER_HISTORICAL_VECTOR
	ValidatorRegistryLimit         = 1099511627776 // VALIDATOR_REGISTRY_LIMIT
	BuilderRegistryLimit           = 1099511627776 // BUILDER_REGISTRY_LIMIT
	PTCSize                        = 512           // PTCSize defines the payload timeliness committee size.
	MaxWithdrawalsPerPayload       = 16            // MaxWithdrawalsPerPayload defines the maximum number of withdrawals in a payload.
	MaxBlobCommitmentsPerBlock     = 4096          // MaxBlobCommitmentsPerBlock defines the theoretical limit of blobs in a block.
	BuilderPendingPaymentsLength   = 64            // 2 * SLOTS_PER_EPOCH, the payment ring buffer length.
	PendingPartialWithdrawalsLimit = 134217728     // PENDING_PARTIAL_WITHDRAWALS_LIMIT
	BuilderPendingWithdrawalsLimit = 1048576       // BUILDER_PENDING_WITHDRAWALS_LIMIT
)
