package epbs_test

import (
	"testing"

	"github.com/gloaslabs/gloas/consensus-types/epbs"
	"github.com/gloaslabs/gloas/consensus-types/primitives"
	"github.com/gloaslabs/gloas/encoding/bytesutil"
	"github.com/gloaslabs/gloas/testing/require"
)

func TestSignedExecutionPayloadEnvelope_SSZRoundTrip(t *testing.T) {
	signed := &epbs.SignedExecutionPayloadEnvelope{
		Message: &epbs.ExecutionPayloadEnvelope{
			Payload: &epbs.ExecutionPayload{
				ParentHash:   bytesutil.PadTo([]byte("parent hash"), 32),
				FeeRecipient: bytesutil.PadTo([]byte("fee recipient"), 20),
				StateRoot:    bytesutil.PadTo([]byte("exec state root"), 32),
				ReceiptsRoot: bytesutil.PadTo([]byte("receipts root"), 32),
				PrevRandao:   bytesutil.PadTo([]byte("prev randao"), 32),
				BlockNumber:  84,
				GasLimit:     30_000_000,
				GasUsed:      21_000,
				Timestamp:    1700000000,
				BlockHash:    bytesutil.PadTo([]byte("block hash"), 32),
				Transactions: [][]byte{
					{0x02, 0xf8, 0x6f},
					bytesutil.PadTo([]byte("transfer"), 120),
				},
				Withdrawals: []*epbs.Withdrawal{
					{Index: 7, ValidatorIndex: 3, Address: bytesutil.PadTo([]byte("addr one"), 20), Amount: 1e9},
					{Index: 8, ValidatorIndex: 12, Address: bytesutil.PadTo([]byte("addr two"), 20), Amount: 5e8},
				},
			},
			BuilderIndex:    primitives.BuilderIndexFromRegistry(2),
			BeaconBlockRoot: bytesutil.PadTo([]byte("beacon block root"), 32),
			Slot:            19,
			BlobKzgCommitments: [][]byte{
				bytesutil.PadTo([]byte("commitment"), 48),
			},
			StateRoot: bytesutil.PadTo([]byte("post state root"), 32),
		},
		Signature: bytesutil.PadTo([]byte("builder signature"), 96),
	}

	encoded, err := signed.MarshalSSZ()
	require.NoError(t, err)
	require.Equal(t, signed.SizeSSZ(), len(encoded))

	decoded := &epbs.SignedExecutionPayloadEnvelope{}
	require.NoError(t, decoded.UnmarshalSSZ(encoded))
	require.DeepEqual(t, signed, decoded)

	wantRoot, err := signed.Message.HashTreeRoot()
	require.NoError(t, err)
	gotRoot, err := decoded.Message.HashTreeRoot()
	require.NoError(t, err)
	require.Equal(t, wantRoot, gotRoot)

	reencoded, err := decoded.MarshalSSZ()
	require.NoError(t, err)
	require.DeepEqual(t, encoded, reencoded)
}

func TestExecutionPayloadEnvelope_UnmarshalSSZ_BadOffset(t *testing.T) {
	envelope := &epbs.ExecutionPayloadEnvelope{
		Payload:         &epbs.ExecutionPayload{ParentHash: make([]byte, 32), FeeRecipient: make([]byte, 20), StateRoot: make([]byte, 32), ReceiptsRoot: make([]byte, 32), PrevRandao: make([]byte, 32), BlockHash: make([]byte, 32)},
		BeaconBlockRoot: make([]byte, 32),
		StateRoot:       make([]byte, 32),
	}
	encoded, err := envelope.MarshalSSZ()
	require.NoError(t, err)

	// Truncating below the fixed part must fail cleanly.
	short := encoded[:40]
	require.NotNil(t, new(epbs.ExecutionPayloadEnvelope).UnmarshalSSZ(short))

	// A payload offset pointing past the buffer must fail cleanly.
	corrupted := append([]byte{}, encoded...)
	corrupted[52] = 0xff
	require.NotNil(t, new(epbs.ExecutionPayloadEnvelope).UnmarshalSSZ(corrupted))
}
