// Package epbs holds the consensus types introduced by enshrined
// proposer-builder separation: the builder registry entry, the execution
// payload bid and envelope, payload timeliness attestations and the pending
// payment and withdrawal records settled at epoch boundaries.
package epbs

import (
	"github.com/gloaslabs/gloas/config/params"
	"github.com/gloaslabs/gloas/consensus-types/primitives"
	"github.com/gloaslabs/gloas/encoding/bytesutil"
	"github.com/gloaslabs/gloas/encoding/ssz"
)

// Builder is a registry entry for a payload builder. Builders are created by
// deposits carrying the builder withdrawal credential prefix and are indexed
// densely, with the high bit of the wire index distinguishing them from
// validators.
type Builder struct {
	PublicKey             []byte
	WithdrawalCredentials []byte
	Balance               primitives.Gwei
	DepositEpoch          primitives.Epoch
	WithdrawableEpoch     primitives.Epoch
}

// Copy returns a deep copy of the builder entry.
func (b *Builder) Copy() *Builder {
	if b == nil {
		return nil
	}
	return &Builder{
		PublicKey:             bytesutil.SafeCopyBytes(b.PublicKey),
		WithdrawalCredentials: bytesutil.SafeCopyBytes(b.WithdrawalCredentials),
		Balance:               b.Balance,
		DepositEpoch:          b.DepositEpoch,
		WithdrawableEpoch:     b.WithdrawableEpoch,
	}
}

// IsActive reports whether the builder can back new bids at the given epoch.
// A builder stays active until its withdrawable epoch passes.
func (b *Builder) IsActive(epoch primitives.Epoch) bool {
	return epoch < b.WithdrawableEpoch
}

// IsWithdrawable reports whether the builder's balance can be swept. Once the
// balance reaches zero a withdrawable builder becomes ineligible for reuse.
func (b *Builder) IsWithdrawable(epoch primitives.Epoch) bool {
	return epoch >= b.WithdrawableEpoch
}

// HashTreeRoot returns the ssz root of the builder entry.
func (b *Builder) HashTreeRoot() ([32]byte, error) {
	pubkeyChunks := ssz.PackBytes(b.PublicKey)
	pubkeyRoot, err := ssz.MerkleizeVector(pubkeyChunks, 2)
	if err != nil {
		return [32]byte{}, err
	}
	fieldRoots := [][32]byte{
		pubkeyRoot,
		bytesutil.ToBytes32(b.WithdrawalCredentials),
		ssz.Uint64Root(uint64(b.Balance)),
		ssz.Uint64Root(uint64(b.DepositEpoch)),
		ssz.Uint64Root(uint64(b.WithdrawableEpoch)),
	}
	return ssz.Merkleize(fieldRoots, 8)
}

// HasBuilderWithdrawalCredential reports whether the withdrawal credentials
// carry the builder prefix.
func HasBuilderWithdrawalCredential(creds []byte) bool {
	if len(creds) == 0 {
		return false
	}
	return creds[0] == params.BeaconConfig().BuilderWithdrawalPrefixByte
}
