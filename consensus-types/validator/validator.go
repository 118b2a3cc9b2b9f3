// Package validator defines the validator registry entry consumed by the
// state transition and the committee selection helpers.
package validator

import (
	"github.com/gloaslabs/gloas/consensus-types/primitives"
	"github.com/gloaslabs/gloas/encoding/bytesutil"
	"github.com/gloaslabs/gloas/encoding/ssz"
)

// Validator is a registry entry for a staked validator.
type Validator struct {
	PublicKey                  []byte
	WithdrawalCredentials      []byte
	EffectiveBalance           primitives.Gwei
	Slashed                    bool
	ActivationEligibilityEpoch primitives.Epoch
	ActivationEpoch            primitives.Epoch
	ExitEpoch                  primitives.Epoch
	WithdrawableEpoch          primitives.Epoch
}

// Copy returns a deep copy of the validator.
func (v *Validator) Copy() *Validator {
	if v == nil {
		return nil
	}
	return &Validator{
		PublicKey:                  bytesutil.SafeCopyBytes(v.PublicKey),
		WithdrawalCredentials:      bytesutil.SafeCopyBytes(v.WithdrawalCredentials),
		EffectiveBalance:           v.EffectiveBalance,
		Slashed:                    v.Slashed,
		ActivationEligibilityEpoch: v.ActivationEligibilityEpoch,
		ActivationEpoch:            v.ActivationEpoch,
		ExitEpoch:                  v.ExitEpoch,
		WithdrawableEpoch:          v.WithdrawableEpoch,
	}
}

// HashTreeRoot returns the ssz root of the validator.
func (v *Validator) HashTreeRoot() ([32]byte, error) {
	pubKeyRoot, err := ssz.Merkleize(ssz.PackBytes(v.PublicKey), 2)
	if err != nil {
		return [32]byte{}, err
	}
	var creds [32]byte
	copy(creds[:], v.WithdrawalCredentials)
	fieldRoots := [][32]byte{
		pubKeyRoot,
		creds,
		ssz.Uint64Root(uint64(v.EffectiveBalance)),
		ssz.BoolRoot(v.Slashed),
		ssz.Uint64Root(uint64(v.ActivationEligibilityEpoch)),
		ssz.Uint64Root(uint64(v.ActivationEpoch)),
		ssz.Uint64Root(uint64(v.ExitEpoch)),
		ssz.Uint64Root(uint64(v.WithdrawableEpoch)),
	}
	return ssz.Merkleize(fieldRoots, 8)
}

// IsActive reports whether the validator is active at the given epoch.
//
// Spec pseudocode definition:
//
//	def is_active_validator(validator: Validator, epoch: Epoch) -> bool:
//	  return validator.activation_epoch <= epoch < validator.exit_epoch
func (v *Validator) IsActive(epoch primitives.Epoch) bool {
	return v.ActivationEpoch <= epoch && epoch < v.ExitEpoch
}
