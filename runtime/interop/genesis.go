// Package interop generates deterministic genesis material for local
// devnets and tests.
package interop

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/gloaslabs/gloas/beacon-chain/state"
	"github.com/gloaslabs/gloas/config/params"
	"github.com/gloaslabs/gloas/consensus-types/epbs"
	"github.com/gloaslabs/gloas/consensus-types/primitives"
	"github.com/gloaslabs/gloas/consensus-types/validator"
	"github.com/gloaslabs/gloas/crypto/bls"
	"github.com/gloaslabs/gloas/crypto/hash"
)

// DeterministicallyGenerateKeys returns BLS secret keys derived from the
// index range [offset, offset+count). The same range always yields the same
// keys, so every node of a devnet agrees on the registry.
func DeterministicallyGenerateKeys(offset, count uint64) ([]bls.SecretKey, error) {
	keys := make([]bls.SecretKey, 0, count)
	for i := offset; i < offset+count; i++ {
		seed := make([]byte, 40)
		binary.LittleEndian.PutUint64(seed, i)
		// Rejection sample until the hash lands inside the curve order.
		for nonce := uint64(0); ; nonce++ {
			binary.LittleEndian.PutUint64(seed[32:], nonce)
			h := hash.Hash(seed)
			key, err := bls.SecretKeyFromBytes(h[:])
			if err == nil {
				keys = append(keys, key)
				break
			}
			if nonce > 255 {
				return nil, errors.Wrapf(err, "could not derive key for index %d", i)
			}
		}
	}
	return keys, nil
}

// GenerateGenesisState builds a deterministic genesis beacon state with the
// requested numbers of validators and builders. Validators use execution
// withdrawal credentials at their full effective balance; builders carry the
// builder credential prefix and a MaxEffectiveBalance starting balance.
func GenerateGenesisState(genesisTime, numValidators, numBuilders uint64) (*state.BeaconState, []bls.SecretKey, error) {
	cfg := params.BeaconConfig()
	keys, err := DeterministicallyGenerateKeys(0, numValidators+numBuilders)
	if err != nil {
		return nil, nil, err
	}

	validators := make([]*validator.Validator, numValidators)
	balances := make([]primitives.Gwei, numValidators)
	for i := uint64(0); i < numValidators; i++ {
		pub := keys[i].PublicKey().Marshal()
		creds := withdrawalCredentials(cfg.ETH1AddressWithdrawalPrefixByte, pub)
		validators[i] = &validator.Validator{
			PublicKey:                  pub,
			WithdrawalCredentials:      creds,
			EffectiveBalance:           primitives.Gwei(cfg.MaxEffectiveBalance),
			ActivationEligibilityEpoch: cfg.GenesisEpoch,
			ActivationEpoch:            cfg.GenesisEpoch,
			ExitEpoch:                  cfg.FarFutureEpoch,
			WithdrawableEpoch:          cfg.FarFutureEpoch,
		}
		balances[i] = primitives.Gwei(cfg.MaxEffectiveBalance)
	}

	builders := make([]*epbs.Builder, numBuilders)
	for i := uint64(0); i < numBuilders; i++ {
		pub := keys[numValidators+i].PublicKey().Marshal()
		builders[i] = &epbs.Builder{
			PublicKey:             pub,
			WithdrawalCredentials: withdrawalCredentials(cfg.BuilderWithdrawalPrefixByte, pub),
			Balance:               primitives.Gwei(cfg.MaxEffectiveBalance),
			DepositEpoch:          cfg.GenesisEpoch,
			WithdrawableEpoch:     cfg.FarFutureEpoch,
		}
	}

	st := state.New(state.Options{
		GenesisTime:           genesisTime,
		GenesisValidatorsRoot: genesisValidatorsRoot(validators),
		Slot:                  cfg.GenesisSlot,
		Validators:            validators,
		Balances:              balances,
		Builders:              builders,
	})
	return st, keys, nil
}

// withdrawalCredentials derives 32-byte credentials from a public key: the
// prefix byte, eleven zero bytes, then the last 20 bytes of the key's hash
// standing in for an execution address.
func withdrawalCredentials(prefix byte, pubkey []byte) []byte {
	h := hash.Hash(pubkey)
	creds := make([]byte, 32)
	creds[0] = prefix
	copy(creds[12:], h[12:])
	return creds
}

func genesisValidatorsRoot(validators []*validator.Validator) [32]byte {
	var acc [32]byte
	for _, v := range validators {
		root, err := v.HashTreeRoot()
		if err != nil {
			continue
		}
		acc = hash.Hash(append(acc[:], root[:]...))
	}
	return acc
}
