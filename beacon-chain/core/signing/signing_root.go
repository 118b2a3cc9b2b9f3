// Package signing computes signing roots and verifies signatures over
// consensus objects.
package signing

import (
	"github.com/pkg/errors"

	"github.com/gloaslabs/gloas/crypto/bls"
	"github.com/gloaslabs/gloas/encoding/ssz"
)

// ErrSigFailedToVerify returns when a signature of a block object(ex attestation), does not verify.
var ErrSigFailedToVerify = errors.New("signature did not verify")

// ErrNilSignedObject is returned when the object to verify is nil.
var ErrNilSignedObject = errors.New("nil signed object")

// sszRooter is satisfied by every consensus object that can be signed.
type sszRooter interface {
	HashTreeRoot() ([32]byte, error)
}

// ComputeDomain returns the domain version for BLS private key to sign and verify.
//
// Spec pseudocode definition:
//
//	def compute_domain(domain_type: DomainType, fork_version: Version=None, genesis_validators_root: Root=None) -> Domain:
//	  """
//	  Return the domain for the ``domain_type`` and ``fork_version``.
//	  """
//	  fork_data_root = compute_fork_data_root(fork_version, genesis_validators_root)
//	  return Domain(domain_type + fork_data_root[:28])
func ComputeDomain(domainType [4]byte, forkVersion, genesisValidatorsRoot []byte) ([]byte, error) {
	forkDataRoot, err := computeForkDataRoot(forkVersion, genesisValidatorsRoot)
	if err != nil {
		return nil, err
	}
	domain := make([]byte, 32)
	copy(domain, domainType[:])
	copy(domain[4:], forkDataRoot[:28])
	return domain, nil
}

// computeForkDataRoot derives the root of the fork data container holding the
// current version and genesis validators root.
func computeForkDataRoot(version, root []byte) ([32]byte, error) {
	var versionChunk [32]byte
	copy(versionChunk[:], version)
	var rootChunk [32]byte
	copy(rootChunk[:], root)
	return ssz.Merkleize([][32]byte{versionChunk, rootChunk}, 2)
}

// ComputeSigningRoot computes the root of the object by calculating the hash
// tree root of the signing data with the given domain.
//
// Spec pseudocode definition:
//
//	def compute_signing_root(ssz_object: SSZObject, domain: Domain) -> Root:
//	  """
//	  Return the signing root for the corresponding signing data.
//	  """
//	  return hash_tree_root(SigningData(
//	      object_root=hash_tree_root(ssz_object),
//	      domain=domain,
//	  ))
func ComputeSigningRoot(object sszRooter, domain []byte) ([32]byte, error) {
	if object == nil {
		return [32]byte{}, ErrNilSignedObject
	}
	objRoot, err := object.HashTreeRoot()
	if err != nil {
		return [32]byte{}, err
	}
	return ComputeSigningRootForRoot(objRoot, domain)
}

// ComputeSigningRootForRoot works the same as ComputeSigningRoot but is used
// when the object root is already known.
func ComputeSigningRootForRoot(objRoot [32]byte, domain []byte) ([32]byte, error) {
	var domainChunk [32]byte
	copy(domainChunk[:], domain)
	return ssz.Merkleize([][32]byte{objRoot, domainChunk}, 2)
}

// VerifySigningRoot verifies the signing root of an object given its public key, signature and domain.
func VerifySigningRoot(object sszRooter, pub, signature, domain []byte) error {
	root, err := ComputeSigningRoot(object, domain)
	if err != nil {
		return errors.Wrap(err, "could not compute signing root")
	}
	publicKey, err := bls.PublicKeyFromBytes(pub)
	if err != nil {
		return errors.Wrap(err, "could not convert bytes to public key")
	}
	sig, err := bls.SignatureFromBytes(signature)
	if err != nil {
		return errors.Wrap(err, "could not convert bytes to signature")
	}
	if !sig.Verify(publicKey, root[:]) {
		return ErrSigFailedToVerify
	}
	return nil
}

// VerifyAggregateSigningRoot verifies the signing root of an object against
// an aggregate signature over the given public keys.
func VerifyAggregateSigningRoot(object sszRooter, pubKeys [][]byte, signature, domain []byte) error {
	root, err := ComputeSigningRoot(object, domain)
	if err != nil {
		return errors.Wrap(err, "could not compute signing root")
	}
	keys := make([]bls.PublicKey, len(pubKeys))
	for i, pk := range pubKeys {
		keys[i], err = bls.PublicKeyFromBytes(pk)
		if err != nil {
			return errors.Wrap(err, "could not convert bytes to public key")
		}
	}
	sig, err := bls.SignatureFromBytes(signature)
	if err != nil {
		return errors.Wrap(err, "could not convert bytes to signature")
	}
	if !sig.FastAggregateVerify(keys, root) {
		return ErrSigFailedToVerify
	}
	return nil
}
