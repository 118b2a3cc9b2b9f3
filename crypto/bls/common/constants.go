package common

import "github.com/pkg/errors"

// BLSSecretKeyLength is the expected length of a serialized secret key.
const BLSSecretKeyLength = 32

// BLSPubkeyLength is the expected length of a serialized public key.
const BLSPubkeyLength = 48

// BLSSignatureLength is the expected length of a serialized signature.
const BLSSignatureLength = 96

// ZeroSecretKey represents a zero secret key.
var ZeroSecretKey = [32]byte{}

// InfinitePublicKey represents an infinite public key (G1 point at infinity).
var InfinitePublicKey = [BLSPubkeyLength]byte{0xC0}

// InfiniteSignature represents an infinite signature (G2 point at infinity).
var InfiniteSignature = [BLSSignatureLength]byte{0xC0}

// ErrZeroKey describes an error due to a zero secret key.
var ErrZeroKey = errors.New("received secret key is zero")

// ErrSecretUnmarshal describes an error which happens during unmarshalling
// a secret key.
var ErrSecretUnmarshal = errors.New("could not unmarshal bytes into secret key")

// ErrInfinitePubKey describes an error due to an infinite public key.
var ErrInfinitePubKey = errors.New("received an infinite public key")
