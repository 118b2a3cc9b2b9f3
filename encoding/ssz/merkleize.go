// Package ssz provides the hash-tree-root helpers consensus types use to
// merkleize themselves according to the Ethereum Simple Serialize
// specification.
package ssz

import (
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/prysmaticlabs/gohashtree"

	"github.com/gloaslabs/gloas/crypto/hash"
)

var errChunkCount = errors.New("merkleizing list that is too large, over limit")

// zeroHashes precomputes the subtree roots of all-zero leaves up to depth 64.
var zeroHashes = func() [65][32]byte {
	var zh [65][32]byte
	for i := 0; i < 64; i++ {
		zh[i+1] = hash.Hash(append(zh[i][:], zh[i][:]...))
	}
	return zh
}()

// Depth retrieves the appropriate tree depth for the provided leaf count.
func Depth(v uint64) uint8 {
	if v <= 1 {
		return 0
	}
	out := uint8(0)
	v--
	for v > 0 {
		v >>= 1
		out++
	}
	return out
}

// Merkleize hashes the given chunks into a single root, padding with zero
// subtrees up to the given limit. The limit bounds the virtual tree size, so
// list roots stay stable as the list grows.
func Merkleize(chunks [][32]byte, limit uint64) ([32]byte, error) {
	if limit > 0 && uint64(len(chunks)) > limit {
		return [32]byte{}, errChunkCount
	}
	if limit == 0 {
		limit = uint64(len(chunks))
	}
	depth := Depth(limit)
	if len(chunks) == 0 {
		return zeroHashes[depth], nil
	}
	layer := make([][32]byte, len(chunks))
	copy(layer, chunks)
	for d := uint8(0); d < depth; d++ {
		if len(layer)%2 == 1 {
			layer = append(layer, zeroHashes[d])
		}
		next := make([][32]byte, len(layer)/2)
		if err := gohashtree.Hash(next, layer); err != nil {
			return [32]byte{}, err
		}
		layer = next
	}
	return layer[0], nil
}

// MerkleizeVector is Merkleize for fixed-length vectors, where the length is
// part of the type and no length mix-in is performed.
func MerkleizeVector(chunks [][32]byte, length uint64) ([32]byte, error) {
	return Merkleize(chunks, length)
}

// MixInLength appends the little-endian serialized length to the root,
// producing the final root of an SSZ list.
func MixInLength(root [32]byte, length uint64) [32]byte {
	var lengthChunk [32]byte
	binary.LittleEndian.PutUint64(lengthChunk[:8], length)
	return hash.Hash(append(root[:], lengthChunk[:]...))
}

// Uint64Root computes the HashTreeRoot of a simple uint64 value.
func Uint64Root(val uint64) [32]byte {
	var root [32]byte
	binary.LittleEndian.PutUint64(root[:8], val)
	return root
}

// BoolRoot computes the HashTreeRoot of a boolean value.
func BoolRoot(b bool) [32]byte {
	var root [32]byte
	if b {
		root[0] = 1
	}
	return root
}

// PackBytes packs the given byte string into 32-byte chunks, padding the
// last chunk with zeroes.
func PackBytes(b []byte) [][32]byte {
	numChunks := (len(b) + 31) / 32
	if numChunks == 0 {
		return [][32]byte{{}}
	}
	chunks := make([][32]byte, numChunks)
	for i := 0; i < numChunks; i++ {
		copy(chunks[i][:], b[i*32:])
	}
	return chunks
}
