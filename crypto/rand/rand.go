/*
Package rand defines methods of obtaining random number generators requiring
cryptographically secure randomness. Generators are backed by crypto/rand and
are safe for concurrent use.
*/
package rand

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
	"sync"
)

type source struct{}

var lock sync.RWMutex

// Seed does nothing when crypto/rand is used as source.
func (_ *source) Seed(_ int64) {}

// Int63 returns uniformly-distributed random (as in CSPRNG) int64 value
// within [0, 1<<63) range.
func (_ *source) Int63() int64 {
	return int64(Uint64() & ^uint64(1<<63))
}

// Uint64 returns uniformly-distributed random (as in CSPRNG) uint64 value
// within [0, 1<<64) range.
func (_ *source) Uint64() (val uint64) {
	lock.RLock()
	defer lock.RUnlock()
	if err := binary.Read(rand.Reader, binary.BigEndian, &val); err != nil {
		panic(err)
	}
	return
}

// Uint64 exposes the source's Uint64 at package level.
func Uint64() uint64 {
	var s source
	return s.Uint64()
}

// Generator exposes the methods this package's consumers rely on.
type Generator interface {
	Intn(n int) int
	Uint64() uint64
	Shuffle(n int, swap func(i, j int))
	Read(p []byte) (n int, err error)
}

type secureGenerator struct {
	*mrand.Rand
}

// Read reads cryptographically secure randomness directly from the system
// source, bypassing the math/rand shim.
func (_ secureGenerator) Read(p []byte) (n int, err error) {
	lock.RLock()
	defer lock.RUnlock()
	return rand.Read(p)
}

// NewGenerator returns a new generator that uses random values from
// crypto/rand as a source (cryptographically secure random number generator).
// Panics if crypto/rand input cannot be read.
func NewGenerator() Generator {
	return secureGenerator{mrand.New(&source{})} // #nosec G404 -- excluded
}
