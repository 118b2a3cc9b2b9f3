// Package primitives defines the consensus-level typed integers shared by
// every component of the chain: slots, epochs, validator and builder
// indices, balances in Gwei and payload timeliness statuses.
package primitives

import (
	"math"

	"github.com/pkg/errors"
)

// Slot represents a single slot.
type Slot uint64

// Epoch represents a single epoch.
type Epoch uint64

var ErrMulOverflow = errors.New("multiplication overflows")
var ErrAddOverflow = errors.New("addition overflows")
var ErrSubUnderflow = errors.New("subtraction underflow")

// Mul multiplies slot by x with overflow check.
func (s Slot) Mul(x uint64) Slot {
	res, err := s.SafeMul(x)
	if err != nil {
		panic(err.Error())
	}
	return res
}

// SafeMul multiplies slot by x, returning an error on overflow.
func (s Slot) SafeMul(x uint64) (Slot, error) {
	if s == 0 || x == 0 {
		return 0, nil
	}
	res := uint64(s) * x
	if res/x != uint64(s) {
		return 0, ErrMulOverflow
	}
	return Slot(res), nil
}

// Add delta to the slot with overflow check.
func (s Slot) Add(x uint64) Slot {
	res, err := s.SafeAdd(x)
	if err != nil {
		panic(err.Error())
	}
	return res
}

// SafeAdd adds delta to the slot, returning an error on overflow.
func (s Slot) SafeAdd(x uint64) (Slot, error) {
	res := uint64(s) + x
	if res < uint64(s) {
		return 0, ErrAddOverflow
	}
	return Slot(res), nil
}

// Sub subtracts delta from the slot with underflow check.
func (s Slot) Sub(x uint64) Slot {
	res, err := s.SafeSub(x)
	if err != nil {
		panic(err.Error())
	}
	return res
}

// SafeSub subtracts delta from the slot, returning an error on underflow.
func (s Slot) SafeSub(x uint64) (Slot, error) {
	if uint64(s) < x {
		return 0, ErrSubUnderflow
	}
	return s - Slot(x), nil
}

// Div divides the slot by x.
func (s Slot) Div(x uint64) Slot {
	if x == 0 {
		panic("divbyzero")
	}
	return s / Slot(x)
}

// Mod returns the remainder of the slot divided by x.
func (s Slot) Mod(x uint64) Slot {
	if x == 0 {
		panic("divbyzero")
	}
	return s % Slot(x)
}

// ModSlot returns the remainder of the slot divided by another slot.
func (s Slot) ModSlot(x Slot) Slot {
	return s.Mod(uint64(x))
}

// MaxSlot returns the larger of the two slots.
func MaxSlot(a, b Slot) Slot {
	if a > b {
		return a
	}
	return b
}

// FarFutureSlot is the maximum representable slot.
const FarFutureSlot = Slot(math.MaxUint64)

// FarFutureEpoch is the maximum representable epoch, used to mark a
// validator or builder that has not been scheduled to exit.
const FarFutureEpoch = Epoch(math.MaxUint64)
