package epbs

import (
	"github.com/gloaslabs/gloas/consensus-types/primitives"
	"github.com/gloaslabs/gloas/encoding/bytesutil"
	"github.com/gloaslabs/gloas/encoding/ssz"
)

// Withdrawal is a single entry of the per-slot withdrawal sweep handed to
// the execution layer.
type Withdrawal struct {
	Index          uint64
	ValidatorIndex primitives.ValidatorIndex
	Address        []byte
	Amount         primitives.Gwei
}

// Copy returns a deep copy of the withdrawal.
func (w *Withdrawal) Copy() *Withdrawal {
	if w == nil {
		return nil
	}
	return &Withdrawal{
		Index:          w.Index,
		ValidatorIndex: w.ValidatorIndex,
		Address:        bytesutil.SafeCopyBytes(w.Address),
		Amount:         w.Amount,
	}
}

// HashTreeRoot returns the ssz root of the withdrawal.
func (w *Withdrawal) HashTreeRoot() ([32]byte, error) {
	var addr [32]byte
	copy(addr[:], w.Address)
	fieldRoots := [][32]byte{
		ssz.Uint64Root(w.Index),
		ssz.Uint64Root(uint64(w.ValidatorIndex)),
		addr,
		ssz.Uint64Root(uint64(w.Amount)),
	}
	return ssz.Merkleize(fieldRoots, 4)
}

// WithdrawalsRoot computes the ssz list root of the expected withdrawal set,
// the value the envelope's payload must commit to.
func WithdrawalsRoot(withdrawals []*Withdrawal, limit uint64) ([32]byte, error) {
	roots := make([][32]byte, len(withdrawals))
	for i, w := range withdrawals {
		r, err := w.HashTreeRoot()
		if err != nil {
			return [32]byte{}, err
		}
		roots[i] = r
	}
	root, err := ssz.Merkleize(roots, limit)
	if err != nil {
		return [32]byte{}, err
	}
	return ssz.MixInLength(root, uint64(len(withdrawals))), nil
}

// PendingPartialWithdrawal is a validator-initiated partial withdrawal
// waiting for its withdrawable epoch.
type PendingPartialWithdrawal struct {
	ValidatorIndex    primitives.ValidatorIndex
	Amount            primitives.Gwei
	WithdrawableEpoch primitives.Epoch
}

// Copy returns a copy of the pending partial withdrawal.
func (p *PendingPartialWithdrawal) Copy() *PendingPartialWithdrawal {
	if p == nil {
		return nil
	}
	pp := *p
	return &pp
}

// HashTreeRoot returns the ssz root of the pending partial withdrawal.
func (p *PendingPartialWithdrawal) HashTreeRoot() ([32]byte, error) {
	fieldRoots := [][32]byte{
		ssz.Uint64Root(uint64(p.ValidatorIndex)),
		ssz.Uint64Root(uint64(p.Amount)),
		ssz.Uint64Root(uint64(p.WithdrawableEpoch)),
	}
	return ssz.Merkleize(fieldRoots, 4)
}

// BuilderPendingWithdrawal is a builder payment that cleared quorum and now
// waits in the withdrawal queue.
type BuilderPendingWithdrawal struct {
	FeeRecipient      []byte
	Amount            primitives.Gwei
	BuilderIndex      primitives.BuilderIndex
	WithdrawableEpoch primitives.Epoch
}

// Copy returns a deep copy of the pending withdrawal.
func (b *BuilderPendingWithdrawal) Copy() *BuilderPendingWithdrawal {
	if b == nil {
		return nil
	}
	return &BuilderPendingWithdrawal{
		FeeRecipient:      bytesutil.SafeCopyBytes(b.FeeRecipient),
		Amount:            b.Amount,
		BuilderIndex:      b.BuilderIndex,
		WithdrawableEpoch: b.WithdrawableEpoch,
	}
}

// HashTreeRoot returns the ssz root of the pending withdrawal.
func (b *BuilderPendingWithdrawal) HashTreeRoot() ([32]byte, error) {
	var recipient [32]byte
	copy(recipient[:], b.FeeRecipient)
	fieldRoots := [][32]byte{
		recipient,
		ssz.Uint64Root(uint64(b.Amount)),
		ssz.Uint64Root(uint64(b.BuilderIndex)),
		ssz.Uint64Root(uint64(b.WithdrawableEpoch)),
	}
	return ssz.Merkleize(fieldRoots, 4)
}

// BuilderPendingPayment is a not-yet-settled builder payment accumulating
// payload timeliness weight in the two-epoch ring buffer.
type BuilderPendingPayment struct {
	Weight     primitives.Gwei
	Withdrawal *BuilderPendingWithdrawal
}

// Copy returns a deep copy of the pending payment.
func (b *BuilderPendingPayment) Copy() *BuilderPendingPayment {
	if b == nil {
		return nil
	}
	return &BuilderPendingPayment{
		Weight:     b.Weight,
		Withdrawal: b.Withdrawal.Copy(),
	}
}

// HashTreeRoot returns the ssz root of the pending payment.
func (b *BuilderPendingPayment) HashTreeRoot() ([32]byte, error) {
	withdrawalRoot, err := b.Withdrawal.HashTreeRoot()
	if err != nil {
		return [32]byte{}, err
	}
	fieldRoots := [][32]byte{
		ssz.Uint64Root(uint64(b.Weight)),
		withdrawalRoot,
	}
	return ssz.Merkleize(fieldRoots, 2)
}

// IsEmpty reports whether the ring buffer slot holds no payment.
func (b *BuilderPendingPayment) IsEmpty() bool {
	return b == nil || b.Withdrawal == nil || b.Withdrawal.Amount == 0
}
