package epbs

import (
	"context"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"github.com/gloaslabs/gloas/beacon-chain/state"
	"github.com/gloaslabs/gloas/config/params"
	"github.com/gloaslabs/gloas/consensus-types/epbs"
	"github.com/gloaslabs/gloas/consensus-types/primitives"
	"github.com/gloaslabs/gloas/time/slots"
)

// expectedWithdrawals is the read-only projection of one slot's withdrawal
// sweep. ProcessWithdrawals applies it; the envelope processor only compares
// roots against it.
type expectedWithdrawals struct {
	withdrawals []*epbs.Withdrawal
	debits      []debit

	// Queue consumption and cursor advances to apply with the sweep.
	builderWithdrawalsConsumed int
	partialWithdrawalsConsumed int
	nextValidatorCursor        primitives.ValidatorIndex
	nextBuilderCursor          uint64
}

// debit records which registry a withdrawal draws from. Builder withdrawals
// reuse the wire-level validator index field, so the distinction has to be
// carried alongside.
type debit struct {
	builder       bool
	registryIndex uint64
	amount        primitives.Gwei
}

// ExpectedWithdrawals computes the withdrawal set for the state's current
// slot without mutating state. Four phases run in order, each capped so the
// next phase always has headroom:
//
//	1. builder pending withdrawals   (max MAX_WITHDRAWALS_PER_PAYLOAD - 1)
//	2. pending partial withdrawals   (max MAX_PENDING_PARTIALS_PER_WITHDRAWALS_SWEEP
//	                                  entries, within MAX_WITHDRAWALS_PER_PAYLOAD - 1)
//	3. builder sweep                 (max MAX_WITHDRAWALS_PER_PAYLOAD - 1)
//	4. validator sweep               (max MAX_WITHDRAWALS_PER_PAYLOAD)
func ExpectedWithdrawals(st *state.BeaconState) (*expectedWithdrawals, error) {
	if st == nil {
		return nil, state.ErrNilState
	}
	cfg := params.BeaconConfig()
	max := cfg.MaxWithdrawalsPerPayload
	epoch := slots.ToEpoch(st.Slot())

	expected := &expectedWithdrawals{}
	withdrawalIndex := st.NextWithdrawalIndex()

	// Amounts already scheduled for a validator earlier in this sweep, so
	// the final phase never withdraws the same gwei twice.
	scheduled := make(map[primitives.ValidatorIndex]primitives.Gwei)

	// Phase 1: settled builder payments.
	for _, w := range st.BuilderPendingWithdrawals() {
		if uint64(len(expected.withdrawals)) >= max-1 {
			break
		}
		if w.WithdrawableEpoch > epoch {
			break
		}
		balance, err := st.BuilderBalance(w.BuilderIndex)
		if err != nil {
			return nil, err
		}
		amount := w.Amount
		if balance < amount {
			amount = balance
		}
		if amount > 0 {
			expected.withdrawals = append(expected.withdrawals, &epbs.Withdrawal{
				Index:          withdrawalIndex,
				ValidatorIndex: primitives.ValidatorIndex(w.BuilderIndex.RegistryIndex()),
				Address:        w.FeeRecipient,
				Amount:         amount,
			})
			expected.debits = append(expected.debits, debit{builder: true, registryIndex: w.BuilderIndex.RegistryIndex(), amount: amount})
			withdrawalIndex++
		}
		expected.builderWithdrawalsConsumed++
	}

	// Phase 2: validator partial withdrawals.
	for _, w := range st.PendingPartialWithdrawals() {
		if uint64(expected.partialWithdrawalsConsumed) >= cfg.MaxPendingPartialsPerWithdrawalsSweep {
			break
		}
		if uint64(len(expected.withdrawals)) >= max-1 {
			break
		}
		if w.WithdrawableEpoch > epoch {
			break
		}
		balance, err := st.BalanceAtIndex(w.ValidatorIndex)
		if err != nil {
			return nil, err
		}
		minBalance := primitives.Gwei(cfg.MinActivationBalance)
		if balance > minBalance {
			amount := balance - minBalance
			if amount > w.Amount {
				amount = w.Amount
			}
			v, err := st.ValidatorAtIndex(w.ValidatorIndex)
			if err != nil {
				return nil, err
			}
			expected.withdrawals = append(expected.withdrawals, &epbs.Withdrawal{
				Index:          withdrawalIndex,
				ValidatorIndex: w.ValidatorIndex,
				Address:        withdrawalAddress(v.WithdrawalCredentials),
				Amount:         amount,
			})
			expected.debits = append(expected.debits, debit{registryIndex: uint64(w.ValidatorIndex), amount: amount})
			scheduled[w.ValidatorIndex] += amount
			withdrawalIndex++
		}
		expected.partialWithdrawalsConsumed++
	}

	// Phase 3: round-robin sweep over exited builders.
	numBuilders := st.NumBuilders()
	expected.nextBuilderCursor = st.NextWithdrawalBuilderIndex()
	if numBuilders > 0 {
		cursor := st.NextWithdrawalBuilderIndex()
		for scanned := uint64(0); scanned < numBuilders; scanned++ {
			if uint64(len(expected.withdrawals)) >= max-1 {
				break
			}
			idx := primitives.BuilderIndexFromRegistry(cursor)
			builder, err := st.BuilderAtIndex(idx)
			if err != nil {
				return nil, err
			}
			if builder.IsWithdrawable(epoch) && builder.Balance > 0 {
				pending := st.PendingPaymentsForBuilder(idx) + st.PendingWithdrawalsForBuilder(idx)
				if builder.Balance > pending {
					amount := builder.Balance - pending
					expected.withdrawals = append(expected.withdrawals, &epbs.Withdrawal{
						Index:          withdrawalIndex,
						ValidatorIndex: primitives.ValidatorIndex(cursor),
						Address:        withdrawalAddress(builder.WithdrawalCredentials),
						Amount:         amount,
					})
					expected.debits = append(expected.debits, debit{builder: true, registryIndex: cursor, amount: amount})
					withdrawalIndex++
				}
			}
			cursor = (cursor + 1) % numBuilders
		}
		expected.nextBuilderCursor = cursor
	}

	// Phase 4: round-robin sweep over the validator registry.
	numValidators := st.NumValidators()
	expected.nextValidatorCursor = st.NextWithdrawalValidatorIndex()
	if numValidators > 0 {
		cursor := uint64(st.NextWithdrawalValidatorIndex())
		bound := cfg.MaxValidatorsPerWithdrawalsSweep
		if bound > numValidators {
			bound = numValidators
		}
		for scanned := uint64(0); scanned < bound; scanned++ {
			if uint64(len(expected.withdrawals)) >= max {
				break
			}
			vIdx := primitives.ValidatorIndex(cursor)
			v, err := st.ValidatorAtIndex(vIdx)
			if err != nil {
				return nil, err
			}
			balance, err := st.BalanceAtIndex(vIdx)
			if err != nil {
				return nil, err
			}
			balance -= scheduled[vIdx]
			if v.WithdrawableEpoch <= epoch && balance > 0 {
				expected.withdrawals = append(expected.withdrawals, &epbs.Withdrawal{
					Index:          withdrawalIndex,
					ValidatorIndex: vIdx,
					Address:        withdrawalAddress(v.WithdrawalCredentials),
					Amount:         balance,
				})
				expected.debits = append(expected.debits, debit{registryIndex: cursor, amount: balance})
				withdrawalIndex++
			} else if v.EffectiveBalance == primitives.Gwei(cfg.MaxEffectiveBalance) && balance > primitives.Gwei(cfg.MaxEffectiveBalance) {
				amount := balance - primitives.Gwei(cfg.MaxEffectiveBalance)
				expected.withdrawals = append(expected.withdrawals, &epbs.Withdrawal{
					Index:          withdrawalIndex,
					ValidatorIndex: vIdx,
					Address:        withdrawalAddress(v.WithdrawalCredentials),
					Amount:         amount,
				})
				expected.debits = append(expected.debits, debit{registryIndex: cursor, amount: amount})
				withdrawalIndex++
			}
			cursor = (cursor + 1) % numValidators
		}
		expected.nextValidatorCursor = primitives.ValidatorIndex(cursor)
	}

	return expected, nil
}

// ExpectedWithdrawalsRoot returns the ssz list root of the withdrawal set
// the next revealed payload must commit to. Used by envelope validation
// without touching state.
func ExpectedWithdrawalsRoot(st *state.BeaconState) ([32]byte, error) {
	expected, err := ExpectedWithdrawals(st)
	if err != nil {
		return [32]byte{}, err
	}
	return epbs.WithdrawalsRoot(expected.withdrawals, params.BeaconConfig().MaxWithdrawalsPerPayload)
}

// ProcessWithdrawals applies one slot's withdrawal sweep: balance decreases,
// queue consumption, and cursor advances. The whole sweep is skipped when the
// parent block's payload never materialized, because no execution state
// existed to compute withdrawals against.
func ProcessWithdrawals(ctx context.Context, st *state.BeaconState) error {
	_, span := trace.StartSpan(ctx, "epbs.ProcessWithdrawals")
	defer span.End()

	if st == nil {
		return state.ErrNilState
	}
	if !st.IsParentBlockFull() {
		return nil
	}

	expected, err := ExpectedWithdrawals(st)
	if err != nil {
		return errors.Wrap(err, "could not compute expected withdrawals")
	}

	for _, d := range expected.debits {
		if d.builder {
			if err := st.DecreaseBuilderBalance(primitives.BuilderIndexFromRegistry(d.registryIndex), d.amount); err != nil {
				return err
			}
			continue
		}
		if err := st.DecreaseBalance(primitives.ValidatorIndex(d.registryIndex), d.amount); err != nil {
			return err
		}
	}

	if expected.builderWithdrawalsConsumed > 0 {
		queue := st.BuilderPendingWithdrawals()
		st.SetBuilderPendingWithdrawals(queue[expected.builderWithdrawalsConsumed:])
	}
	if expected.partialWithdrawalsConsumed > 0 {
		queue := st.PendingPartialWithdrawals()
		st.SetPendingPartialWithdrawals(queue[expected.partialWithdrawalsConsumed:])
	}

	st.SetNextWithdrawalIndex(st.NextWithdrawalIndex() + uint64(len(expected.withdrawals)))
	st.SetNextWithdrawalValidatorIndex(expected.nextValidatorCursor)
	st.SetNextWithdrawalBuilderIndex(expected.nextBuilderCursor)

	root, err := epbs.WithdrawalsRoot(expected.withdrawals, params.BeaconConfig().MaxWithdrawalsPerPayload)
	if err != nil {
		return errors.Wrap(err, "could not compute withdrawals root")
	}
	st.SetLastWithdrawalsRoot(root)
	return nil
}

// withdrawalAddress extracts the execution address from 0x01/0x03 style
// withdrawal credentials.
func withdrawalAddress(credentials []byte) []byte {
	if len(credentials) == 32 {
		return credentials[12:]
	}
	return credentials
}
