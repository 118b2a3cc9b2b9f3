// Package blockchain glues the ePBS state transition to fork choice: blocks
// and envelopes received from the network mutate a copy of the head state,
// and only a fully validated result is swapped in and reported to fork
// choice.
package blockchain

import (
	"context"
	"sync"

	"github.com/gloaslabs/gloas/beacon-chain/forkchoice/gloas"
	"github.com/gloaslabs/gloas/beacon-chain/state"
)

// Service represents a service that handles the internal logic of managing
// the full consensus chain.
type Service struct {
	ctx         context.Context
	cancel      context.CancelFunc
	headLock    sync.RWMutex
	headState   *state.BeaconState
	headRoot    [32]byte
	forkChoicer *gloas.ForkChoice
	genesisTime uint64
}

// Option applies a configuration to the service.
type Option func(*Service)

// WithForkChoicer sets the fork choice store the service reports to.
func WithForkChoicer(f *gloas.ForkChoice) Option {
	return func(s *Service) {
		s.forkChoicer = f
	}
}

// WithGenesisState anchors the service at the given state.
func WithGenesisState(st *state.BeaconState, root [32]byte) Option {
	return func(s *Service) {
		s.headState = st
		s.headRoot = root
		s.genesisTime = st.GenesisTime()
	}
}

// New instantiates the blockchain service.
func New(ctx context.Context, opts ...Option) (*Service, error) {
	ctx, cancel := context.WithCancel(ctx)
	s := &Service{
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.headState == nil {
		cancel()
		return nil, state.ErrNilState
	}
	if s.forkChoicer == nil {
		s.forkChoicer = gloas.New(s.genesisTime, s.headState.Slot(), s.headRoot, s.headState.LatestBlockHash())
	}
	return s, nil
}

// Stop the blockchain service.
func (s *Service) Stop() {
	s.cancel()
}

// HeadState returns a copy of the current head state.
func (s *Service) HeadState() *state.BeaconState {
	s.headLock.RLock()
	defer s.headLock.RUnlock()

	return s.headState.Copy()
}

// HeadRoot returns the current head block root.
func (s *Service) HeadRoot() [32]byte {
	s.headLock.RLock()
	defer s.headLock.RUnlock()

	return s.headRoot
}

// ForkChoicer exposes the fork choice store for duty queries.
func (s *Service) ForkChoicer() *gloas.ForkChoice {
	return s.forkChoicer
}
