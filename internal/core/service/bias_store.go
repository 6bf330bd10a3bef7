package service

import (
	"context"
	"sync"
	"time"

	"github.com/neobobkrause/vicente-energy/internal/core/domain"
	"github.com/neobobkrause/vicente-energy/internal/core/port"

	"go.uber.org/zap"
)

const defaultWriteTimeout = 5 * time.Second

// BiasStore owns the single BiasState instance of an installation and
// serializes every durable write. Mutations go through the bias learner;
// everything else reads through the accessors.
type BiasStore struct {
	store        port.StateStore
	writeTimeout time.Duration
	logger       *zap.Logger

	mu    sync.Mutex
	state domain.BiasState
}

func NewBiasStore(store port.StateStore, writeTimeout time.Duration, logger *zap.Logger) *BiasStore {
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	return &BiasStore{
		store:        store,
		writeTimeout: writeTimeout,
		logger:       logger,
	}
}

// Load reads the persisted state once at startup. A missing record means
// first run: all biases zero, histories empty.
func (s *BiasStore) Load(ctx context.Context) error {
	stored, err := s.store.Load(ctx)
	if err != nil {
		return &domain.PersistenceError{Op: "load", Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if stored == nil {
		s.state = domain.BiasState{}
		s.logger.Info("no stored bias state, starting with defaults")
		return nil
	}
	s.state = *stored
	s.logger.Info("bias state loaded",
		zap.Float64("solar_bias", stored.SolarBias),
		zap.Float64("load_bias", stored.LoadBias),
		zap.Float64("session_bias", stored.SessionBias))
	return nil
}

// State returns a copy of the current state. Histories are copied so the
// caller cannot alias the owned slices.
func (s *BiasStore) State() domain.BiasState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyState(s.state)
}

func (s *BiasStore) SolarBias() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SolarBias
}

func (s *BiasStore) LoadBias() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.LoadBias
}

func (s *BiasStore) SessionBias() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SessionBias
}

func (s *BiasStore) LastRawSessionKWh() *float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.LastRawSessionKWh == nil {
		return nil
	}
	v := *s.state.LastRawSessionKWh
	return &v
}

func (s *BiasStore) bias(kind domain.ForecastKind) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Bias(kind)
}

// SaveLastSession records the most recent completed session's usage.
func (s *BiasStore) SaveLastSession(ctx context.Context, kwh float64) error {
	return s.applyAndSave(ctx, func(st *domain.BiasState) {
		st.LastSessionKWh = kwh
	})
}

// applyAndSave mutates the state and persists it write-through. The write
// is bounded by the configured timeout and serialized with any other write.
// On failure the in-memory state is rolled back to its pre-mutation value.
func (s *BiasStore) applyAndSave(ctx context.Context, mutate func(*domain.BiasState)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := copyState(s.state)
	mutate(&s.state)

	wctx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()
	if err := s.store.Save(wctx, copyState(s.state)); err != nil {
		s.state = prev
		return &domain.PersistenceError{Op: "save", Err: err}
	}
	return nil
}

func copyState(st domain.BiasState) domain.BiasState {
	out := st
	if st.LastRawSessionKWh != nil {
		v := *st.LastRawSessionKWh
		out.LastRawSessionKWh = &v
	}
	out.SessionHistory = append([]float64(nil), st.SessionHistory...)
	out.SolarErrors = append([]float64(nil), st.SolarErrors...)
	out.LoadErrors = append([]float64(nil), st.LoadErrors...)
	return out
}
