package service

import (
	"context"
	"errors"
	"testing"

	"github.com/neobobkrause/vicente-energy/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore is an in-memory StateStore for tests. Set failSave to make
// every Save call fail.
type memStore struct {
	state    *domain.BiasState
	saves    int
	failSave error
}

func (m *memStore) Load(ctx context.Context) (*domain.BiasState, error) {
	if m.state == nil {
		return nil, nil
	}
	st := *m.state
	return &st, nil
}

func (m *memStore) Save(ctx context.Context, state domain.BiasState) error {
	if m.failSave != nil {
		return m.failSave
	}
	m.state = &state
	m.saves++
	return nil
}

func newTestBiasStore(t *testing.T, backing *memStore) *BiasStore {
	t.Helper()
	store := NewBiasStore(backing, 0, zap.NewNop())
	require.NoError(t, store.Load(context.Background()))
	return store
}

func TestBiasStoreFirstRunDefaults(t *testing.T) {
	assert := assert.New(t)

	store := newTestBiasStore(t, &memStore{})

	assert.Zero(store.SolarBias())
	assert.Zero(store.LoadBias())
	assert.Zero(store.SessionBias())
	assert.Nil(store.LastRawSessionKWh())
	assert.Empty(store.State().SessionHistory)
}

func TestBiasStoreLoadsPersistedState(t *testing.T) {
	assert := assert.New(t)

	backing := &memStore{state: &domain.BiasState{
		SolarBias:   0.12,
		LoadBias:    -0.05,
		SessionBias: 0.3,
	}}
	store := newTestBiasStore(t, backing)

	assert.InDelta(0.12, store.SolarBias(), 1e-9)
	assert.InDelta(-0.05, store.LoadBias(), 1e-9)
	assert.InDelta(0.3, store.SessionBias(), 1e-9)
}

func TestBiasStoreStateCopyIsolation(t *testing.T) {
	assert := assert.New(t)

	backing := &memStore{state: &domain.BiasState{
		SessionHistory: []float64{1.5, 2.5},
	}}
	store := newTestBiasStore(t, backing)

	snapshot := store.State()
	snapshot.SessionHistory[0] = 99.0
	snapshot.SolarBias = 99.0

	assert.InDelta(1.5, store.State().SessionHistory[0], 1e-9)
	assert.Zero(store.SolarBias())
}

func TestBiasStoreSaveLastSession(t *testing.T) {
	assert := assert.New(t)

	backing := &memStore{}
	store := newTestBiasStore(t, backing)

	err := store.SaveLastSession(context.Background(), 7.25)
	assert.NoError(err)
	assert.Equal(1, backing.saves)
	assert.InDelta(7.25, backing.state.LastSessionKWh, 1e-9)
}

func TestBiasStoreRollbackOnFailedSave(t *testing.T) {
	assert := assert.New(t)

	backing := &memStore{failSave: errors.New("disk full")}
	store := newTestBiasStore(t, backing)

	err := store.SaveLastSession(context.Background(), 7.25)
	assert.Error(err)

	var perr *domain.PersistenceError
	assert.True(errors.As(err, &perr))
	assert.Equal("save", perr.Op)
	assert.Zero(store.State().LastSessionKWh)
}
