package service

import (
	"context"
	"errors"
	"testing"

	"github.com/neobobkrause/vicente-energy/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestForecastBiasSmoothing(t *testing.T) {
	assert := assert.New(t)

	store := newTestBiasStore(t, &memStore{})
	learner := NewBiasLearner(store, 0.5, zap.NewNop())
	ctx := context.Background()

	// actual 12 on forecast 10: normalized error 0.2
	assert.NoError(learner.UpdateForecastBias(ctx, domain.ForecastSolar, 10, 12))
	assert.InDelta(0.1, store.SolarBias(), 1e-9)

	// actual 8 on forecast 10: error -0.2, smoothed into the prior bias
	assert.NoError(learner.UpdateForecastBias(ctx, domain.ForecastSolar, 10, 8))
	assert.InDelta(-0.05, store.SolarBias(), 1e-9)

	assert.Equal([]float64{0.2, -0.2}, store.State().SolarErrors)
	assert.Zero(store.LoadBias())
}

func TestForecastBiasKindsAreIndependent(t *testing.T) {
	assert := assert.New(t)

	store := newTestBiasStore(t, &memStore{})
	learner := NewBiasLearner(store, 0.3, zap.NewNop())
	ctx := context.Background()

	assert.NoError(learner.UpdateForecastBias(ctx, domain.ForecastLoad, 5, 10))
	assert.InDelta(0.3, store.LoadBias(), 1e-9)
	assert.Zero(store.SolarBias())
	assert.Empty(store.State().SolarErrors)
}

func TestForecastBiasZeroForecastIsNoOp(t *testing.T) {
	assert := assert.New(t)

	backing := &memStore{state: &domain.BiasState{SolarBias: 0.25}}
	store := newTestBiasStore(t, backing)
	learner := NewBiasLearner(store, 0.5, zap.NewNop())

	saves := backing.saves
	assert.NoError(learner.UpdateForecastBias(context.Background(), domain.ForecastSolar, 0, 5))

	assert.InDelta(0.25, store.SolarBias(), 1e-9)
	assert.Equal(saves, backing.saves, "no write on a skipped update")
}

func TestSessionBiasLearning(t *testing.T) {
	assert := assert.New(t)

	store := newTestBiasStore(t, &memStore{})
	learner := NewBiasLearner(store, 0.5, zap.NewNop())
	ctx := context.Background()

	assert.NoError(learner.UpdateSessionBias(ctx, 4, 6))
	first := store.SessionBias()
	assert.InDelta(0.25, first, 1e-9)

	// a second session with different usage must move the bias again
	assert.NoError(learner.UpdateSessionBias(ctx, 4, 3))
	assert.NotEqual(first, store.SessionBias())
	assert.InDelta(0.0, store.SessionBias(), 1e-9)

	assert.Equal([]float64{6, 3}, store.State().SessionHistory)
	last := store.LastRawSessionKWh()
	assert.NotNil(last)
	assert.InDelta(3.0, *last, 1e-9)
}

func TestSessionBiasPinnedOnNonPositiveEstimate(t *testing.T) {
	assert := assert.New(t)

	store := newTestBiasStore(t, &memStore{})
	learner := NewBiasLearner(store, 0.4, zap.NewNop())

	// no usable estimate counts as a full underestimate
	assert.NoError(learner.UpdateSessionBias(context.Background(), 0, 5))
	assert.InDelta(0.4, store.SessionBias(), 1e-9)
}

func TestLearnerRollsBackOnFailedSave(t *testing.T) {
	assert := assert.New(t)

	backing := &memStore{state: &domain.BiasState{SolarBias: 0.1}}
	store := newTestBiasStore(t, backing)
	backing.failSave = errors.New("redis down")
	learner := NewBiasLearner(store, 0.5, zap.NewNop())

	err := learner.UpdateForecastBias(context.Background(), domain.ForecastSolar, 10, 20)
	assert.Error(err)

	var perr *domain.PersistenceError
	assert.True(errors.As(err, &perr))
	assert.InDelta(0.1, store.SolarBias(), 1e-9, "bias must roll back on failed write")
	assert.Empty(store.State().SolarErrors)
}
