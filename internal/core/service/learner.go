package service

import (
	"context"

	"github.com/neobobkrause/vicente-energy/internal/core/domain"

	"go.uber.org/zap"
)

// BiasLearner adapts the stored biases to observed estimation error using
// exponential smoothing:
//
//	new_bias = alpha*normalized_error + (1-alpha)*old_bias
//
// Every update is persisted before the call returns; a failed write rolls
// the in-memory bias back and surfaces a PersistenceError.
type BiasLearner struct {
	store  *BiasStore
	alpha  float64
	logger *zap.Logger
}

func NewBiasLearner(store *BiasStore, alpha float64, logger *zap.Logger) *BiasLearner {
	return &BiasLearner{
		store:  store,
		alpha:  alpha,
		logger: logger,
	}
}

// UpdateForecastBias learns from a forecast/actual kWh pair. A zero
// forecast makes the normalized error undefined, so the update is a
// deliberate no-op and the prior bias is preserved.
func (l *BiasLearner) UpdateForecastBias(ctx context.Context, kind domain.ForecastKind, forecastKWh, actualKWh float64) error {
	if forecastKWh == 0 {
		l.logger.Debug("skipping forecast bias update on zero forecast",
			zap.String("kind", string(kind)), zap.Float64("actual_kwh", actualKWh))
		return nil
	}
	normalizedError := (actualKWh - forecastKWh) / forecastKWh

	err := l.store.applyAndSave(ctx, func(st *domain.BiasState) {
		switch kind {
		case domain.ForecastSolar:
			st.SolarErrors = append(st.SolarErrors, normalizedError)
			st.SolarBias = l.smooth(st.SolarBias, normalizedError)
		case domain.ForecastLoad:
			st.LoadErrors = append(st.LoadErrors, normalizedError)
			st.LoadBias = l.smooth(st.LoadBias, normalizedError)
		}
	})
	if err != nil {
		return err
	}
	l.logger.Debug("forecast bias updated",
		zap.String("kind", string(kind)),
		zap.Float64("error", normalizedError),
		zap.Float64("bias", l.store.bias(kind)))
	return nil
}

// UpdateSessionBias learns from an estimated/actual session energy pair.
// A non-positive estimate still produces a learning signal: the error is
// pinned to 1.0, a full underestimate.
func (l *BiasLearner) UpdateSessionBias(ctx context.Context, estimatedKWh, actualKWh float64) error {
	normalizedError := 1.0
	if estimatedKWh > 0 {
		normalizedError = (actualKWh - estimatedKWh) / estimatedKWh
	}

	err := l.store.applyAndSave(ctx, func(st *domain.BiasState) {
		st.SessionBias = l.smooth(st.SessionBias, normalizedError)
		st.SessionHistory = append(st.SessionHistory, actualKWh)
		actual := actualKWh
		st.LastRawSessionKWh = &actual
	})
	if err != nil {
		return err
	}
	l.logger.Info("session bias updated",
		zap.Float64("estimated_kwh", estimatedKWh),
		zap.Float64("actual_kwh", actualKWh),
		zap.Float64("bias", l.store.SessionBias()))
	return nil
}

func (l *BiasLearner) smooth(old, normalizedError float64) float64 {
	return l.alpha*normalizedError + (1-l.alpha)*old
}
