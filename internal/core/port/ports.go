package port

import (
	"context"

	"github.com/neobobkrause/vicente-energy/internal/core/domain"
)

// SignalSource yields the live sensor snapshot once per signal tick.
// Implementations never fail the tick: unavailable numeric fields default
// to 0.0 and the inverter flag to false.
type SignalSource interface {
	GetSignals(ctx context.Context) domain.Signals
}

// ForecastSource yields a raw (uncorrected) hourly energy forecast for a
// kind. The returned sequence may be shorter or longer than 24 entries;
// callers normalize before correction. Missing entries default to zero.
type ForecastSource interface {
	RawForecast(ctx context.Context, kind domain.ForecastKind) ([]float64, error)
}

// StateStore is the durable key/value store behind the bias state.
// Load returning (nil, nil) means "first run": callers operate with
// all-zero defaults.
type StateStore interface {
	Load(ctx context.Context) (*domain.BiasState, error)
	Save(ctx context.Context, state domain.BiasState) error
}
