package service

import (
	"github.com/neobobkrause/vicente-energy/internal/core/domain"
)

// LoadForecaster predicts the next 24 hours of house load by replaying the
// last 24 observed hourly values. Until a full day of history exists the
// forecast is zero-padded at the front so the most recent samples occupy
// the tail.
type LoadForecaster struct {
	history []float64
	window  int
}

func NewLoadForecaster() *LoadForecaster {
	return &LoadForecaster{window: domain.ForecastHours}
}

// UpdateHistory appends an observed hourly load energy sample (kWh).
func (f *LoadForecaster) UpdateHistory(actualLoadKWh float64) {
	f.history = append(f.history, actualLoadKWh)
	if len(f.history) > f.window {
		f.history = f.history[len(f.history)-f.window:]
	}
}

// RawForecast returns the uncorrected 24-value hourly load forecast.
func (f *LoadForecaster) RawForecast() []float64 {
	return PadHourly(f.history, f.window)
}
