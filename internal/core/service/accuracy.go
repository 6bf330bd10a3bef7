package service

import (
	"github.com/neobobkrause/vicente-energy/internal/core/domain"
)

// AccuracyTracker integrates actual solar and load energy over the current
// budget interval and pairs it with the hour-0 forecasts that were issued
// at the start of that interval. The pairs feed forecast bias learning.
type AccuracyTracker struct {
	solarActualKWh float64
	loadActualKWh  float64

	prevSolarForecastKWh *float64
	prevLoadForecastKWh  *float64
}

func NewAccuracyTracker() *AccuracyTracker {
	return &AccuracyTracker{}
}

// AddSample integrates a live power snapshot over the elapsed interval.
func (t *AccuracyTracker) AddSample(sig domain.Signals, elapsedMinutes float64) {
	hours := elapsedMinutes / 60.0
	t.solarActualKWh += sig.SolarPowerW / 1000.0 * hours
	t.loadActualKWh += sig.HouseLoadTotalW / 1000.0 * hours
}

// LoadActualKWh returns the load energy integrated so far this interval.
func (t *AccuracyTracker) LoadActualKWh() float64 {
	return t.loadActualKWh
}

// ForecastActualPair is one completed interval's raw forecast vs observed
// actual, ready for bias learning.
type ForecastActualPair struct {
	Kind        domain.ForecastKind
	ForecastKWh float64
	ActualKWh   float64
}

// Rollover closes the current interval. It returns the forecast/actual
// pairs for the interval that just ended (none on the very first call,
// when no prior forecast exists) and arms the tracker with the new raw
// hour-0 forecasts.
func (t *AccuracyTracker) Rollover(rawSolarHour0, rawLoadHour0 float64) []ForecastActualPair {
	var pairs []ForecastActualPair
	if t.prevSolarForecastKWh != nil {
		pairs = append(pairs, ForecastActualPair{
			Kind:        domain.ForecastSolar,
			ForecastKWh: *t.prevSolarForecastKWh,
			ActualKWh:   t.solarActualKWh,
		})
	}
	if t.prevLoadForecastKWh != nil {
		pairs = append(pairs, ForecastActualPair{
			Kind:        domain.ForecastLoad,
			ForecastKWh: *t.prevLoadForecastKWh,
			ActualKWh:   t.loadActualKWh,
		})
	}

	t.prevSolarForecastKWh = &rawSolarHour0
	t.prevLoadForecastKWh = &rawLoadHour0
	t.solarActualKWh = 0
	t.loadActualKWh = 0
	return pairs
}
