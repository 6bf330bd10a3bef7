package service

import (
	"testing"

	"github.com/neobobkrause/vicente-energy/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func TestAccuracyFirstRolloverYieldsNoPairs(t *testing.T) {
	assert := assert.New(t)

	tracker := NewAccuracyTracker()
	tracker.AddSample(domain.Signals{SolarPowerW: 1000, HouseLoadTotalW: 500}, 60)

	pairs := tracker.Rollover(2.5, 1.0)
	assert.Empty(pairs, "no prior forecast to compare against")
}

func TestAccuracyIntegratesPowerOverInterval(t *testing.T) {
	assert := assert.New(t)

	tracker := NewAccuracyTracker()
	tracker.Rollover(2.0, 1.0)

	// 3 kW solar and 1.5 kW load over two 30-minute samples
	tracker.AddSample(domain.Signals{SolarPowerW: 3000, HouseLoadTotalW: 1500}, 30)
	tracker.AddSample(domain.Signals{SolarPowerW: 3000, HouseLoadTotalW: 1500}, 30)
	assert.InDelta(1.5, tracker.LoadActualKWh(), 1e-9)

	pairs := tracker.Rollover(4.0, 2.0)
	assert.Len(pairs, 2)

	assert.Equal(domain.ForecastSolar, pairs[0].Kind)
	assert.InDelta(2.0, pairs[0].ForecastKWh, 1e-9)
	assert.InDelta(3.0, pairs[0].ActualKWh, 1e-9)

	assert.Equal(domain.ForecastLoad, pairs[1].Kind)
	assert.InDelta(1.0, pairs[1].ForecastKWh, 1e-9)
	assert.InDelta(1.5, pairs[1].ActualKWh, 1e-9)
}

func TestAccuracyRolloverResetsAccumulators(t *testing.T) {
	assert := assert.New(t)

	tracker := NewAccuracyTracker()
	tracker.Rollover(1.0, 1.0)
	tracker.AddSample(domain.Signals{SolarPowerW: 2000, HouseLoadTotalW: 1000}, 60)
	tracker.Rollover(1.0, 1.0)

	assert.Zero(tracker.LoadActualKWh())
	pairs := tracker.Rollover(1.0, 1.0)
	assert.Len(pairs, 2)
	assert.Zero(pairs[0].ActualKWh, "new interval starts from zero")
}
