package service

import (
	"testing"

	"github.com/neobobkrause/vicente-energy/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func TestLoadForecastZeroPaddedUntilFullHistory(t *testing.T) {
	assert := assert.New(t)

	forecaster := NewLoadForecaster()
	forecaster.UpdateHistory(1.2)
	forecaster.UpdateHistory(0.8)

	fc := forecaster.RawForecast()
	assert.Len(fc, domain.ForecastHours)
	assert.Zero(fc[0])
	assert.InDelta(1.2, fc[domain.ForecastHours-2], 1e-9)
	assert.InDelta(0.8, fc[domain.ForecastHours-1], 1e-9)
}

func TestLoadForecastKeepsLastDayOfHistory(t *testing.T) {
	assert := assert.New(t)

	forecaster := NewLoadForecaster()
	for i := 0; i < domain.ForecastHours+6; i++ {
		forecaster.UpdateHistory(float64(i))
	}

	fc := forecaster.RawForecast()
	assert.Len(fc, domain.ForecastHours)
	assert.InDelta(6.0, fc[0], 1e-9)
	assert.InDelta(float64(domain.ForecastHours+5), fc[domain.ForecastHours-1], 1e-9)
}
