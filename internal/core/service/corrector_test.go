package service

import (
	"errors"
	"testing"

	"github.com/neobobkrause/vicente-energy/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func TestCorrectAppliesStoredBias(t *testing.T) {
	assert := assert.New(t)

	backing := &memStore{state: &domain.BiasState{SolarBias: 0.1, LoadBias: -0.5}}
	corrector := NewForecastCorrector(newTestBiasStore(t, backing))

	raw := make([]float64, domain.ForecastHours)
	for i := range raw {
		raw[i] = 2.0
	}

	solar, err := corrector.Correct(domain.ForecastSolar, raw)
	assert.NoError(err)
	assert.Len(solar, domain.ForecastHours)
	assert.InDelta(2.2, solar[0], 1e-9)

	load, err := corrector.Correct(domain.ForecastLoad, raw)
	assert.NoError(err)
	assert.InDelta(1.0, load[0], 1e-9)
}

func TestCorrectClampsAtZero(t *testing.T) {
	assert := assert.New(t)

	backing := &memStore{state: &domain.BiasState{SolarBias: -2.0}}
	corrector := NewForecastCorrector(newTestBiasStore(t, backing))

	raw := make([]float64, domain.ForecastHours)
	raw[5] = 3.0

	corrected, err := corrector.Correct(domain.ForecastSolar, raw)
	assert.NoError(err)
	assert.Zero(corrected[5])
}

func TestCorrectRejectsWrongLength(t *testing.T) {
	assert := assert.New(t)

	corrector := NewForecastCorrector(newTestBiasStore(t, &memStore{}))

	_, err := corrector.Correct(domain.ForecastSolar, []float64{1, 2, 3})
	assert.Error(err)

	var ierr *domain.InvalidInputError
	assert.True(errors.As(err, &ierr))
}

func TestPadHourly(t *testing.T) {
	assert := assert.New(t)

	// short input lands at the tail
	padded := PadHourly([]float64{1, 2, 3}, 6)
	assert.Equal([]float64{0, 0, 0, 1, 2, 3}, padded)

	// long input keeps its most recent values
	trimmed := PadHourly([]float64{1, 2, 3, 4, 5, 6, 7, 8}, 6)
	assert.Equal([]float64{3, 4, 5, 6, 7, 8}, trimmed)

	exact := PadHourly([]float64{1, 2, 3}, 3)
	assert.Equal([]float64{1, 2, 3}, exact)
}

func TestTruncateHourly(t *testing.T) {
	assert := assert.New(t)

	// long input keeps the nearest hours
	trimmed := TruncateHourly([]float64{1, 2, 3, 4, 5, 6, 7, 8}, 6)
	assert.Equal([]float64{1, 2, 3, 4, 5, 6}, trimmed)

	// short input gets zero future hours appended
	padded := TruncateHourly([]float64{1, 2, 3}, 6)
	assert.Equal([]float64{1, 2, 3, 0, 0, 0}, padded)
}
