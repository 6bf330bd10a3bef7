package service

import (
	"testing"

	"github.com/neobobkrause/vicente-energy/internal/config"
	"github.com/neobobkrause/vicente-energy/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func newTestBudgetEngine(t *testing.T, store *BiasStore) *BudgetEngine {
	t.Helper()
	if store == nil {
		store = newTestBiasStore(t, &memStore{})
	}
	return NewBudgetEngine(
		config.BatteryConfig{CapacityKWh: 10, ReserveSOCPct: 20, StorageEfficiency: 0.9},
		config.ChargerConfig{MaxPowerKW: 5},
		store,
	)
}

func hourly(hour23 float64) []float64 {
	fc := make([]float64, domain.ForecastHours)
	fc[domain.ForecastHours-1] = hour23
	return fc
}

func TestBudgetCombinesSolarSurplusAndBattery(t *testing.T) {
	assert := assert.New(t)

	engine := newTestBudgetEngine(t, nil)
	fc := domain.Forecasts{Solar24hKWh: hourly(10), Load24hKWh: hourly(2)}

	budget := engine.Compute24hBudget(fc, domain.Signals{BatterySOCPct: 50})

	// 8 kWh solar surplus + 30% above reserve of 10 kWh at 0.9 efficiency
	assert.InDelta(10.7, budget, 1e-9)
}

func TestBudgetNeverNegativeOnLoadExcess(t *testing.T) {
	assert := assert.New(t)

	engine := newTestBudgetEngine(t, nil)
	fc := domain.Forecasts{Solar24hKWh: hourly(2), Load24hKWh: hourly(10)}

	budget := engine.Compute24hBudget(fc, domain.Signals{BatterySOCPct: 20})
	assert.Zero(budget)
}

func TestBudgetZeroAtFullBatteryWithoutSurplus(t *testing.T) {
	assert := assert.New(t)

	engine := newTestBudgetEngine(t, nil)
	fc := domain.Forecasts{Solar24hKWh: hourly(5), Load24hKWh: hourly(5)}

	budget := engine.Compute24hBudget(fc, domain.Signals{BatterySOCPct: 100})
	assert.Equal(0.0, budget)
}

func TestBudgetMonotonicInSOC(t *testing.T) {
	assert := assert.New(t)

	engine := newTestBudgetEngine(t, nil)
	fc := domain.Forecasts{Solar24hKWh: hourly(4), Load24hKWh: hourly(1)}

	prev := -1.0
	for soc := 0.0; soc < 100.0; soc += 10.0 {
		budget := engine.Compute24hBudget(fc, domain.Signals{BatterySOCPct: soc})
		assert.GreaterOrEqual(budget, prev, "budget must not shrink as SOC rises")
		prev = budget
	}
}

func TestPowerLevelFromSolarSurplus(t *testing.T) {
	assert := assert.New(t)

	engine := newTestBudgetEngine(t, nil)
	sig := domain.Signals{SolarPowerW: 6000, HouseLoadTotalW: 3000, InverterOn: true}

	assert.InDelta(3.0, engine.ComputePowerLevel(sig, 5.0), 1e-9)
}

func TestPowerLevelFromBatteryWhenNoSurplus(t *testing.T) {
	assert := assert.New(t)

	engine := newTestBudgetEngine(t, nil)
	sig := domain.Signals{SolarPowerW: 0, BatterySOCPct: 80, InverterOn: true}

	// 5.4 kWh available above reserve, capped at charger max
	assert.InDelta(5.0, engine.ComputePowerLevel(sig, 10.0), 1e-9)
}

func TestPowerLevelZeroWithInverterOff(t *testing.T) {
	assert := assert.New(t)

	engine := newTestBudgetEngine(t, nil)
	sig := domain.Signals{SolarPowerW: 6000, BatterySOCPct: 90, InverterOn: false}

	assert.Zero(engine.ComputePowerLevel(sig, 10.0))
}

func TestPowerLevelZeroAtReserveSOC(t *testing.T) {
	assert := assert.New(t)

	engine := newTestBudgetEngine(t, nil)
	sig := domain.Signals{SolarPowerW: 0, BatterySOCPct: 20, InverterOn: true}

	assert.Zero(engine.ComputePowerLevel(sig, 10.0))
}

func TestPowerLevelCappedByRemainingBudget(t *testing.T) {
	assert := assert.New(t)

	engine := newTestBudgetEngine(t, nil)
	sig := domain.Signals{SolarPowerW: 8000, HouseLoadTotalW: 1000, InverterOn: true}

	assert.InDelta(1.5, engine.ComputePowerLevel(sig, 1.5), 1e-9)
}

func TestSessionEstimatesProjection(t *testing.T) {
	assert := assert.New(t)

	backing := &memStore{state: &domain.BiasState{SessionBias: 0.1}}
	store := newTestBiasStore(t, backing)
	engine := newTestBudgetEngine(t, store)

	fc := domain.Forecasts{Solar24hKWh: hourly(10), Load24hKWh: hourly(2)}
	sig := domain.Signals{SolarPowerW: 6000, HouseLoadTotalW: 3000, BatterySOCPct: 50, InverterOn: true}

	est := engine.ComputeSessionEstimates(fc, sig, 60)

	// budget 10.7, power 3 kW over one hour
	assert.InDelta(3.0, est.RawKWh, 1e-9)
	assert.InDelta(3.3, est.EstimatedKWh, 1e-9)
	assert.InDelta(50.0-33.0, est.SOCEndPct, 1e-9)
	assert.InDelta(10.7-3.3, est.AvailableAfterKWh, 1e-9)
}

func TestSessionEstimatesSOCFloorsAtReserve(t *testing.T) {
	assert := assert.New(t)

	engine := newTestBudgetEngine(t, nil)
	fc := domain.Forecasts{Solar24hKWh: hourly(20), Load24hKWh: hourly(0)}
	sig := domain.Signals{SolarPowerW: 6000, HouseLoadTotalW: 1000, BatterySOCPct: 25, InverterOn: true}

	est := engine.ComputeSessionEstimates(fc, sig, 600)

	assert.InDelta(20.0, est.SOCEndPct, 1e-9)
	assert.GreaterOrEqual(est.AvailableAfterKWh, 0.0)
}
