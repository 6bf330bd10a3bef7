package service

import (
	"math"

	"github.com/neobobkrause/vicente-energy/internal/config"
	"github.com/neobobkrause/vicente-energy/internal/core/domain"
)

// BudgetEngine computes the rolling 24h charging-energy budget and the
// instantaneous charger power level from corrected forecasts, live signals
// and the static battery/charger parameters.
//
// Convention: HouseLoadTotalW excludes the charger's own draw. The signal
// source is responsible for netting charger power out of the house load
// reading when the upstream meter includes it.
type BudgetEngine struct {
	BatteryCapacityKWh float64
	ReserveSOCPct      float64
	StorageEfficiency  float64
	MaxChargerPowerKW  float64

	store *BiasStore
}

func NewBudgetEngine(battery config.BatteryConfig, charger config.ChargerConfig, store *BiasStore) *BudgetEngine {
	return &BudgetEngine{
		BatteryCapacityKWh: battery.CapacityKWh,
		ReserveSOCPct:      battery.ReserveSOCPct,
		StorageEfficiency:  battery.StorageEfficiency,
		MaxChargerPowerKW:  charger.MaxPowerKW,
		store:              store,
	}
}

// Compute24hBudget returns the charging energy (kWh) available over the
// next 24 hours. Forecasts must already be bias-corrected by the caller.
// The result is never negative.
func (e *BudgetEngine) Compute24hBudget(fc domain.Forecasts, sig domain.Signals) float64 {
	totalSolar := sum(fc.Solar24hKWh)
	totalLoad := sum(fc.Load24hKWh)
	solarBudget := math.Max(totalSolar-totalLoad, 0.0)

	// A battery at or above 100% SOC contributes nothing: it cannot be
	// drawn below reserve and must not be double counted against solar.
	var battBudget float64
	if sig.BatterySOCPct < 100.0 {
		socAboveReserve := math.Max(sig.BatterySOCPct-e.ReserveSOCPct, 0.0) / 100.0
		battBudget = socAboveReserve * e.BatteryCapacityKWh * e.StorageEfficiency
	}

	return solarBudget + battBudget
}

// ComputePowerLevel returns the desired charger power (kW) right now.
// Solar surplus leads; otherwise the battery above reserve feeds the
// charger. No charging without a live inverter.
//
// budgetRemainingKWh participates in the min() as an instantaneous rate
// cap: a kWh ceiling compared against kW values, valid under the roughly
// one-hour control tick the budget is refreshed on.
func (e *BudgetEngine) ComputePowerLevel(sig domain.Signals, budgetRemainingKWh float64) float64 {
	if !sig.InverterOn {
		return 0.0
	}

	directSurplusKW := math.Max((sig.SolarPowerW-sig.HouseLoadTotalW)/1000.0, 0.0)
	if directSurplusKW > 0 {
		return min3(directSurplusKW, e.MaxChargerPowerKW, budgetRemainingKWh)
	}

	socAboveReserve := math.Max(sig.BatterySOCPct-e.ReserveSOCPct, 0.0) / 100.0
	if socAboveReserve == 0 {
		return 0.0
	}
	battAvailableKWh := socAboveReserve * e.BatteryCapacityKWh * e.StorageEfficiency
	return min3(battAvailableKWh, e.MaxChargerPowerKW, budgetRemainingKWh)
}

// ComputeSessionEstimates projects a charging session of the given length:
// budget, power level, raw energy projection, the session-bias-adjusted
// estimate, end-of-session SOC and the budget left afterwards. RawKWh is
// kept pre-bias for later session learning.
func (e *BudgetEngine) ComputeSessionEstimates(fc domain.Forecasts, sig domain.Signals, durationMinutes float64) domain.SessionEstimates {
	budget := e.Compute24hBudget(fc, sig)
	powerKW := e.ComputePowerLevel(sig, budget)

	rawKWh := powerKW * durationMinutes / 60.0
	estimatedKWh := rawKWh * (1 + e.store.SessionBias())

	socEnd := math.Max(e.ReserveSOCPct, sig.BatterySOCPct-(estimatedKWh/e.BatteryCapacityKWh)*100.0)

	return domain.SessionEstimates{
		RawKWh:            rawKWh,
		EstimatedKWh:      estimatedKWh,
		SOCEndPct:         socEnd,
		AvailableAfterKWh: math.Max(budget-estimatedKWh, 0.0),
	}
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}
