package domain

import "time"

// ForecastHours is the fixed horizon of every hourly forecast consumed by
// the budget engine. Index 0 is the current/next hour.
const ForecastHours = 24

// Signals is a point-in-time snapshot of the live sensor inputs used for
// power and budget calculations. Produced once per signal tick by the
// signal source and discarded after use.
type Signals struct {
	SolarPowerW     float64
	BatterySOCPct   float64
	HouseLoadTotalW float64
	ChargerPowerW   float64
	InverterOn      bool
}

// ForecastKind selects one of the two hourly energy forecasts.
type ForecastKind string

const (
	ForecastSolar ForecastKind = "solar"
	ForecastLoad  ForecastKind = "load"
)

// Forecasts holds the bias-corrected hourly solar and load energy forecasts
// for the next ForecastHours hours, in kWh.
type Forecasts struct {
	Solar24hKWh []float64
	Load24hKWh  []float64
}

// SessionEstimates is the projection for a potential charging session.
// RawKWh is the pre-bias projection; it is the value fed back to session
// bias learning when the session ends, never the biased estimate.
type SessionEstimates struct {
	RawKWh            float64
	EstimatedKWh      float64
	SOCEndPct         float64
	AvailableAfterKWh float64
}

// BiasState is the complete persisted learning state of an installation.
// There is exactly one instance per installation. It is owned by the bias
// store and mutated only through the bias learner; absence of stored data
// means all-zero biases and empty histories.
//
// SessionHistory intentionally logs raw actual-kWh samples for diagnostics.
// The smoothed session bias fraction is SessionBias and is never mixed into
// that log.
type BiasState struct {
	SolarBias         float64   `json:"solar_bias"`
	LoadBias          float64   `json:"load_bias"`
	SessionBias       float64   `json:"session_bias"`
	LastRawSessionKWh *float64  `json:"last_raw_session_kwh"`
	LastSessionKWh    float64   `json:"last_session_kwh"`
	SessionHistory    []float64 `json:"session_history"`
	SolarErrors       []float64 `json:"solar_errors"`
	LoadErrors        []float64 `json:"load_errors"`
}

// Bias returns the stored bias for a forecast kind.
func (s BiasState) Bias(kind ForecastKind) float64 {
	if kind == ForecastSolar {
		return s.SolarBias
	}
	return s.LoadBias
}

// ChargerStatus is the four-value charger status input that drives the
// session state machine. External status strings are mapped to one of these
// by the charger status adapter.
type ChargerStatus string

const (
	ChargerStatusCharging  ChargerStatus = "charging"
	ChargerStatusPlugged   ChargerStatus = "plugged"
	ChargerStatusDone      ChargerStatus = "done"
	ChargerStatusUnplugged ChargerStatus = "unplugged"
)

// ChargeState is the session state machine state.
type ChargeState string

const (
	ChargeStateUnplugged          ChargeState = "unplugged"
	ChargeStatePluggedNoSession   ChargeState = "plugged_no_session"
	ChargeStateActiveSession      ChargeState = "active_session"
	ChargeStatePluggedPostSession ChargeState = "plugged_post_session"
)

// Outputs is the read-only snapshot published for dashboards/automation.
type Outputs struct {
	Budget24hKWh       float64     `json:"budget_24h_kwh"`
	PowerLevelKW       float64     `json:"power_level_kw"`
	SessionStartTime   *time.Time  `json:"session_start_time"`
	SessionDurationMin float64     `json:"session_duration_min"`
	SessionEnergyKWh   float64     `json:"session_energy_kwh"`
	AvailableAfterKWh  float64     `json:"available_after_kwh"`
	ChargeState        ChargeState `json:"charge_state"`
	SolarBias          float64     `json:"solar_bias"`
	LoadBias           float64     `json:"load_bias"`
	SessionBias        float64     `json:"session_bias"`
}
