package events

import (
	"time"

	. "github.com/neobobkrause/vicente-energy/internal/core/domain"
	"github.com/neobobkrause/vicente-energy/internal/events"
)

func OutputsToUpdateEvents(out Outputs) []any {
	var evts []any

	// 24h Energy Budget
	evts = append(evts, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: events.SENSOR_ID_BUDGET_24H,
		},
		Value:    out.Budget24hKWh,
		Decimals: 3,
	})
	// Charger Power Level
	evts = append(evts, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: events.SENSOR_ID_CHARGER_POWER_LEVEL,
		},
		Value:    out.PowerLevelKW,
		Decimals: 3,
	})
	// Session Start Time
	var startStr string
	if out.SessionStartTime != nil {
		startStr = out.SessionStartTime.Format(time.RFC3339)
	}
	evts = append(evts, TextSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: events.SENSOR_ID_SESSION_START_TIME,
		},
		Value: startStr,
	})
	// Session Duration
	evts = append(evts, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: events.SENSOR_ID_SESSION_DURATION,
		},
		Value:    out.SessionDurationMin,
		Decimals: 1,
	})
	// Session Energy
	evts = append(evts, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: events.SENSOR_ID_SESSION_ENERGY,
		},
		Value:    out.SessionEnergyKWh,
		Decimals: 3,
	})
	// Available Energy After Session
	evts = append(evts, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: events.SENSOR_ID_AVAILABLE_AFTER,
		},
		Value:    out.AvailableAfterKWh,
		Decimals: 3,
	})
	// Charge State
	evts = append(evts, TextSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: events.SENSOR_ID_CHARGE_STATE,
		},
		Value: string(out.ChargeState),
	})

	return evts
}

func BiasesToUpdateEvents(out Outputs) []any {
	var evts []any

	evts = append(evts, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: events.SENSOR_ID_SOLAR_FORECAST_BIAS,
		},
		Value:    out.SolarBias,
		Decimals: 4,
	})
	evts = append(evts, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: events.SENSOR_ID_LOAD_FORECAST_BIAS,
		},
		Value:    out.LoadBias,
		Decimals: 4,
	})
	evts = append(evts, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: events.SENSOR_ID_SESSION_ESTIMATE_BIAS,
		},
		Value:    out.SessionBias,
		Decimals: 4,
	})

	return evts
}
