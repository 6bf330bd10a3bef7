package events

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/neobobkrause/vicente-energy/internal/core/domain"

	"github.com/carlmjohnson/versioninfo"
)

const (
	SENSOR_ID_BRIDGE_STATE          = "bridge"
	SENSOR_ID_BUDGET_24H            = "energy_budget_24h"
	SENSOR_ID_CHARGER_POWER_LEVEL   = "charger_power_level"
	SENSOR_ID_SESSION_START_TIME    = "session_start_time"
	SENSOR_ID_SESSION_DURATION      = "session_duration"
	SENSOR_ID_SESSION_ENERGY        = "session_energy"
	SENSOR_ID_AVAILABLE_AFTER       = "available_energy_after_session"
	SENSOR_ID_CHARGE_STATE          = "charge_state"
	SENSOR_ID_SOLAR_FORECAST_BIAS   = "solar_forecast_bias"
	SENSOR_ID_LOAD_FORECAST_BIAS    = "load_forecast_bias"
	SENSOR_ID_SESSION_ESTIMATE_BIAS = "session_estimate_bias"
	STATE_CLASS_DURATION            = "duration"
	STATE_CLASS_MEASUREMENT         = "measurement"
	STATE_CLASS_TOTAL_INCREASING    = "total_increasing"
	DEVICE_CLASS_DURATION           = "duration"
	DEVICE_CLASS_ENERGY             = "energy"
	DEVICE_CLASS_POWER              = "power"
	DEVICE_CLASS_TIMESTAMP          = "timestamp"
	DEVICE_CLASS_CONNECTIVITY       = "connectivity"
	ENTITY_CLASS_DIAGNOSTIC         = "diagnostic"
	ENTITY_CLASS_CONFIG             = "config"
	SENSOR_TYPE_SENSOR              = "sensor"
	SENSOR_TYPE_BINARY              = "binary_sensor"
)

func BridgeDevice(baseTopic string) domain.Device {
	return domain.Device{
		Id:           fmt.Sprintf("vicente_energy_%s", md5HashShort(baseTopic)),
		Manufacturer: "NeoBobKrause",
		Model:        "VicenteEnergy",
		Version:      versioninfo.Short(),
		Name:         fmt.Sprintf("Vicente Energy %s", md5HashShort(baseTopic)),
	}
}

func IdDevice(device domain.Device) domain.Device {
	return domain.Device{
		Id:   device.Id,
		Name: device.Name,
	}
}

func BridgeSensors(device domain.Device) []domain.GenericSensor {
	return []domain.GenericSensor{
		{
			Device:      device,
			Id:          SENSOR_ID_BRIDGE_STATE,
			SensorType:  SENSOR_TYPE_BINARY,
			Name:        "Bridge state",
			DeviceClass: DEVICE_CLASS_CONNECTIVITY,
			UniqueId:    uniqueId(device.Id, SENSOR_ID_BRIDGE_STATE),
		},
	}
}

// ControllerSensors describes every sensor the controller publishes, used
// for MQTT discovery.
func ControllerSensors(device domain.Device) []domain.GenericSensor {

	var sensors []domain.GenericSensor

	// 24h Energy Budget
	sensors = append(sensors, domain.GenericSensor{
		Device:            device,
		Id:                SENSOR_ID_BUDGET_24H,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Energy budget 24h",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_ENERGY,
		UnitOfMeasurement: "kWh",
		UniqueId:          uniqueId(device.Id, SENSOR_ID_BUDGET_24H),
	})

	// Charger Power Level
	sensors = append(sensors, domain.GenericSensor{
		Device:            device,
		Id:                SENSOR_ID_CHARGER_POWER_LEVEL,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Charger power level",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_POWER,
		UnitOfMeasurement: "kW",
		UniqueId:          uniqueId(device.Id, SENSOR_ID_CHARGER_POWER_LEVEL),
	})

	// Session Start Time
	sensors = append(sensors, domain.GenericSensor{
		Device:      device,
		Id:          SENSOR_ID_SESSION_START_TIME,
		SensorType:  SENSOR_TYPE_SENSOR,
		Name:        "Session start time",
		DeviceClass: DEVICE_CLASS_TIMESTAMP,
		UniqueId:    uniqueId(device.Id, SENSOR_ID_SESSION_START_TIME),
	})

	// Session Duration
	sensors = append(sensors, domain.GenericSensor{
		Device:            device,
		Id:                SENSOR_ID_SESSION_DURATION,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Session duration",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_DURATION,
		UnitOfMeasurement: "min",
		UniqueId:          uniqueId(device.Id, SENSOR_ID_SESSION_DURATION),
	})

	// Session Energy
	sensors = append(sensors, domain.GenericSensor{
		Device:            device,
		Id:                SENSOR_ID_SESSION_ENERGY,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Session energy",
		StateClass:        STATE_CLASS_TOTAL_INCREASING,
		DeviceClass:       DEVICE_CLASS_ENERGY,
		UnitOfMeasurement: "kWh",
		UniqueId:          uniqueId(device.Id, SENSOR_ID_SESSION_ENERGY),
	})

	// Available Energy After Session
	sensors = append(sensors, domain.GenericSensor{
		Device:            device,
		Id:                SENSOR_ID_AVAILABLE_AFTER,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Available energy after session",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_ENERGY,
		UnitOfMeasurement: "kWh",
		UniqueId:          uniqueId(device.Id, SENSOR_ID_AVAILABLE_AFTER),
	})

	// Charge State
	sensors = append(sensors, domain.GenericSensor{
		Device:     device,
		Id:         SENSOR_ID_CHARGE_STATE,
		SensorType: SENSOR_TYPE_SENSOR,
		Name:       "Charge state",
		UniqueId:   uniqueId(device.Id, SENSOR_ID_CHARGE_STATE),
	})

	// Bias diagnostics
	sensors = append(sensors, domain.GenericSensor{
		Device:         device,
		Id:             SENSOR_ID_SOLAR_FORECAST_BIAS,
		SensorType:     SENSOR_TYPE_SENSOR,
		Name:           "Solar forecast bias",
		StateClass:     STATE_CLASS_MEASUREMENT,
		EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
		UniqueId:       uniqueId(device.Id, SENSOR_ID_SOLAR_FORECAST_BIAS),
	})
	sensors = append(sensors, domain.GenericSensor{
		Device:         device,
		Id:             SENSOR_ID_LOAD_FORECAST_BIAS,
		SensorType:     SENSOR_TYPE_SENSOR,
		Name:           "Load forecast bias",
		StateClass:     STATE_CLASS_MEASUREMENT,
		EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
		UniqueId:       uniqueId(device.Id, SENSOR_ID_LOAD_FORECAST_BIAS),
	})
	sensors = append(sensors, domain.GenericSensor{
		Device:         device,
		Id:             SENSOR_ID_SESSION_ESTIMATE_BIAS,
		SensorType:     SENSOR_TYPE_SENSOR,
		Name:           "Session estimate bias",
		StateClass:     STATE_CLASS_MEASUREMENT,
		EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
		UniqueId:       uniqueId(device.Id, SENSOR_ID_SESSION_ESTIMATE_BIAS),
	})

	return sensors
}

func uniqueId(baseId, id string) string {
	return fmt.Sprintf("uid_%s_%s", baseId, id)
}

func md5Hash(text string) string {
	hash := md5.Sum([]byte(text))
	return hex.EncodeToString(hash[:])
}

func md5HashShort(text string) string {
	hash := md5Hash(text)
	return hash[0:8]
}
