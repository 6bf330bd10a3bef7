package util

import (
	"github.com/neobobkrause/vicente-energy/internal/config"

	"go.uber.org/zap"
)

func LoadTestConfig() config.Config {
	return config.Config{
		LogLevel: zap.DebugLevel,
		MQTT: config.MQTTConfig{
			Host:      "localhost",
			Port:      1883,
			BaseTopic: "vicente_energy",
		},
		Battery: config.BatteryConfig{
			CapacityKWh:       13.5,
			ReserveSOCPct:     20,
			StorageEfficiency: 0.9,
		},
		Charger: config.ChargerConfig{
			MaxPowerKW:  11,
			StatusTopic: "wallbox/status",
		},
		Learning: config.LearningConfig{
			Alpha: 0.3,
		},
		Control: config.ControlConfig{
			BudgetIntervalMinutes: 60,
			SignalIntervalSeconds: 60,
		},
		Store: config.StoreConfig{
			Driver:             "file",
			Path:               "/tmp/vicente_energy_state.json",
			WriteTimeoutMillis: 5000,
		},
		Port: 8080,
	}
}
