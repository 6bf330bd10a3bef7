package config

import (
	"errors"
	"testing"

	"github.com/neobobkrause/vicente-energy/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func validConfig() Config {
	return Config{
		Battery: BatteryConfig{CapacityKWh: 10, ReserveSOCPct: 20, StorageEfficiency: 0.9},
		Charger: ChargerConfig{MaxPowerKW: 11},
		Learning: LearningConfig{
			Alpha: 0.3,
		},
		Control: ControlConfig{BudgetIntervalMinutes: 60, SignalIntervalSeconds: 60},
		Store:   StoreConfig{Driver: "file", Path: "/tmp/state.json"},
	}
}

func TestValidateAcceptsSaneConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadParams(t *testing.T) {
	assert := assert.New(t)

	cases := []struct {
		param  string
		mutate func(*Config)
	}{
		{"battery.capacity_kwh", func(c *Config) { c.Battery.CapacityKWh = 0 }},
		{"battery.reserve_soc_pct", func(c *Config) { c.Battery.ReserveSOCPct = 120 }},
		{"battery.storage_efficiency", func(c *Config) { c.Battery.StorageEfficiency = 1.5 }},
		{"charger.max_power_kw", func(c *Config) { c.Charger.MaxPowerKW = -1 }},
		{"learning.alpha", func(c *Config) { c.Learning.Alpha = 0 }},
		{"control.budget_interval_minutes", func(c *Config) { c.Control.BudgetIntervalMinutes = 0 }},
		{"control.signal_interval_seconds", func(c *Config) { c.Control.SignalIntervalSeconds = 0 }},
		{"store.driver", func(c *Config) { c.Store.Driver = "sqlite" }},
	}

	for _, tc := range cases {
		cfg := validConfig()
		tc.mutate(&cfg)
		err := cfg.Validate()
		assert.Error(err, tc.param)

		var cerr *domain.ConfigurationError
		if assert.True(errors.As(err, &cerr), tc.param) {
			assert.Equal(tc.param, cerr.Param)
		}
	}
}

func TestCheckMQTTTopic(t *testing.T) {
	assert := assert.New(t)

	topic, err := CheckMQTTTopic("Vicente_Energy1")
	assert.NoError(err)
	assert.Equal("vicente_energy1", topic)

	_, err = CheckMQTTTopic("bad/topic")
	assert.Error(err)

	_, err = CheckMQTTTopic("")
	assert.Error(err)
}
