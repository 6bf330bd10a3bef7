package config

import (
	"errors"
	"regexp"
	"strings"

	"github.com/neobobkrause/vicente-energy/internal/core/domain"

	"go.uber.org/zap/zapcore"
)

type Config struct {
	LogLevel zapcore.Level
	MQTT     MQTTConfig `mapstructure:"mqtt"`

	Battery       BatteryConfig        `mapstructure:"battery"`
	Charger       ChargerConfig        `mapstructure:"charger"`
	Learning      LearningConfig       `mapstructure:"learning"`
	Control       ControlConfig        `mapstructure:"control"`
	SignalsModbus SignalsModbusConfig  `mapstructure:"signals_modbus"`
	SolarForecast ForecastSourceConfig `mapstructure:"solar_forecast"`
	Store         StoreConfig          `mapstructure:"store"`
	Port          uint                 `mapstructure:"port"`
	HttpLog       bool                 `mapstructure:"http_log"`
}

type BatteryConfig struct {
	CapacityKWh       float64 `mapstructure:"capacity_kwh"`
	ReserveSOCPct     float64 `mapstructure:"reserve_soc_pct"`
	StorageEfficiency float64 `mapstructure:"storage_efficiency"`
}

type ChargerConfig struct {
	MaxPowerKW  float64 `mapstructure:"max_power_kw"`
	StatusTopic string  `mapstructure:"status_topic"`
}

type LearningConfig struct {
	Alpha float64 `mapstructure:"alpha"`
}

type ControlConfig struct {
	BudgetIntervalMinutes uint32 `mapstructure:"budget_interval_minutes"`
	SignalIntervalSeconds uint32 `mapstructure:"signal_interval_seconds"`
}

type SignalsModbusConfig struct {
	Host   string `mapstructure:"host"`
	Port   uint   `mapstructure:"port"`
	UnitId uint   `mapstructure:"unit_id"`

	SolarPowerReg   uint16  `mapstructure:"solar_power_reg"`
	BatterySOCReg   uint16  `mapstructure:"battery_soc_reg"`
	HouseLoadReg    uint16  `mapstructure:"house_load_reg"`
	ChargerPowerReg uint16  `mapstructure:"charger_power_reg"`
	InverterOnReg   uint16  `mapstructure:"inverter_on_reg"`
	PowerScale      float64 `mapstructure:"power_scale"`
	SOCScale        float64 `mapstructure:"soc_scale"`
}

type ForecastSourceConfig struct {
	URL           string `mapstructure:"url"`
	ValuePath     string `mapstructure:"value_path"`
	TimeoutMillis uint32 `mapstructure:"timeout_millis"`
}

type StoreConfig struct {
	Driver             string `mapstructure:"driver"` // file | redis
	Path               string `mapstructure:"path"`
	RedisAddr          string `mapstructure:"redis_addr"`
	RedisPassword      string `mapstructure:"redis_password"`
	RedisDB            int    `mapstructure:"redis_db"`
	WriteTimeoutMillis uint32 `mapstructure:"write_timeout_millis"`
}

type MQTTConfig struct {
	Host              string
	Port              int
	Username          string
	Password          string
	BaseTopic         string `mapstructure:"base_topic"`
	HADiscoveryEnable bool   `mapstructure:"ha_discovery_enable"`
	HADiscoveryTopic  string `mapstructure:"ha_discovery_topic"`
}

// Validate checks the static per-installation parameters. A violation is
// fatal at startup: the controller must not run with nonsensical values.
func (cfg *Config) Validate() error {
	if cfg.Battery.CapacityKWh <= 0 {
		return &domain.ConfigurationError{Param: "battery.capacity_kwh", Reason: "must be > 0"}
	}
	if cfg.Battery.ReserveSOCPct < 0 || cfg.Battery.ReserveSOCPct > 100 {
		return &domain.ConfigurationError{Param: "battery.reserve_soc_pct", Reason: "must be within [0, 100]"}
	}
	if cfg.Battery.StorageEfficiency <= 0 || cfg.Battery.StorageEfficiency > 1 {
		return &domain.ConfigurationError{Param: "battery.storage_efficiency", Reason: "must be within (0, 1]"}
	}
	if cfg.Charger.MaxPowerKW <= 0 {
		return &domain.ConfigurationError{Param: "charger.max_power_kw", Reason: "must be > 0"}
	}
	if cfg.Learning.Alpha <= 0 || cfg.Learning.Alpha > 1 {
		return &domain.ConfigurationError{Param: "learning.alpha", Reason: "must be within (0, 1]"}
	}
	if cfg.Control.BudgetIntervalMinutes == 0 {
		return &domain.ConfigurationError{Param: "control.budget_interval_minutes", Reason: "must be > 0"}
	}
	if cfg.Control.SignalIntervalSeconds == 0 {
		return &domain.ConfigurationError{Param: "control.signal_interval_seconds", Reason: "must be > 0"}
	}
	switch cfg.Store.Driver {
	case "file", "redis":
	default:
		return &domain.ConfigurationError{Param: "store.driver", Reason: "must be file or redis"}
	}
	return nil
}

func CheckMQTTTopic(baseTopic string) (string, error) {
	// check and fix base topic
	lowerBaseTopic := strings.ToLower(baseTopic)
	baseTopicRegexp := regexp.MustCompile("^[a-z0-9_]+$")
	matches := baseTopicRegexp.FindAllStringSubmatch(lowerBaseTopic, 1)
	if len(matches) <= 0 {
		return "", errors.New("invalid topic. can only contain letters, numbers and underscores")
	}
	return lowerBaseTopic, nil
}
