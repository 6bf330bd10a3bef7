package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adactor "github.com/neobobkrause/vicente-energy/internal/adapter/actor"
	"github.com/neobobkrause/vicente-energy/internal/adapter/forecast"
	"github.com/neobobkrause/vicente-energy/internal/adapter/modbus"
	"github.com/neobobkrause/vicente-energy/internal/adapter/store"
	"github.com/neobobkrause/vicente-energy/internal/config"
	"github.com/neobobkrause/vicente-energy/internal/core/actor"
	"github.com/neobobkrause/vicente-energy/internal/core/port"
	"github.com/neobobkrause/vicente-energy/internal/server"
	"github.com/neobobkrause/vicente-energy/internal/util/actorutil"

	pactor "github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Println("shutting down gracefully, press Ctrl+C again to force")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	log.Println("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {

	// load and print config
	cfg, err := initConfig()
	if err != nil {
		slog.Error("config errors", "error", err)
		return
	}
	safePrintConfig(*cfg)

	// zap logger
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)

	logger := zap.Must(zapCfg.Build())

	// init actor system
	as := actorutil.NewActorSystemWithZapLogger(logger)
	ctx := as.Root

	defer logger.Sync()

	stateStore, err := stateStoreProvider(cfg)
	if err != nil {
		panic(err)
	}

	forecastSource, err := forecast.NewHTTPSource(cfg.SolarForecast)
	if err != nil {
		panic(err)
	}

	signalsProv, err := signalsActorProvider(cfg, logger)
	if err != nil {
		panic(err)
	}

	props := pactor.PropsFromProducer(func() pactor.Actor {
		return actor.NewMasterActor(*cfg, signalsProv, mqttActorProvider(cfg, logger), stateStore, forecastSource, logger)
	})
	pid, err := ctx.SpawnNamed(props, "master")
	if err != nil {
		return
	}

	server := server.NewServer(*cfg, ctx, pid)
	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(server, done)

	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("http server error: %s", err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Println("Graceful shutdown complete.")

	ctx.Stop(pid)
	as.Shutdown()
}

func initConfig() (*config.Config, error) {

	// alias PORT => VICENTE_PORT
	if port := os.Getenv("PORT"); port != "" {
		os.Setenv("VICENTE_PORT", port)
	}

	setConfigDefaults()

	viper.SetEnvPrefix("vicente")
	viper.AutomaticEnv()

	// if defined, try to load config from yaml file
	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		if _, err := os.Stat(cfgFile); err == nil {
			slog.Info("Using config", "file", cfgFile)
			viper.SetConfigFile(cfgFile)

			err = viper.ReadInConfig()
			if err != nil {
				slog.Error("Error reading config file", "error", err)
			}
		}
	}

	var cfg config.Config

	err := viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	// parse log level
	switch viper.GetString("log_level") {
	case "trace":
		cfg.LogLevel = zap.DebugLevel
	case "debug":
		cfg.LogLevel = zap.DebugLevel
	case "info":
		cfg.LogLevel = zap.InfoLevel
	case "error":
		cfg.LogLevel = zap.ErrorLevel
	case "warn":
		cfg.LogLevel = zap.WarnLevel
	case "fatal":
		cfg.LogLevel = zap.FatalLevel
	default:
		cfg.LogLevel = zap.InfoLevel
	}

	// check and fix base topic
	baseTopic, err := config.CheckMQTTTopic(cfg.MQTT.BaseTopic)
	if err != nil {
		return nil, errors.New("invalid base topic. can only contain letters, numbers and underscores")
	}
	cfg.MQTT.BaseTopic = baseTopic

	// check and fix homeassistant discovery topic
	hadBaseTopic, err := config.CheckMQTTTopic(cfg.MQTT.HADiscoveryTopic)
	if err != nil {
		return nil, errors.New("invalid homeassistant discovery topic. can only contain letters, numbers and underscores")
	}
	cfg.MQTT.HADiscoveryTopic = hadBaseTopic

	// check bounds
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func stateStoreProvider(cfg *config.Config) (port.StateStore, error) {
	switch cfg.Store.Driver {
	case "redis":
		return store.NewRedisStore(cfg.Store.RedisAddr, cfg.Store.RedisPassword, cfg.Store.RedisDB)
	default:
		return store.NewFileStore(cfg.Store.Path)
	}
}

func signalsActorProvider(cfg *config.Config, logger *zap.Logger) (actor.SignalsActorProvider, error) {

	reader, err := modbus.NewSignalReader(cfg.SignalsModbus, logger)
	if err != nil {
		return nil, err
	}

	return func() *adactor.SignalsActor {
		return adactor.NewSignalsActor(reader, logger)
	}, nil
}

func mqttActorProvider(cfg *config.Config, logger *zap.Logger) actor.MQTTActorProvider {
	return func(es *eventstream.EventStream) *adactor.MQTTActor {
		return adactor.NewMQTTActor(cfg, es, logger)
	}
}

func setConfigDefaults() {
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("mqtt.ha_discovery_enable", false)
	viper.SetDefault("mqtt.base_topic", "vicente_energy")
	viper.SetDefault("mqtt.ha_discovery_topic", "homeassistant")
	viper.SetDefault("battery.capacity_kwh", 10)
	viper.SetDefault("battery.reserve_soc_pct", 20)
	viper.SetDefault("battery.storage_efficiency", 0.9)
	viper.SetDefault("charger.max_power_kw", 11)
	viper.SetDefault("learning.alpha", 0.3)
	viper.SetDefault("control.budget_interval_minutes", 60)
	viper.SetDefault("control.signal_interval_seconds", 60)
	viper.SetDefault("signals_modbus.port", 502)
	viper.SetDefault("signals_modbus.power_scale", 1)
	viper.SetDefault("signals_modbus.soc_scale", 1)
	viper.SetDefault("solar_forecast.timeout_millis", 10000)
	viper.SetDefault("store.driver", "file")
	viper.SetDefault("store.path", "vicente_energy_state.json")
	viper.SetDefault("store.write_timeout_millis", 5000)
	viper.SetDefault("port", 8080)
}

func safePrintConfig(cfg config.Config) {
	cfg.MQTT.Username = "*redacted*"
	cfg.MQTT.Password = "*redacted*"
	cfg.Store.RedisPassword = "*redacted*"
	slog.Info("Using", "config", cfg)
}
