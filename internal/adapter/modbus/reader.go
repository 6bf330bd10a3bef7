// Package modbus reads the live energy signals from an inverter or energy
// meter over Modbus TCP.
package modbus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/neobobkrause/vicente-energy/internal/config"
	"github.com/neobobkrause/vicente-energy/internal/core/domain"

	"github.com/simonvetter/modbus"
	"go.uber.org/zap"
)

// SignalReader maps five holding registers onto the controller's signal
// snapshot. Register addresses and scale factors are per-installation
// config; there is no SunSpec model discovery, the registers are read as
// plain int16 values.
//
// A failed read never propagates: the snapshot falls back to zeros with
// InverterOn=false, which the power calculation treats as "do not charge".
type SignalReader struct {
	cfg    config.SignalsModbusConfig
	client *modbus.ModbusClient
	logger *zap.Logger
	mu     sync.Mutex
	open   bool
}

func NewSignalReader(cfg config.SignalsModbusConfig, logger *zap.Logger) (*SignalReader, error) {
	client, err := modbus.NewClient(&modbus.ClientConfiguration{
		URL:     fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port),
		Timeout: 5 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	if cfg.UnitId > 0 {
		if err := client.SetUnitId(uint8(cfg.UnitId)); err != nil {
			return nil, err
		}
	}
	return &SignalReader{
		cfg:    cfg,
		client: client,
		logger: logger,
	}, nil
}

func (r *SignalReader) Open() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.open {
		return nil
	}
	if err := r.client.Open(); err != nil {
		return err
	}
	r.open = true
	return nil
}

func (r *SignalReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.open {
		return nil
	}
	r.open = false
	return r.client.Close()
}

func (r *SignalReader) GetSignals(ctx context.Context) domain.Signals {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		r.logger.Warn("signal read cancelled", zap.Error(err))
		return domain.Signals{}
	}
	if !r.open {
		if err := r.client.Open(); err != nil {
			r.logger.Warn("modbus connect failed", zap.Error(err))
			return domain.Signals{}
		}
		r.open = true
	}

	solar, err := r.readScaledPower(r.cfg.SolarPowerReg)
	if err != nil {
		return r.failed("solar_power", err)
	}
	soc, err := r.readScaledSOC(r.cfg.BatterySOCReg)
	if err != nil {
		return r.failed("battery_soc", err)
	}
	load, err := r.readScaledPower(r.cfg.HouseLoadReg)
	if err != nil {
		return r.failed("house_load", err)
	}
	charger, err := r.readScaledPower(r.cfg.ChargerPowerReg)
	if err != nil {
		return r.failed("charger_power", err)
	}
	onReg, err := r.client.ReadRegister(r.cfg.InverterOnReg, modbus.HOLDING_REGISTER)
	if err != nil {
		return r.failed("inverter_on", err)
	}

	return domain.Signals{
		SolarPowerW:     solar,
		BatterySOCPct:   soc,
		HouseLoadTotalW: load,
		ChargerPowerW:   charger,
		InverterOn:      onReg != 0,
	}
}

func (r *SignalReader) failed(register string, err error) domain.Signals {
	r.logger.Warn("modbus read failed", zap.String("register", register), zap.Error(err))
	// force a reconnect on the next tick
	_ = r.client.Close()
	r.open = false
	return domain.Signals{}
}

func (r *SignalReader) readScaledPower(reg uint16) (float64, error) {
	raw, err := r.client.ReadRegister(reg, modbus.HOLDING_REGISTER)
	if err != nil {
		return 0, err
	}
	scale := r.cfg.PowerScale
	if scale == 0 {
		scale = 1
	}
	return float64(int16(raw)) * scale, nil
}

func (r *SignalReader) readScaledSOC(reg uint16) (float64, error) {
	raw, err := r.client.ReadRegister(reg, modbus.HOLDING_REGISTER)
	if err != nil {
		return 0, err
	}
	scale := r.cfg.SOCScale
	if scale == 0 {
		scale = 1
	}
	soc := float64(raw) * scale
	if soc < 0 {
		soc = 0
	}
	if soc > 100 {
		soc = 100
	}
	return soc, nil
}
