package actor

import (
	"context"
	"testing"
	"time"

	"github.com/neobobkrause/vicente-energy/internal/core/domain"
	"github.com/neobobkrause/vicente-energy/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fixedSignalSource struct {
	signals domain.Signals
	opened  bool
	closed  bool
}

func (s *fixedSignalSource) GetSignals(ctx context.Context) domain.Signals {
	return s.signals
}

func (s *fixedSignalSource) Open() error {
	s.opened = true
	return nil
}

func (s *fixedSignalSource) Close() error {
	s.closed = true
	return nil
}

func TestGetSignalsActor(t *testing.T) {

	assert := assert.New(t)

	source := &fixedSignalSource{signals: domain.Signals{
		SolarPowerW:     5200,
		BatterySOCPct:   72,
		HouseLoadTotalW: 1800,
		ChargerPowerW:   0,
		InverterOn:      true,
	}}

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	props := actor.PropsFromProducer(func() actor.Actor { return NewSignalsActor(source, logger) })
	pid := context.Spawn(props)

	time.Sleep(1 * time.Second)
	assert.True(source.opened, "source opened on start")

	result, err := context.RequestFuture(pid, domain.GetSignalsRequest{}, 15*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp, ok := result.(domain.GetSignalsResponse)
	assert.True(ok)

	assert.Equal(5200.0, resp.Signals.SolarPowerW, "solar power")
	assert.Equal(72.0, resp.Signals.BatterySOCPct, "battery soc")
	assert.Equal(1800.0, resp.Signals.HouseLoadTotalW, "house load")
	assert.True(resp.Signals.InverterOn, "inverter on")

	healthResult, err := context.RequestFuture(pid, domain.ActorHealthRequest{}, 5*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	health, ok := healthResult.(domain.ActorHealthResponse)
	assert.True(ok)
	assert.True(health.Healthy, "healthy is true")

	if err := context.StopFuture(pid).Wait(); err != nil {
		t.Error(err)
		return
	}

	as.Shutdown()

	assert.True(source.closed, "source closed on stop")
}
