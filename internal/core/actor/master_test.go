package actor

import (
	"context"
	"testing"
	"time"

	adactor "github.com/neobobkrause/vicente-energy/internal/adapter/actor"
	"github.com/neobobkrause/vicente-energy/internal/core/domain"
	"github.com/neobobkrause/vicente-energy/internal/util"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testSignalSource struct {
	signals domain.Signals
}

func (s *testSignalSource) GetSignals(ctx context.Context) domain.Signals {
	return s.signals
}

type testForecastSource struct {
	solar []float64
}

func (s *testForecastSource) RawForecast(ctx context.Context, kind domain.ForecastKind) ([]float64, error) {
	return append([]float64(nil), s.solar...), nil
}

type testStateStore struct {
	state *domain.BiasState
}

func (s *testStateStore) Load(ctx context.Context) (*domain.BiasState, error) {
	return s.state, nil
}

func (s *testStateStore) Save(ctx context.Context, state domain.BiasState) error {
	s.state = &state
	return nil
}

func spawnTestMaster(t *testing.T) (*actor.ActorSystem, *actor.PID) {
	t.Helper()

	as := actor.NewActorSystem()

	cfg := util.LoadTestConfig()
	logCfg := zap.NewDevelopmentConfig()
	logCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	logger := zap.Must(logCfg.Build())

	signals := &testSignalSource{signals: domain.Signals{
		SolarPowerW:     4000,
		HouseLoadTotalW: 1000,
		BatterySOCPct:   60,
		InverterOn:      true,
	}}
	solar := make([]float64, domain.ForecastHours)
	for i := range solar {
		solar[i] = 1.5
	}

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewMasterActor(cfg, func() *adactor.SignalsActor {
			return adactor.NewSignalsActor(signals, logger)
		}, func(es *eventstream.EventStream) *adactor.MQTTActor {
			return adactor.NewTestMQTTActor(&cfg, es, logger)
		}, &testStateStore{}, &testForecastSource{solar: solar}, logger)
	})
	pid, err := as.Root.SpawnNamed(props, "master")
	require.NoError(t, err)
	return as, pid
}

func TestMasterActorHealthCheck(t *testing.T) {

	as, pid := spawnTestMaster(t)
	context := as.Root

	time.Sleep(2 * time.Second)

	res, err := context.RequestFuture(pid, domain.ActorHealthRequest{}, 10*time.Second).Result()
	if err != nil {
		t.Error(err)
	}
	healthResp, ok := res.(domain.ActorHealthResponse)
	assert.True(t, ok)
	assert.True(t, healthResp.Healthy, "healthy is true")

	context.Stop(pid)
	as.Shutdown()
}

func TestMasterActorOutputs(t *testing.T) {

	as, pid := spawnTestMaster(t)
	context := as.Root

	// give the controller time to load state and run a budget pass
	time.Sleep(2 * time.Second)

	res, err := context.RequestFuture(pid, domain.GetOutputsRequest{}, 10*time.Second).Result()
	if err != nil {
		t.Error(err)
	}
	outResp, ok := res.(domain.GetOutputsResponse)
	assert.True(t, ok)

	// 36 kWh solar vs zero recorded load, plus battery above reserve
	assert.Greater(t, outResp.Outputs.Budget24hKWh, 0.0)
	assert.Equal(t, domain.ChargeStateUnplugged, outResp.Outputs.ChargeState)

	context.Stop(pid)
	as.Shutdown()
}
