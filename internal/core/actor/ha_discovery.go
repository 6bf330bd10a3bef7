package actor

import (
	"errors"
	"fmt"
	"time"

	"github.com/neobobkrause/vicente-energy/internal/config"
	"github.com/neobobkrause/vicente-energy/internal/core/domain"
	"github.com/neobobkrause/vicente-energy/internal/events"
	"github.com/neobobkrause/vicente-energy/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

type HADiscoveryActor struct {
	config              *config.Config
	behavior            actor.Behavior
	stash               *actorutil.Stash
	signalsActor        *actor.PID
	mqttActor           *actor.PID
	signalsActorHealthy bool
	mqttActorHealthy    bool
	healthyRecv         int

	logger *zap.Logger
}

func NewHADiscoveryActor(config *config.Config, signalsActor *actor.PID, mqttActor *actor.PID, logger *zap.Logger) *HADiscoveryActor {
	act := &HADiscoveryActor{
		config:       config,
		signalsActor: signalsActor,
		mqttActor:    mqttActor,
		behavior:     actor.NewBehavior(),
		stash:        &actorutil.Stash{},
		logger:       actorutil.ActorLogger(domain.ACTOR_ID_HA_DISCOVERY, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *HADiscoveryActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *HADiscoveryActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("hadiscovery@starting started")

		// Check Signals and MQTT actor healthy
		state.healthyRecv = 0
		state.signalsActorHealthy = false
		state.mqttActorHealthy = false
		// Signals Actor Request
		actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.signalsActor, domain.ActorHealthRequest{}, 2*time.Second), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_SIGNALS,
				Healthy: false,
			}
		})
		// MQTT Actor Request
		actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.mqttActor, domain.ActorHealthRequest{}, 2*time.Second), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_MQTT,
				Healthy: false,
			}
		})
		state.behavior.Become(state.WaitingHealthyReceive)
	case *actor.Restarting:
	default:
		state.logger.Debug("hadiscovery@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *HADiscoveryActor) WaitingHealthyReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthResponse:
		state.logger.Debug("hadiscovery@healthcheck ActorHealthResponse", zap.String("sender", msg.Id), zap.Bool("healthy", msg.Healthy))
		state.healthyRecv++
		if msg.Healthy {
			switch msg.Id {
			case domain.ACTOR_ID_SIGNALS:
				state.signalsActorHealthy = true
			case domain.ACTOR_ID_MQTT:
				state.mqttActorHealthy = true
			}
		}
		if state.healthyRecv == 2 {
			if state.signalsActorHealthy && state.mqttActorHealthy {
				state.publishDiscovery(ctx)
				state.behavior.Become(state.Done)
				state.stash.UnstashAll(ctx)
			} else {
				panic(errors.New("MQTT Actor or Signals Actor are not healthy"))
			}
		}
	default:
		state.logger.Debug("hadiscovery@healthcheck: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *HADiscoveryActor) Done(ctx actor.Context) {

}

func (state *HADiscoveryActor) publishDiscovery(ctx actor.Context) {
	var sensors []domain.GenericSensor

	bridgeDevice := events.BridgeDevice(state.config.MQTT.BaseTopic)
	sensors = append(sensors, events.BridgeSensors(bridgeDevice)...)

	controllerSensors := events.ControllerSensors(bridgeDevice)
	for i := range controllerSensors {
		if i > 0 {
			controllerSensors[i].Device = events.IdDevice(bridgeDevice)
		}
		sensors = append(sensors, controllerSensors[i])
	}

	ctx.Send(state.mqttActor, domain.PublishDiscoveryRequest{
		Sensors: sensors,
	})
}
