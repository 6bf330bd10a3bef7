package actor

import (
	"context"
	"fmt"
	"time"

	"github.com/neobobkrause/vicente-energy/internal/core/domain"
	"github.com/neobobkrause/vicente-energy/internal/core/port"
	"github.com/neobobkrause/vicente-energy/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

type SignalsActor struct {
	behavior actor.Behavior
	stash    *actorutil.Stash
	source   port.SignalSource
	logger   *zap.Logger
}

type openCloser interface {
	Open() error
	Close() error
}

type backgroundTaskResult struct {
	message any
	replyTo *actor.PID
}

func NewSignalsActor(source port.SignalSource, logger *zap.Logger) *SignalsActor {
	act := &SignalsActor{
		source:   source,
		behavior: actor.NewBehavior(),
		stash:    &actorutil.Stash{},
		logger:   actorutil.ActorLogger(domain.ACTOR_ID_SIGNALS, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *SignalsActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *SignalsActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("signals@starting started")
		if oc, ok := state.source.(openCloser); ok {
			if err := oc.Open(); err != nil {
				panic(err)
			}
		}
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case *actor.Restarting:
		state.closeSource()
	default:
		state.logger.Debug("signals@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *SignalsActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("signals@default: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_SIGNALS,
			Healthy: true,
			State:   "idle",
		})
	case domain.GetSignalsRequest:
		state.logger.Debug("signals@default: GetSignalsRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)

		actorutil.MapBackgroundTask(actorutil.NewBackgroundTaskNoError(ctx, func() *domain.GetSignalsResponse {
			signals := state.source.GetSignals(context.Background())
			return &domain.GetSignalsResponse{Signals: signals}
		}), mapTaskResult[domain.GetSignalsResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.GetSignalsResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				},
				replyTo: sender,
			}
		}).WithTimeout(10 * time.Second).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingSource)
	case *actor.Stopping:
		state.closeSource()
	default:
		state.logger.Debug("signals@default default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *SignalsActor) WaitingSource(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case backgroundTaskResult:
		state.logger.Debug("signals@waiting backgroundTaskResult", zap.String("type", fmt.Sprintf("%T", msg.message)))
		ctx.Send(msg.replyTo, msg.message)
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case *actor.Stopping:
		state.closeSource()
	default:
		state.logger.Debug("signals@waiting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *SignalsActor) closeSource() {
	if oc, ok := state.source.(openCloser); ok {
		if err := oc.Close(); err != nil {
			state.logger.Warn("signals: close failed", zap.Error(err))
		}
	}
}

func mapTaskResult[T any](sender *actor.PID) func(t *T) *backgroundTaskResult {
	return func(t *T) *backgroundTaskResult {
		return &backgroundTaskResult{
			message: *t,
			replyTo: sender,
		}
	}
}
