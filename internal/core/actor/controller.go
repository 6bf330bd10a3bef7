package actor

import (
	"context"
	"fmt"
	"time"

	"github.com/neobobkrause/vicente-energy/internal/config"
	"github.com/neobobkrause/vicente-energy/internal/core/domain"
	"github.com/neobobkrause/vicente-energy/internal/core/events"
	"github.com/neobobkrause/vicente-energy/internal/core/port"
	"github.com/neobobkrause/vicente-energy/internal/core/service"
	"github.com/neobobkrause/vicente-energy/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/asynkron/protoactor-go/scheduler"
	"go.uber.org/zap"
)

// Projection horizon used for session estimates when no session is active.
const defaultProjectionMinutes = 60

// ControllerActor owns all adaptive state: the bias store, the session
// state machine and the accuracy tracker. Everything mutating that state
// runs on this actor's mailbox, so the services need no further locking.
//
// Two self-scheduled ticks drive it: a signal tick (seconds) that samples
// live signals and adjusts the charging power level, and a budget tick
// (minutes) that refreshes forecasts, learns from the completed interval
// and recomputes the 24h energy budget.
type ControllerActor struct {
	config    *config.Config
	behavior  actor.Behavior
	stash     *actorutil.Stash
	scheduler *scheduler.TimerScheduler

	signalsActor   *actor.PID
	eventStream    *eventstream.EventStream
	forecastSource port.ForecastSource

	biasStore      *service.BiasStore
	corrector      *service.ForecastCorrector
	learner        *service.BiasLearner
	budget         *service.BudgetEngine
	session        *service.SessionController
	loadForecaster *service.LoadForecaster
	accuracy       *service.AccuracyTracker

	forecasts    domain.Forecasts
	lastSignals  domain.Signals
	lastSampleAt time.Time

	logger *zap.Logger
}

type budgetTick struct {
}

type signalTick struct {
}

type stateLoaded struct {
	err error
}

type forecastFetched struct {
	raw []float64
	err error
}

func NewControllerActor(cfg *config.Config, store port.StateStore, forecastSource port.ForecastSource,
	signalsActor *actor.PID, eventStream *eventstream.EventStream, logger *zap.Logger) *ControllerActor {

	ctrlLogger := actorutil.ActorLogger(domain.ACTOR_ID_CONTROLLER, logger)

	writeTimeout := time.Duration(cfg.Store.WriteTimeoutMillis) * time.Millisecond
	biasStore := service.NewBiasStore(store, writeTimeout, ctrlLogger)
	learner := service.NewBiasLearner(biasStore, cfg.Learning.Alpha, ctrlLogger)

	act := &ControllerActor{
		config:         cfg,
		behavior:       actor.NewBehavior(),
		stash:          &actorutil.Stash{},
		signalsActor:   signalsActor,
		eventStream:    eventStream,
		forecastSource: forecastSource,
		biasStore:      biasStore,
		corrector:      service.NewForecastCorrector(biasStore),
		learner:        learner,
		budget:         service.NewBudgetEngine(cfg.Battery, cfg.Charger, biasStore),
		session:        service.NewSessionController(learner, biasStore, ctrlLogger),
		loadForecaster: service.NewLoadForecaster(),
		accuracy:       service.NewAccuracyTracker(),
		logger:         ctrlLogger,
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *ControllerActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *ControllerActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("controller@starting started")

		state.scheduler = scheduler.NewTimerScheduler(ctx)

		actorutil.NewBackgroundTaskNoError(ctx, func() *stateLoaded {
			return &stateLoaded{err: state.biasStore.Load(context.Background())}
		}).WithTimeout(15 * time.Second).Recover(func(err error) stateLoaded {
			return stateLoaded{err: err}
		}).PipeTo(ctx.Self())
	case stateLoaded:
		if msg.err != nil {
			// run from defaults, learning starts over
			state.logger.Warn("controller@starting state load failed", zap.Error(msg.err))
		} else {
			st := state.biasStore.State()
			state.logger.Info("controller@starting state loaded",
				zap.Float64("solar_bias", st.SolarBias),
				zap.Float64("load_bias", st.LoadBias),
				zap.Float64("session_bias", st.SessionBias))
		}

		state.scheduler.RequestOnce(state.signalInterval(), ctx.Self(), signalTick{})
		// first budget pass right away so outputs exist before the first
		// full interval elapses
		ctx.Send(ctx.Self(), budgetTick{})

		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("controller@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *ControllerActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("controller@default ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_CONTROLLER,
			Healthy: true,
			State:   string(state.session.ChargeState()),
		})
	case signalTick:
		state.logger.Debug("controller@default signalTick")
		actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.signalsActor, domain.GetSignalsRequest{}, 15*time.Second), func(err error) any {
			return domain.GetSignalsResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{
					ResponseError: err,
				},
			}
		})
		state.scheduler.RequestOnce(state.signalInterval(), ctx.Self(), signalTick{})
	case domain.GetSignalsResponse:
		if msg.HasResponseError() {
			state.logger.Error("controller@default GetSignalsResponse error", zap.Error(msg.GetResponseError()))
			return
		}
		state.handleSignals(msg.Signals)
	case budgetTick:
		state.logger.Debug("controller@default budgetTick")
		actorutil.NewBackgroundTask(ctx, func() (*forecastFetched, error) {
			raw, err := state.forecastSource.RawForecast(context.Background(), domain.ForecastSolar)
			return &forecastFetched{raw: raw, err: err}, nil
		}).WithTimeout(30 * time.Second).Recover(func(err error) forecastFetched {
			return forecastFetched{err: err}
		}).PipeTo(ctx.Self())
		state.scheduler.RequestOnce(state.budgetInterval(), ctx.Self(), budgetTick{})
	case forecastFetched:
		if msg.err != nil {
			// keep previous forecasts and budget until the next tick
			state.logger.Error("controller@default forecast fetch failed", zap.Error(msg.err))
			return
		}
		state.handleBudgetPass(msg.raw)
	case domain.ChargerStatusUpdate:
		state.logger.Info("controller@default charger status", zap.String("status", string(msg.Status)))
		state.handleChargerStatus(msg.Status)
	case domain.GetOutputsRequest:
		state.logger.Debug("controller@default GetOutputsRequest")
		actorutil.ForRequest(msg).Respond(ctx, domain.GetOutputsResponse{
			Outputs: state.outputs(),
		})
	default:
		state.logger.Debug("controller@default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

// handleSignals runs once per signal tick. Energy accounting uses the
// power level that was active during the elapsed interval, so the order
// is: integrate first, then compute the new level.
func (state *ControllerActor) handleSignals(sig domain.Signals) {
	now := time.Now()
	elapsedMinutes := state.signalInterval().Minutes()
	if !state.lastSampleAt.IsZero() {
		elapsedMinutes = now.Sub(state.lastSampleAt).Minutes()
	}

	state.session.IncrementEnergy(elapsedMinutes)
	state.accuracy.AddSample(sig, elapsedMinutes)

	power := state.budget.ComputePowerLevel(sig, state.session.BudgetRemainingKWh())
	state.session.SetPowerLevel(power)

	state.lastSignals = sig
	state.lastSampleAt = now

	state.publishOutputs(false)
}

// handleBudgetPass runs once per budget tick with a fresh raw solar
// forecast. Learning happens against the raw hour-0 forecasts armed on the
// previous pass, then the corrected forecasts feed the budget.
func (state *ControllerActor) handleBudgetPass(rawSolar []float64) {
	rawSolar = service.TruncateHourly(rawSolar, domain.ForecastHours)

	state.loadForecaster.UpdateHistory(state.accuracy.LoadActualKWh())
	rawLoad := state.loadForecaster.RawForecast()

	bg := context.Background()
	pairs := state.accuracy.Rollover(rawSolar[0], rawLoad[0])
	for _, pair := range pairs {
		if err := state.learner.UpdateForecastBias(bg, pair.Kind, pair.ForecastKWh, pair.ActualKWh); err != nil {
			state.logger.Error("controller: forecast bias update failed",
				zap.String("kind", string(pair.Kind)), zap.Error(err))
		}
	}

	correctedSolar, err := state.corrector.Correct(domain.ForecastSolar, rawSolar)
	if err != nil {
		state.logger.Error("controller: solar forecast rejected", zap.Error(err))
		return
	}
	correctedLoad, err := state.corrector.Correct(domain.ForecastLoad, rawLoad)
	if err != nil {
		state.logger.Error("controller: load forecast rejected", zap.Error(err))
		return
	}
	state.forecasts = domain.Forecasts{
		Solar24hKWh: correctedSolar,
		Load24hKWh:  correctedLoad,
	}

	budgetKWh := state.budget.Compute24hBudget(state.forecasts, state.lastSignals)
	state.session.SetBudget(budgetKWh)

	if state.session.ChargeState() != domain.ChargeStateActiveSession {
		estimates := state.budget.ComputeSessionEstimates(state.forecasts, state.lastSignals, defaultProjectionMinutes)
		state.session.SetEstimates(estimates)
	}

	state.logger.Info("controller: budget updated",
		zap.Float64("budget_kwh", budgetKWh),
		zap.Float64("solar_bias", state.biasStore.SolarBias()),
		zap.Float64("load_bias", state.biasStore.LoadBias()))

	state.publishOutputs(true)
}

func (state *ControllerActor) handleChargerStatus(status domain.ChargerStatus) {
	wasActive := state.session.ChargeState() == domain.ChargeStateActiveSession

	if err := state.session.UpdateChargeState(context.Background(), status); err != nil {
		state.logger.Error("controller: charge state update failed", zap.Error(err))
	}

	// arm estimates at session start so finalize can learn from them
	if !wasActive && state.session.ChargeState() == domain.ChargeStateActiveSession {
		estimates := state.budget.ComputeSessionEstimates(state.forecasts, state.lastSignals, defaultProjectionMinutes)
		state.session.SetEstimates(estimates)
	}

	state.publishOutputs(false)
}

func (state *ControllerActor) outputs() domain.Outputs {
	st := state.biasStore.State()
	return domain.Outputs{
		Budget24hKWh:       state.session.BudgetRemainingKWh(),
		PowerLevelKW:       state.session.PowerLevelKW(),
		SessionStartTime:   state.session.StartTime(),
		SessionDurationMin: state.session.Duration().Minutes(),
		SessionEnergyKWh:   state.session.EnergyUsedKWh(),
		AvailableAfterKWh:  state.session.AvailableAfterKWh(),
		ChargeState:        state.session.ChargeState(),
		SolarBias:          st.SolarBias,
		LoadBias:           st.LoadBias,
		SessionBias:        st.SessionBias,
	}
}

func (state *ControllerActor) publishOutputs(withBiases bool) {
	if state.eventStream == nil {
		return
	}
	out := state.outputs()
	for _, ev := range events.OutputsToUpdateEvents(out) {
		state.eventStream.Publish(ev)
	}
	if withBiases {
		for _, ev := range events.BiasesToUpdateEvents(out) {
			state.eventStream.Publish(ev)
		}
	}
}

func (state *ControllerActor) signalInterval() time.Duration {
	return time.Duration(state.config.Control.SignalIntervalSeconds) * time.Second
}

func (state *ControllerActor) budgetInterval() time.Duration {
	return time.Duration(state.config.Control.BudgetIntervalMinutes) * time.Minute
}
