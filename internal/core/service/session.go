package service

import (
	"context"
	"time"

	"github.com/neobobkrause/vicente-energy/internal/core/domain"

	"go.uber.org/zap"
)

// SessionController tracks one charging session's lifecycle from charger
// status transitions, accumulates session energy and feeds the bias
// learner when a session ends. The machine cycles indefinitely:
//
//	unplugged -> active_session -> plugged_post_session -> ...
//
// It is owned by a single control task; none of its methods are safe for
// concurrent use.
type SessionController struct {
	learner *BiasLearner
	store   *BiasStore
	logger  *zap.Logger

	chargeState        domain.ChargeState
	startTime          *time.Time
	energyUsedKWh      float64
	duration           time.Duration
	currentPowerKW     float64
	budgetRemainingKWh float64
	estimates          *domain.SessionEstimates

	now func() time.Time
}

func NewSessionController(learner *BiasLearner, store *BiasStore, logger *zap.Logger) *SessionController {
	return &SessionController{
		learner:     learner,
		store:       store,
		logger:      logger,
		chargeState: domain.ChargeStateUnplugged,
		now:         time.Now,
	}
}

// UpdateChargeState drives the state machine with an observed charger
// status. A session finalization that fails to persist surfaces the error;
// the state transition itself always completes.
func (s *SessionController) UpdateChargeState(ctx context.Context, status domain.ChargerStatus) error {
	old := s.chargeState
	var finalizeErr error

	switch status {
	case domain.ChargerStatusCharging:
		if old != domain.ChargeStateActiveSession {
			start := s.now()
			s.chargeState = domain.ChargeStateActiveSession
			s.startTime = &start
			s.energyUsedKWh = 0
			s.duration = 0
			s.logger.Info("charging session started", zap.Time("start", start))
		}
	case domain.ChargerStatusPlugged:
		s.chargeState = domain.ChargeStatePluggedNoSession
	case domain.ChargerStatusDone:
		if old == domain.ChargeStateActiveSession {
			finalizeErr = s.finalizeSession(ctx)
		}
		s.chargeState = domain.ChargeStatePluggedPostSession
	case domain.ChargerStatusUnplugged:
		if old == domain.ChargeStateActiveSession {
			finalizeErr = s.finalizeSession(ctx)
		}
		s.chargeState = domain.ChargeStateUnplugged
	}

	if old != s.chargeState {
		s.logger.Debug("charge state transition",
			zap.String("from", string(old)), zap.String("to", string(s.chargeState)))
	}
	return finalizeErr
}

// IncrementEnergy accounts the energy drawn since the last signal tick.
// No-op unless a session is active.
func (s *SessionController) IncrementEnergy(elapsedMinutes float64) {
	if s.chargeState != domain.ChargeStateActiveSession {
		return
	}
	addedKWh := s.currentPowerKW * elapsedMinutes / 60.0
	s.energyUsedKWh += addedKWh
	s.budgetRemainingKWh -= addedKWh
	if s.startTime != nil {
		s.duration = s.now().Sub(*s.startTime)
	}
}

// SetPowerLevel records the power level chosen by the budget engine for
// this tick.
func (s *SessionController) SetPowerLevel(powerKW float64) {
	s.currentPowerKW = powerKW
}

// SetBudget replaces the remaining budget with a freshly computed one.
func (s *SessionController) SetBudget(budgetKWh float64) {
	s.budgetRemainingKWh = budgetKWh
}

// SetEstimates stores the latest session projection. Its RawKWh is what
// session learning compares against when the session ends.
func (s *SessionController) SetEstimates(estimates domain.SessionEstimates) {
	s.estimates = &estimates
}

func (s *SessionController) ChargeState() domain.ChargeState { return s.chargeState }
func (s *SessionController) StartTime() *time.Time           { return s.startTime }
func (s *SessionController) EnergyUsedKWh() float64          { return s.energyUsedKWh }
func (s *SessionController) Duration() time.Duration         { return s.duration }
func (s *SessionController) PowerLevelKW() float64           { return s.currentPowerKW }
func (s *SessionController) BudgetRemainingKWh() float64     { return s.budgetRemainingKWh }

// AvailableAfterKWh returns the budget expected to remain after the
// projected session, carried from the last estimate computation.
func (s *SessionController) AvailableAfterKWh() float64 {
	if s.estimates == nil {
		return 0
	}
	return s.estimates.AvailableAfterKWh
}

// finalizeSession freezes the session duration, learns the session bias
// from the raw (pre-bias) estimate vs actual usage and records the usage
// as the last session's kWh.
func (s *SessionController) finalizeSession(ctx context.Context) error {
	if s.startTime != nil {
		s.duration = s.now().Sub(*s.startTime)
	}

	var estimatedKWh float64
	if s.estimates != nil {
		estimatedKWh = s.estimates.RawKWh
	}
	if err := s.learner.UpdateSessionBias(ctx, estimatedKWh, s.energyUsedKWh); err != nil {
		return err
	}
	if err := s.store.SaveLastSession(ctx, s.energyUsedKWh); err != nil {
		return err
	}
	s.logger.Info("charging session finalized",
		zap.Float64("energy_kwh", s.energyUsedKWh),
		zap.Duration("duration", s.duration))
	return nil
}
