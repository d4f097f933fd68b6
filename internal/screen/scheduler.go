package screen

import (
	"context"
	"sync"
	"time"

	"github.com/jvanacker/solshade/internal/infrastructure/logging"
	"github.com/jvanacker/solshade/internal/solar"
)

// Telemetry receives evaluation and command data points. The influxdb
// writer implements it; a nil Telemetry disables it.
type Telemetry interface {
	WriteHeatSample(screenName string, sample solar.Sample)
	WritePositionCommand(screenName string, position int, heat float64)
}

// Broadcaster pushes live evaluation results to connected clients. The
// API's websocket hub implements it; a nil Broadcaster disables it.
type Broadcaster interface {
	BroadcastEvaluation(status Status, decision Decision, moved bool)
}

// Scheduler drives all registered screens on a fixed interval.
//
// Each tick it evaluates the sun's heat gain per facade, applies the
// hysteresis decision, and dispatches position commands. A failing
// screen never blocks the others; its error is logged and the screen is
// retried next tick with its previous state intact.
type Scheduler struct {
	registry  *Registry
	evaluator solar.Evaluator
	dispatch  PositionFunc
	interval  time.Duration
	logger    *logging.Logger

	// Optional hooks.
	history   HistoryRecorder
	telemetry Telemetry
	broadcast Broadcaster

	// now is the clock; replaced in tests.
	now func() time.Time

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewScheduler creates a stopped scheduler.
//
// Parameters:
//   - registry: Screens to drive
//   - evaluator: Solar model for the site
//   - dispatch: Sends position commands to devices
//   - interval: Evaluation period
//   - logger: Structured logger
func NewScheduler(registry *Registry, evaluator solar.Evaluator, dispatch PositionFunc,
	interval time.Duration, logger *logging.Logger) *Scheduler {
	return &Scheduler{
		registry:  registry,
		evaluator: evaluator,
		dispatch:  dispatch,
		interval:  interval,
		logger:    logger,
		now:       time.Now,
	}
}

// SetHistory attaches a command history recorder.
func (s *Scheduler) SetHistory(h HistoryRecorder) { s.history = h }

// SetTelemetry attaches a telemetry writer.
func (s *Scheduler) SetTelemetry(t Telemetry) { s.telemetry = t }

// SetBroadcaster attaches a live event broadcaster.
func (s *Scheduler) SetBroadcaster(b Broadcaster) { s.broadcast = b }

// Start begins the evaluation loop.
//
// The first tick runs immediately so screens take their correct position
// at startup rather than after one full interval. Start on a running
// scheduler is a no-op.
//
// Parameters:
//   - ctx: Stops the loop when done, checked between ticks
//
// Returns:
//   - error: Always nil; kept for lifecycle symmetry with the other components
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Debug("scheduler already running")
		return nil
	}

	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stop, s.done
	s.mu.Unlock()

	go s.run(ctx, stop, done)

	s.logger.Info("scheduler started",
		"interval", s.interval.String(),
		"screens", s.registry.Len(),
	)
	return nil
}

// Stop halts the evaluation loop, letting an in-flight tick run to
// completion before returning. A command already handed to the gateway
// finishes its round trip and is recorded; nothing is abandoned half
// dispatched. Stopping a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stop := s.stop
	done := s.done
	s.mu.Unlock()

	close(stop)
	<-done

	s.logger.Info("scheduler stopped")
}

// IsRunning reports whether the loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// run is the evaluation loop. Shutdown, whether via Stop or the parent
// context, is consulted only between ticks so a tick always completes.
func (s *Scheduler) run(ctx context.Context, stop, done chan struct{}) {
	defer close(done)

	s.tick()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// tick evaluates every screen once, in registration order. It runs to
// completion with a context independent of the loop's lifetime: a
// command already published must keep waiting for its response so the
// registry never diverges from the physical screen at shutdown.
func (s *Scheduler) tick() {
	ctx := context.Background()
	at := s.now()

	for _, screen := range s.registry.Screens() {
		s.evaluateScreen(ctx, screen, at)
	}
}

// evaluateScreen runs the solar model and hysteresis for one screen and
// dispatches a motor command when warranted.
func (s *Scheduler) evaluateScreen(ctx context.Context, screen *Screen, at time.Time) {
	sample := s.evaluator.Evaluate(screen.WallAzimuth, at)
	s.registry.recordEvaluation(screen.Name, sample.Heat, at)

	if s.telemetry != nil {
		s.telemetry.WriteHeatSample(screen.Name, sample)
	}

	decision := screen.Decide(sample.Heat)

	moved := false
	if decision.Move {
		if err := s.dispatch(ctx, screen.DeviceUUID, decision.Target); err != nil {
			// Keep previous state; the move is retried next tick.
			s.logger.Error("position dispatch failed",
				"screen", screen.Name,
				"device", screen.DeviceUUID,
				"target", decision.Target,
				"error", err,
			)
		} else {
			screen.markDriven(decision.Target)
			moved = true

			s.logger.Info("screen moved",
				"screen", screen.Name,
				"position", decision.Target,
				"heat", sample.Heat,
			)

			if s.history != nil {
				if err := s.history.RecordCommand(ctx, HistoryEntry{
					ScreenName: screen.Name,
					DeviceUUID: screen.DeviceUUID,
					Heat:       sample.Heat,
					Position:   decision.Target,
				}); err != nil {
					s.logger.Warn("recording command history failed",
						"screen", screen.Name, "error", err)
				}
			}
			if s.telemetry != nil {
				s.telemetry.WritePositionCommand(screen.Name, decision.Target, sample.Heat)
			}
		}
	}

	if s.broadcast != nil {
		if status, ok := s.registry.StatusOf(screen.Name); ok {
			s.broadcast.BroadcastEvaluation(status, decision, moved)
		}
	}
}
