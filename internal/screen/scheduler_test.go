package screen

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jvanacker/solshade/internal/infrastructure/config"
	"github.com/jvanacker/solshade/internal/infrastructure/logging"
	"github.com/jvanacker/solshade/internal/solar"
)

// stubEvaluator returns a fixed heat per wall azimuth.
type stubEvaluator struct {
	mu   sync.Mutex
	heat map[float64]float64
}

func (e *stubEvaluator) Evaluate(wallAzimuth float64, at time.Time) solar.Sample {
	e.mu.Lock()
	defer e.mu.Unlock()
	return solar.Sample{At: at, Heat: e.heat[wallAzimuth]}
}

func (e *stubEvaluator) setHeat(wallAzimuth, heat float64) {
	e.mu.Lock()
	e.heat[wallAzimuth] = heat
	e.mu.Unlock()
}

// dispatchRecorder records position commands and can fail selectively.
type dispatchRecorder struct {
	mu       sync.Mutex
	commands []dispatchedCommand
	failUUID string
}

type dispatchedCommand struct {
	uuid     string
	position int
}

func (d *dispatchRecorder) dispatch(_ context.Context, deviceUUID string, position int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if deviceUUID == d.failUUID {
		return errors.New("device unreachable")
	}
	d.commands = append(d.commands, dispatchedCommand{uuid: deviceUUID, position: position})
	return nil
}

func (d *dispatchRecorder) all() []dispatchedCommand {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]dispatchedCommand, len(d.commands))
	copy(out, d.commands)
	return out
}

func newSchedulerFixture(t *testing.T, screens ...config.ScreenConfig) (*Scheduler, *Registry, *stubEvaluator, *dispatchRecorder) {
	t.Helper()

	registry := NewRegistry(config.ControllerConfig{
		Interval:           60,
		MinStepFloor:       5,
		FullCloseThreshold: 20,
	}, logging.Default())

	for _, cfg := range screens {
		if _, err := registry.Register(cfg); err != nil {
			t.Fatalf("Register(%s) error = %v", cfg.Name, err)
		}
	}

	evaluator := &stubEvaluator{heat: make(map[float64]float64)}
	recorder := &dispatchRecorder{}

	sched := NewScheduler(registry, evaluator, recorder.dispatch,
		time.Hour, logging.Default())
	return sched, registry, evaluator, recorder
}

func TestSchedulerEndToEndWestFacade(t *testing.T) {
	// A west screen with the sun blasting the facade: heat 25 is above
	// the threshold 20, so the first tick must drive it fully closed.
	sched, registry, evaluator, recorder := newSchedulerFixture(t, config.ScreenConfig{
		Name:        "living-west",
		DeviceUUID:  testUUID,
		WallAzimuth: 270,
	})
	evaluator.setHeat(270, 25)

	sched.tick()

	commands := recorder.all()
	if len(commands) != 1 {
		t.Fatalf("expected 1 command, got %d", len(commands))
	}
	if commands[0].uuid != testUUID || commands[0].position != 0 {
		t.Errorf("command = %+v, want %s to 0", commands[0], testUUID)
	}

	status, _ := registry.StatusOf("living-west")
	if !status.Driven || status.Position != 0 {
		t.Errorf("status = %+v, want driven at 0", status)
	}
	if status.LastHeat != 25 {
		t.Errorf("last heat = %v, want 25", status.LastHeat)
	}
}

func TestSchedulerHysteresisAcrossTicks(t *testing.T) {
	sched, _, evaluator, recorder := newSchedulerFixture(t, config.ScreenConfig{
		Name:        "s",
		DeviceUUID:  testUUID,
		WallAzimuth: 180,
	})

	// Tick 1: heat 10 -> target 50, fresh screen moves.
	evaluator.setHeat(180, 10)
	sched.tick()

	// Tick 2: heat 9.5 -> target 53, within the 5 point step: no move.
	evaluator.setHeat(180, 9.5)
	sched.tick()

	// Tick 3: heat 4 -> target 80: moves.
	evaluator.setHeat(180, 4)
	sched.tick()

	commands := recorder.all()
	if len(commands) != 2 {
		t.Fatalf("expected 2 commands, got %d: %+v", len(commands), commands)
	}
	if commands[0].position != 50 || commands[1].position != 80 {
		t.Errorf("positions = %d, %d; want 50, 80", commands[0].position, commands[1].position)
	}
}

func TestSchedulerFaultIsolation(t *testing.T) {
	uuidA := "3f2a6c9e-1111-4222-8333-444455556661"
	uuidB := "3f2a6c9e-1111-4222-8333-444455556662"

	sched, registry, evaluator, recorder := newSchedulerFixture(t,
		config.ScreenConfig{Name: "broken", DeviceUUID: uuidA, WallAzimuth: 90},
		config.ScreenConfig{Name: "fine", DeviceUUID: uuidB, WallAzimuth: 270},
	)
	recorder.failUUID = uuidA
	evaluator.setHeat(90, 30)
	evaluator.setHeat(270, 30)

	sched.tick()

	// The broken screen must not block the healthy one.
	commands := recorder.all()
	if len(commands) != 1 || commands[0].uuid != uuidB {
		t.Fatalf("commands = %+v, want only %s", commands, uuidB)
	}

	// The broken screen keeps its undriven state and retries next tick.
	status, _ := registry.StatusOf("broken")
	if status.Driven {
		t.Error("failed dispatch must not mark the screen driven")
	}

	recorder.failUUID = ""
	sched.tick()

	status, _ = registry.StatusOf("broken")
	if !status.Driven || status.Position != 0 {
		t.Errorf("status after retry = %+v, want driven at 0", status)
	}
}

func TestSchedulerEvaluationOrder(t *testing.T) {
	uuidA := "3f2a6c9e-1111-4222-8333-444455556661"
	uuidB := "3f2a6c9e-1111-4222-8333-444455556662"

	sched, _, evaluator, recorder := newSchedulerFixture(t,
		config.ScreenConfig{Name: "first", DeviceUUID: uuidA, WallAzimuth: 90},
		config.ScreenConfig{Name: "second", DeviceUUID: uuidB, WallAzimuth: 270},
	)
	evaluator.setHeat(90, 30)
	evaluator.setHeat(270, 30)

	sched.tick()

	commands := recorder.all()
	if len(commands) != 2 || commands[0].uuid != uuidA || commands[1].uuid != uuidB {
		t.Errorf("commands = %+v, want registration order %s then %s", commands, uuidA, uuidB)
	}
}

func TestSchedulerStartStop(t *testing.T) {
	sched, _, evaluator, recorder := newSchedulerFixture(t, config.ScreenConfig{
		Name:        "s",
		DeviceUUID:  testUUID,
		WallAzimuth: 270,
	})
	evaluator.setHeat(270, 25)

	ctx := context.Background()
	if err := sched.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := sched.Start(ctx); err != nil {
		t.Errorf("second Start() error = %v, want no-op", err)
	}
	if !sched.IsRunning() {
		t.Error("IsRunning() false after double Start")
	}

	// The first tick runs immediately.
	deadline := time.After(2 * time.Second)
	for len(recorder.all()) == 0 {
		select {
		case <-deadline:
			t.Fatal("no command after Start")
		case <-time.After(5 * time.Millisecond):
		}
	}

	sched.Stop()
	if sched.IsRunning() {
		t.Error("IsRunning() true after Stop")
	}

	// Stop again is a no-op.
	sched.Stop()

	// Restart works.
	if err := sched.Start(ctx); err != nil {
		t.Fatalf("restart error = %v", err)
	}
	sched.Stop()
}

func TestSchedulerStopDrainsInFlightTick(t *testing.T) {
	registry := NewRegistry(config.ControllerConfig{
		Interval:           60,
		MinStepFloor:       5,
		FullCloseThreshold: 20,
	}, logging.Default())
	if _, err := registry.Register(config.ScreenConfig{
		Name:        "s",
		DeviceUUID:  testUUID,
		WallAzimuth: 270,
	}); err != nil {
		t.Fatal(err)
	}

	evaluator := &stubEvaluator{heat: map[float64]float64{270: 25}}

	// Dispatch blocks until released and fails if its context was
	// cancelled, the way a gateway request would.
	entered := make(chan struct{})
	release := make(chan struct{})
	dispatch := func(ctx context.Context, _ string, _ int) error {
		close(entered)
		<-release
		return ctx.Err()
	}

	sched := NewScheduler(registry, evaluator, dispatch, time.Hour, logging.Default())
	if err := sched.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch never started")
	}

	stopped := make(chan struct{})
	go func() {
		sched.Stop()
		close(stopped)
	}()

	close(release)

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() did not return after the tick drained")
	}

	// The command in flight during Stop must have completed and been
	// recorded, not been cancelled mid round trip.
	status, _ := registry.StatusOf("s")
	if !status.Driven || status.Position != 0 {
		t.Errorf("status = %+v, want driven at 0 after drained stop", status)
	}
}

func TestSchedulerRecordsHistory(t *testing.T) {
	sched, _, evaluator, _ := newSchedulerFixture(t, config.ScreenConfig{
		Name:        "s",
		DeviceUUID:  testUUID,
		WallAzimuth: 270,
	})
	evaluator.setHeat(270, 25)

	var recorded []HistoryEntry
	sched.SetHistory(historyFunc(func(_ context.Context, e HistoryEntry) error {
		recorded = append(recorded, e)
		return nil
	}))

	sched.tick()

	if len(recorded) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(recorded))
	}
	if recorded[0].ScreenName != "s" || recorded[0].Position != 0 || recorded[0].Heat != 25 {
		t.Errorf("entry = %+v, want s at 0 with heat 25", recorded[0])
	}
}

// historyFunc adapts a func to HistoryRecorder.
type historyFunc func(ctx context.Context, entry HistoryEntry) error

func (f historyFunc) RecordCommand(ctx context.Context, entry HistoryEntry) error {
	return f(ctx, entry)
}
