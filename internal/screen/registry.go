package screen

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jvanacker/solshade/internal/infrastructure/config"
	"github.com/jvanacker/solshade/internal/infrastructure/logging"
)

// Registry sentinel errors.
var (
	// ErrDuplicateScreen indicates a screen name registered twice.
	ErrDuplicateScreen = errors.New("screen: duplicate screen")

	// ErrInvalidScreen indicates a screen definition that cannot be
	// registered.
	ErrInvalidScreen = errors.New("screen: invalid screen")
)

// Registry holds the screens under control, in registration order.
//
// Evaluation order follows registration order, so config order is the
// order screens are driven each tick.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Registry struct {
	mu      sync.RWMutex
	screens []*Screen
	byName  map[string]*Screen

	// lastHeat and lastEvaluated feed API snapshots.
	lastHeat      map[string]float64
	lastEvaluated map[string]time.Time

	minStepFloor     float64
	defaultThreshold float64
	logger           *logging.Logger
}

// NewRegistry creates an empty registry.
//
// Parameters:
//   - cfg: Controller settings providing the min-step floor and the
//     default full-close threshold
//   - logger: Structured logger
func NewRegistry(cfg config.ControllerConfig, logger *logging.Logger) *Registry {
	return &Registry{
		byName:           make(map[string]*Screen),
		lastHeat:         make(map[string]float64),
		lastEvaluated:    make(map[string]time.Time),
		minStepFloor:     cfg.MinStepFloor,
		defaultThreshold: cfg.FullCloseThreshold,
		logger:           logger,
	}
}

// Register adds a screen from its configuration.
//
// A zero full-close threshold inherits the controller default. A min
// step below the floor is raised to it with a warning; very small steps
// make the motor hunt on solar noise.
//
// Returns:
//   - *Screen: The registered screen
//   - error: ErrDuplicateScreen or ErrInvalidScreen (wrapped)
func (r *Registry) Register(cfg config.ScreenConfig) (*Screen, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidScreen)
	}
	if cfg.DeviceUUID == "" {
		return nil, fmt.Errorf("%w: %s: device_uuid is required", ErrInvalidScreen, cfg.Name)
	}
	if _, err := uuid.Parse(cfg.DeviceUUID); err != nil {
		return nil, fmt.Errorf("%w: %s: device_uuid %q is not a valid UUID", ErrInvalidScreen, cfg.Name, cfg.DeviceUUID)
	}
	if cfg.WallAzimuth < 0 || cfg.WallAzimuth >= 360 {
		return nil, fmt.Errorf("%w: %s: wall_azimuth %.1f outside [0, 360)", ErrInvalidScreen, cfg.Name, cfg.WallAzimuth)
	}

	threshold := cfg.FullCloseThreshold
	if threshold <= 0 {
		threshold = r.defaultThreshold
	}

	minStep := cfg.MinStep
	if minStep < r.minStepFloor {
		if minStep > 0 {
			r.logger.Warn("raising screen min_step to floor",
				"screen", cfg.Name,
				"requested", minStep,
				"floor", r.minStepFloor,
			)
		}
		minStep = r.minStepFloor
	}

	screen := &Screen{
		Name:               cfg.Name,
		DeviceUUID:         cfg.DeviceUUID,
		WallAzimuth:        math.Mod(cfg.WallAzimuth, 360),
		FullCloseThreshold: threshold,
		MinStep:            minStep,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[screen.Name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateScreen, screen.Name)
	}

	r.screens = append(r.screens, screen)
	r.byName[screen.Name] = screen

	r.logger.Info("screen registered",
		"screen", screen.Name,
		"device", screen.DeviceUUID,
		"wall_azimuth", screen.WallAzimuth,
		"threshold", screen.FullCloseThreshold,
		"min_step", screen.MinStep,
	)

	return screen, nil
}

// Screens returns the registered screens in registration order.
// The returned slice is a copy; the screens themselves are shared.
func (r *Registry) Screens() []*Screen {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Screen, len(r.screens))
	copy(out, r.screens)
	return out
}

// Get returns a screen by name.
func (r *Registry) Get(name string) (*Screen, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byName[name]
	return s, ok
}

// Len returns the number of registered screens.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.screens)
}

// recordEvaluation stores per-screen evaluation data for API snapshots.
func (r *Registry) recordEvaluation(name string, heat float64, at time.Time) {
	r.mu.Lock()
	r.lastHeat[name] = heat
	r.lastEvaluated[name] = at
	r.mu.Unlock()
}

// StatusAll returns API snapshots for every screen in registration order.
func (r *Registry) StatusAll() []Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Status, 0, len(r.screens))
	for _, s := range r.screens {
		out = append(out, r.statusLocked(s))
	}
	return out
}

// StatusOf returns the API snapshot for one screen.
func (r *Registry) StatusOf(name string) (Status, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byName[name]
	if !ok {
		return Status{}, false
	}
	return r.statusLocked(s), true
}

// statusLocked builds a snapshot; callers hold at least a read lock.
func (r *Registry) statusLocked(s *Screen) Status {
	position, driven := s.Position()
	return Status{
		Name:               s.Name,
		DeviceUUID:         s.DeviceUUID,
		WallAzimuth:        s.WallAzimuth,
		FullCloseThreshold: s.FullCloseThreshold,
		MinStep:            s.MinStep,
		Position:           position,
		Driven:             driven,
		LastHeat:           r.lastHeat[s.Name],
		LastEvaluated:      r.lastEvaluated[s.Name],
	}
}
