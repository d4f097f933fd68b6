package screen

import (
	"context"
	"sync"
	"time"
)

// Screen is one motorized sunblind bound to a facade.
//
// Position is percent open: 100 fully open, 0 fully closed.
type Screen struct {
	// Name identifies the screen in config, logs and the API.
	Name string

	// DeviceUUID is the Niko device driven by this screen.
	DeviceUUID string

	// WallAzimuth is the facade's outward normal in compass degrees.
	WallAzimuth float64

	// FullCloseThreshold is the heat gain at or above which the screen
	// closes fully.
	FullCloseThreshold float64

	// MinStep is the smallest position change worth moving the motor
	// for, in percent. Suppresses hunting around slow solar drift.
	MinStep float64

	// lastPosition is the position most recently dispatched with
	// success. Meaningless until driven is true. Guarded by mu; the
	// scheduler writes it while API snapshots read it.
	mu           sync.Mutex
	lastPosition int
	driven       bool
}

// Decision is the outcome of evaluating one screen against the current
// heat gain.
type Decision struct {
	// Target is the desired position in percent open.
	Target int

	// Move reports whether the target differs enough from the last
	// dispatched position to be worth a motor command.
	Move bool
}

// PositionFunc dispatches a position command to a device. The gateway's
// SetPosition satisfies it.
type PositionFunc func(ctx context.Context, deviceUUID string, position int) error

// Status is a read-only snapshot of one screen for the API.
type Status struct {
	Name               string    `json:"name"`
	DeviceUUID         string    `json:"device_uuid"`
	WallAzimuth        float64   `json:"wall_azimuth"`
	FullCloseThreshold float64   `json:"full_close_threshold"`
	MinStep            float64   `json:"min_step"`
	Position           int       `json:"position"`
	Driven             bool      `json:"driven"`
	LastHeat           float64   `json:"last_heat"`
	LastEvaluated      time.Time `json:"last_evaluated"`
}
