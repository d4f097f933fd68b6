package screen

import "math"

// Decide maps a heat gain to a target position with hysteresis.
//
// At or above the screen's full-close threshold the target is 0 (fully
// closed). Below it, the target opens linearly with falling heat:
//
//	target = 100 - round(100 * heat / threshold)
//
// so heat just under the threshold keeps the screen nearly closed and
// zero heat opens it fully. The screen only moves when the target
// differs from the last dispatched position by at least MinStep; smaller
// corrections are suppressed and the decision reports the held position.
//
// A screen that has never been driven always moves, so state is
// established on the first evaluation after startup.
func (s *Screen) Decide(heat float64) Decision {
	var target int
	if heat >= s.FullCloseThreshold {
		target = 0
	} else {
		target = 100 - int(math.Round(100*heat/s.FullCloseThreshold))
		if target < 0 {
			target = 0
		}
		if target > 100 {
			target = 100
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.driven {
		return Decision{Target: target, Move: true}
	}

	if math.Abs(float64(target-s.lastPosition)) < s.MinStep {
		return Decision{Target: s.lastPosition, Move: false}
	}

	return Decision{Target: target, Move: true}
}

// markDriven records a successfully dispatched position. Only called
// after the motor command was acknowledged, so a failed dispatch leaves
// the previous state in place and the move is retried next tick.
func (s *Screen) markDriven(position int) {
	s.mu.Lock()
	s.lastPosition = position
	s.driven = true
	s.mu.Unlock()
}

// Position returns the last successfully dispatched position and
// whether the screen has been driven at all.
func (s *Screen) Position() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPosition, s.driven
}
