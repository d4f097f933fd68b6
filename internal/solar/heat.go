package solar

import (
	"math"
	"time"
)

// Sample is the solar state for one facade at one instant.
type Sample struct {
	At       time.Time
	Sun      Position
	Angle    float64 // angle of attack on the facade, degrees
	BackSide bool    // sun is behind the facade plane
	Heat     float64 // relative heat gain, [0, 100]
}

// HeatGain estimates the relative solar heat load on a vertical facade.
//
// The estimate combines three factors:
//   - how directly the sun strikes the facade (angle of attack)
//   - how steeply it stands above the horizon (a high sun mostly hits
//     the roof, not the glazing)
//   - atmospheric attenuation along the slant path, which grows sharply
//     at low elevations
//
// The result is a unitless score clamped to [0, 100]; 100 is a sun
// square onto the facade through a clear low-mass atmosphere. The sun
// below the horizon or behind the facade contributes nothing.
func HeatGain(sun Position, wallAzimuth float64) float64 {
	if sun.Elevation < 0 {
		return 0
	}

	angle, backSide := AngleOfAttack(sun, wallAzimuth)
	if backSide {
		return 0
	}

	// Floor the elevation used for the air-mass term so the slant-path
	// attenuation stays finite at the horizon.
	elevation := math.Max(sun.Elevation, 1)
	attenuation := math.Exp(-0.2 / math.Sin(elevation*math.Pi/180))

	incidence := math.Cos(angle * math.Pi / 180)
	steepness := math.Sin((90 - elevation) * math.Pi / 180)

	heat := incidence * steepness * attenuation * 100

	if heat < 0 {
		return 0
	}
	if heat > 100 {
		return 100
	}
	return heat
}

// Evaluator computes facade samples; the scheduler depends on this
// interface so tests can substitute fixed heat values.
type Evaluator interface {
	Evaluate(wallAzimuth float64, at time.Time) Sample
}

// Site evaluates solar samples for a fixed geographic location.
type Site struct {
	Latitude  float64
	Longitude float64
}

// Evaluate computes the full facade sample for one instant.
func (s Site) Evaluate(wallAzimuth float64, at time.Time) Sample {
	sun := SunPosition(at, s.Latitude, s.Longitude)
	angle, backSide := AngleOfAttack(sun, wallAzimuth)

	return Sample{
		At:       at,
		Sun:      sun,
		Angle:    angle,
		BackSide: backSide,
		Heat:     HeatGain(sun, wallAzimuth),
	}
}
