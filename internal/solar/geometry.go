package solar

import (
	"math"
	"time"

	"github.com/sixdouglas/suncalc"
)

// Position is the sun's apparent position from an observer.
type Position struct {
	// Azimuth in degrees clockwise from true north, [0, 360).
	Azimuth float64

	// Elevation in degrees above the horizon, refraction-corrected.
	// Negative when the sun is below the horizon.
	Elevation float64
}

// SunPosition computes the sun's apparent position for a site and instant.
//
// The underlying ephemeris reports azimuth from south (positive westward)
// and geometric altitude, both in radians. We convert to compass azimuth
// and apply Bennett's refraction correction so low-sun heat estimates
// match what the facade actually sees.
func SunPosition(at time.Time, latitude, longitude float64) Position {
	p := suncalc.GetPosition(at, latitude, longitude)

	azimuth := math.Mod(p.Azimuth*180/math.Pi+180, 360)
	if azimuth < 0 {
		azimuth += 360
	}

	elevation := p.Altitude * 180 / math.Pi

	return Position{
		Azimuth:   azimuth,
		Elevation: elevation + bennettRefraction(elevation),
	}
}

// bennettRefraction returns the atmospheric refraction in degrees for a
// geometric elevation in degrees (Bennett 1982). Meaningful near the
// horizon, negligible above ~45 degrees.
func bennettRefraction(elevation float64) float64 {
	if elevation < -1 {
		return 0
	}
	arcminutes := 1.02 / math.Tan((elevation+10.3/(elevation+5.11))*math.Pi/180)
	return arcminutes / 60
}

// AngleOfAttack computes how directly the sun strikes a vertical facade.
//
// wallAzimuth is the outward normal of the facade in compass degrees.
// The result is in degrees: 90 when the sun is perpendicular to the
// facade, falling to 0 as the sun slides parallel to it or climbs
// overhead. Returns 0 and backSide=true when the sun is behind the
// facade plane.
func AngleOfAttack(sun Position, wallAzimuth float64) (angle float64, backSide bool) {
	diff := math.Mod(sun.Azimuth-wallAzimuth+180, 360)
	if diff < 0 {
		diff += 360
	}
	diff -= 180

	if math.Abs(diff) > 90 {
		return 0, true
	}

	// Angular distance between the sun's direction and the facade
	// normal, combining horizontal offset and elevation.
	cosDistance := math.Cos(math.Abs(diff)*math.Pi/180) * math.Cos(sun.Elevation*math.Pi/180)
	if cosDistance < 0 {
		cosDistance = 0
	}
	distance := math.Acos(cosDistance) * 180 / math.Pi

	angle = 90 - distance
	if angle < 0 {
		angle = 0
	}
	return angle, false
}
