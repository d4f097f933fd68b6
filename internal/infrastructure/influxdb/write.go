package influxdb

import (
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"

	"github.com/jvanacker/solshade/internal/solar"
)

// timeNow is the clock; replaced in tests.
var timeNow = time.Now

// Measurement names.
const (
	measurementHeat     = "solar_heat"
	measurementPosition = "screen_position"
)

// WriteHeatSample records one solar evaluation for a screen.
//
// Fields: heat gain, sun azimuth/elevation, angle of attack, and whether
// the sun is behind the facade. Non-blocking.
func (c *Client) WriteHeatSample(screenName string, sample solar.Sample) {
	point := influxdb2.NewPoint(
		measurementHeat,
		map[string]string{
			"screen": screenName,
		},
		map[string]interface{}{
			"heat":      sample.Heat,
			"azimuth":   sample.Sun.Azimuth,
			"elevation": sample.Sun.Elevation,
			"angle":     sample.Angle,
			"back_side": sample.BackSide,
		},
		sample.At,
	)
	c.writeAPI.WritePoint(point)
}

// WritePositionCommand records one dispatched motor command.
func (c *Client) WritePositionCommand(screenName string, position int, heat float64) {
	point := influxdb2.NewPoint(
		measurementPosition,
		map[string]string{
			"screen": screenName,
		},
		map[string]interface{}{
			"position": position,
			"heat":     heat,
		},
		timeNow(),
	)
	c.writeAPI.WritePoint(point)
}
