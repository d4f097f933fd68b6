// Package influxdb provides optional telemetry for solshade.
//
// Heat samples and dispatched position commands are written as batched,
// asynchronous points. The package is wired only when influxdb.enabled
// is set; the control loop runs fine without it.
package influxdb
