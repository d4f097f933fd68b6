// Package screen drives motorized facade sunblinds from solar heat gain.
//
// A Registry holds the configured screens; the Scheduler evaluates them
// on a fixed interval, applying a hysteresis rule that fully closes a
// screen above its heat threshold and opens it proportionally below,
// while suppressing motor moves smaller than the screen's minimum step.
// Dispatched commands are journalled to SQLite and optionally mirrored
// to InfluxDB and live websocket clients.
//
// A screen that has never been driven always moves on its first
// evaluation, even when the target lies within the minimum step of the
// nominal fully-open starting position. The physical screen may have
// been moved by hand or by another client while the controller was
// down, so the first tick establishes known state rather than trusting
// an assumed position.
package screen
