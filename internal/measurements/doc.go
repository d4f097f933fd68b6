// Package measurements queries the Niko controller's measurements REST
// API: latest, raw, aggregated and total readings per device. It shares
// the hobby JWT with the MQTT gateway, sent as a bearer token.
package measurements
