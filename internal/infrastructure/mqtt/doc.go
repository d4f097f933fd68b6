// Package mqtt provides the TLS transport to the Niko Home Control
// controller's hobby broker.
//
// It wraps eclipse/paho.mqtt.golang with a bounded initial retry budget,
// automatic re-subscription after reconnects, panic-safe message handlers,
// and sentinel errors suitable for errors.Is checks. The protocol layer
// (frames, demux, request/response) lives in internal/niko; this package
// only moves bytes.
package mqtt
