// Package niko implements the Niko Home Control hobby API.
//
// The hobby API is MQTT-over-TLS on the controller itself: four services
// (devices, locations, notification, system), each with fixed cmd, rsp,
// evt and err topics and JSON frames routed on a method field. There are
// no correlation IDs; responses arrive in command order per service.
//
// The Gateway type wraps a transport (see internal/infrastructure/mqtt),
// demultiplexes incoming frames to typed callbacks, and emulates
// request/response with per-topic FIFO waiters. Command helpers shape the
// payloads the controller expects, with property values as decimal
// strings.
package niko
