package mqtt

import "errors"

// Sentinel errors for MQTT operations.
//
// These allow callers to check error types with errors.Is().
var (
	// ErrConnectionFailed indicates the initial connection could not be
	// established within the configured retry budget.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	// ErrNotConnected indicates an operation was attempted while disconnected.
	ErrNotConnected = errors.New("mqtt: not connected")

	// ErrPublishFailed indicates a publish operation failed.
	ErrPublishFailed = errors.New("mqtt: publish failed")

	// ErrSubscribeFailed indicates a subscribe operation failed.
	ErrSubscribeFailed = errors.New("mqtt: subscribe failed")

	// ErrUnsubscribeFailed indicates an unsubscribe operation failed.
	ErrUnsubscribeFailed = errors.New("mqtt: unsubscribe failed")

	// ErrInvalidTopic indicates a malformed or empty topic.
	ErrInvalidTopic = errors.New("mqtt: invalid topic")
)
