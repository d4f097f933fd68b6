package niko

import "errors"

// Sentinel errors for gateway operations.
var (
	// ErrMalformedFrame indicates a payload that could not be decoded
	// as a hobby API frame.
	ErrMalformedFrame = errors.New("niko: malformed frame")

	// ErrRequestTimeout indicates no response arrived within the
	// request deadline.
	ErrRequestTimeout = errors.New("niko: request timeout")

	// ErrClosed indicates the gateway was closed while a request was
	// outstanding, or an operation was attempted after Close.
	ErrClosed = errors.New("niko: gateway closed")

	// ErrCommandRejected indicates the controller answered a command
	// with an error frame. Use AsAPIError to inspect the code.
	ErrCommandRejected = errors.New("niko: command rejected")

	// ErrDeviceNotFound indicates a convenience query could not locate
	// the requested device.
	ErrDeviceNotFound = errors.New("niko: device not found")

	// ErrInvalidToken indicates the hobby token could not be parsed.
	ErrInvalidToken = errors.New("niko: invalid token")
)

// APIError carries the error code and message from a controller error frame.
type APIError struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message == "" {
		return "niko: controller error " + e.Code
	}
	return "niko: controller error " + e.Code + ": " + e.Message
}

// Is makes APIError match ErrCommandRejected in errors.Is chains.
func (e *APIError) Is(target error) bool {
	return target == ErrCommandRejected
}
