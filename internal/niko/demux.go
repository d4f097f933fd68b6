package niko

import (
	"strings"
)

// Typed events delivered to registered callbacks.

// DeviceEvent is a devices-service event, one per device in the frame.
type DeviceEvent struct {
	Method string
	Device Device
}

// LocationEvent is a locations-service event.
type LocationEvent struct {
	Method   string
	Location Location
}

// NotificationEvent is a raised or updated controller alert.
type NotificationEvent struct {
	Method       string
	Notification Notification
}

// SystemEvent carries controller time or system information.
type SystemEvent struct {
	Method     string
	TimeInfo   *TimeInfo
	SystemInfo *SystemInfo
}

// ErrorEvent is a spontaneous error frame from an err topic.
type ErrorEvent struct {
	Topic   string
	Method  string
	Code    string
	Message string
}

// Callback signatures. Callbacks run on the transport's handler
// goroutine and must not block.
type (
	DeviceCallback       func(DeviceEvent)
	LocationCallback     func(LocationEvent)
	NotificationCallback func(NotificationEvent)
	SystemCallback       func(SystemEvent)
	ErrorCallback        func(ErrorEvent)
)

// OnDevice registers a callback for device events.
// Callbacks fire in registration order.
func (g *Gateway) OnDevice(cb DeviceCallback) {
	g.callbackMu.Lock()
	g.deviceCallbacks = append(g.deviceCallbacks, cb)
	g.callbackMu.Unlock()
}

// OnLocation registers a callback for location events.
func (g *Gateway) OnLocation(cb LocationCallback) {
	g.callbackMu.Lock()
	g.locationCallbacks = append(g.locationCallbacks, cb)
	g.callbackMu.Unlock()
}

// OnNotification registers a callback for notification events.
func (g *Gateway) OnNotification(cb NotificationCallback) {
	g.callbackMu.Lock()
	g.notificationCallbacks = append(g.notificationCallbacks, cb)
	g.callbackMu.Unlock()
}

// OnSystem registers a callback for time and system info events.
func (g *Gateway) OnSystem(cb SystemCallback) {
	g.callbackMu.Lock()
	g.systemCallbacks = append(g.systemCallbacks, cb)
	g.callbackMu.Unlock()
}

// OnError registers a callback for error frames.
func (g *Gateway) OnError(cb ErrorCallback) {
	g.callbackMu.Lock()
	g.errorCallbacks = append(g.errorCallbacks, cb)
	g.callbackMu.Unlock()
}

// handleMessage is the single entry point for every subscribed topic.
//
// Routing order:
//  1. A pending request waiter on this topic consumes the frame.
//  2. Error frames go to the error callbacks and stop.
//  3. Event frames route on their method prefix to the typed callbacks.
//
// Malformed payloads are logged and dropped; unknown methods are dropped
// silently so new controller firmware does not spam the log.
func (g *Gateway) handleMessage(topic string, payload []byte) error {
	frame, err := decodeFrame(payload)
	if err != nil {
		g.logger.Warn("dropping undecodable frame", "topic", topic, "error", err)
		return nil
	}

	if g.resolveRequest(topic, frame) {
		return nil
	}

	if frame.IsError() {
		g.dispatchError(topic, frame)
		return nil
	}

	g.dispatchEvent(topic, frame)
	return nil
}

// resolveRequest hands the frame to the oldest waiter on the topic,
// if any. Returns true when the frame was consumed.
func (g *Gateway) resolveRequest(topic string, frame *Frame) bool {
	g.pendingMu.Lock()
	defer g.pendingMu.Unlock()

	waiters := g.pending[topic]
	if len(waiters) == 0 {
		return false
	}

	ch := waiters[0]
	if len(waiters) == 1 {
		delete(g.pending, topic)
	} else {
		g.pending[topic] = waiters[1:]
	}

	// Buffered with capacity 1, so this never blocks.
	ch <- frame
	return true
}

// dispatchError fans an error frame out to the error callbacks.
func (g *Gateway) dispatchError(topic string, frame *Frame) {
	event := ErrorEvent{
		Topic:   topic,
		Method:  frame.Method,
		Code:    frame.ErrCode,
		Message: frame.ErrMessage,
	}

	g.logger.Warn("controller error frame",
		"topic", topic,
		"method", frame.Method,
		"code", frame.ErrCode,
		"message", frame.ErrMessage,
	)

	g.callbackMu.RLock()
	callbacks := g.errorCallbacks
	g.callbackMu.RUnlock()

	for _, cb := range callbacks {
		cb(event)
	}
}

// dispatchEvent routes a non-error frame on its method prefix.
func (g *Gateway) dispatchEvent(topic string, frame *Frame) {
	switch {
	case strings.HasPrefix(frame.Method, "devices."):
		g.dispatchDevices(frame)
	case strings.HasPrefix(frame.Method, "locations."):
		g.dispatchLocations(frame)
	case frame.Method == "notifications.raised":
		g.dispatchNotifications(frame)
	case frame.Method == "time.published" || frame.Method == "systeminfo.published":
		g.dispatchSystem(frame)
	default:
		g.logger.Debug("dropping frame with unknown method",
			"topic", topic, "method", frame.Method)
	}
}

func (g *Gateway) dispatchDevices(frame *Frame) {
	g.callbackMu.RLock()
	callbacks := g.deviceCallbacks
	g.callbackMu.RUnlock()

	for _, param := range frame.Params {
		for _, device := range param.Devices {
			event := DeviceEvent{Method: frame.Method, Device: device}
			for _, cb := range callbacks {
				cb(event)
			}
		}
	}
}

func (g *Gateway) dispatchLocations(frame *Frame) {
	g.callbackMu.RLock()
	callbacks := g.locationCallbacks
	g.callbackMu.RUnlock()

	for _, param := range frame.Params {
		for _, location := range param.Locations {
			event := LocationEvent{Method: frame.Method, Location: location}
			for _, cb := range callbacks {
				cb(event)
			}
		}
	}
}

func (g *Gateway) dispatchNotifications(frame *Frame) {
	g.callbackMu.RLock()
	callbacks := g.notificationCallbacks
	g.callbackMu.RUnlock()

	for _, param := range frame.Params {
		for _, notification := range param.Notifications {
			event := NotificationEvent{Method: frame.Method, Notification: notification}
			for _, cb := range callbacks {
				cb(event)
			}
		}
	}
}

func (g *Gateway) dispatchSystem(frame *Frame) {
	g.callbackMu.RLock()
	callbacks := g.systemCallbacks
	g.callbackMu.RUnlock()

	for _, param := range frame.Params {
		if param.TimeInfo == nil && param.SystemInfo == nil {
			continue
		}
		event := SystemEvent{
			Method:     frame.Method,
			TimeInfo:   param.TimeInfo,
			SystemInfo: param.SystemInfo,
		}
		for _, cb := range callbacks {
			cb(event)
		}
	}
}
