package niko

import (
	"context"
	"fmt"
	"strconv"
)

// Control sends a devices.control command setting one property on one
// device. Property values are decimal strings on the wire.
//
// The controller acknowledges on the rsp topic; the actual state change
// arrives later as a devices.status event.
func (g *Gateway) Control(ctx context.Context, deviceUUID, property, value string) error {
	req := &Frame{
		Method: "devices.control",
		Params: Params{{
			Devices: []Device{{
				Uuid:       deviceUUID,
				Properties: Properties{{property: value}},
			}},
		}},
	}

	_, err := g.Request(ctx, TopicDevicesCmd, TopicDevicesRsp, req)
	return err
}

// SetPosition commands a motor device to the given position.
//
// Position is percent open: 100 fully open, 0 fully closed. Values are
// clamped to [0, 100].
func (g *Gateway) SetPosition(ctx context.Context, deviceUUID string, position int) error {
	if position < 0 {
		position = 0
	}
	if position > 100 {
		position = 100
	}
	return g.Control(ctx, deviceUUID, "Position", strconv.Itoa(position))
}

// SetStatus switches a relay device on or off.
func (g *Gateway) SetStatus(ctx context.Context, deviceUUID string, on bool) error {
	status := "Off"
	if on {
		status = "On"
	}
	return g.Control(ctx, deviceUUID, "Status", status)
}

// SetBrightness sets a dimmer to the given level, clamped to [0, 100].
func (g *Gateway) SetBrightness(ctx context.Context, deviceUUID string, level int) error {
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}
	return g.Control(ctx, deviceUUID, "Brightness", strconv.Itoa(level))
}

// ListDevices queries the controller for every configured device.
func (g *Gateway) ListDevices(ctx context.Context) ([]Device, error) {
	rsp, err := g.Request(ctx, TopicDevicesCmd, TopicDevicesRsp, &Frame{Method: "devices.list"})
	if err != nil {
		return nil, err
	}

	var devices []Device
	for _, param := range rsp.Params {
		devices = append(devices, param.Devices...)
	}
	return devices, nil
}

// GetDeviceStatus returns the current state of one device, located by
// UUID within a full device list.
func (g *Gateway) GetDeviceStatus(ctx context.Context, deviceUUID string) (*Device, error) {
	devices, err := g.ListDevices(ctx)
	if err != nil {
		return nil, err
	}

	for i := range devices {
		if devices[i].Uuid == deviceUUID {
			return &devices[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, deviceUUID)
}

// ListLocations queries the controller for configured rooms and zones.
func (g *Gateway) ListLocations(ctx context.Context) ([]Location, error) {
	rsp, err := g.Request(ctx, TopicLocationsCmd, TopicLocationsRsp, &Frame{Method: "locations.list"})
	if err != nil {
		return nil, err
	}

	var locations []Location
	for _, param := range rsp.Params {
		locations = append(locations, param.Locations...)
	}
	return locations, nil
}

// ListDevicesInLocation returns the devices assigned to one location.
func (g *Gateway) ListDevicesInLocation(ctx context.Context, locationUUID string) ([]Device, error) {
	devices, err := g.ListDevices(ctx)
	if err != nil {
		return nil, err
	}

	var matched []Device
	for _, d := range devices {
		if d.LocationUUID == locationUUID {
			matched = append(matched, d)
		}
	}
	return matched, nil
}

// ListNotifications queries the controller's current alerts.
func (g *Gateway) ListNotifications(ctx context.Context) ([]Notification, error) {
	rsp, err := g.Request(ctx, TopicNotificationCmd, TopicNotificationRsp, &Frame{Method: "notifications.list"})
	if err != nil {
		return nil, err
	}

	var notifications []Notification
	for _, param := range rsp.Params {
		notifications = append(notifications, param.Notifications...)
	}
	return notifications, nil
}

// UpdateNotification sets the status of an alert, typically to "read".
func (g *Gateway) UpdateNotification(ctx context.Context, notificationUUID, status string) error {
	req := &Frame{
		Method: "notifications.update",
		Params: Params{{
			Notifications: []Notification{{
				Uuid:   notificationUUID,
				Status: status,
			}},
		}},
	}

	_, err := g.Request(ctx, TopicNotificationCmd, TopicNotificationRsp, req)
	return err
}

// SystemInfo queries the controller's software and service information.
func (g *Gateway) SystemInfo(ctx context.Context) (*SystemInfo, error) {
	rsp, err := g.Request(ctx, TopicSystemCmd, TopicSystemRsp, &Frame{Method: "systeminfo.publish"})
	if err != nil {
		return nil, err
	}

	for _, param := range rsp.Params {
		if param.SystemInfo != nil {
			return param.SystemInfo, nil
		}
	}
	return nil, fmt.Errorf("%w: systeminfo response without SystemInfo", ErrMalformedFrame)
}

// TimeInfo queries the controller's clock and timezone data.
func (g *Gateway) TimeInfo(ctx context.Context) (*TimeInfo, error) {
	rsp, err := g.Request(ctx, TopicSystemCmd, TopicSystemRsp, &Frame{Method: "time.publish"})
	if err != nil {
		return nil, err
	}

	for _, param := range rsp.Params {
		if param.TimeInfo != nil {
			return param.TimeInfo, nil
		}
	}
	return nil, fmt.Errorf("%w: time response without TimeInfo", ErrMalformedFrame)
}
