package niko

// The hobby API exposes a fixed set of topics per service. Commands go to
// the cmd topic, responses come back on rsp, spontaneous events on evt,
// and command rejections on err. There are no wildcards or per-device
// topics; routing happens on the method field inside each frame.
const (
	// Devices service: control and discovery of physical devices.
	TopicDevicesCmd = "hobby/control/devices/cmd"
	TopicDevicesRsp = "hobby/control/devices/rsp"
	TopicDevicesEvt = "hobby/control/devices/evt"
	TopicDevicesErr = "hobby/control/devices/err"

	// Locations service: rooms and zones configured on the controller.
	TopicLocationsCmd = "hobby/control/locations/cmd"
	TopicLocationsRsp = "hobby/control/locations/rsp"
	TopicLocationsEvt = "hobby/control/locations/evt"
	TopicLocationsErr = "hobby/control/locations/err"

	// Notification service: controller alerts and their lifecycle.
	TopicNotificationCmd = "hobby/notification/cmd"
	TopicNotificationRsp = "hobby/notification/rsp"
	TopicNotificationEvt = "hobby/notification/evt"
	TopicNotificationErr = "hobby/notification/err"

	// System service: controller time and system information.
	TopicSystemCmd = "hobby/system/cmd"
	TopicSystemRsp = "hobby/system/rsp"
	TopicSystemEvt = "hobby/system/evt"
	TopicSystemErr = "hobby/system/err"
)

// eventTopics lists the spontaneous traffic topics the gateway
// subscribes to on connect. Both evt and err topics are covered so
// unsolicited errors reach the registered error callbacks.
func eventTopics() []string {
	return []string{
		TopicDevicesEvt,
		TopicDevicesErr,
		TopicLocationsEvt,
		TopicLocationsErr,
		TopicNotificationEvt,
		TopicNotificationErr,
		TopicSystemEvt,
		TopicSystemErr,
	}
}

// responseTopics lists the rsp topics the gateway subscribes to on
// connect. The controller answers commands here; without these
// subscriptions every Request would wait on a topic the broker never
// delivers to.
func responseTopics() []string {
	return []string{
		TopicDevicesRsp,
		TopicLocationsRsp,
		TopicNotificationRsp,
		TopicSystemRsp,
	}
}
