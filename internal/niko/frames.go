package niko

import (
	"encoding/json"
	"fmt"
)

// Frame is the envelope for every hobby API message, in both directions.
//
// Requests carry Method and usually Params. Responses echo the request's
// Method. Error frames (on err topics, or rsp frames for failed commands)
// carry ErrCode and ErrMessage instead of Params.
type Frame struct {
	Method     string `json:"Method"`
	Params     Params `json:"Params,omitempty"`
	ErrCode    string `json:"ErrCode,omitempty"`
	ErrMessage string `json:"ErrMessage,omitempty"`
}

// IsError reports whether the frame is an error frame.
func (f *Frame) IsError() bool {
	return f.ErrCode != "" || f.ErrMessage != ""
}

// Params is the frame parameter list.
//
// The controller is inconsistent here: most frames carry a JSON array of
// parameter objects, but some firmware versions emit a single bare object.
// UnmarshalJSON accepts both and normalises to a slice.
type Params []Param

// UnmarshalJSON accepts either a JSON array of parameter objects or a
// single bare object.
func (p *Params) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty params", ErrMalformedFrame)
	}

	switch data[0] {
	case '[':
		var list []Param
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedFrame, err)
		}
		*p = list
		return nil
	case '{':
		var single Param
		if err := json.Unmarshal(data, &single); err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedFrame, err)
		}
		*p = Params{single}
		return nil
	case 'n': // null
		*p = nil
		return nil
	default:
		return fmt.Errorf("%w: params is neither object nor array", ErrMalformedFrame)
	}
}

// Param is a single parameter object inside a frame. Which field is
// populated depends on the service and method.
type Param struct {
	Devices       []Device       `json:"Devices,omitempty"`
	Locations     []Location     `json:"Locations,omitempty"`
	Notifications []Notification `json:"Notifications,omitempty"`
	TimeInfo      *TimeInfo      `json:"TimeInfo,omitempty"`
	SystemInfo    *SystemInfo    `json:"SystemInfo,omitempty"`
}

// Properties is an ordered list of single-key property objects.
//
// The hobby API represents device properties as a list of one-entry
// objects, e.g. [{"Position": "50"}, {"Moving": "True"}]. All values are
// strings on the wire, including numbers and booleans.
type Properties []map[string]string

// Get returns the value for the named property and whether it was present.
// The last occurrence wins when a property appears more than once.
func (ps Properties) Get(name string) (string, bool) {
	value := ""
	found := false
	for _, p := range ps {
		if v, ok := p[name]; ok {
			value = v
			found = true
		}
	}
	return value, found
}

// Device describes a device as reported by the devices service.
//
// Discovery responses populate the descriptive fields; status events
// typically carry only Uuid and the changed Properties.
type Device struct {
	Uuid         string     `json:"Uuid"`
	Identifier   string     `json:"Identifier,omitempty"`
	Name         string     `json:"Name,omitempty"`
	Type         string     `json:"Type,omitempty"`
	Technology   string     `json:"Technology,omitempty"`
	Model        string     `json:"Model,omitempty"`
	Online       string     `json:"Online,omitempty"`
	Properties   Properties `json:"Properties,omitempty"`
	Parameters   Properties `json:"Parameters,omitempty"`
	Traits       Properties `json:"Traits,omitempty"`
	LocationID   string     `json:"LocationId,omitempty"`
	LocationUUID string     `json:"LocationUuid,omitempty"`
}

// Location describes a room or zone configured on the controller.
type Location struct {
	Uuid string `json:"Uuid"`
	Name string `json:"Name,omitempty"`
	Type string `json:"Type,omitempty"`
}

// Notification is a controller alert.
type Notification struct {
	Uuid      string `json:"Uuid"`
	Type      string `json:"Type,omitempty"`
	Status    string `json:"Status,omitempty"`
	Text      string `json:"Text,omitempty"`
	TimeStamp string `json:"TimeStamp,omitempty"`
}

// TimeInfo is the controller's clock and location data, published
// spontaneously on the system evt topic and on request.
type TimeInfo struct {
	GMTOffset       string `json:"GMTOffset,omitempty"`
	Timezone        string `json:"Timezone,omitempty"`
	UTCTime         string `json:"UTCTime,omitempty"`
	CurrentTime     string `json:"CurrentTime,omitempty"`
	IsNtpSynchronised string `json:"IsNtpSynchronised,omitempty"`
}

// SystemInfo describes the controller software and coupled services.
type SystemInfo struct {
	LastConfig     string            `json:"LastConfig,omitempty"`
	Waterleak      string            `json:"Waterleak,omitempty"`
	Electricity    map[string]string `json:"Electricity,omitempty"`
	SWVersions     []map[string]string `json:"SWversions,omitempty"`
	CoCoImage      string            `json:"CocoImage,omitempty"`
	Language       string            `json:"Language,omitempty"`
	Currency       string            `json:"Currency,omitempty"`
	Units          map[string]string `json:"Units,omitempty"`
}

// decodeFrame parses a raw payload into a Frame.
func decodeFrame(payload []byte) (*Frame, error) {
	var f Frame
	if err := json.Unmarshal(payload, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedFrame, err)
	}
	if f.Method == "" && !f.IsError() {
		return nil, fmt.Errorf("%w: missing method", ErrMalformedFrame)
	}
	return &f, nil
}
