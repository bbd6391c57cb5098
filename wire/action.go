// Package wire shapes validated records into the remote service's batched
// action protocol.
package wire

import (
	"github.com/funnelwire/funnelwire-go/record"
)

// Action kinds understood by the remote service.
const (
	ActionSetUserAttributes   = "setUserAttributes"
	ActionSetDeviceAttributes = "setDeviceAttributes"
	ActionTrack               = "track"
	ActionGetExportJobID      = "getExportJobId"
	ActionGetExportResults    = "getExportResults"
	ActionExportUser          = "exportUser"
	ActionGetAbTests          = "getAbTests"
	ActionGetAbTest           = "getAbTest"
	ActionGetMessages         = "getMessages"
	ActionGetMessage          = "getMessage"
	ActionGetVars             = "getVars"
)

// Action is one unit of a batched request. Each variant carries exactly the
// fields its kind requires; the Action field is fixed at construction.
type Action interface {
	Kind() string
}

// EventAggregate is the per-event summary shape, used both when writing a
// user's historical events and when reading them back. Times are epoch
// seconds.
type EventAggregate struct {
	Count     int64 `json:"count"`
	FirstTime int64 `json:"firstTime,omitempty"`
	LastTime  int64 `json:"lastTime,omitempty"`
}

type UserAttributesAction struct {
	Action                 string                    `json:"action"`
	UserID                 *record.Value             `json:"userId,omitempty"`
	DeviceID               *record.Value             `json:"deviceId,omitempty"`
	UserAttributes         *record.Fields            `json:"userAttributes,omitempty"`
	Events                 map[string]EventAggregate `json:"events,omitempty"`
	Devices                []*record.Fields          `json:"devices,omitempty"`
	ResetAnomalies         bool                      `json:"resetAnomalies,omitempty"`
	ForceAnomalousOverride bool                      `json:"forceAnomalousOverride,omitempty"`
}

func (a *UserAttributesAction) Kind() string { return a.Action }

type DeviceAttributesAction struct {
	Action                 string         `json:"action"`
	UserID                 *record.Value  `json:"userId,omitempty"`
	DeviceID               *record.Value  `json:"deviceId,omitempty"`
	DeviceAttributes       *record.Fields `json:"deviceAttributes,omitempty"`
	ForceAnomalousOverride bool           `json:"forceAnomalousOverride,omitempty"`
}

func (a *DeviceAttributesAction) Kind() string { return a.Action }

type TrackAction struct {
	Action                 string         `json:"action"`
	UserID                 *record.Value  `json:"userId,omitempty"`
	DeviceID               *record.Value  `json:"deviceId,omitempty"`
	Event                  string         `json:"event"`
	Time                   int64          `json:"time"`
	Params                 *record.Fields `json:"params,omitempty"`
	AllowOffline           bool           `json:"allowOffline,omitempty"`
	ForceAnomalousOverride bool           `json:"forceAnomalousOverride,omitempty"`
}

func (a *TrackAction) Kind() string { return a.Action }

// ResetAnomalies builds the setUserAttributes variant that clears the
// anomalous flag on a user without touching any attributes.
func ResetAnomalies(userID record.Value) *UserAttributesAction {
	return &UserAttributesAction{
		Action:         ActionSetUserAttributes,
		UserID:         &userID,
		ResetAnomalies: true,
	}
}

type ExportJobAction struct {
	Action    string `json:"action"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate,omitempty"`
}

func (a *ExportJobAction) Kind() string { return a.Action }

type ExportResultsAction struct {
	Action string `json:"action"`
	JobID  string `json:"jobId"`
}

func (a *ExportResultsAction) Kind() string { return a.Action }

type ExportUserAction struct {
	Action string        `json:"action"`
	UserID *record.Value `json:"userId"`
}

func (a *ExportUserAction) Kind() string { return a.Action }

type AbTestsAction struct {
	Action string `json:"action"`
	ID     int64  `json:"id,omitempty"`
}

func (a *AbTestsAction) Kind() string { return a.Action }

type MessagesAction struct {
	Action    string `json:"action"`
	MessageID int64  `json:"messageId,omitempty"`
}

func (a *MessagesAction) Kind() string { return a.Action }

type VarsAction struct {
	Action string        `json:"action"`
	UserID *record.Value `json:"userId"`
}

func (a *VarsAction) Kind() string { return a.Action }
