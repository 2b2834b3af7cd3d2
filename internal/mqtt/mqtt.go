// Package mqtt publishes clock events and daemon lifecycle messages.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/oledclock/internal/app"
)

// Topic is the MQTT topic for device events.
const Topic = "home/oledclock/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "home/oledclock/system"

// Publisher sends controller events and lifecycle messages. Errors are
// reported to the caller, which logs and carries on.
type Publisher interface {
	Publish(event app.Event) error
	PublishSystem(event SystemEvent) error
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent is a daemon lifecycle message: STARTUP, SHUTDOWN, HEARTBEAT,
// RECONNECTED.
type SystemEvent struct {
	Timestamp time.Time
	Event     string
	Reason    string // shutdown cause, e.g. "SIGTERM"
	// RawPayload, when set, is sent as-is. Used for status snapshots.
	RawPayload []byte
	Retained   bool
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Clock ClockPayload `json:"clock"`
}

// ClockPayload contains the device event details.
type ClockPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Mode      string `json:"mode"`
	Detail    string `json:"detail,omitempty"`
}

// FormatPayload creates the JSON payload for a device event.
func FormatPayload(event app.Event) ([]byte, error) {
	payload := Payload{
		Clock: ClockPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(event.Type),
			Mode:      event.Mode.String(),
			Detail:    event.Detail,
		},
	}
	return json.Marshal(payload)
}

// lifecycle is the body of a system message sent without a status snapshot:
// the last will and RECONNECTED.
type lifecycle struct {
	System struct {
		Timestamp string `json:"timestamp"`
		Event     string `json:"event"`
		Reason    string `json:"reason,omitempty"`
	} `json:"system"`
}

// FormatSystemPayload returns event.RawPayload when set, otherwise a minimal
// {"system":{...}} body.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}
	var body lifecycle
	body.System.Timestamp = event.Timestamp.UTC().Format(time.RFC3339)
	body.System.Event = event.Event
	body.System.Reason = event.Reason
	return json.Marshal(body)
}

// Nop discards everything. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(app.Event) error         { return nil }
func (Nop) PublishSystem(SystemEvent) error { return nil }
func (Nop) Close() error                    { return nil }
func (Nop) IsConnected() bool               { return false }
