// Package mqtt publishes clock telemetry to an MQTT broker, with
// abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/tilmanv/piwake/internal/domain"
)

// TopicMode carries mode and playback changes.
const TopicMode = "piwake/mode"

// TopicAlarm carries alarm lifecycle events: ringing, stopped, next-alarm
// updates.
const TopicAlarm = "piwake/alarm"

// TopicSystem carries system lifecycle events (startup, shutdown, network).
const TopicSystem = "piwake/system"

// Publisher publishes telemetry payloads to a broker.
type Publisher interface {
	// Publish sends a payload to a topic. Errors are reported, never
	// fatal; telemetry must not take the clock down.
	Publish(topic string, payload []byte) error

	// Close disconnects from the broker.
	Close() error
}

// ModePayload is the piwake/mode message.
type ModePayload struct {
	Timestamp string `json:"timestamp"`
	Mode      string `json:"mode"`
}

// AlarmPayload is the piwake/alarm message.
type AlarmPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	AlarmName string `json:"alarm_name,omitempty"`
	NextAlarm string `json:"next_alarm,omitempty"`
}

// SystemPayload is the piwake/system message.
type SystemPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Online    *bool  `json:"online,omitempty"`
}

// FormatMode creates the JSON payload for a mode change.
func FormatMode(state domain.ModeState, at time.Time) ([]byte, error) {
	return json.Marshal(ModePayload{
		Timestamp: at.UTC().Format(time.RFC3339),
		Mode:      state.Kind().String(),
	})
}

// FormatAlarm creates the JSON payload for an alarm lifecycle event.
func FormatAlarm(event domain.Event) ([]byte, error) {
	payload := AlarmPayload{
		Timestamp: event.At.UTC().Format(time.RFC3339),
		Event:     event.Kind.String(),
	}
	if event.Alarm != nil {
		payload.AlarmName = event.Alarm.Name
	}
	if event.Next != nil {
		payload.NextAlarm = event.Next.At.UTC().Format(time.RFC3339)
	}
	return json.Marshal(payload)
}

// FormatSystem creates the JSON payload for a system event.
func FormatSystem(event string, online *bool, at time.Time) ([]byte, error) {
	return json.Marshal(SystemPayload{
		Timestamp: at.UTC().Format(time.RFC3339),
		Event:     event,
		Online:    online,
	})
}
