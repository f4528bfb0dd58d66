package mqtt

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/tilmanv/piwake/internal/domain"
)

var testTime = time.Date(2026, time.March, 4, 10, 0, 0, 0, time.UTC)

func TestTelemetry_ModeChange(t *testing.T) {
	pub := NewFakePublisher()
	events := domain.NewPublisher()
	NewTelemetry(pub, events, nil)

	events.Publish(domain.Event{
		Kind: domain.EventModeChanged,
		Mode: domain.AlarmViewMode{Index: 2},
		At:   testTime,
	})

	msgs := pub.OnTopic(TopicMode)
	if len(msgs) != 1 {
		t.Fatalf("mode messages = %d, want 1", len(msgs))
	}
	var payload ModePayload
	if err := json.Unmarshal(msgs[0].Payload, &payload); err != nil {
		t.Fatalf("invalid payload: %v", err)
	}
	if payload.Mode != "alarm_view" {
		t.Errorf("mode = %q, want %q", payload.Mode, "alarm_view")
	}
	if payload.Timestamp != "2026-03-04T10:00:00Z" {
		t.Errorf("timestamp = %q", payload.Timestamp)
	}
}

func TestTelemetry_AlarmEvents(t *testing.T) {
	pub := NewFakePublisher()
	events := domain.NewPublisher()
	NewTelemetry(pub, events, nil)

	events.Publish(domain.Event{
		Kind:  domain.EventAlarmRinging,
		Alarm: &domain.AlarmDefinition{Name: "morning"},
		At:    testTime,
	})
	events.Publish(domain.Event{
		Kind: domain.EventNextAlarmChanged,
		Next: &domain.NextAlarm{AlarmID: 1, At: testTime.Add(time.Hour)},
		At:   testTime,
	})

	msgs := pub.OnTopic(TopicAlarm)
	if len(msgs) != 2 {
		t.Fatalf("alarm messages = %d, want 2", len(msgs))
	}

	var ringing AlarmPayload
	if err := json.Unmarshal(msgs[0].Payload, &ringing); err != nil {
		t.Fatal(err)
	}
	if ringing.Event != "alarm_ringing" || ringing.AlarmName != "morning" {
		t.Errorf("ringing payload = %+v", ringing)
	}

	var next AlarmPayload
	if err := json.Unmarshal(msgs[1].Payload, &next); err != nil {
		t.Fatal(err)
	}
	if next.NextAlarm != "2026-03-04T11:00:00Z" {
		t.Errorf("next alarm = %q", next.NextAlarm)
	}
}

func TestTelemetry_SystemEvents(t *testing.T) {
	pub := NewFakePublisher()
	events := domain.NewPublisher()
	tel := NewTelemetry(pub, events, nil)

	events.Publish(domain.Event{Kind: domain.EventNetworkChanged, Online: false, At: testTime})
	events.Publish(domain.Event{Kind: domain.EventSunEvent, SunName: "sunset", At: testTime})
	tel.PublishLifecycle("startup", testTime)

	msgs := pub.OnTopic(TopicSystem)
	if len(msgs) != 3 {
		t.Fatalf("system messages = %d, want 3", len(msgs))
	}

	var network SystemPayload
	if err := json.Unmarshal(msgs[0].Payload, &network); err != nil {
		t.Fatal(err)
	}
	if network.Online == nil || *network.Online {
		t.Errorf("network payload = %+v, want online false", network)
	}

	var sun SystemPayload
	if err := json.Unmarshal(msgs[1].Payload, &sun); err != nil {
		t.Fatal(err)
	}
	if sun.Event != "sunset" || sun.Online != nil {
		t.Errorf("sun payload = %+v", sun)
	}
}

func TestTelemetry_VolumeEventsNotForwarded(t *testing.T) {
	pub := NewFakePublisher()
	events := domain.NewPublisher()
	NewTelemetry(pub, events, nil)

	events.Publish(domain.Event{Kind: domain.EventVolumeChanged, Volume: 0.5, At: testTime})
	if len(pub.Messages) != 0 {
		t.Errorf("volume event was forwarded: %v", pub.Messages)
	}
}
