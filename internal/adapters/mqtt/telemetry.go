package mqtt

import (
	"log/slog"
	"time"

	"github.com/tilmanv/piwake/internal/domain"
)

// Telemetry bridges the domain event stream onto MQTT topics. Publish
// failures are logged and dropped.
type Telemetry struct {
	pub Publisher
	log *slog.Logger
}

// NewTelemetry subscribes the bridge to the event stream.
func NewTelemetry(pub Publisher, events *domain.Publisher, log *slog.Logger) *Telemetry {
	if log == nil {
		log = slog.Default()
	}
	t := &Telemetry{pub: pub, log: log}
	events.Subscribe(t.handle)
	return t
}

func (t *Telemetry) handle(event domain.Event) {
	var (
		topic   string
		payload []byte
		err     error
	)

	switch event.Kind {
	case domain.EventModeChanged:
		topic = TopicMode
		payload, err = FormatMode(event.Mode, event.At)
	case domain.EventAlarmRinging, domain.EventAlarmCommitted,
		domain.EventPlaybackStopped, domain.EventNextAlarmChanged:
		topic = TopicAlarm
		payload, err = FormatAlarm(event)
	case domain.EventNetworkChanged:
		topic = TopicSystem
		online := event.Online
		payload, err = FormatSystem(event.Kind.String(), &online, event.At)
	case domain.EventSunEvent:
		topic = TopicSystem
		payload, err = FormatSystem(event.SunName, nil, event.At)
	default:
		return
	}

	if err != nil {
		t.log.Error("failed to format telemetry payload", "kind", event.Kind, "error", err)
		return
	}
	if err := t.pub.Publish(topic, payload); err != nil {
		t.log.Warn("failed to publish telemetry", "topic", topic, "error", err)
	}
}

// PublishLifecycle sends a lifecycle message such as "startup" or
// "shutdown" on the system topic.
func (t *Telemetry) PublishLifecycle(event string, at time.Time) {
	payload, err := FormatSystem(event, nil, at)
	if err != nil {
		t.log.Error("failed to format lifecycle payload", "event", event, "error", err)
		return
	}
	if err := t.pub.Publish(TopicSystem, payload); err != nil {
		t.log.Warn("failed to publish lifecycle event", "event", event, "error", err)
	}
}
