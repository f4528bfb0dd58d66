package domain

import (
	"sync"
	"time"
)

// EventKind classifies the notifications the core emits towards displays,
// telemetry and other observers.
type EventKind int

const (
	EventModeChanged EventKind = iota
	EventAlarmCommitted
	EventNextAlarmChanged
	EventAlarmRinging
	EventPlaybackStopped
	EventVolumeChanged
	EventNetworkChanged
	EventSunEvent
)

func (k EventKind) String() string {
	switch k {
	case EventModeChanged:
		return "mode_changed"
	case EventAlarmCommitted:
		return "alarm_committed"
	case EventNextAlarmChanged:
		return "next_alarm_changed"
	case EventAlarmRinging:
		return "alarm_ringing"
	case EventPlaybackStopped:
		return "playback_stopped"
	case EventVolumeChanged:
		return "volume_changed"
	case EventNetworkChanged:
		return "network_changed"
	case EventSunEvent:
		return "sun_event"
	}
	return "unknown"
}

// NextAlarm describes the soonest pending alarm occurrence. The zero value
// means no alarm is scheduled.
type NextAlarm struct {
	AlarmID int
	At      time.Time
}

// Event is a single notification. Exactly one of the payload fields is set,
// matching Kind.
type Event struct {
	Kind    EventKind
	Mode    ModeState
	Alarm   *AlarmDefinition
	Next    *NextAlarm
	Volume  float64
	Online  bool
	SunName string
	At      time.Time
}

// Publisher fans events out to subscribers. Subscribers are invoked
// synchronously, in registration order, on the publishing goroutine;
// handlers must not block.
type Publisher struct {
	mu   sync.RWMutex
	subs []func(Event)
}

func NewPublisher() *Publisher {
	return &Publisher{}
}

// Subscribe registers a handler for all subsequent events.
func (p *Publisher) Subscribe(fn func(Event)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subs = append(p.subs, fn)
}

// Publish delivers the event to every subscriber.
func (p *Publisher) Publish(ev Event) {
	p.mu.RLock()
	subs := p.subs
	p.mu.RUnlock()
	for _, fn := range subs {
		fn(ev)
	}
}
