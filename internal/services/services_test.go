package services

import (
	"sync"
	"time"

	"github.com/tilmanv/piwake/internal/domain"
)

// fakePlayer records playback calls for assertions.
type fakePlayer struct {
	mu      sync.Mutex
	playing bool
	volume  float64
	played  []domain.StreamAudioEffect
	stops   int
	playErr error
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{volume: 0.4}
}

func (p *fakePlayer) Play(effect domain.StreamAudioEffect) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playErr != nil {
		return p.playErr
	}
	p.playing = true
	p.played = append(p.played, effect)
	return nil
}

func (p *fakePlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
	p.stops++
	return nil
}

func (p *fakePlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *fakePlayer) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

func (p *fakePlayer) SetVolume(v float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = v
	return nil
}

func (p *fakePlayer) lastPlayed() (domain.StreamAudioEffect, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.played) == 0 {
		return domain.StreamAudioEffect{}, false
	}
	return p.played[len(p.played)-1], true
}

type fakeNetwork struct {
	mu     sync.Mutex
	online bool
}

func (n *fakeNetwork) Online() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.online
}

func (n *fakeNetwork) set(online bool) {
	n.mu.Lock()
	n.online = online
	n.mu.Unlock()
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *fakeNotifier) Notify(title, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, title+": "+message)
	return nil
}

// eventRecorder captures published events per kind.
type eventRecorder struct {
	mu     sync.Mutex
	events []domain.Event
}

func recordEvents(pub *domain.Publisher) *eventRecorder {
	r := &eventRecorder{}
	pub.Subscribe(func(ev domain.Event) {
		r.mu.Lock()
		r.events = append(r.events, ev)
		r.mu.Unlock()
	})
	return r
}

func (r *eventRecorder) ofKind(kind domain.EventKind) []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Event
	for _, ev := range r.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

func (r *eventRecorder) last(kind domain.EventKind) (domain.Event, bool) {
	events := r.ofKind(kind)
	if len(events) == 0 {
		return domain.Event{}, false
	}
	return events[len(events)-1], true
}

// fakeAlmanac yields sun events at fixed offsets from the query time.
type fakeAlmanac struct {
	riseAfter time.Duration
	setAfter  time.Duration
}

func (a fakeAlmanac) NextSunrise(after time.Time) (time.Time, error) {
	return after.Add(a.riseAfter), nil
}

func (a fakeAlmanac) NextSunset(after time.Time) (time.Time, error) {
	return after.Add(a.setAfter), nil
}
