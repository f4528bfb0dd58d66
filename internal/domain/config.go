package domain

import (
	"sort"
	"sync"
	"time"
)

// Settings holds the scalar device settings. Defaults live in the config
// package; this copy is what the coordination core reads at runtime.
type Settings struct {
	DefaultVolume      float64
	AlarmDuration      time.Duration
	RefreshInterval    time.Duration
	PowernapDuration   time.Duration
	AlarmPreviewHours  int
	OfflineAlarmFile   string
	VolumeMeterTimeout time.Duration
}

// DefaultSettings returns the built-in device settings.
func DefaultSettings() Settings {
	return Settings{
		DefaultVolume:      0.4,
		AlarmDuration:      60 * time.Minute,
		RefreshInterval:    250 * time.Millisecond,
		PowernapDuration:   18 * time.Minute,
		AlarmPreviewHours:  12,
		OfflineAlarmFile:   "Enchantment.ogg",
		VolumeMeterTimeout: 5 * time.Second,
	}
}

// Config is the sole source of truth for alarm definitions and audio
// streams. Both lists are kept sorted by id ascending; ids are assigned on
// insertion as max(id)+1, or 0 for an empty list. Structural changes to the
// alarm list invoke the change hooks so scheduled jobs can be reconciled.
//
// Config carries its own lock: scheduler callbacks mutate the alarm list
// concurrently with the coordinator's input path. Definitions are treated
// as immutable once inserted; an update replaces the stored pointer, so
// pointers handed out earlier stay valid to read. Change hooks run outside
// the lock because they re-enter Config.
type Config struct {
	Settings Settings

	mu       sync.RWMutex
	alarms   []*AlarmDefinition
	streams  []AudioStream
	onChange []func()
}

// NewConfig creates an empty alarm configuration.
func NewConfig(settings Settings) *Config {
	return &Config{Settings: settings}
}

// OnChange registers a callback invoked after every structural change to
// the alarm list, in registration order. Mutate-then-hook is a single
// logical step: hooks run synchronously before the mutating call returns.
func (c *Config) OnChange(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = append(c.onChange, fn)
}

func (c *Config) notify() {
	c.mu.RLock()
	hooks := c.onChange
	c.mu.RUnlock()
	for _, fn := range hooks {
		fn()
	}
}

// AlarmDefinitions returns the alarm list, sorted by id ascending. The
// returned slice is a copy; the pointed-to definitions are live.
func (c *Config) AlarmDefinitions() []*AlarmDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*AlarmDefinition(nil), c.alarms...)
}

// AudioStreams returns the configured streams, sorted by id ascending.
func (c *Config) AudioStreams() []AudioStream {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]AudioStream(nil), c.streams...)
}

// AddAlarmDefinition inserts a definition, assigning an id when it has
// none, and keeps the list sorted by id.
func (c *Config) AddAlarmDefinition(a *AlarmDefinition) {
	c.mu.Lock()
	if a.ID == nil || *a.ID < 0 {
		id := c.nextAlarmID()
		a.ID = &id
	}
	c.alarms = append(c.alarms, a)
	sort.Slice(c.alarms, func(i, j int) bool { return *c.alarms[i].ID < *c.alarms[j].ID })
	c.mu.Unlock()
	c.notify()
}

// UpdateAlarmDefinition replaces the entry carrying the same id. The id is
// reused, never reassigned.
func (c *Config) UpdateAlarmDefinition(a *AlarmDefinition) {
	if a.ID == nil {
		c.AddAlarmDefinition(a)
		return
	}
	c.mu.Lock()
	c.removeAlarmLocked(*a.ID)
	c.alarms = append(c.alarms, a)
	sort.Slice(c.alarms, func(i, j int) bool { return *c.alarms[i].ID < *c.alarms[j].ID })
	c.mu.Unlock()
	c.notify()
}

// RemoveAlarmDefinition deletes the definition with the given id. Removing
// an id that is not present is a no-op, which makes the two one-time
// removal paths (ring-time and expiry sweep) safe to overlap.
func (c *Config) RemoveAlarmDefinition(id int) bool {
	c.mu.Lock()
	removed := c.removeAlarmLocked(id)
	c.mu.Unlock()
	if !removed {
		return false
	}
	c.notify()
	return true
}

func (c *Config) removeAlarmLocked(id int) bool {
	for i, a := range c.alarms {
		if a.ID != nil && *a.ID == id {
			c.alarms = append(c.alarms[:i], c.alarms[i+1:]...)
			return true
		}
	}
	return false
}

// GetAlarmDefinition returns the definition with the given id, or nil.
func (c *Config) GetAlarmDefinition(id int) *AlarmDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, a := range c.alarms {
		if a.ID != nil && *a.ID == id {
			return a
		}
	}
	return nil
}

// AddAudioStream inserts a stream, assigning an id when it carries the -1
// sentinel, and returns the stored value.
func (c *Config) AddAudioStream(s AudioStream) AudioStream {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s.ID < 0 {
		s.ID = c.nextStreamID()
	}
	c.streams = append(c.streams, s)
	sort.Slice(c.streams, func(i, j int) bool { return c.streams[i].ID < c.streams[j].ID })
	return s
}

// RemoveAudioStream deletes the stream with the given id.
func (c *Config) RemoveAudioStream(id int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, s := range c.streams {
		if s.ID == id {
			c.streams = append(c.streams[:i], c.streams[i+1:]...)
			return true
		}
	}
	return false
}

// GetAudioStream returns the stream with the given id and whether it exists.
func (c *Config) GetAudioStream(id int) (AudioStream, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.streams {
		if s.ID == id {
			return s, true
		}
	}
	return AudioStream{}, false
}

// AddPowernapAlarm inserts a one-time alarm ringing one minute past the
// configured powernap duration from now.
func (c *Config) AddPowernapAlarm(now time.Time) (*AlarmDefinition, error) {
	c.mu.RLock()
	if len(c.streams) == 0 {
		c.mu.RUnlock()
		return nil, ErrNoAudioStreams
	}
	first := c.streams[0]
	c.mu.RUnlock()

	wake := now.Add(c.Settings.PowernapDuration + time.Minute)

	nap := &AlarmDefinition{
		Name:     "Powernap",
		IsActive: true,
		AudioEffect: &StreamAudioEffect{
			Stream: first,
			Volume: c.Settings.DefaultVolume,
		},
	}
	nap.SetFutureDate(wake.Hour(), wake.Minute(), now)
	c.AddAlarmDefinition(nap)
	return nap, nil
}

// OfflineAlarmEffect returns the locally playable fallback effect used when
// the device is offline or another stream holds the audio output.
func (c *Config) OfflineAlarmEffect(volume float64) StreamAudioEffect {
	return StreamAudioEffect{
		Stream: AudioStream{Name: "Offline Alarm", URL: c.Settings.OfflineAlarmFile},
		Volume: volume,
	}
}

func (c *Config) nextAlarmID() int {
	next := 0
	for _, a := range c.alarms {
		if a.ID != nil && *a.ID >= next {
			next = *a.ID + 1
		}
	}
	return next
}

func (c *Config) nextStreamID() int {
	next := 0
	for _, s := range c.streams {
		if s.ID >= next {
			next = s.ID + 1
		}
	}
	return next
}
