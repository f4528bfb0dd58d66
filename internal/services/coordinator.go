package services

import (
	"log/slog"
	"sync"
	"time"

	"github.com/tilmanv/piwake/internal/domain"
	"github.com/tilmanv/piwake/internal/ports"
)

// hideVolumeMeterJobID is the one-shot that hides the on-screen volume
// meter after rotary input goes quiet. Each rotary tick replaces it.
const hideVolumeMeterJobID = "hide_volume_meter_trigger"

// volumeStep is the volume change per rotary detent.
const volumeStep = 0.05

// Coordinator translates hardware input into mode machine triggers and
// owns the playback mode. All input paths funnel through its mutex, so the
// machine and editor never see concurrent calls.
type Coordinator struct {
	machine    *domain.Machine
	editor     *domain.AlarmEditor
	cfg        *domain.Config
	player     ports.Player
	sched      ports.Scheduler
	reconciler *Reconciler
	events     *domain.Publisher
	log        *slog.Logger
	now        func() time.Time

	mu       sync.Mutex
	playback domain.PlaybackMode
}

// NewCoordinator wires the coordinator and subscribes it to playback
// events so alarm playback started by the scheduler is reflected in the
// playback mode.
func NewCoordinator(
	machine *domain.Machine,
	editor *domain.AlarmEditor,
	cfg *domain.Config,
	player ports.Player,
	sched ports.Scheduler,
	reconciler *Reconciler,
	events *domain.Publisher,
	log *slog.Logger,
	now func() time.Time,
) *Coordinator {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	c := &Coordinator{
		machine:    machine,
		editor:     editor,
		cfg:        cfg,
		player:     player,
		sched:      sched,
		reconciler: reconciler,
		events:     events,
		log:        log,
		now:        now,
		playback:   domain.PlaybackBoot,
	}
	events.Subscribe(func(ev domain.Event) {
		switch ev.Kind {
		case domain.EventAlarmRinging:
			c.setPlayback(domain.PlaybackAlarm)
		case domain.EventPlaybackStopped:
			c.setPlayback(domain.PlaybackIdle)
		}
	})
	return c
}

// Ready moves playback out of the boot mode once startup is complete.
func (c *Coordinator) Ready() {
	c.setPlayback(domain.PlaybackIdle)
}

// Mode returns the current mode state.
func (c *Coordinator) Mode() domain.ModeState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.Current()
}

// Playback returns the current playback mode.
func (c *Coordinator) Playback() domain.PlaybackMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playback
}

func (c *Coordinator) setPlayback(mode domain.PlaybackMode) {
	c.mu.Lock()
	c.playback = mode
	c.mu.Unlock()
}

// Fire feeds a trigger to the mode machine and publishes the resulting
// mode. Events are emitted after the transition has fully settled, so
// subscribers always observe a consistent state.
func (c *Coordinator) Fire(trigger domain.Trigger) (domain.ModeState, error) {
	c.mu.Lock()
	before := c.machine.Current()
	state, err := c.machine.Fire(trigger)
	changed := state != before
	c.mu.Unlock()

	if changed {
		c.events.Publish(domain.Event{
			Kind: domain.EventModeChanged,
			Mode: state,
			At:   c.now(),
		})
	}
	return state, err
}

// HandleHardware maps a hardware input onto the action it means in the
// current mode. Inputs with no meaning in the current mode are dropped.
func (c *Coordinator) HandleHardware(input domain.HardwareTrigger) error {
	switch c.Mode().Kind() {
	case domain.KindDefault:
		return c.handleDefault(input)
	case domain.KindAlarmView:
		return c.fireFor(input, domain.EnterDefault, domain.StartAlarmEdit,
			domain.FocusNextAlarm, domain.FocusPreviousAlarm)
	case domain.KindAlarmEdit:
		return c.handleAlarmEdit(input)
	case domain.KindPropertyEdit:
		return c.fireFor(input, domain.EnterDefault, domain.StartAlarmEdit,
			domain.FocusNextValue, domain.FocusPreviousValue)
	}
	return nil
}

// fireFor dispatches the four hardware inputs to their per-mode triggers.
func (c *Coordinator) fireFor(input domain.HardwareTrigger, mode, invoke, cw, ccw domain.Trigger) error {
	var trigger domain.Trigger
	switch input {
	case domain.ModeButtonPressed:
		trigger = mode
	case domain.InvokeButtonPressed:
		trigger = invoke
	case domain.RotaryClockwise:
		trigger = cw
	case domain.RotaryCounterClockwise:
		trigger = ccw
	default:
		return nil
	}
	_, err := c.Fire(trigger)
	return err
}

func (c *Coordinator) handleDefault(input domain.HardwareTrigger) error {
	switch input {
	case domain.ModeButtonPressed:
		_, err := c.Fire(domain.EnterAlarmView)
		return err
	case domain.InvokeButtonPressed:
		return c.togglePlayback()
	case domain.RotaryClockwise:
		return c.adjustVolume(volumeStep)
	case domain.RotaryCounterClockwise:
		return c.adjustVolume(-volumeStep)
	}
	return nil
}

// handleAlarmEdit routes the invoke button by the focused property: on the
// update and cancel pseudo-properties it commits or discards the session,
// anywhere else it descends into value editing.
func (c *Coordinator) handleAlarmEdit(input domain.HardwareTrigger) error {
	invoke := domain.StartPropertyEdit
	if s := c.editor.Session(); s != nil {
		switch s.Field {
		case domain.FieldUpdate:
			invoke = domain.CommitAlarmEdit
		case domain.FieldCancel:
			invoke = domain.CancelAlarmEdit
		}
	}
	if err := c.fireFor(input, domain.EnterDefault, invoke,
		domain.FocusNextProperty, domain.FocusPreviousProperty); err != nil {
		return err
	}
	if input == domain.InvokeButtonPressed && invoke == domain.CommitAlarmEdit {
		defs := c.cfg.AlarmDefinitions()
		if idx := c.editor.Index(); idx >= 0 && idx < len(defs) {
			c.events.Publish(domain.Event{
				Kind:  domain.EventAlarmCommitted,
				Alarm: defs[idx].Clone(),
				At:    c.now(),
			})
		}
	}
	return nil
}

// togglePlayback starts the first configured stream, or stops whatever is
// playing. A ringing alarm stops through the reconciler so its auto-stop
// timer is disarmed with it.
func (c *Coordinator) togglePlayback() error {
	if c.Playback() == domain.PlaybackAlarm {
		c.reconciler.StopAlarm()
		return nil
	}
	if c.player.Playing() {
		if err := c.player.Stop(); err != nil {
			return err
		}
		c.setPlayback(domain.PlaybackIdle)
		c.events.Publish(domain.Event{Kind: domain.EventPlaybackStopped, At: c.now()})
		return nil
	}

	streams := c.cfg.AudioStreams()
	if len(streams) == 0 {
		return domain.ErrNoAudioStreams
	}
	effect := domain.StreamAudioEffect{Stream: streams[0], Volume: c.player.Volume()}
	if err := c.player.Play(effect); err != nil {
		return err
	}
	c.setPlayback(domain.PlaybackMusic)
	return nil
}

// adjustVolume steps the output volume and arms the meter-hide timer. The
// meter stays visible as long as detents keep arriving.
func (c *Coordinator) adjustVolume(delta float64) error {
	volume := c.player.Volume() + delta
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	if err := c.player.SetVolume(volume); err != nil {
		return err
	}

	hideAt := c.now().Add(c.cfg.Settings.VolumeMeterTimeout)
	if err := c.sched.Reschedule(hideVolumeMeterJobID, ports.GroupDefault,
		domain.OneShotTrigger{At: hideAt}, func() {
			// volume -1 tells displays to hide the meter
			c.events.Publish(domain.Event{Kind: domain.EventVolumeChanged, Volume: -1, At: c.now()})
		}); err != nil {
		c.log.Error("failed to arm volume meter timer", "error", err)
	}

	c.events.Publish(domain.Event{Kind: domain.EventVolumeChanged, Volume: volume, At: c.now()})
	return nil
}

// Powernap inserts a one-time alarm a nap's length from now.
func (c *Coordinator) Powernap() (*domain.AlarmDefinition, error) {
	return c.cfg.AddPowernapAlarm(c.now())
}
