package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilmanv/piwake/internal/adapters/schedule"
	"github.com/tilmanv/piwake/internal/domain"
	"github.com/tilmanv/piwake/internal/ports"
)

type coordinatorFixture struct {
	cfg    *domain.Config
	sched  *schedule.Fake
	player *fakePlayer
	events *eventRecorder
	coord  *Coordinator
	rec    *Reconciler
}

func newCoordinatorFixture(t *testing.T, alarms ...*domain.AlarmDefinition) *coordinatorFixture {
	t.Helper()
	cfg := domain.NewConfig(domain.DefaultSettings())
	cfg.AddAudioStream(domain.AudioStream{ID: -1, Name: "radio", URL: "http://radio"})
	for _, a := range alarms {
		cfg.AddAlarmDefinition(a)
	}

	sched := schedule.NewFake(testStart)
	player := newFakePlayer()
	pub := domain.NewPublisher()
	events := recordEvents(pub)

	editor := domain.NewAlarmEditor(cfg, sched.Now, nil)
	machine := domain.NewModeMachine(editor, nil)
	rec := NewReconciler(cfg, sched, player, &fakeNetwork{online: true}, nil, pub, nil, time.UTC, sched.Now)
	rec.Start()

	coord := NewCoordinator(machine, editor, cfg, player, sched, rec, pub, nil, sched.Now)
	coord.Ready()
	return &coordinatorFixture{cfg: cfg, sched: sched, player: player, events: events, coord: coord, rec: rec}
}

func morningAlarm(id int) *domain.AlarmDefinition {
	return &domain.AlarmDefinition{
		ID: &id, Hour: 11, Minute: 0, Name: "morning", IsActive: true,
		Recurring: []domain.Weekday{domain.Wednesday},
	}
}

func TestCoordinator_ModeButtonCycles(t *testing.T) {
	f := newCoordinatorFixture(t, morningAlarm(0))

	require.NoError(t, f.coord.HandleHardware(domain.ModeButtonPressed))
	assert.Equal(t, domain.KindAlarmView, f.coord.Mode().Kind())

	require.NoError(t, f.coord.HandleHardware(domain.ModeButtonPressed))
	assert.Equal(t, domain.KindDefault, f.coord.Mode().Kind())
}

func TestCoordinator_ModeButtonEscapesEditing(t *testing.T) {
	f := newCoordinatorFixture(t, morningAlarm(0))

	require.NoError(t, f.coord.HandleHardware(domain.ModeButtonPressed))
	require.NoError(t, f.coord.HandleHardware(domain.InvokeButtonPressed))
	require.Equal(t, domain.KindAlarmEdit, f.coord.Mode().Kind())

	require.NoError(t, f.coord.HandleHardware(domain.ModeButtonPressed))
	assert.Equal(t, domain.KindDefault, f.coord.Mode().Kind())
}

func TestCoordinator_RotaryNavigatesAlarms(t *testing.T) {
	f := newCoordinatorFixture(t, morningAlarm(0))

	require.NoError(t, f.coord.HandleHardware(domain.ModeButtonPressed))
	require.NoError(t, f.coord.HandleHardware(domain.RotaryClockwise))
	view, ok := f.coord.Mode().(domain.AlarmViewMode)
	require.True(t, ok)
	assert.Equal(t, 1, view.Index)

	require.NoError(t, f.coord.HandleHardware(domain.RotaryCounterClockwise))
	view = f.coord.Mode().(domain.AlarmViewMode)
	assert.Equal(t, 0, view.Index)
}

func TestCoordinator_EditCommitThroughHardware(t *testing.T) {
	f := newCoordinatorFixture(t, morningAlarm(0))

	require.NoError(t, f.coord.HandleHardware(domain.ModeButtonPressed))
	require.NoError(t, f.coord.HandleHardware(domain.InvokeButtonPressed))

	// hour -> min, descend, bump the minute, ascend
	require.NoError(t, f.coord.HandleHardware(domain.RotaryClockwise))
	require.NoError(t, f.coord.HandleHardware(domain.InvokeButtonPressed))
	require.Equal(t, domain.KindPropertyEdit, f.coord.Mode().Kind())
	require.NoError(t, f.coord.HandleHardware(domain.RotaryClockwise))
	require.NoError(t, f.coord.HandleHardware(domain.InvokeButtonPressed))
	require.Equal(t, domain.KindAlarmEdit, f.coord.Mode().Kind())

	// forward to the update pseudo-property and invoke it
	for f.coord.Mode().(domain.AlarmEditMode).Field != domain.FieldUpdate {
		require.NoError(t, f.coord.HandleHardware(domain.RotaryClockwise))
	}
	require.NoError(t, f.coord.HandleHardware(domain.InvokeButtonPressed))

	assert.Equal(t, domain.KindAlarmView, f.coord.Mode().Kind())
	assert.Equal(t, 1, f.cfg.AlarmDefinitions()[0].Minute)

	ev, ok := f.events.last(domain.EventAlarmCommitted)
	require.True(t, ok)
	require.NotNil(t, ev.Alarm)
	assert.Equal(t, 1, ev.Alarm.Minute)
}

func TestCoordinator_CancelPseudoProperty(t *testing.T) {
	f := newCoordinatorFixture(t, morningAlarm(0))

	require.NoError(t, f.coord.HandleHardware(domain.ModeButtonPressed))
	require.NoError(t, f.coord.HandleHardware(domain.InvokeButtonPressed))

	for f.coord.Mode().(domain.AlarmEditMode).Field != domain.FieldCancel {
		require.NoError(t, f.coord.HandleHardware(domain.RotaryClockwise))
	}
	require.NoError(t, f.coord.HandleHardware(domain.InvokeButtonPressed))

	assert.Equal(t, domain.KindAlarmView, f.coord.Mode().Kind())
	assert.Equal(t, 0, f.cfg.AlarmDefinitions()[0].Minute)
}

func TestCoordinator_VolumeAdjust(t *testing.T) {
	f := newCoordinatorFixture(t)

	require.NoError(t, f.coord.HandleHardware(domain.RotaryClockwise))
	assert.InDelta(t, 0.45, f.player.Volume(), 1e-9)

	ev, ok := f.events.last(domain.EventVolumeChanged)
	require.True(t, ok)
	assert.InDelta(t, 0.45, ev.Volume, 1e-9)

	// meter-hide one-shot armed
	found := false
	for _, job := range f.sched.Jobs(ports.GroupDefault) {
		if job.ID == hideVolumeMeterJobID {
			found = true
		}
	}
	assert.True(t, found)

	f.sched.Advance(f.cfg.Settings.VolumeMeterTimeout)
	ev, ok = f.events.last(domain.EventVolumeChanged)
	require.True(t, ok)
	assert.Equal(t, -1.0, ev.Volume)
}

func TestCoordinator_VolumeClamps(t *testing.T) {
	f := newCoordinatorFixture(t)
	require.NoError(t, f.player.SetVolume(0.98))
	require.NoError(t, f.coord.HandleHardware(domain.RotaryClockwise))
	assert.Equal(t, 1.0, f.player.Volume())

	require.NoError(t, f.player.SetVolume(0.02))
	require.NoError(t, f.coord.HandleHardware(domain.RotaryCounterClockwise))
	assert.Equal(t, 0.0, f.player.Volume())
}

func TestCoordinator_TogglePlayback(t *testing.T) {
	f := newCoordinatorFixture(t)

	require.NoError(t, f.coord.HandleHardware(domain.InvokeButtonPressed))
	assert.True(t, f.player.Playing())
	assert.Equal(t, domain.PlaybackMusic, f.coord.Playback())

	require.NoError(t, f.coord.HandleHardware(domain.InvokeButtonPressed))
	assert.False(t, f.player.Playing())
	assert.Equal(t, domain.PlaybackIdle, f.coord.Playback())
}

func TestCoordinator_InvokeStopsRingingAlarm(t *testing.T) {
	f := newCoordinatorFixture(t, morningAlarm(0))

	f.sched.Advance(time.Hour)
	require.Equal(t, domain.PlaybackAlarm, f.coord.Playback())

	require.NoError(t, f.coord.HandleHardware(domain.InvokeButtonPressed))
	assert.False(t, f.player.Playing())
	assert.Equal(t, domain.PlaybackIdle, f.coord.Playback())
}

func TestCoordinator_TogglePlaybackWithoutStreams(t *testing.T) {
	cfg := domain.NewConfig(domain.DefaultSettings())
	sched := schedule.NewFake(testStart)
	player := newFakePlayer()
	pub := domain.NewPublisher()
	editor := domain.NewAlarmEditor(cfg, sched.Now, nil)
	machine := domain.NewModeMachine(editor, nil)
	rec := NewReconciler(cfg, sched, player, &fakeNetwork{online: true}, nil, pub, nil, time.UTC, sched.Now)
	rec.Start()
	coord := NewCoordinator(machine, editor, cfg, player, sched, rec, pub, nil, sched.Now)
	coord.Ready()

	assert.ErrorIs(t, coord.HandleHardware(domain.InvokeButtonPressed), domain.ErrNoAudioStreams)
}

func TestCoordinator_PublishesModeChanges(t *testing.T) {
	f := newCoordinatorFixture(t, morningAlarm(0))

	require.NoError(t, f.coord.HandleHardware(domain.ModeButtonPressed))
	ev, ok := f.events.last(domain.EventModeChanged)
	require.True(t, ok)
	assert.Equal(t, domain.KindAlarmView, ev.Mode.Kind())
}

func TestCoordinator_Powernap(t *testing.T) {
	f := newCoordinatorFixture(t)

	nap, err := f.coord.Powernap()
	require.NoError(t, err)
	assert.True(t, nap.IsOneTime())

	// schedules at nap length plus the one minute margin
	next := f.rec.NextAlarm()
	require.NotNil(t, next)
	assert.Equal(t, testStart.Add(f.cfg.Settings.PowernapDuration+time.Minute), next.At)
}

func TestCoordinator_RingingAlarmIsOneTimeMorningAfter(t *testing.T) {
	// a ringing alarm created for today must not resurrect tomorrow
	f := newCoordinatorFixture(t)
	_, err := f.coord.Powernap()
	require.NoError(t, err)

	f.sched.Advance(f.cfg.Settings.PowernapDuration + time.Minute)
	assert.True(t, f.player.Playing())
	assert.Empty(t, f.cfg.AlarmDefinitions())
	assert.Empty(t, f.sched.Jobs(ports.GroupAlarm))
}
