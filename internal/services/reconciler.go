// Package services wires the domain model to schedulers, playback and
// hardware: the alarm reconciler, the input coordinator and the
// housekeeping jobs.
package services

import (
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tilmanv/piwake/internal/domain"
	"github.com/tilmanv/piwake/internal/ports"
)

// stopAlarmJobID is the one-shot that silences a ringing alarm after the
// configured duration. Rescheduling replaces it, so a second alarm ringing
// while the first is still playing extends the window instead of stacking
// timers.
const stopAlarmJobID = "stop_alarm_trigger"

// Reconciler keeps the scheduler's alarm job group in sync with the alarm
// configuration, rings alarms when their jobs fire and publishes
// next-alarm updates.
type Reconciler struct {
	cfg      *domain.Config
	sched    ports.Scheduler
	player   ports.Player
	net      ports.NetworkChecker
	notifier ports.Notifier
	events   *domain.Publisher
	log      *slog.Logger
	loc      *time.Location
	now      func() time.Time

	mu       sync.Mutex
	sweeping atomic.Bool
}

// NewReconciler creates a reconciler. now defaults to time.Now and loc to
// time.Local when nil.
func NewReconciler(
	cfg *domain.Config,
	sched ports.Scheduler,
	player ports.Player,
	net ports.NetworkChecker,
	notifier ports.Notifier,
	events *domain.Publisher,
	log *slog.Logger,
	loc *time.Location,
	now func() time.Time,
) *Reconciler {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &Reconciler{
		cfg:      cfg,
		sched:    sched,
		player:   player,
		net:      net,
		notifier: notifier,
		events:   events,
		log:      log,
		loc:      loc,
		now:      now,
	}
}

// Start installs the configuration change hook and performs the initial
// reconcile.
func (r *Reconciler) Start() {
	r.cfg.OnChange(r.Reconcile)
	r.Reconcile()
}

// Reconcile rebuilds the alarm job group from the configuration: expired
// one-time definitions are removed, every remaining active definition gets
// one job keyed by its id, and a next-alarm update is published.
//
// The configuration hook calls Reconcile synchronously, so the expiry
// sweep's own removals would re-enter here; the sweeping flag turns those
// nested calls into no-ops.
func (r *Reconciler) Reconcile() {
	if r.sweeping.Load() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweep()

	r.sched.Clear(ports.GroupAlarm)
	for _, def := range r.cfg.AlarmDefinitions() {
		if !def.IsActive {
			continue
		}
		spec, err := def.TriggerSpec(r.loc)
		if err != nil {
			r.log.Warn("skipping unschedulable alarm", "id", *def.ID, "error", err)
			continue
		}
		id := *def.ID
		if err := r.sched.Schedule(strconv.Itoa(id), ports.GroupAlarm, spec, func() {
			r.RingAlarm(id)
		}); err != nil {
			r.log.Error("failed to schedule alarm", "id", id, "error", err)
		}
	}

	r.publishNext()
}

// sweep removes one-time definitions whose moment has passed.
func (r *Reconciler) sweep() {
	now := r.now()
	r.sweeping.Store(true)
	defer r.sweeping.Store(false)

	for _, def := range r.cfg.AlarmDefinitions() {
		if !def.IsOneTime() {
			continue
		}
		if def.OneTime.At(def.Hour, def.Minute, r.loc).Before(now) {
			r.log.Info("removing expired one-time alarm", "id", *def.ID, "name", def.Name)
			r.cfg.RemoveAlarmDefinition(*def.ID)
		}
	}
}

// NextAlarmJob returns the soonest pending alarm job. Ties on the firing
// time resolve to the smaller alarm id.
func (r *Reconciler) NextAlarmJob() (ports.Job, bool) {
	var best ports.Job
	found := false
	for _, job := range r.sched.Jobs(ports.GroupAlarm) {
		if job.NextRun == nil {
			continue
		}
		if !found || job.NextRun.Before(*best.NextRun) ||
			(job.NextRun.Equal(*best.NextRun) && jobAlarmID(job) < jobAlarmID(best)) {
			best = job
			found = true
		}
	}
	return best, found
}

// NextAlarm returns the soonest pending alarm occurrence, or nil.
func (r *Reconciler) NextAlarm() *domain.NextAlarm {
	job, ok := r.NextAlarmJob()
	if !ok {
		return nil
	}
	return &domain.NextAlarm{AlarmID: jobAlarmID(job), At: *job.NextRun}
}

func (r *Reconciler) publishNext() {
	r.events.Publish(domain.Event{
		Kind: domain.EventNextAlarmChanged,
		Next: r.NextAlarm(),
		At:   r.now(),
	})
}

func jobAlarmID(job ports.Job) int {
	id, err := strconv.Atoi(job.ID)
	if err != nil {
		return -1
	}
	return id
}

// RingAlarm starts playback for the given alarm. One-time alarms are
// removed from the configuration before playback begins, which also
// reconciles the job group. When the device is offline, or another stream
// already holds the output, the locally stored fallback sound plays
// instead, at the output's current volume when something was playing.
func (r *Reconciler) RingAlarm(alarmID int) {
	def := r.cfg.GetAlarmDefinition(alarmID)
	if def == nil {
		r.log.Warn("alarm job fired for unknown definition", "id", alarmID)
		return
	}
	r.log.Info("alarm ringing", "id", alarmID, "name", def.Name)

	volume := r.cfg.Settings.DefaultVolume
	if def.AudioEffect != nil {
		volume = def.AudioEffect.Volume
	}

	var effect domain.StreamAudioEffect
	switch {
	case def.AudioEffect == nil:
		effect = r.cfg.OfflineAlarmEffect(volume)
	case r.player.Playing():
		effect = r.cfg.OfflineAlarmEffect(r.player.Volume())
		r.notify("Alarm", "audio output busy, playing local alarm sound")
	case !r.net.Online():
		effect = r.cfg.OfflineAlarmEffect(volume)
		r.notify("Alarm", "device offline, playing local alarm sound")
	default:
		effect = *def.AudioEffect
	}

	ringing := def.Clone()
	if def.IsOneTime() {
		r.cfg.RemoveAlarmDefinition(alarmID)
	}

	if err := r.player.Play(effect); err != nil {
		r.log.Error("alarm playback failed", "id", alarmID, "error", err)
		return
	}

	stopAt := r.now().Add(r.cfg.Settings.AlarmDuration)
	if err := r.sched.Reschedule(stopAlarmJobID, ports.GroupDefault,
		domain.OneShotTrigger{At: stopAt}, r.StopAlarm); err != nil {
		r.log.Error("failed to arm alarm auto-stop", "error", err)
	}

	r.events.Publish(domain.Event{
		Kind:  domain.EventAlarmRinging,
		Alarm: ringing,
		At:    r.now(),
	})
}

// StopAlarm silences the output and disarms the auto-stop timer.
func (r *Reconciler) StopAlarm() {
	if err := r.player.Stop(); err != nil {
		r.log.Error("failed to stop playback", "error", err)
	}
	if err := r.sched.Cancel(stopAlarmJobID, ports.GroupDefault); err != nil && err != ports.ErrJobNotFound {
		r.log.Error("failed to disarm alarm auto-stop", "error", err)
	}
	r.events.Publish(domain.Event{Kind: domain.EventPlaybackStopped, At: r.now()})
}

func (r *Reconciler) notify(title, message string) {
	if r.notifier == nil {
		return
	}
	if err := r.notifier.Notify(title, message); err != nil {
		r.log.Debug("notification failed", "error", err)
	}
}
