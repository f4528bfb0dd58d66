package services

import (
	"log/slog"
	"time"

	"github.com/tilmanv/piwake/internal/domain"
	"github.com/tilmanv/piwake/internal/ports"
)

const (
	internetProbeJobID = "internet_probe"
	sunriseJobID       = "sunrise"
	sunsetJobID        = "sunset"

	internetProbeInterval = time.Minute
)

// Housekeeping runs the recurring background jobs that are independent of
// alarms: the internet reachability probe and the sunrise/sunset one-shots.
// Sun events reschedule themselves for the next day after firing.
type Housekeeping struct {
	sched   ports.Scheduler
	net     ports.NetworkChecker
	almanac ports.Almanac
	events  *domain.Publisher
	log     *slog.Logger
	now     func() time.Time

	online bool
}

// NewHousekeeping creates the housekeeping service. almanac may be nil
// when no location is available; sun events are skipped then.
func NewHousekeeping(
	sched ports.Scheduler,
	net ports.NetworkChecker,
	almanac ports.Almanac,
	events *domain.Publisher,
	log *slog.Logger,
	now func() time.Time,
) *Housekeeping {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &Housekeeping{
		sched:   sched,
		net:     net,
		almanac: almanac,
		events:  events,
		log:     log,
		now:     now,
	}
}

// Start probes the network once, registers the recurring probe and arms
// the sun event one-shots.
func (h *Housekeeping) Start() error {
	h.online = h.net.Online()
	h.events.Publish(domain.Event{Kind: domain.EventNetworkChanged, Online: h.online, At: h.now()})

	if err := h.sched.Schedule(internetProbeJobID, ports.GroupDefault,
		domain.IntervalTrigger{Every: internetProbeInterval}, h.probe); err != nil {
		return err
	}

	if h.almanac != nil {
		h.armSunEvent(sunriseJobID, h.almanac.NextSunrise)
		h.armSunEvent(sunsetJobID, h.almanac.NextSunset)
	}
	return nil
}

// Online returns the result of the most recent probe.
func (h *Housekeeping) Online() bool {
	return h.online
}

func (h *Housekeeping) probe() {
	online := h.net.Online()
	if online == h.online {
		return
	}
	h.online = online
	h.log.Info("network state changed", "online", online)
	h.events.Publish(domain.Event{Kind: domain.EventNetworkChanged, Online: online, At: h.now()})
}

// armSunEvent schedules the next occurrence of a sun event. The job
// republishes and re-arms itself when it fires.
func (h *Housekeeping) armSunEvent(name string, next func(time.Time) (time.Time, error)) {
	at, err := next(h.now())
	if err != nil {
		h.log.Warn("cannot compute sun event", "event", name, "error", err)
		return
	}
	err = h.sched.Reschedule(name, ports.GroupDefault, domain.OneShotTrigger{At: at}, func() {
		h.events.Publish(domain.Event{Kind: domain.EventSunEvent, SunName: name, At: h.now()})
		h.armSunEvent(name, next)
	})
	if err != nil {
		h.log.Error("failed to schedule sun event", "event", name, "error", err)
	}
}
