// Package ports defines the interfaces between the coordination core and
// its adapters: job scheduling, playback, sensors and persistence.
package ports

import (
	"errors"
	"time"

	"github.com/tilmanv/piwake/internal/domain"
)

// ErrJobNotFound is returned when cancelling or inspecting an unknown job.
var ErrJobNotFound = errors.New("scheduled job not found")

// JobGroup partitions scheduled jobs. Alarm jobs are cleared and rebuilt
// wholesale on every reconcile; default jobs (housekeeping, probes,
// one-shot timers) persist across reconciles.
type JobGroup string

const (
	GroupAlarm   JobGroup = "alarm"
	GroupDefault JobGroup = "default"
)

// Job is a snapshot of one scheduled job. NextRun is nil when the job's
// trigger has expired and the job is awaiting removal.
type Job struct {
	ID      string
	Group   JobGroup
	NextRun *time.Time
}

// Scheduler runs callbacks at times computed from trigger specs.
// Implementations invoke callbacks on their own goroutine; callers are
// responsible for their own locking.
type Scheduler interface {
	// Schedule registers a job. Scheduling an id that already exists in
	// the group replaces it.
	Schedule(id string, group JobGroup, spec domain.TriggerSpec, fn func()) error

	// Cancel removes a job. Returns ErrJobNotFound for unknown ids.
	Cancel(id string, group JobGroup) error

	// Reschedule points an existing job at a new trigger spec, creating
	// the job when it does not exist yet.
	Reschedule(id string, group JobGroup, spec domain.TriggerSpec, fn func()) error

	// Jobs lists the jobs in a group.
	Jobs(group JobGroup) []Job

	// Clear removes every job in a group.
	Clear(group JobGroup)

	// Stop shuts the scheduler down; pending jobs do not fire afterwards.
	Stop()
}
