// Package schedule provides the in-process job scheduler backing the
// alarm and housekeeping job groups.
package schedule

import (
	"log/slog"
	"sync"
	"time"

	"github.com/tilmanv/piwake/internal/domain"
	"github.com/tilmanv/piwake/internal/ports"
)

type jobKey struct {
	id    string
	group ports.JobGroup
}

type job struct {
	key   jobKey
	spec  domain.TriggerSpec
	fn    func()
	timer *time.Timer
	next  time.Time
}

// Scheduler runs one timer per job and re-arms recurring triggers after
// each firing. Callbacks run on timer goroutines, outside the scheduler's
// lock, so they may freely schedule and cancel jobs.
type Scheduler struct {
	log *slog.Logger
	now func() time.Time

	mu      sync.Mutex
	jobs    map[jobKey]*job
	stopped bool
}

var _ ports.Scheduler = (*Scheduler)(nil)

// New creates a running scheduler. now defaults to time.Now when nil.
func New(log *slog.Logger, now func() time.Time) *Scheduler {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		log:  log,
		now:  now,
		jobs: make(map[jobKey]*job),
	}
}

// Schedule registers a job for the trigger's next run. A spec with no next
// run registers nothing. An existing job with the same id and group is
// replaced.
func (s *Scheduler) Schedule(id string, group ports.JobGroup, spec domain.TriggerSpec, fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil
	}

	key := jobKey{id: id, group: group}
	s.removeLocked(key)

	next, ok := spec.NextRun(s.now())
	if !ok {
		s.log.Debug("trigger has no next run, not scheduling", "id", id, "group", group)
		return nil
	}

	j := &job{key: key, spec: spec, fn: fn, next: next}
	s.armLocked(j)
	s.jobs[key] = j
	return nil
}

// Cancel removes a job.
func (s *Scheduler) Cancel(id string, group ports.JobGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := jobKey{id: id, group: group}
	if _, ok := s.jobs[key]; !ok {
		return ports.ErrJobNotFound
	}
	s.removeLocked(key)
	return nil
}

// Reschedule replaces a job's trigger, creating the job when absent.
func (s *Scheduler) Reschedule(id string, group ports.JobGroup, spec domain.TriggerSpec, fn func()) error {
	return s.Schedule(id, group, spec, fn)
}

// Jobs returns a snapshot of the group's jobs.
func (s *Scheduler) Jobs(group ports.JobGroup) []ports.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ports.Job
	for key, j := range s.jobs {
		if key.group != group {
			continue
		}
		next := j.next
		out = append(out, ports.Job{ID: key.id, Group: key.group, NextRun: &next})
	}
	return out
}

// Clear removes every job in the group.
func (s *Scheduler) Clear(group ports.JobGroup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.jobs {
		if key.group == group {
			s.removeLocked(key)
		}
	}
}

// Stop cancels all jobs. The scheduler accepts no further work afterwards.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for key := range s.jobs {
		s.removeLocked(key)
	}
}

func (s *Scheduler) removeLocked(key jobKey) {
	j, ok := s.jobs[key]
	if !ok {
		return
	}
	if j.timer != nil {
		j.timer.Stop()
	}
	delete(s.jobs, key)
}

// armLocked starts the timer for the job's next run.
func (s *Scheduler) armLocked(j *job) {
	delay := j.next.Sub(s.now())
	if delay < 0 {
		delay = 0
	}
	j.timer = time.AfterFunc(delay, func() { s.fire(j) })
}

// fire runs a job's callback and re-arms or retires the job. Replacing or
// cancelling a job always installs a fresh job object under its key, so
// the identity check drops firings that raced with either.
func (s *Scheduler) fire(j *job) {
	s.mu.Lock()
	if s.jobs[j.key] != j || s.stopped {
		s.mu.Unlock()
		return
	}
	fn := j.fn
	s.mu.Unlock()

	fn()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.jobs[j.key] != j || s.stopped {
		return
	}
	next, more := j.spec.NextRun(s.now())
	if !more {
		delete(s.jobs, j.key)
		return
	}
	j.next = next
	s.armLocked(j)
}
