package schedule

import (
	"sync"
	"time"

	"github.com/tilmanv/piwake/internal/domain"
	"github.com/tilmanv/piwake/internal/ports"
)

// Fake is a deterministic ports.Scheduler for tests. Nothing fires on its
// own; Advance moves the fake clock and runs the jobs that come due, in
// firing order.
type Fake struct {
	mu   sync.Mutex
	now  time.Time
	jobs map[jobKey]*fakeJob
}

type fakeJob struct {
	spec domain.TriggerSpec
	fn   func()
	next time.Time
}

var _ ports.Scheduler = (*Fake)(nil)

// NewFake creates a fake scheduler with its clock at start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start, jobs: make(map[jobKey]*fakeJob)}
}

// Now returns the fake clock, suitable as the now function of the code
// under test.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) Schedule(id string, group ports.JobGroup, spec domain.TriggerSpec, fn func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	next, ok := spec.NextRun(f.now)
	if !ok {
		delete(f.jobs, jobKey{id: id, group: group})
		return nil
	}
	f.jobs[jobKey{id: id, group: group}] = &fakeJob{spec: spec, fn: fn, next: next}
	return nil
}

func (f *Fake) Cancel(id string, group ports.JobGroup) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := jobKey{id: id, group: group}
	if _, ok := f.jobs[key]; !ok {
		return ports.ErrJobNotFound
	}
	delete(f.jobs, key)
	return nil
}

func (f *Fake) Reschedule(id string, group ports.JobGroup, spec domain.TriggerSpec, fn func()) error {
	return f.Schedule(id, group, spec, fn)
}

func (f *Fake) Jobs(group ports.JobGroup) []ports.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ports.Job
	for key, j := range f.jobs {
		if key.group != group {
			continue
		}
		next := j.next
		out = append(out, ports.Job{ID: key.id, Group: key.group, NextRun: &next})
	}
	return out
}

func (f *Fake) Clear(group ports.JobGroup) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key := range f.jobs {
		if key.group == group {
			delete(f.jobs, key)
		}
	}
}

func (f *Fake) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = make(map[jobKey]*fakeJob)
}

// Advance moves the clock forward by d, firing due jobs in time order.
// Callbacks run with the clock set to their firing time and may schedule
// or cancel jobs.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	for {
		key, j := f.dueLocked(target)
		if j == nil {
			break
		}
		f.now = j.next
		fn := j.fn
		f.mu.Unlock()
		fn()
		f.mu.Lock()
		// the callback may have replaced or cancelled the job
		if cur, ok := f.jobs[key]; ok && cur == j {
			if next, more := j.spec.NextRun(f.now); more {
				j.next = next
			} else {
				delete(f.jobs, key)
			}
		}
	}
	f.now = target
	f.mu.Unlock()
}

func (f *Fake) dueLocked(until time.Time) (jobKey, *fakeJob) {
	var bestKey jobKey
	var best *fakeJob
	for key, j := range f.jobs {
		if j.next.After(until) {
			continue
		}
		if best == nil || j.next.Before(best.next) ||
			(j.next.Equal(best.next) && key.id < bestKey.id) {
			bestKey, best = key, j
		}
	}
	return bestKey, best
}
