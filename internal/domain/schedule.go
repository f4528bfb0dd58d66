package domain

import "time"

// TriggerSpec describes when a scheduled job should fire. NextRun returns
// the first firing strictly after the given instant, or ok=false when the
// spec will never fire again.
type TriggerSpec interface {
	NextRun(after time.Time) (time.Time, bool)
}

// WeeklyTrigger fires at Hour:Minute on each weekday in the set, open-ended.
type WeeklyTrigger struct {
	Weekdays []Weekday
	Hour     int
	Minute   int
	Location *time.Location
}

// NextRun scans forward from the day of `after` and returns the earliest
// matching weekday occurrence strictly after it. A non-empty weekday set
// always yields a next run within seven days.
func (t WeeklyTrigger) NextRun(after time.Time) (time.Time, bool) {
	if len(t.Weekdays) == 0 {
		return time.Time{}, false
	}
	local := after.In(t.location())
	for i := 0; i <= 7; i++ {
		day := local.AddDate(0, 0, i)
		candidate := time.Date(day.Year(), day.Month(), day.Day(), t.Hour, t.Minute, 0, 0, t.location())
		if !candidate.After(after) {
			continue
		}
		for _, wd := range t.Weekdays {
			if wd.Std() == candidate.Weekday() {
				return candidate, true
			}
		}
	}
	return time.Time{}, false
}

func (t WeeklyTrigger) location() *time.Location {
	if t.Location == nil {
		return time.Local
	}
	return t.Location
}

// DateTrigger fires once at Hour:Minute on Date. The trigger is bounded to
// a one-day window starting at that date; once the moment has passed it
// reports no next run and the job naturally expires.
type DateTrigger struct {
	Date     Date
	Hour     int
	Minute   int
	Location *time.Location
}

func (t DateTrigger) NextRun(after time.Time) (time.Time, bool) {
	loc := t.Location
	if loc == nil {
		loc = time.Local
	}
	fire := t.Date.At(t.Hour, t.Minute, loc)
	if fire.After(after) {
		return fire, true
	}
	return time.Time{}, false
}

// OneShotTrigger fires exactly once at a fixed instant. Used for ephemeral
// timers such as auto-stopping a ringing alarm or hiding the volume meter.
type OneShotTrigger struct {
	At time.Time
}

func (t OneShotTrigger) NextRun(after time.Time) (time.Time, bool) {
	if t.At.After(after) {
		return t.At, true
	}
	return time.Time{}, false
}

// IntervalTrigger fires repeatedly with a fixed period, open-ended.
type IntervalTrigger struct {
	Every time.Duration
}

func (t IntervalTrigger) NextRun(after time.Time) (time.Time, bool) {
	if t.Every <= 0 {
		return time.Time{}, false
	}
	return after.Add(t.Every), true
}
