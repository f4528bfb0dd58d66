// Package domain contains the core entities and coordination logic for
// piwake: alarm definitions, the mode state machine and the alarm editor.
// It is independent of hardware, storage and transport concerns.
package domain

import (
	"errors"
	"fmt"
	"time"
)

// Common domain errors.
var (
	ErrNoActiveSession        = errors.New("no active editing session")
	ErrInvalidAlarmDefinition = errors.New("alarm definition is neither recurring nor one-time")
	ErrNoAudioStreams         = errors.New("no audio streams configured")
)

// Weekday identifies a day of the week, Monday through Sunday.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// String returns the full English day name.
func (w Weekday) String() string {
	if w < Monday || w > Sunday {
		return "Unknown"
	}
	return weekdayNames[w]
}

// Abbrev returns the two-letter abbreviation used on the display.
func (w Weekday) Abbrev() string {
	return w.String()[:2]
}

// Std converts to the standard library's weekday numbering (Sunday = 0).
func (w Weekday) Std() time.Weekday {
	if w == Sunday {
		return time.Sunday
	}
	return time.Weekday(w)
}

// WeekdayOf converts a standard library weekday to the domain numbering.
func WeekdayOf(w time.Weekday) Weekday {
	if w == time.Sunday {
		return Sunday
	}
	return Weekday(w)
}

// Date is a calendar date without a time of day. It is a comparable value
// type so it can be cycled through in the property editor.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates a point in time to its calendar date.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// At returns the wall-clock moment hour:minute on this date in loc.
func (d Date) At(hour, minute int, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, hour, minute, 0, 0, loc)
}

// AddDays returns the date n calendar days later.
func (d Date) AddDays(n int) Date {
	return DateOf(d.At(0, 0, time.UTC).AddDate(0, 0, n))
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// AudioStream is a named network audio source alarms can play.
type AudioStream struct {
	ID   int
	Name string
	URL  string
}

func (s AudioStream) String() string {
	return fmt.Sprintf("stream_name: %s, stream_url: %s", s.Name, s.URL)
}

// StreamAudioEffect couples a stream with a playback volume.
type StreamAudioEffect struct {
	Stream AudioStream
	Volume float64
}

// Title returns the human-readable name of the playing content.
func (e StreamAudioEffect) Title() string {
	return e.Stream.Name
}

// VisualEffect marks an alarm as having a pre-alarm visual countdown.
type VisualEffect struct{}

// ActiveWithin reports whether the effect should render when the alarm is
// the given number of minutes away.
func (VisualEffect) ActiveWithin(minutesToAlarm int) bool {
	return minutesToAlarm <= 8
}

// AlarmDefinition describes a single configured alarm. Exactly one of
// Recurring (non-empty) and OneTime is set once committed. A nil ID means
// the definition has not been persisted yet.
type AlarmDefinition struct {
	ID           *int
	Hour         int
	Minute       int
	Name         string
	IsActive     bool
	Recurring    []Weekday
	OneTime      *Date
	AudioEffect  *StreamAudioEffect
	VisualEffect *VisualEffect
}

// IsRecurring reports whether the alarm repeats on a weekday set.
func (a *AlarmDefinition) IsRecurring() bool {
	return len(a.Recurring) > 0 && a.OneTime == nil
}

// IsOneTime reports whether the alarm fires on a single calendar date.
func (a *AlarmDefinition) IsOneTime() bool {
	return a.OneTime != nil && len(a.Recurring) == 0
}

// TimeString formats the firing time as HH:MM.
func (a *AlarmDefinition) TimeString() string {
	return fmt.Sprintf("%02d:%02d", a.Hour, a.Minute)
}

// DayString formats the repetition for the display: abbreviated weekdays
// for recurring alarms, the date for one-time alarms.
func (a *AlarmDefinition) DayString() (string, error) {
	if a.IsRecurring() {
		s := ""
		for i, wd := range a.Recurring {
			if i > 0 {
				s += ", "
			}
			s += wd.Abbrev()
		}
		return s, nil
	}
	if a.IsOneTime() {
		return a.OneTime.String(), nil
	}
	return "", ErrInvalidAlarmDefinition
}

// SetFutureDate turns the alarm into a one-time alarm at hour:minute on the
// first future occurrence of that time: today if it is still ahead,
// otherwise tomorrow.
func (a *AlarmDefinition) SetFutureDate(hour, minute int, now time.Time) {
	target := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if target.Before(now) {
		target = target.AddDate(0, 0, 1)
	}
	d := DateOf(target)
	a.Hour = hour
	a.Minute = minute
	a.OneTime = &d
	a.Recurring = nil
}

// TriggerSpec computes the firing schedule for this definition in the given
// timezone. Returns ErrInvalidAlarmDefinition when the definition is neither
// recurring nor one-time.
func (a *AlarmDefinition) TriggerSpec(loc *time.Location) (TriggerSpec, error) {
	if a.IsRecurring() {
		return WeeklyTrigger{
			Weekdays: append([]Weekday(nil), a.Recurring...),
			Hour:     a.Hour,
			Minute:   a.Minute,
			Location: loc,
		}, nil
	}
	if a.IsOneTime() {
		return DateTrigger{
			Date:     *a.OneTime,
			Hour:     a.Hour,
			Minute:   a.Minute,
			Location: loc,
		}, nil
	}
	return nil, ErrInvalidAlarmDefinition
}

// Clone returns a deep copy suitable as an editing working copy.
func (a *AlarmDefinition) Clone() *AlarmDefinition {
	c := *a
	if a.ID != nil {
		id := *a.ID
		c.ID = &id
	}
	c.Recurring = append([]Weekday(nil), a.Recurring...)
	if a.OneTime != nil {
		d := *a.OneTime
		c.OneTime = &d
	}
	if a.AudioEffect != nil {
		e := *a.AudioEffect
		c.AudioEffect = &e
	}
	if a.VisualEffect != nil {
		v := *a.VisualEffect
		c.VisualEffect = &v
	}
	return &c
}
