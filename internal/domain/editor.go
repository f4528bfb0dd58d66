package domain

import (
	"log/slog"
	"slices"
	"time"
)

// EditableField names one property surfaced in the alarm editing UI.
// FieldUpdate and FieldCancel are pseudo-properties: they appear in the
// cycling order but carry no value list, and invoking them commits or
// discards the session.
type EditableField int

const (
	FieldHour EditableField = iota
	FieldMinute
	FieldDayType
	FieldOneTime
	FieldRecurring
	FieldAudioEffect
	FieldIsActive
	FieldUpdate
	FieldCancel
)

func (f EditableField) String() string {
	switch f {
	case FieldHour:
		return "hour"
	case FieldMinute:
		return "min"
	case FieldDayType:
		return "day_type"
	case FieldOneTime:
		return "onetime"
	case FieldRecurring:
		return "recurring"
	case FieldAudioEffect:
		return "audio_effect"
	case FieldIsActive:
		return "is_active"
	case FieldUpdate:
		return "update"
	case FieldCancel:
		return "cancel"
	}
	return "unknown"
}

// DayType selects between the two mutually exclusive repetition modes while
// a definition is being edited.
type DayType string

const (
	DayTypeOneTime   DayType = "onetime"
	DayTypeRecurring DayType = "recurring"
)

// weekdayPresets is the curated list of weekday sets offered in the editor,
// from single days through the full week.
var weekdayPresets = [][]Weekday{
	{Monday},
	{Tuesday},
	{Wednesday},
	{Thursday},
	{Friday},
	{Saturday},
	{Sunday},
	{Saturday, Sunday},
	{Monday, Tuesday, Wednesday, Thursday, Friday},
	{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday},
}

// onetimeDateCount is how many calendar days ahead the date picker offers.
const onetimeDateCount = 30

// EditingSession is the transient working state between StartEdit and
// Commit/Cancel. Draft is a copy; the configuration is untouched until
// commit.
type EditingSession struct {
	Index   int
	IsNew   bool
	Field   EditableField
	DayType DayType
	Draft   *AlarmDefinition
}

// Properties returns the ordered field cycle for the current draft.
func (s *EditingSession) Properties() []EditableField {
	fields := []EditableField{FieldHour, FieldMinute}
	if !s.Draft.IsOneTime() && !s.Draft.IsRecurring() {
		fields = append(fields, FieldDayType)
	}
	if s.DayType == DayTypeOneTime {
		fields = append(fields, FieldOneTime)
	} else {
		fields = append(fields, FieldRecurring)
	}
	return append(fields, FieldAudioEffect, FieldIsActive, FieldUpdate, FieldCancel)
}

// AlarmEditor owns alarm selection and editing sessions, independent of UI
// and hardware. At most one session is active at a time.
//
// Not safe for concurrent use; the coordinator serializes all calls.
type AlarmEditor struct {
	cfg     *Config
	now     func() time.Time
	log     *slog.Logger
	index   int
	session *EditingSession
}

// NewAlarmEditor creates an editor over the given configuration. now is the
// clock used when synthesizing new-alarm templates and date pickers.
func NewAlarmEditor(cfg *Config, now func() time.Time, log *slog.Logger) *AlarmEditor {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &AlarmEditor{cfg: cfg, now: now, log: log}
}

// Index returns the current view index. Values 0..len(alarms)-1 select
// existing alarms; len(alarms) is the "create new" slot.
func (e *AlarmEditor) Index() int {
	return e.index
}

// Session returns the active editing session, or nil.
func (e *AlarmEditor) Session() *EditingSession {
	return e.session
}

// SelectNextAlarm advances the view index cyclically, including the "create
// new" slot past the last alarm.
func (e *AlarmEditor) SelectNextAlarm() int {
	if e.index < len(e.cfg.AlarmDefinitions()) {
		e.index++
	} else {
		e.index = 0
	}
	return e.index
}

// SelectPreviousAlarm moves the view index backwards cyclically.
func (e *AlarmEditor) SelectPreviousAlarm() int {
	if e.index > 0 {
		e.index--
	} else {
		e.index = len(e.cfg.AlarmDefinitions())
	}
	return e.index
}

// StartEdit opens a session for the alarm at the current view index. On the
// "create new" slot it synthesizes a template: named "New Alarm", firing at
// the current time on the first future occurrence (today or tomorrow),
// active, playing the first configured stream at the default volume. With
// no streams configured the template has no audio effect; consumers treat
// that as "no sound selected".
func (e *AlarmEditor) StartEdit() error {
	alarms := e.cfg.AlarmDefinitions()

	var draft *AlarmDefinition
	isNew := false
	if e.index < len(alarms) {
		draft = alarms[e.index].Clone()
	} else {
		now := e.now()
		draft = &AlarmDefinition{
			Name:     "New Alarm",
			Hour:     now.Hour(),
			Minute:   now.Minute(),
			IsActive: true,
		}
		draft.SetFutureDate(now.Hour(), now.Minute(), now)
		if streams := e.cfg.AudioStreams(); len(streams) > 0 {
			draft.AudioEffect = &StreamAudioEffect{
				Stream: streams[0],
				Volume: e.cfg.Settings.DefaultVolume,
			}
		}
		draft.VisualEffect = &VisualEffect{}
		isNew = true
	}

	dayType := DayTypeRecurring
	if draft.IsOneTime() {
		dayType = DayTypeOneTime
	}

	s := &EditingSession{Index: e.index, IsNew: isNew, DayType: dayType, Draft: draft}
	s.Field = s.Properties()[0]
	e.session = s
	return nil
}

// FocusNextProperty moves the property cursor forward cyclically.
func (e *AlarmEditor) FocusNextProperty() error {
	return e.focusProperty(1)
}

// FocusPreviousProperty moves the property cursor backwards cyclically.
func (e *AlarmEditor) FocusPreviousProperty() error {
	return e.focusProperty(-1)
}

func (e *AlarmEditor) focusProperty(step int) error {
	s := e.session
	if s == nil {
		return ErrNoActiveSession
	}
	props := s.Properties()
	idx := slices.Index(props, s.Field)
	if idx < 0 {
		idx = 0
	}
	s.Field = props[((idx+step)%len(props)+len(props))%len(props)]
	return nil
}

// FocusNextValue cycles the focused property's value forward.
func (e *AlarmEditor) FocusNextValue() error {
	return e.focusValue(1)
}

// FocusPreviousValue cycles the focused property's value backwards.
func (e *AlarmEditor) FocusPreviousValue() error {
	return e.focusValue(-1)
}

func (e *AlarmEditor) focusValue(step int) error {
	s := e.session
	if s == nil {
		return ErrNoActiveSession
	}
	values := e.valueList(s.Field, s)
	if len(values) == 0 {
		// update/cancel pseudo-properties have nothing to cycle
		return nil
	}
	idx := 0
	current := currentValue(s.Field, s)
	for i, v := range values {
		if fieldValuesEqual(v, current) {
			idx = i
			break
		}
	}
	setValue(s.Field, s, values[((idx+step)%len(values)+len(values))%len(values)])
	return nil
}

// Commit writes the draft back into the configuration. New definitions are
// named after their firing time, get a fresh id and move the view index to
// their (last) position; existing ids are replaced in place. The session is
// cleared either way.
func (e *AlarmEditor) Commit() (*AlarmDefinition, error) {
	s := e.session
	if s == nil {
		return nil, ErrNoActiveSession
	}
	draft := s.Draft
	if draft.ID == nil {
		draft.Name = "Alarm at " + draft.TimeString()
		e.cfg.AddAlarmDefinition(draft)
		e.index = len(e.cfg.AlarmDefinitions()) - 1
	} else {
		e.cfg.UpdateAlarmDefinition(draft)
	}
	e.session = nil
	e.log.Info("alarm committed", "name", draft.Name, "id", *draft.ID)
	return draft, nil
}

// Cancel discards the session without touching the configuration.
func (e *AlarmEditor) Cancel() error {
	if e.session == nil {
		return ErrNoActiveSession
	}
	e.session = nil
	return nil
}

// valueList returns the enumerated values for a field, in cycling order.
func (e *AlarmEditor) valueList(f EditableField, s *EditingSession) []any {
	switch f {
	case FieldHour:
		values := make([]any, 24)
		for i := range values {
			values[i] = i
		}
		return values
	case FieldMinute:
		values := make([]any, 60)
		for i := range values {
			values[i] = i
		}
		return values
	case FieldDayType:
		return []any{DayTypeOneTime, DayTypeRecurring}
	case FieldOneTime:
		today := DateOf(e.now())
		values := make([]any, onetimeDateCount)
		for i := range values {
			values[i] = today.AddDays(i)
		}
		return values
	case FieldRecurring:
		values := make([]any, len(weekdayPresets))
		for i, preset := range weekdayPresets {
			values[i] = preset
		}
		return values
	case FieldAudioEffect:
		volume := e.cfg.Settings.DefaultVolume
		if s.Draft.AudioEffect != nil {
			volume = s.Draft.AudioEffect.Volume
		}
		streams := e.cfg.AudioStreams()
		values := make([]any, len(streams))
		for i, stream := range streams {
			values[i] = StreamAudioEffect{Stream: stream, Volume: volume}
		}
		return values
	case FieldIsActive:
		return []any{true, false}
	}
	return nil
}

func currentValue(f EditableField, s *EditingSession) any {
	switch f {
	case FieldHour:
		return s.Draft.Hour
	case FieldMinute:
		return s.Draft.Minute
	case FieldDayType:
		return s.DayType
	case FieldOneTime:
		if s.Draft.OneTime != nil {
			return *s.Draft.OneTime
		}
	case FieldRecurring:
		return s.Draft.Recurring
	case FieldAudioEffect:
		if s.Draft.AudioEffect != nil {
			return *s.Draft.AudioEffect
		}
	case FieldIsActive:
		return s.Draft.IsActive
	}
	return nil
}

func setValue(f EditableField, s *EditingSession, v any) {
	switch f {
	case FieldHour:
		s.Draft.Hour = v.(int)
	case FieldMinute:
		s.Draft.Minute = v.(int)
	case FieldDayType:
		s.DayType = v.(DayType)
	case FieldOneTime:
		d := v.(Date)
		s.Draft.OneTime = &d
		s.Draft.Recurring = nil
	case FieldRecurring:
		s.Draft.Recurring = append([]Weekday(nil), v.([]Weekday)...)
		s.Draft.OneTime = nil
	case FieldAudioEffect:
		effect := v.(StreamAudioEffect)
		s.Draft.AudioEffect = &effect
	case FieldIsActive:
		s.Draft.IsActive = v.(bool)
	}
}

// fieldValuesEqual compares two enumerated field values. Weekday sets
// compare element-wise; audio effects compare by stream identity so a
// volume tweak does not break cursor positioning.
func fieldValuesEqual(a, b any) bool {
	switch av := a.(type) {
	case []Weekday:
		bv, ok := b.([]Weekday)
		return ok && slices.Equal(av, bv)
	case StreamAudioEffect:
		bv, ok := b.(StreamAudioEffect)
		return ok && av.Stream.ID == bv.Stream.ID
	default:
		return a == b
	}
}
