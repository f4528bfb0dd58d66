package domain

// StateKind discriminates the mode state variants.
type StateKind int

const (
	KindDefault StateKind = iota
	KindAlarmView
	KindAlarmEdit
	KindPropertyEdit
)

func (k StateKind) String() string {
	switch k {
	case KindDefault:
		return "default"
	case KindAlarmView:
		return "alarm_view"
	case KindAlarmEdit:
		return "alarm_edit"
	case KindPropertyEdit:
		return "property_edit"
	}
	return "unknown"
}

// ModeState is the device's current high-level UI mode. States are
// immutable snapshots: a transition builds a fresh value from the previous
// state and replaces it wholesale.
type ModeState interface {
	Kind() StateKind
}

// DefaultMode shows the clock face.
type DefaultMode struct{}

func (DefaultMode) Kind() StateKind { return KindDefault }

// AlarmViewMode browses the alarm list. Index ranges over the existing
// alarms plus one extra "create new" slot past the end.
type AlarmViewMode struct {
	Index int
}

func (AlarmViewMode) Kind() StateKind { return KindAlarmView }

// AlarmEditMode cycles through the editable properties of a working copy.
type AlarmEditMode struct {
	Index int
	Field EditableField
	Draft *AlarmDefinition
}

func (AlarmEditMode) Kind() StateKind { return KindAlarmEdit }

// PropertyEditMode cycles through the values of the focused property.
type PropertyEditMode struct {
	Index int
	Field EditableField
	Draft *AlarmDefinition
}

func (PropertyEditMode) Kind() StateKind { return KindPropertyEdit }

// PlaybackMode is what the speaker is currently doing, distinct from the
// UI mode above.
type PlaybackMode int

const (
	PlaybackBoot PlaybackMode = iota
	PlaybackIdle
	PlaybackAlarm
	PlaybackMusic
)

func (m PlaybackMode) String() string {
	switch m {
	case PlaybackBoot:
		return "boot"
	case PlaybackIdle:
		return "idle"
	case PlaybackAlarm:
		return "alarm"
	case PlaybackMusic:
		return "music"
	}
	return "unknown"
}
