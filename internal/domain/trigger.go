package domain

// Trigger is a discrete input that may cause a mode transition. Triggers
// carry no payload; they are pure routing keys into the transition table.
type Trigger string

// Domain triggers, produced by mapping hardware input onto the current mode.
const (
	EnterDefault          Trigger = "enter_default"
	EnterAlarmView        Trigger = "enter_alarm_view"
	FocusNextAlarm        Trigger = "focus_next_alarm"
	FocusPreviousAlarm    Trigger = "focus_previous_alarm"
	StartAlarmEdit        Trigger = "start_alarm_edit"
	FocusNextProperty     Trigger = "focus_next_property"
	FocusPreviousProperty Trigger = "focus_previous_property"
	StartPropertyEdit     Trigger = "start_property_edit"
	FocusNextValue        Trigger = "focus_next_value"
	FocusPreviousValue    Trigger = "focus_previous_value"
	CommitAlarmEdit       Trigger = "commit_alarm_edit"
	CancelAlarmEdit       Trigger = "cancel_alarm_edit"
)

// HardwareTrigger is a raw input event from the device front panel.
type HardwareTrigger string

const (
	ModeButtonPressed      HardwareTrigger = "mode_button"
	InvokeButtonPressed    HardwareTrigger = "invoke_button"
	RotaryClockwise        HardwareTrigger = "rotary_clockwise"
	RotaryCounterClockwise HardwareTrigger = "rotary_counter_clockwise"
)
