package domain

import "log/slog"

// Transition is one edge in the mode machine: an optional side effect and a
// constructor deriving the target state from the previous one. The effect
// runs first; if it fails the machine stays in the source state, so a
// half-applied edit can never leave the UI in a mode that does not match
// the editor.
type Transition struct {
	Effect func() error
	Derive func(prev ModeState) ModeState
}

// Machine is a flat-table state machine over ModeState values. An
// unregistered (state, trigger) pair is a logged no-op, not an error: most
// hardware triggers are irrelevant in most modes.
//
// Machine is not safe for concurrent use; the coordinator serializes Fire.
type Machine struct {
	log     *slog.Logger
	table   map[StateKind]map[Trigger]Transition
	current ModeState
}

// NewMachine creates a machine in the given initial state.
func NewMachine(initial ModeState, log *slog.Logger) *Machine {
	if log == nil {
		log = slog.Default()
	}
	return &Machine{
		log:     log,
		table:   make(map[StateKind]map[Trigger]Transition),
		current: initial,
	}
}

// AddTransitions registers the outgoing edges for one source state.
func (m *Machine) AddTransitions(source StateKind, edges map[Trigger]Transition) *Machine {
	existing, ok := m.table[source]
	if !ok {
		existing = make(map[Trigger]Transition)
		m.table[source] = existing
	}
	for trigger, tr := range edges {
		existing[trigger] = tr
	}
	return m
}

// Current returns the current state snapshot.
func (m *Machine) Current() ModeState {
	return m.current
}

// Fire processes a trigger. The returned state is the machine's state after
// the call; it equals the previous state when the trigger is unregistered
// or the side effect failed.
func (m *Machine) Fire(trigger Trigger) (ModeState, error) {
	edges, ok := m.table[m.current.Kind()]
	if !ok {
		m.log.Debug("no transitions defined for state", "state", m.current.Kind())
		return m.current, nil
	}
	tr, ok := edges[trigger]
	if !ok {
		m.log.Debug("trigger not registered for state", "state", m.current.Kind(), "trigger", trigger)
		return m.current, nil
	}

	if tr.Effect != nil {
		if err := tr.Effect(); err != nil {
			m.log.Error("transition side effect failed, staying in source state",
				"state", m.current.Kind(), "trigger", trigger, "error", err)
			return m.current, err
		}
	}

	prev := m.current
	if tr.Derive != nil {
		m.current = tr.Derive(prev)
	}
	m.log.Debug("state transition",
		"from", prev.Kind(), "trigger", trigger, "to", m.current.Kind())
	return m.current, nil
}

// NewModeMachine builds the authoritative mode machine wired to the alarm
// editor. State snapshots are populated from the editor at derive time, so
// carried-over fields (view index, focused property, draft) always reflect
// the editor after the side effect has run.
func NewModeMachine(editor *AlarmEditor, log *slog.Logger) *Machine {
	m := NewMachine(DefaultMode{}, log)

	view := func(ModeState) ModeState {
		return AlarmViewMode{Index: editor.Index()}
	}
	edit := func(ModeState) ModeState {
		s := editor.Session()
		if s == nil {
			return AlarmViewMode{Index: editor.Index()}
		}
		return AlarmEditMode{Index: s.Index, Field: s.Field, Draft: s.Draft}
	}
	propEdit := func(ModeState) ModeState {
		s := editor.Session()
		if s == nil {
			return AlarmViewMode{Index: editor.Index()}
		}
		return PropertyEditMode{Index: s.Index, Field: s.Field, Draft: s.Draft}
	}
	home := func(ModeState) ModeState { return DefaultMode{} }
	commit := func() error {
		_, err := editor.Commit()
		return err
	}

	m.AddTransitions(KindDefault, map[Trigger]Transition{
		EnterAlarmView: {Derive: view},
	})
	m.AddTransitions(KindAlarmView, map[Trigger]Transition{
		EnterDefault:       {Derive: home},
		FocusNextAlarm:     {Effect: wrap(editor.SelectNextAlarm), Derive: view},
		FocusPreviousAlarm: {Effect: wrap(editor.SelectPreviousAlarm), Derive: view},
		StartAlarmEdit:     {Effect: editor.StartEdit, Derive: edit},
	})
	m.AddTransitions(KindAlarmEdit, map[Trigger]Transition{
		EnterDefault:          {Derive: home},
		FocusNextProperty:     {Effect: editor.FocusNextProperty, Derive: edit},
		FocusPreviousProperty: {Effect: editor.FocusPreviousProperty, Derive: edit},
		StartPropertyEdit:     {Derive: propEdit},
		CommitAlarmEdit:       {Effect: commit, Derive: view},
		CancelAlarmEdit:       {Effect: editor.Cancel, Derive: view},
	})
	m.AddTransitions(KindPropertyEdit, map[Trigger]Transition{
		EnterDefault:       {Derive: home},
		FocusNextValue:     {Effect: editor.FocusNextValue, Derive: propEdit},
		FocusPreviousValue: {Effect: editor.FocusPreviousValue, Derive: propEdit},
		StartAlarmEdit:     {Derive: edit}, // back to the property list
		CommitAlarmEdit:    {Effect: commit, Derive: view},
		CancelAlarmEdit:    {Effect: editor.Cancel, Derive: view},
	})
	return m
}

func wrap(fn func() int) func() error {
	return func() error {
		fn()
		return nil
	}
}
