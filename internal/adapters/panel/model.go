// Package panel provides the terminal front panel: it renders the clock
// face with Bubbletea and maps keys onto the hardware triggers the real
// device gets from its buttons and rotary encoder.
package panel

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tilmanv/piwake/internal/domain"
	"github.com/tilmanv/piwake/internal/ports"
	"github.com/tilmanv/piwake/internal/services"
)

// dimThreshold is the ambient brightness percentage below which the panel
// switches to the faint style.
const dimThreshold = 30.0

var (
	clockStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
	dimClockStyle = lipgloss.NewStyle().Faint(true)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	alertStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

// tickMsg is sent on every display refresh.
type tickMsg time.Time

// eventMsg wraps a domain event delivered to the UI goroutine.
type eventMsg struct {
	event domain.Event
}

// Model is the Bubbletea model for the front panel.
type Model struct {
	coord      *services.Coordinator
	reconciler *services.Reconciler
	brightness ports.BrightnessSensor
	cfg        *domain.Config
	now        func() time.Time

	width  int
	height int

	// meterVolume is the level shown by the volume meter; negative hides it
	meterVolume float64
	online      bool
	ringing     string
	lastErr     error
}

// NewModel creates the panel model.
func NewModel(
	coord *services.Coordinator,
	reconciler *services.Reconciler,
	brightness ports.BrightnessSensor,
	cfg *domain.Config,
	now func() time.Time,
) Model {
	if now == nil {
		now = time.Now
	}
	return Model{
		coord:       coord,
		reconciler:  reconciler,
		brightness:  brightness,
		cfg:         cfg,
		now:         now,
		meterVolume: -1,
		online:      true,
	}
}

// Init starts the refresh tick.
func (m Model) Init() tea.Cmd {
	return m.tickCmd()
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.cfg.Settings.RefreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles ticks, forwarded domain events and key input.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tickMsg:
		return m, m.tickCmd()
	case eventMsg:
		m.applyEvent(msg.event)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) applyEvent(event domain.Event) {
	switch event.Kind {
	case domain.EventVolumeChanged:
		m.meterVolume = event.Volume
	case domain.EventNetworkChanged:
		m.online = event.Online
	case domain.EventAlarmRinging:
		m.ringing = event.Alarm.Name
	case domain.EventPlaybackStopped:
		m.ringing = ""
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "m":
		m.lastErr = m.coord.HandleHardware(domain.ModeButtonPressed)
	case "i", "enter":
		m.lastErr = m.coord.HandleHardware(domain.InvokeButtonPressed)
	case "k", "up", "right":
		m.lastErr = m.coord.HandleHardware(domain.RotaryClockwise)
	case "j", "down", "left":
		m.lastErr = m.coord.HandleHardware(domain.RotaryCounterClockwise)
	case "n":
		_, m.lastErr = m.coord.Powernap()
	}
	return m, nil
}

// View renders the panel for the current mode.
func (m Model) View() string {
	var b strings.Builder

	switch mode := m.coord.Mode().(type) {
	case domain.DefaultMode:
		b.WriteString(m.viewDefault())
	case domain.AlarmViewMode:
		b.WriteString(m.viewAlarmList(mode.Index))
	case domain.AlarmEditMode:
		b.WriteString(m.viewEditor("edit alarm", mode.Field, mode.Draft, false))
	case domain.PropertyEditMode:
		b.WriteString(m.viewEditor("edit value", mode.Field, mode.Draft, true))
	}

	if m.lastErr != nil {
		b.WriteString("\n" + alertStyle.Render(m.lastErr.Error()))
	}
	b.WriteString("\n\n" + helpStyle.Render("m mode · i invoke · j/k rotate · n powernap · q quit"))
	return b.String()
}

func (m Model) viewDefault() string {
	style := clockStyle
	if level, err := m.brightness.Brightness(); err == nil && level < dimThreshold {
		style = dimClockStyle
	}

	var b strings.Builder
	b.WriteString(style.Render(m.now().Format("15:04:05")) + "\n")

	if next := m.reconciler.NextAlarm(); next != nil {
		b.WriteString(labelStyle.Render("next alarm "+next.At.Format("Mon 15:04")) + "\n")
	}
	if m.ringing != "" {
		b.WriteString(alertStyle.Render("RINGING "+m.ringing) + "\n")
	}
	if playback := m.coord.Playback(); playback == domain.PlaybackMusic {
		b.WriteString(labelStyle.Render("playing") + "\n")
	}
	if !m.online {
		b.WriteString(labelStyle.Render("offline") + "\n")
	}
	if m.meterVolume >= 0 {
		b.WriteString(renderMeter(m.meterVolume) + "\n")
	}
	return b.String()
}

func (m Model) viewAlarmList(index int) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("alarms") + "\n")

	alarms := m.cfg.AlarmDefinitions()
	for i, alarm := range alarms {
		day, _ := alarm.DayString()
		line := fmt.Sprintf("%s %s %s", alarm.TimeString(), day, activeMark(alarm.IsActive))
		b.WriteString(renderRow(line, i == index) + "\n")
	}
	b.WriteString(renderRow("+ new alarm", index == len(alarms)) + "\n")
	return b.String()
}

func (m Model) viewEditor(title string, focused domain.EditableField, draft *domain.AlarmDefinition, valueMode bool) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render(title) + "\n")

	session := &domain.EditingSession{DayType: domain.DayTypeRecurring, Draft: draft}
	if draft.IsOneTime() {
		session.DayType = domain.DayTypeOneTime
	}
	for _, field := range session.Properties() {
		line := field.String()
		if value := fieldValue(field, draft); value != "" {
			line += ": " + value
		}
		selected := field == focused
		if selected && valueMode {
			line = "[" + line + "]"
		}
		b.WriteString(renderRow(line, selected) + "\n")
	}
	return b.String()
}

func fieldValue(field domain.EditableField, draft *domain.AlarmDefinition) string {
	switch field {
	case domain.FieldHour:
		return fmt.Sprintf("%02d", draft.Hour)
	case domain.FieldMinute:
		return fmt.Sprintf("%02d", draft.Minute)
	case domain.FieldOneTime, domain.FieldRecurring:
		day, err := draft.DayString()
		if err != nil {
			return "unset"
		}
		return day
	case domain.FieldAudioEffect:
		if draft.AudioEffect == nil {
			return "none"
		}
		return draft.AudioEffect.Title()
	case domain.FieldIsActive:
		return activeMark(draft.IsActive)
	}
	return ""
}

func renderRow(line string, selected bool) string {
	if selected {
		return cursorStyle.Render("> " + line)
	}
	return "  " + line
}

func activeMark(active bool) string {
	if active {
		return "on"
	}
	return "off"
}

func renderMeter(volume float64) string {
	const width = 20
	filled := int(volume*width + 0.5)
	if filled > width {
		filled = width
	}
	return "vol " + strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
