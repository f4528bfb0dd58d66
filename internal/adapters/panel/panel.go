package panel

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tilmanv/piwake/internal/domain"
)

// Panel runs the front panel UI and feeds domain events into it.
type Panel struct {
	model Model

	mu      sync.Mutex
	program *tea.Program
}

// New creates a panel and subscribes it to the event stream. Events that
// arrive before Run are dropped; the first tick repaints anyway.
func New(model Model, events *domain.Publisher) *Panel {
	p := &Panel{model: model}
	events.Subscribe(func(event domain.Event) {
		p.mu.Lock()
		program := p.program
		p.mu.Unlock()
		if program != nil {
			program.Send(eventMsg{event: event})
		}
	})
	return p
}

// Run blocks until the UI exits or the context is cancelled.
func (p *Panel) Run(ctx context.Context) error {
	p.mu.Lock()
	p.program = tea.NewProgram(p.model, tea.WithAltScreen())
	program := p.program
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			program.Quit()
		case <-done:
		}
	}()

	_, err := program.Run()
	close(done)
	if err != nil {
		return fmt.Errorf("failed to run panel: %w", err)
	}
	return nil
}
