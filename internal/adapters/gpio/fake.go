package gpio

import (
	"errors"
	"sync"

	"github.com/tilmanv/piwake/internal/domain"
)

// FakeInput is a test double that injects triggers programmatically.
type FakeInput struct {
	mu      sync.Mutex
	handler func(domain.HardwareTrigger)

	// Closed tracks if Close was called
	Closed bool

	// StartError, if set, will be returned by Start
	StartError error
}

// NewFakeInput creates an idle fake input.
func NewFakeInput() *FakeInput {
	return &FakeInput{}
}

func (f *FakeInput) Start(handler func(domain.HardwareTrigger)) error {
	if f.StartError != nil {
		return f.StartError
	}
	f.mu.Lock()
	f.handler = handler
	f.mu.Unlock()
	return nil
}

func (f *FakeInput) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// Inject delivers a trigger as if the hardware produced it.
func (f *FakeInput) Inject(trigger domain.HardwareTrigger) error {
	f.mu.Lock()
	handler := f.handler
	f.mu.Unlock()
	if handler == nil {
		return errors.New("input not started")
	}
	handler(trigger)
	return nil
}
