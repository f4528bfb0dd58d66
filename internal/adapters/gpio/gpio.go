// Package gpio turns the clock's physical controls into hardware triggers.
// The real implementation uses the Linux GPIO character device; the fake
// implementation allows testing and running off the Pi.
package gpio

import "github.com/tilmanv/piwake/internal/domain"

// Input delivers hardware triggers from the physical controls.
type Input interface {
	// Start begins delivering triggers to the handler. The handler is
	// called from the input's own goroutine.
	Start(handler func(domain.HardwareTrigger)) error

	// Close releases GPIO resources.
	Close() error
}

// Pin definitions (BCM numbering)
const (
	PinModeButton   = 17 // mode cycle button
	PinInvokeButton = 27 // invoke/select button
	PinRotaryClk    = 22 // rotary encoder clock
	PinRotaryDt     = 23 // rotary encoder data
)

// DebounceMillis is the contact debounce applied to the buttons.
const DebounceMillis = 30
