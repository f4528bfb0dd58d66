//go:build linux

package gpio

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"

	"github.com/tilmanv/piwake/internal/domain"
)

// RealInput reads the buttons and the rotary encoder from actual hardware
// using the Linux GPIO character device.
type RealInput struct {
	chip    *gpiocdev.Chip
	mode    *gpiocdev.Line
	invoke  *gpiocdev.Line
	clk     *gpiocdev.Line
	dt      *gpiocdev.Line
	handler func(domain.HardwareTrigger)
}

// NewRealInput opens the GPIO chip. Lines are requested in Start, once the
// handler is known.
func NewRealInput() (*RealInput, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	return &RealInput{chip: chip}, nil
}

// Start requests the input lines with edge detection. Buttons are wired
// active-low with the internal pull-up, so a press is a falling edge.
func (r *RealInput) Start(handler func(domain.HardwareTrigger)) error {
	r.handler = handler

	var err error
	r.mode, err = r.requestButton(PinModeButton, domain.ModeButtonPressed)
	if err != nil {
		return err
	}
	r.invoke, err = r.requestButton(PinInvokeButton, domain.InvokeButtonPressed)
	if err != nil {
		return err
	}

	// The DT line is sampled on each CLK edge to get the direction.
	r.dt, err = r.chip.RequestLine(PinRotaryDt, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		return fmt.Errorf("request rotary DT pin %d: %w", PinRotaryDt, err)
	}
	r.clk, err = r.chip.RequestLine(PinRotaryClk,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithEventHandler(r.onRotary))
	if err != nil {
		return fmt.Errorf("request rotary CLK pin %d: %w", PinRotaryClk, err)
	}
	return nil
}

func (r *RealInput) requestButton(pin int, trigger domain.HardwareTrigger) (*gpiocdev.Line, error) {
	line, err := r.chip.RequestLine(pin,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithDebounce(DebounceMillis*time.Millisecond),
		gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) {
			r.handler(trigger)
		}))
	if err != nil {
		return nil, fmt.Errorf("request button pin %d: %w", pin, err)
	}
	return line, nil
}

// onRotary decodes one detent: at the CLK falling edge the DT level tells
// the turning direction.
func (r *RealInput) onRotary(gpiocdev.LineEvent) {
	dt, err := r.dt.Value()
	if err != nil {
		return
	}
	if dt != 0 {
		r.handler(domain.RotaryClockwise)
	} else {
		r.handler(domain.RotaryCounterClockwise)
	}
}

// Close releases all requested lines and the chip.
func (r *RealInput) Close() error {
	for _, line := range []*gpiocdev.Line{r.mode, r.invoke, r.clk, r.dt} {
		if line != nil {
			line.Close()
		}
	}
	if r.chip != nil {
		return r.chip.Close()
	}
	return nil
}
