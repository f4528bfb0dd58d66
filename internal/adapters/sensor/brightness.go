// Package sensor provides the ambient light sensor implementations.
package sensor

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tilmanv/piwake/internal/ports"
)

// defaultIlluminancePath is where the kernel IIO subsystem exposes the
// ambient light reading on the Pi.
const defaultIlluminancePath = "/sys/bus/iio/devices/iio:device0/in_illuminance_input"

// fullBrightnessLux is the lux level mapped to 100 percent.
const fullBrightnessLux = 400.0

// IIOBrightness reads ambient light from the Linux IIO subsystem.
type IIOBrightness struct {
	path string
}

var _ ports.BrightnessSensor = (*IIOBrightness)(nil)

// NewIIOBrightness creates a sensor reading the default IIO device.
func NewIIOBrightness() *IIOBrightness {
	return &IIOBrightness{path: defaultIlluminancePath}
}

// Brightness returns the ambient light as a percentage. A missing or
// unreadable device reports ports.ErrUnavailable; callers treat that as
// fully bright.
func (s *IIOBrightness) Brightness() (float64, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return 0, ports.ErrUnavailable
	}
	lux, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid illuminance reading %q: %w", raw, err)
	}
	percent := lux / fullBrightnessLux * 100
	if percent > 100 {
		percent = 100
	}
	return percent, nil
}

// Static is a fixed-value sensor for deployments without light hardware
// and for tests.
type Static struct {
	Level float64
}

var _ ports.BrightnessSensor = (*Static)(nil)

func (s *Static) Brightness() (float64, error) {
	return s.Level, nil
}
