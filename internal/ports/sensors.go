package ports

import (
	"errors"
	"time"
)

// ErrUnavailable signals that a sensor or probe cannot deliver a reading.
// Callers fall back to a safe default instead of failing.
var ErrUnavailable = errors.New("sensor unavailable")

// BrightnessSensor reads ambient light as a percentage, 0 (dark) to 100
// (bright). Consumers treat ErrUnavailable as fully bright so the display
// never goes dark by accident.
type BrightnessSensor interface {
	Brightness() (float64, error)
}

// NetworkChecker probes internet reachability. Probes may block for a
// connection timeout; callers run them off the hot path. An error means
// offline.
type NetworkChecker interface {
	Online() bool
}

// Almanac computes sun event times for the device's location.
type Almanac interface {
	// NextSunrise returns the first sunrise strictly after the given
	// instant.
	NextSunrise(after time.Time) (time.Time, error)

	// NextSunset returns the first sunset strictly after the given
	// instant.
	NextSunset(after time.Time) (time.Time, error)
}
