package ports

import "github.com/tilmanv/piwake/internal/domain"

// Player controls the audio output. Implementations are expected to be
// safe for calls from the scheduler and coordinator goroutines.
type Player interface {
	// Play starts the given effect, replacing whatever is playing.
	Play(effect domain.StreamAudioEffect) error

	// Stop silences the output. Stopping an idle player is a no-op.
	Stop() error

	// Playing reports whether the output is currently in use.
	Playing() bool

	// Volume returns the current output volume in [0, 1].
	Volume() float64

	// SetVolume adjusts the output volume, clamped to [0, 1].
	SetVolume(v float64) error
}
