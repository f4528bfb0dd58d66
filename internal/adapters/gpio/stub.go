//go:build !linux

package gpio

import (
	"errors"

	"github.com/tilmanv/piwake/internal/domain"
)

// RealInput is not available on non-Linux platforms.
type RealInput struct{}

// NewRealInput returns an error on non-Linux platforms.
func NewRealInput() (*RealInput, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

func (r *RealInput) Start(func(domain.HardwareTrigger)) error {
	return errors.New("gpio: not supported")
}

func (r *RealInput) Close() error {
	return nil
}
