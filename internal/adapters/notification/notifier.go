// Package notification provides desktop notification utilities.
package notification

import (
	"github.com/gen2brain/beeep"

	"github.com/tilmanv/piwake/internal/ports"
)

// Notifier raises desktop notifications.
type Notifier struct {
	enabled bool
}

var _ ports.Notifier = (*Notifier)(nil)

// New creates a notifier. A disabled notifier silently swallows all
// messages, for headless deployments.
func New(enabled bool) *Notifier {
	return &Notifier{enabled: enabled}
}

// Notify displays a notification if enabled.
func (n *Notifier) Notify(title, message string) error {
	if !n.enabled {
		return nil
	}
	return beeep.Notify(title, message, "")
}

// IsEnabled returns true if notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	return n.enabled
}
