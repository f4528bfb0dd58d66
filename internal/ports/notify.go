package ports

// Notifier raises a system notification. Used for non-critical operational
// messages such as falling back to the offline alarm sound.
type Notifier interface {
	Notify(title, message string) error
}
