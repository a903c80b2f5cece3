package session

// Notifier presents failures to the user
type Notifier interface {
	Warn(title, message string)
	Error(message string)
}

// LogNotifier reports through the package logger
type LogNotifier struct{}

func (LogNotifier) Warn(title, message string) {
	log.Warnf("%s: %s", title, message)
}

func (LogNotifier) Error(message string) {
	log.Error(message)
}

const (
	msgClaimFailed      = "Failed to claim charger."
	msgStartFailedTitle = "Could not start charging"
	msgStartFailed      = "Please make sure the car is connected to the charger."
	msgStopFailed       = "Failed to stop charging."
)
