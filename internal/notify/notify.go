// Package notify delivers transient user-facing notifications.
package notify

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Level is the severity of a notification
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Notification is one transient message for the user
type Notification struct {
	Level   Level
	Message string
	Err     error
	Time    time.Time
}

// Notifier receives notifications
type Notifier interface {
	Notify(n Notification)
}

// Func adapts a function to Notifier
type Func func(n Notification)

// Notify calls f
func (f Func) Notify(n Notification) {
	f(n)
}

// Multi fans a notification out to several notifiers
type Multi []Notifier

// Notify implements Notifier
func (m Multi) Notify(n Notification) {
	for _, nt := range m {
		if nt != nil {
			nt.Notify(n)
		}
	}
}

// Success sends a success notification
func Success(n Notifier, msg string) {
	send(n, Notification{Level: LevelSuccess, Message: msg})
}

// Info sends an informational notification
func Info(n Notifier, msg string) {
	send(n, Notification{Level: LevelInfo, Message: msg})
}

// Error sends an error notification carrying err
func Error(n Notifier, msg string, err error) {
	send(n, Notification{Level: LevelError, Message: msg, Err: err})
}

func send(n Notifier, note Notification) {
	if n == nil {
		return
	}
	note.Time = time.Now()
	n.Notify(note)
}

// LogNotifier writes notifications to the log
type LogNotifier struct {
	logger *logrus.Logger
}

// NewLogNotifier creates a notifier that logs
func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify implements Notifier
func (l *LogNotifier) Notify(n Notification) {
	entry := l.logger.WithField("level_hint", string(n.Level))
	switch n.Level {
	case LevelError:
		if n.Err != nil {
			entry = entry.WithError(n.Err)
		}
		entry.Warn(n.Message)
	default:
		entry.Info(n.Message)
	}
}
