// Package notifier carries user-facing notifications: the one-line message
// shown above the stage editors and, optionally, a desktop notification.
package notifier

import (
	"github.com/gen2brain/beeep"

	"github.com/epiq/epiq/pkg/logger"
)

// Level is the severity of a notification.
type Level int

const (
	LevelNone Level = iota
	LevelInfo
	LevelError
)

// Message is one notification. The zero Message clears the notification
// line.
type Message struct {
	Level Level
	Text  string
}

// None returns the message that clears the notification line.
func None() Message { return Message{} }

// Info returns an informational message.
func Info(text string) Message { return Message{Level: LevelInfo, Text: text} }

// Error returns an error message.
func Error(text string) Message { return Message{Level: LevelError, Text: text} }

// IsNone reports whether m clears the line.
func (m Message) IsNone() bool { return m.Level == LevelNone }

// Notifier delivers a message somewhere outside the terminal frame.
type Notifier interface {
	Notify(msg Message) error
}

// Config represents notification configuration
type Config struct {
	Enabled bool
	Sound   bool
}

// DesktopNotifier sends error messages as desktop notifications.
type DesktopNotifier struct {
	enabled bool
	sound   bool
	logger  logger.Logger
	send    func(title, message, appIcon string) error
	beep    func(freq float64, duration int) error
}

// New creates a desktop notifier
func New(config Config, log logger.Logger) *DesktopNotifier {
	return &DesktopNotifier{
		enabled: config.Enabled,
		sound:   config.Sound,
		logger:  log.WithTarget("notifier"),
		send:    beeep.Notify,
		beep:    beeep.Beep,
	}
}

// Enabled reports whether desktop notifications are sent.
func (n *DesktopNotifier) Enabled() bool {
	return n.enabled
}

// Notify sends msg when the notifier is enabled and msg is an error.
// Delivery failures are logged and returned.
func (n *DesktopNotifier) Notify(msg Message) error {
	if !n.enabled || msg.Level != LevelError {
		return nil
	}

	if err := n.send("epiq", msg.Text, ""); err != nil {
		n.logger.Debug("Failed to send notification", logger.WithField("error", err))
		return err
	}

	if n.sound {
		if err := n.beep(beeep.DefaultFreq, beeep.DefaultDuration); err != nil {
			n.logger.Debug("Failed to play sound", logger.WithField("error", err))
		}
	}
	return nil
}
