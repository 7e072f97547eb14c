package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Level classifies a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Notification is a transient message shown to the user.
type Notification struct {
	Level   Level
	Message string
	At      time.Time
}

// Notifier delivers notifications.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// ConsoleNotifier writes one line per notification.
type ConsoleNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleNotifier writes to out.
func NewConsoleNotifier(out io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{out: out}
}

// Notify prints "[level] message".
func (c *ConsoleNotifier) Notify(ctx context.Context, note Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.out, "[%s] %s\n", note.Level, note.Message)
	return err
}

// LogNotifier records notifications in the structured log.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier builds a zerolog-backed notifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "notify_log").Logger()}
}

// Notify logs at a level matching the notification.
func (l *LogNotifier) Notify(ctx context.Context, note Notification) error {
	event := l.logger.Info()
	if note.Level == LevelError {
		event = l.logger.Warn()
	}
	event.Str("kind", string(note.Level)).Time("at", note.At).Msg(note.Message)
	return nil
}

// Multi fans a notification out to every notifier.
type Multi []Notifier

// Notify calls every notifier and joins their errors.
func (m Multi) Notify(ctx context.Context, note Notification) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, note); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ Notifier = (*ConsoleNotifier)(nil)
	_ Notifier = (*LogNotifier)(nil)
	_ Notifier = Multi(nil)
)
