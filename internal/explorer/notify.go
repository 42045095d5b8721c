package explorer

import (
	"sync"
	"time"
)

type Level int

const (
	LevelInfo Level = iota
	LevelError
)

// Notification is a user-facing message about a load or mutation.
type Notification struct {
	Level   Level
	Message string
	Err     error
	At      time.Time
}

// Notifier receives notifications. Implementations must be safe for
// concurrent use: row fetches report from their own goroutines.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// NotificationLog keeps the most recent notifications for display.
type NotificationLog struct {
	mu    sync.Mutex
	max   int
	items []Notification
}

func NewNotificationLog(max int) *NotificationLog {
	if max <= 0 {
		max = 50
	}
	return &NotificationLog{max: max}
}

func (l *NotificationLog) Notify(n Notification) {
	if n.At.IsZero() {
		n.At = time.Now()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, n)
	if len(l.items) > l.max {
		l.items = l.items[len(l.items)-l.max:]
	}
}

// Latest returns the newest notification, if any.
func (l *NotificationLog) Latest() (Notification, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.items) == 0 {
		return Notification{}, false
	}
	return l.items[len(l.items)-1], true
}

// Errors returns every retained error notification, oldest first.
func (l *NotificationLog) Errors() []Notification {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Notification
	for _, n := range l.items {
		if n.Level == LevelError {
			out = append(out, n)
		}
	}
	return out
}

// Clear drops all retained notifications.
func (l *NotificationLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = nil
}

var discard = NotifierFunc(func(Notification) {})

type multiNotifier []Notifier

func (m multiNotifier) Notify(n Notification) {
	for _, notifier := range m {
		notifier.Notify(n)
	}
}

func notifyError(n Notifier, message string, err error) {
	n.Notify(Notification{Level: LevelError, Message: message, Err: err, At: time.Now()})
}

func notifyInfo(n Notifier, message string) {
	n.Notify(Notification{Level: LevelInfo, Message: message, At: time.Now()})
}
