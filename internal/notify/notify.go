// Package notify is the user-facing notification queue. Controllers turn every
// failed async action into a Notification instead of returning it to the view.
package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

type Level int

const (
	Info Level = iota
	Success
	Warning
	Error
)

func (l Level) String() string {
	switch l {
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "info"
	}
}

type Notification struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

const DefaultCapacity = 32

// Notifier keeps the most recent notifications, dropping the oldest when full.
type Notifier struct {
	mu     sync.Mutex
	items  []Notification
	max    int
	logger *zap.Logger
	now    func() time.Time
}

func New(capacity int, logger *zap.Logger) *Notifier {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{max: capacity, logger: logger, now: time.Now}
}

func (n *Notifier) Push(level Level, msg string) {
	if n == nil {
		return
	}
	item := Notification{Level: level, Message: msg, At: n.now()}
	switch level {
	case Error:
		n.logger.Warn("notify", zap.String("message", msg))
	default:
		n.logger.Debug("notify", zap.String("level", level.String()), zap.String("message", msg))
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, item)
	if over := len(n.items) - n.max; over > 0 {
		n.items = append(n.items[:0], n.items[over:]...)
	}
}

func (n *Notifier) Info(msg string)    { n.Push(Info, msg) }
func (n *Notifier) Success(msg string) { n.Push(Success, msg) }
func (n *Notifier) Warn(msg string)    { n.Push(Warning, msg) }

// Error reports err prefixed with what the user was trying to do.
func (n *Notifier) Error(action string, err error) {
	if err == nil {
		return
	}
	msg := err.Error()
	if action != "" {
		msg = action + ": " + msg
	}
	n.Push(Error, msg)
}

// Drain returns and clears the queue, oldest first.
func (n *Notifier) Drain() []Notification {
	if n == nil {
		return nil
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.items
	n.items = nil
	return out
}

// Latest returns the newest notification without removing it.
func (n *Notifier) Latest() (Notification, bool) {
	if n == nil {
		return Notification{}, false
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.items) == 0 {
		return Notification{}, false
	}
	return n.items[len(n.items)-1], true
}

func (n *Notifier) Len() int {
	if n == nil {
		return 0
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.items)
}
