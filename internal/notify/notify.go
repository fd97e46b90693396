// Package notify carries short user-facing messages to whatever surface
// the host provides.
package notify

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type Severity string

const (
	Info    Severity = "info"
	Success Severity = "success"
	Error   Severity = "error"
)

// DefaultDuration is how long a notification stays on screen.
const DefaultDuration = 5 * time.Second

type Notification struct {
	Severity Severity      `json:"severity"`
	Message  string        `json:"message"`
	Duration time.Duration `json:"duration"`
	At       time.Time     `json:"at"`
}

// Sink displays notifications. Implementations must be safe for
// concurrent use.
type Sink interface {
	Notify(n Notification)
}

// Notifier stamps messages with a severity and the fixed display
// duration before handing them to a Sink.
type Notifier struct {
	sink     Sink
	duration time.Duration
	now      func() time.Time
}

func New(sink Sink, duration time.Duration) *Notifier {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Notifier{sink: sink, duration: duration, now: time.Now}
}

func (n *Notifier) Duration() time.Duration { return n.duration }

func (n *Notifier) Info(msg string)    { n.send(Info, msg) }
func (n *Notifier) Success(msg string) { n.send(Success, msg) }
func (n *Notifier) Error(msg string)   { n.send(Error, msg) }

func (n *Notifier) send(sev Severity, msg string) {
	if n == nil || n.sink == nil {
		return
	}
	n.sink.Notify(Notification{Severity: sev, Message: msg, Duration: n.duration, At: n.now()})
}

// LogSink writes notifications to a logrus logger.
type LogSink struct {
	Log logrus.FieldLogger
}

func (s LogSink) Notify(n Notification) {
	entry := s.Log.WithFields(logrus.Fields{
		"severity": string(n.Severity),
		"duration": n.Duration.String(),
	})
	if n.Severity == Error {
		entry.Error(n.Message)
		return
	}
	entry.Info(n.Message)
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu  sync.Mutex
	all []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.all = append(r.all, n)
}

func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.all...)
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.all) == 0 {
		return Notification{}, false
	}
	return r.all[len(r.all)-1], true
}
