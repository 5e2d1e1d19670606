// Package notify carries operator-visible status and error messages out of
// the sync and hosting components.
package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

type Severity string

const (
	Info    Severity = "INFO"
	Warning Severity = "WARNING"
	Error   Severity = "ERROR"
)

type Notifier interface {
	Notify(msg string, sev Severity)
}

// Zap forwards notifications to a zap logger.
type Zap struct {
	log *zap.Logger
}

func NewZap(log *zap.Logger) *Zap {
	return &Zap{log: log}
}

func (z *Zap) Notify(msg string, sev Severity) {
	switch sev {
	case Error:
		z.log.Error(msg)
	case Warning:
		z.log.Warn(msg)
	default:
		z.log.Info(msg)
	}
}

type Message struct {
	Text     string    `json:"text"`
	Severity Severity  `json:"severity"`
	At       time.Time `json:"at"`
}

// Recorder keeps the last messages in memory and optionally forwards them.
type Recorder struct {
	mu    sync.Mutex
	limit int
	msgs  []Message
	next  Notifier
}

func NewRecorder(limit int, next Notifier) *Recorder {
	if limit <= 0 {
		limit = 50
	}

	return &Recorder{limit: limit, next: next}
}

func (r *Recorder) Notify(msg string, sev Severity) {
	r.mu.Lock()
	r.msgs = append(r.msgs, Message{Text: msg, Severity: sev, At: time.Now()})
	if len(r.msgs) > r.limit {
		r.msgs = r.msgs[len(r.msgs)-r.limit:]
	}
	r.mu.Unlock()

	if r.next != nil {
		r.next.Notify(msg, sev)
	}
}

// Messages returns a copy of the recorded messages, oldest first.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Message, len(r.msgs))
	copy(out, r.msgs)
	return out
}

func (r *Recorder) Count(sev Severity) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, m := range r.msgs {
		if m.Severity == sev {
			n++
		}
	}

	return n
}
