package audit

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Event is one dispatched tool call, written as a JSON line.
type Event struct {
	Timestamp  time.Time `json:"timestamp"`
	Tool       string    `json:"tool"`
	Category   string    `json:"category,omitempty"`
	Session    string    `json:"session,omitempty"`
	Outcome    string    `json:"outcome"`
	DurationMs int64     `json:"durationMs"`
	Error      string    `json:"error,omitempty"`
}

type Logger struct {
	out io.Writer
	mu  sync.Mutex
}

func NewLogger(out io.Writer) *Logger {
	if out == nil {
		out = io.Discard
	}
	return &Logger{out: out}
}

func (l *Logger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	_, _ = l.out.Write(append(data, '\n'))
}
