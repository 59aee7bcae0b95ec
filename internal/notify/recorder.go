package notify

import "sync"

// Message is one recorded toast.
type Message struct {
	Severity string
	Summary  string
	Detail   string
}

// Recorder is a Notifier that captures messages for assertions in tests.
type Recorder struct {
	mu       sync.Mutex
	Messages []Message
}

func (r *Recorder) add(severity, summary, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = append(r.Messages, Message{Severity: severity, Summary: summary, Detail: detail})
}

// Success records a success toast.
func (r *Recorder) Success(summary, detail string) { r.add("success", summary, detail) }

// Warn records a warning toast.
func (r *Recorder) Warn(summary, detail string) { r.add("warn", summary, detail) }

// Error records an error toast.
func (r *Recorder) Error(summary, detail string) { r.add("error", summary, detail) }

// BySeverity returns recorded messages matching a severity.
func (r *Recorder) BySeverity(severity string) []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Message
	for _, m := range r.Messages {
		if m.Severity == severity {
			out = append(out, m)
		}
	}
	return out
}
