package notify

import "sync"

// Recorder implements Notifier for tests: it records alerts and answers
// every confirmation with a fixed response.
type Recorder struct {
	// Answer is returned from every Confirm call.
	Answer bool

	mu      sync.Mutex
	alerts  []string
	prompts []string
}

// Alert records the message.
func (r *Recorder) Alert(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, msg)
}

// Confirm records the prompt and returns the configured answer.
func (r *Recorder) Confirm(prompt string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts = append(r.prompts, prompt)
	return r.Answer
}

// Alerts returns a copy of the recorded alerts.
func (r *Recorder) Alerts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.alerts...)
}

// Prompts returns a copy of the recorded confirmation prompts.
func (r *Recorder) Prompts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.prompts...)
}
