package notify

import "log/slog"

// Noop implements Notifier for non-interactive use. Alerts are logged and
// discarded; confirmations are declined, so destructive operations never
// proceed without a real notifier.
type Noop struct {
	log *slog.Logger
}

// NewNoop creates a notifier that logs and discards signals.
func NewNoop(log *slog.Logger) *Noop {
	return &Noop{log: log}
}

// Alert logs and discards the message.
func (n *Noop) Alert(msg string) {
	n.log.Debug("alert discarded (no notifier configured)", "msg", msg)
}

// Confirm declines the prompt.
func (n *Noop) Confirm(prompt string) bool {
	n.log.Debug("confirmation declined (no notifier configured)", "prompt", prompt)
	return false
}
