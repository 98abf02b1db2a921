// Package notify defines the user-facing signal interface and its
// implementations. Every error path in the listing manager ends in either
// a status change or a Notifier call; nothing is swallowed silently.
package notify

// Notifier delivers one-shot alerts and yes/no confirmation prompts.
type Notifier interface {
	// Alert surfaces a one-shot, user-visible message.
	Alert(msg string)
	// Confirm asks a yes/no question and reports the answer. Destructive
	// operations proceed only on true.
	Confirm(prompt string) bool
}
