package notify

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Terminal implements Notifier on an interactive terminal: alerts go to
// out, confirmation prompts read a y/n answer from in.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer

	// AssumeYes skips prompts and answers every confirmation with yes.
	// Set by the CLI's --yes flag.
	AssumeYes bool
}

// NewTerminal creates a Terminal reading answers from in and writing to out.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

// Alert writes the message on its own line.
func (t *Terminal) Alert(msg string) {
	fmt.Fprintln(t.out, msg)
}

// Confirm prompts for y/n and returns true only on an explicit yes.
// A read error or an empty answer counts as no.
func (t *Terminal) Confirm(prompt string) bool {
	if t.AssumeYes {
		return true
	}
	fmt.Fprintf(t.out, "%s [y/N]: ", prompt)
	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
