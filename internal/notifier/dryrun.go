package notifier

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pfrederiksen/close-games/internal/game"
)

// DryRunNotifier prints the summary instead of sending it
type DryRunNotifier struct {
	from string
	to   string
	out  io.Writer
}

// NewDryRunNotifier creates a dry-run notifier writing to stdout
func NewDryRunNotifier(from, to string) *DryRunNotifier {
	return &DryRunNotifier{from: from, to: to, out: os.Stdout}
}

// WithOutput redirects the printed message
func (n *DryRunNotifier) WithOutput(w io.Writer) *DryRunNotifier {
	n.out = w
	return n
}

// Notify prints the message that would be sent
func (n *DryRunNotifier) Notify(ctx context.Context, matchups []game.Matchup) error {
	msg := NewMessage(n.from, n.to, matchups)

	fmt.Fprintln(n.out, "--- Email (dry run) ---")
	fmt.Fprintf(n.out, "Subject: %s\n", msg.Subject)
	if msg.From != "" {
		fmt.Fprintf(n.out, "From: %s\n", msg.From)
	}
	if msg.To != "" {
		fmt.Fprintf(n.out, "To: %s\n", msg.To)
	}
	fmt.Fprintln(n.out)
	fmt.Fprintln(n.out, msg.Body)
	return nil
}
