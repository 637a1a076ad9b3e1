package notifier

import (
	"context"
	"strings"

	"github.com/pfrederiksen/close-games/internal/game"
)

const (
	// Subject is the fixed subject line of every summary
	Subject = "Close NBA Games Today"

	// FallbackBody is sent when no close games were found
	FallbackBody = "No close NBA games today. The close-games check ran and email delivery is working."
)

// Notifier defines the interface for delivering the summary
type Notifier interface {
	// Notify delivers one message for the given matchups
	Notify(ctx context.Context, matchups []game.Matchup) error
}

// Message is a composed summary email
type Message struct {
	Subject string `json:"subject"`
	From    string `json:"from"`
	To      string `json:"to"`
	Body    string `json:"body"`
}

// NewMessage composes the summary message for the given matchups
func NewMessage(from, to string, matchups []game.Matchup) Message {
	return Message{
		Subject: Subject,
		From:    from,
		To:      to,
		Body:    FormatBody(matchups),
	}
}

// FormatBody joins matchups with newlines, or returns FallbackBody when empty
func FormatBody(matchups []game.Matchup) string {
	if len(matchups) == 0 {
		return FallbackBody
	}

	lines := make([]string, len(matchups))
	for i, m := range matchups {
		lines[i] = string(m)
	}
	return strings.Join(lines, "\n")
}
