package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pfrederiksen/close-games/internal/game"
	"github.com/pfrederiksen/close-games/internal/notifier"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult summarizes one run
type OutputResult struct {
	CheckedAt    time.Time         `json:"checked_at"`
	Date         string            `json:"date"`
	Threshold    int               `json:"threshold"`
	GamesChecked int               `json:"games_checked"`
	CloseGames   int               `json:"close_games"`
	Matchups     []game.Matchup    `json:"matchups"`
	DryRun       bool              `json:"dry_run,omitempty"`
	Message      *notifier.Message `json:"message,omitempty"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func writeText(w io.Writer, result *OutputResult) error {
	if result.CloseGames == 0 {
		fmt.Fprintf(w, "No close games on %s (%d games checked).\n", result.Date, result.GamesChecked)
		return nil
	}

	fmt.Fprintf(w, "Close games on %s (margin < %d):\n", result.Date, result.Threshold)
	for _, m := range result.Matchups {
		fmt.Fprintf(w, "  %s\n", m)
	}
	fmt.Fprintf(w, "\nTotal: %d close of %d games checked\n", result.CloseGames, result.GamesChecked)
	return nil
}
