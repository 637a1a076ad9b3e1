package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pfrederiksen/close-games/internal/config"
	"github.com/pfrederiksen/close-games/internal/fetcher"
	"github.com/pfrederiksen/close-games/internal/filter"
	"github.com/pfrederiksen/close-games/internal/game"
	"github.com/pfrederiksen/close-games/internal/logger"
	"github.com/pfrederiksen/close-games/internal/notifier"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// options holds the command-line flags
type options struct {
	dryRun    bool
	date      string
	threshold int
	format    string
	verbose   bool
}

// now is replaced in tests
var now = time.Now

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "close-games",
		Short: "Email a summary of NBA games decided by a small margin",
		Long: `Checks the NBA scores API for today's completed games decided by fewer than
a configurable number of points and emails a summary. When there are no close
games a heartbeat message is sent instead, confirming the check still runs.

Configuration is read from the environment (or a .env file):
  EMAIL_USER, EMAIL_PASS, EMAIL_TO   required unless --dry-run
  EMAIL_FROM                         defaults to EMAIL_USER
  SMTP_SERVER, SMTP_PORT             default smtp.mailersend.net:587
  SCORES_API_URL, SCORES_API_KEY     scores API endpoint and key
  MARGIN_THRESHOLD                   default 10
  TARGET_UTC_OFFSET_HOURS            default 5 (US Eastern)
  LOG_LEVEL                          default INFO`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Print the email instead of sending it")
	cmd.Flags().StringVar(&opts.date, "date", "", "Check games for this date (YYYY-MM-DD) instead of today")
	cmd.Flags().IntVar(&opts.threshold, "threshold", 0, "Margin in points below which a game is close (overrides MARGIN_THRESHOLD)")
	cmd.Flags().StringVar(&opts.format, "format", "text", "Summary output format: text or json")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "Enable debug logging and print run metrics")

	return cmd
}

// runCheck is the main command logic
func runCheck(cmd *cobra.Command, opts *options) error {
	format := OutputFormat(strings.ToLower(opts.format))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", opts.format)
	}

	if opts.date != "" {
		if _, err := time.Parse(fetcher.DateLayout, opts.date); err != nil {
			return fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", opts.date)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	level := logger.ParseLevel(cfg.LogLevel)
	if opts.verbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, cmd.ErrOrStderr()))
	logger.ResetMetrics()

	threshold := cfg.Threshold
	if opts.threshold != 0 {
		threshold = opts.threshold
	}
	if threshold <= 0 {
		return fmt.Errorf("invalid threshold: %d (must be positive)", threshold)
	}
	cfg.Threshold = threshold

	n, err := newNotifier(cmd, cfg, opts.dryRun, format)
	if err != nil {
		return err
	}

	f := fetcher.New(fetcher.Config{
		BaseURL: cfg.ScoresURL,
		APIKey:  cfg.ScoresAPIKey,
		Offset:  cfg.UTCOffset,
	})

	result, err := check(cmd.Context(), f, filter.New(threshold), n, opts.date)
	if err != nil {
		logger.Error("Failed to deliver summary", logger.Fields{
			"to":   cfg.EmailTo,
			"host": cfg.SMTPServer,
		}, err)
		return err
	}

	result.DryRun = opts.dryRun
	if opts.dryRun {
		msg := notifier.NewMessage(cfg.EmailFrom, cfg.EmailTo, result.Matchups)
		result.Message = &msg
	}

	if err := WriteOutput(cmd.OutOrStdout(), result, format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if opts.verbose {
		logger.Info("Run metrics", logger.Fields(logger.GetMetricsSnapshot()))
	}
	return nil
}

// newNotifier picks the delivery mechanism for this run. Email delivery
// requires complete credentials and fails before any network call otherwise.
func newNotifier(cmd *cobra.Command, cfg *config.Config, dryRun bool, format OutputFormat) (notifier.Notifier, error) {
	if dryRun {
		out := cmd.OutOrStdout()
		if format == FormatJSON {
			// the message is embedded in the JSON summary instead
			out = io.Discard
		}
		return notifier.NewDryRunNotifier(cfg.EmailFrom, cfg.EmailTo).WithOutput(out), nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	n, err := notifier.NewSMTPNotifier(notifier.SMTPConfig{
		Host:     cfg.SMTPServer,
		Port:     cfg.SMTPPort,
		Username: cfg.EmailUser,
		Password: cfg.EmailPass,
		From:     cfg.EmailFrom,
		To:       cfg.EmailTo,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing email: %w", err)
	}
	return n, nil
}

// gameFetcher is the part of *fetcher.Fetcher used by a run
type gameFetcher interface {
	TargetDate(now time.Time) string
	FetchGames(ctx context.Context, now time.Time) []game.Record
	FetchDate(ctx context.Context, date string) []game.Record
}

// check runs fetch, filter and notify once. Fetch problems never fail the
// run; a delivery failure does.
func check(ctx context.Context, f gameFetcher, flt *filter.Filter, n notifier.Notifier, date string) (*OutputResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	checkedAt := now().UTC()

	var records []game.Record
	if date == "" {
		date = f.TargetDate(checkedAt)
		logCheck(date, flt)
		records = f.FetchGames(ctx, checkedAt)
	} else {
		logCheck(date, flt)
		records = f.FetchDate(ctx, date)
	}
	matchups := flt.FindCloseGames(records)

	logger.Info("Selected close games", logger.Fields{
		"date":        date,
		"games":       len(records),
		"close_games": len(matchups),
	})

	if err := n.Notify(ctx, matchups); err != nil {
		return nil, fmt.Errorf("sending summary: %w", err)
	}

	return &OutputResult{
		CheckedAt:    checkedAt,
		Date:         date,
		Threshold:    flt.Threshold,
		GamesChecked: len(records),
		CloseGames:   len(matchups),
		Matchups:     matchups,
	}, nil
}

func logCheck(date string, flt *filter.Filter) {
	logger.Info("Checking for close games", logger.Fields{
		"date":      date,
		"threshold": flt.Threshold,
		"criteria":  flt.String(),
	})
}

// ExitCode maps a run error to a process exit status
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	return ExitError
}

// Execute runs the CLI
func Execute() {
	err := NewRootCmd().ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, config.ErrMissingCredentials) {
			fmt.Fprintln(os.Stderr, "Set EMAIL_USER, EMAIL_PASS and EMAIL_TO, or use --dry-run.")
		}
	}
	os.Exit(ExitCode(err))
}
