// Package cli implements the command-line interface for close-games.
//
// The cli package provides the Cobra-based root command that runs one check:
// it loads the configuration, fetches the day's games, selects the close ones
// and delivers the summary by email (or prints it with --dry-run). A run
// summary is written to stdout as text or JSON; logs go to stderr.
package cli
