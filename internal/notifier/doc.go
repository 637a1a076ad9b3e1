// Package notifier delivers the close-games summary.
//
// The summary is a plain-text message listing one matchup per line, or a fixed
// heartbeat sentence when there were no close games, so that every run produces
// a message. Delivery is either an authenticated SMTP session with mandatory
// STARTTLS, or a dry run that writes the message to the console.
package notifier
