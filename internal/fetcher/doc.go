// Package fetcher retrieves one day of NBA games from the scores API.
//
// The fetcher resolves the target date by shifting the current instant by a
// fixed offset, issues a single GET request and decodes the "data" array of
// the JSON response. Any failure (404, transport error, timeout, malformed
// JSON) is logged and reported as an empty list of games so that the rest of
// the run, including the heartbeat email, still happens.
package fetcher
