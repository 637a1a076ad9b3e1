package game

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidScore is returned when a score is missing, null, or not an integer
var ErrInvalidScore = errors.New("invalid score")

// ErrMissingTeam is returned when a record has no name for one of its teams
var ErrMissingTeam = errors.New("missing team name")

// Status is the completion state of a game
type Status int

const (
	StatusUnknown Status = iota
	StatusScheduled
	StatusInProgress
	StatusFinal
)

// String returns the display name of the status
func (s Status) String() string {
	switch s {
	case StatusScheduled:
		return "Scheduled"
	case StatusInProgress:
		return "InProgress"
	case StatusFinal:
		return "Final"
	default:
		return "Unknown"
	}
}

// Team is one side of a game
type Team struct {
	ID           int    `json:"id"`
	Abbreviation string `json:"abbreviation"`
	City         string `json:"city"`
	Name         string `json:"name"`
	FullName     string `json:"full_name"`
}

// Record is a single game as reported by the scores API
type Record struct {
	ID           int    `json:"id"`
	Date         string `json:"date"`
	HomeTeam     Team   `json:"home_team"`
	VisitorTeam  Team   `json:"visitor_team"`
	HomeScore    Score  `json:"home_team_score"`
	VisitorScore Score  `json:"visitor_team_score"`
	StatusText   string `json:"status"`
}

// Matchup is the display string for a game, "{home} v {visitor}"
type Matchup string

// Status maps the provider's free-form status text onto a Status.
// Examples: "Final", "Final/OT", "3rd Qtr", "Halftime", "7:30 pm ET",
// "2025-01-15T00:30:00Z".
func (r Record) Status() Status {
	return ParseStatus(r.StatusText)
}

// ParseStatus converts provider status text into a Status
func ParseStatus(text string) Status {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return StatusUnknown
	}

	if strings.HasPrefix(s, "final") {
		return StatusFinal
	}

	if strings.Contains(s, "qtr") || strings.Contains(s, "half") ||
		strings.HasSuffix(s, "ot") || strings.Contains(s, "overtime") {
		return StatusInProgress
	}

	if _, err := time.Parse(time.RFC3339, strings.TrimSpace(text)); err == nil {
		return StatusScheduled
	}
	if strings.HasSuffix(s, " et") && (strings.Contains(s, "am") || strings.Contains(s, "pm")) {
		return StatusScheduled
	}

	return StatusUnknown
}

// Margin returns the absolute point difference between the two teams
func (r Record) Margin() (int, error) {
	home, err := r.HomeScore.Int()
	if err != nil {
		return 0, fmt.Errorf("home score: %w", err)
	}
	visitor, err := r.VisitorScore.Int()
	if err != nil {
		return 0, fmt.Errorf("visitor score: %w", err)
	}

	diff := home - visitor
	if diff < 0 {
		diff = -diff
	}
	return diff, nil
}

// Matchup returns the display string for the game
func (r Record) Matchup() (Matchup, error) {
	home := strings.TrimSpace(r.HomeTeam.FullName)
	visitor := strings.TrimSpace(r.VisitorTeam.FullName)
	if home == "" || visitor == "" {
		return "", ErrMissingTeam
	}
	return Matchup(home + " v " + visitor), nil
}

// Score holds a raw score value. The provider normally sends an integer but
// strings of digits are accepted as well.
type Score struct {
	raw json.RawMessage
}

// NewScore creates a Score from an integer
func NewScore(n int) Score {
	return Score{raw: json.RawMessage(strconv.Itoa(n))}
}

// UnmarshalJSON stores the raw value for later conversion
func (s *Score) UnmarshalJSON(data []byte) error {
	s.raw = append(s.raw[:0], data...)
	return nil
}

// MarshalJSON writes the raw value back, or null when absent
func (s Score) MarshalJSON() ([]byte, error) {
	if len(s.raw) == 0 {
		return []byte("null"), nil
	}
	return s.raw, nil
}

// Int converts the score to an integer
func (s Score) Int() (int, error) {
	raw := bytes.TrimSpace(s.raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, fmt.Errorf("%w: missing", ErrInvalidScore)
	}

	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidScore, err)
		}
		n, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidScore, text)
		}
		return checkScore(n)
	}

	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %s is not an integer", ErrInvalidScore, raw)
	}
	return checkScore(n)
}

// checkScore rejects negative points. Non-negative scores also keep the
// subtraction in Margin from overflowing.
func checkScore(n int) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: %d is negative", ErrInvalidScore, n)
	}
	return n, nil
}
