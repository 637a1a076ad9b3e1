package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pfrederiksen/close-games/internal/game"
	"github.com/pfrederiksen/close-games/internal/logger"
)

const (
	DefaultBaseURL = "https://api.balldontlie.io/v1/games"
	UserAgent      = "close-games/1.0 (github.com/pfrederiksen/close-games)"
	Timeout        = 30 * time.Second
	DateLayout     = "2006-01-02"

	// DefaultPerPage covers every game of a single day in one page
	DefaultPerPage = 100

	// DefaultOffset shifts UTC back to the US Eastern calendar date
	DefaultOffset = 5 * time.Hour
)

// Doer performs HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds the scores API settings
type Config struct {
	BaseURL string
	APIKey  string
	PerPage int
	Offset  time.Duration
}

// Fetcher fetches game records for a single day
type Fetcher struct {
	client  Doer
	baseURL string
	apiKey  string
	perPage int
	offset  time.Duration
}

// Option customizes a Fetcher
type Option func(*Fetcher)

// WithClient replaces the default HTTP client
func WithClient(client Doer) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// New creates a Fetcher. An empty BaseURL or non-positive PerPage falls back
// to the defaults; a zero Offset queries the UTC date.
func New(cfg Config, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:  &http.Client{Timeout: Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		perPage: cfg.PerPage,
		offset:  cfg.Offset,
	}
	if f.baseURL == "" {
		f.baseURL = DefaultBaseURL
	}
	if f.perPage <= 0 {
		f.perPage = DefaultPerPage
	}

	for _, opt := range opts {
		opt(f)
	}
	return f
}

// TargetDate returns the calendar date, formatted YYYY-MM-DD, of now shifted
// back by offset.
func TargetDate(now time.Time, offset time.Duration) string {
	return now.UTC().Add(-offset).Format(DateLayout)
}

// TargetDate returns the date this fetcher would query at now
func (f *Fetcher) TargetDate(now time.Time) string {
	return TargetDate(now, f.offset)
}

// FetchGames fetches the games of the target date derived from now.
// It never fails: errors are logged and an empty slice is returned.
func (f *Fetcher) FetchGames(ctx context.Context, now time.Time) []game.Record {
	return f.FetchDate(ctx, f.TargetDate(now))
}

// FetchDate fetches the games of an explicit YYYY-MM-DD date with the same
// degrade-to-empty policy as FetchGames.
func (f *Fetcher) FetchDate(ctx context.Context, date string) []game.Record {
	start := time.Now()
	defer func() {
		logger.RecordTiming("fetch.duration", time.Since(start))
	}()

	records, err := f.fetch(ctx, date)
	if err != nil {
		logger.IncrCounter("fetch.failures")
		logger.Error("Failed to fetch games", logger.Fields{
			"date": date,
			"url":  f.baseURL,
		}, err)
		return []game.Record{}
	}

	logger.SetGauge("fetch.games", float64(len(records)))
	logger.Info("Fetched games", logger.Fields{
		"date":  date,
		"games": len(records),
	})
	return records
}

func (f *Fetcher) fetch(ctx context.Context, date string) ([]game.Record, error) {
	reqURL, err := f.buildURL(date)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")
	if f.apiKey != "" {
		req.Header.Set("Authorization", f.apiKey)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching games: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("no scoreboard for %s: status %d", date, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return parseGames(resp.Body)
}

func (f *Fetcher) buildURL(date string) (string, error) {
	u, err := url.Parse(f.baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}

	q := u.Query()
	q.Set("dates[]", date)
	q.Set("per_page", strconv.Itoa(f.perPage))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// response is the envelope returned by the scores API
type response struct {
	Data *[]game.Record `json:"data"`
}

// parseGames decodes the data array of a scores API response
func parseGames(r io.Reader) ([]game.Record, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("parsing JSON: response has no data array")
	}

	return *resp.Data, nil
}
