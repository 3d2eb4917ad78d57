// Package rates fetches the current exchange rate used by the card
// summary to estimate loyalty points. The fetch is best effort: any
// failure yields the configured fallback constant, never an error, so
// the summary keeps working without network access.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const (
	SourceLive     = "live"
	SourceFallback = "fallback"
)

// Rate is the account currency per unit of the points currency.
type Rate struct {
	Value  float64 `json:"rate"`
	Source string  `json:"source"`
}

// Fetcher retrieves rates from a JSON endpoint of the form
// {"rate": 5.12}. An empty URL disables fetching entirely.
type Fetcher struct {
	client   *http.Client
	url      string
	fallback float64
}

func NewFetcher(url string, timeout time.Duration, fallback float64) *Fetcher {
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		url:      url,
		fallback: fallback,
	}
}

// Current returns the latest rate, falling back to the constant on any
// failure. It never returns an error.
func (f *Fetcher) Current(ctx context.Context) Rate {
	fallback := Rate{Value: f.fallback, Source: SourceFallback}
	if f.url == "" {
		return fallback
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		slog.WarnContext(ctx, "Rate request build failed, using fallback", "error", err)
		return fallback
	}

	resp, err := f.client.Do(req)
	if err != nil {
		slog.WarnContext(ctx, "Rate fetch failed, using fallback", "error", err, "url", f.url)
		return fallback
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.WarnContext(ctx, "Rate source returned non-200, using fallback",
			"status", resp.StatusCode, "url", f.url)
		return fallback
	}

	var payload struct {
		Rate float64 `json:"rate"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		slog.WarnContext(ctx, "Rate payload decode failed, using fallback", "error", err)
		return fallback
	}
	if payload.Rate <= 0 {
		slog.WarnContext(ctx, "Rate source returned non-positive rate, using fallback",
			"rate", fmt.Sprintf("%v", payload.Rate))
		return fallback
	}
	return Rate{Value: payload.Rate, Source: SourceLive}
}
