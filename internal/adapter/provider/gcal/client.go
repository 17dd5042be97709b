// Package gcal queries the calendar provider's freebusy endpoint. Only busy
// intervals come back from the API in this mode, so event titles and
// descriptions never reach this process.
package gcal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/apexlens/backoffice/internal/domain"
	"github.com/apexlens/backoffice/internal/provider"
)

const (
	defaultBaseURL = "https://www.googleapis.com/calendar/v3"
	scope          = "https://www.googleapis.com/auth/calendar.readonly"
)

// tokenSource mints access tokens for the calendar scope.
type tokenSource interface {
	Token(ctx context.Context, scope string) (string, error)
}

// Client calls the calendar provider.
type Client struct {
	calendarID string
	baseURL    string
	tokens     tokenSource
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a Client for the configured calendar.
func NewClient(calendarID string, tokens tokenSource, logger *slog.Logger) *Client {
	return NewClientWithURL(calendarID, defaultBaseURL, tokens, logger)
}

// NewClientWithURL creates a Client with a custom base URL (for testing).
func NewClientWithURL(calendarID, baseURL string, tokens tokenSource, logger *slog.Logger) *Client {
	return &Client{
		calendarID: calendarID,
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        logger.With("adapter", "gcal"),
	}
}

// FreeBusy returns the busy intervals on the calendar between min and max.
func (c *Client) FreeBusy(ctx context.Context, min, max time.Time) ([]provider.BusyRange, error) {
	token, err := c.tokens.Token(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("gcal: token: %w", err)
	}

	reqBody, err := json.Marshal(map[string]any{
		"timeMin": min.Format(time.RFC3339),
		"timeMax": max.Format(time.RFC3339),
		"items":   []map[string]string{{"id": c.calendarID}},
	})
	if err != nil {
		return nil, fmt.Errorf("gcal: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/freeBusy", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("gcal: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.ErrorContext(ctx, "freebusy request failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("gcal: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gcal: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.UpstreamError{
			Provider: "gcal",
			Status:   resp.StatusCode,
			Message:  strings.TrimSpace(string(body)),
		}
	}

	var out struct {
		Calendars map[string]struct {
			Busy []struct {
				Start time.Time `json:"start"`
				End   time.Time `json:"end"`
			} `json:"busy"`
		} `json:"calendars"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("gcal: decode json: %w", err)
	}

	cal, ok := out.Calendars[c.calendarID]
	if !ok {
		return nil, fmt.Errorf("gcal: calendar %q missing from response", c.calendarID)
	}

	ranges := make([]provider.BusyRange, 0, len(cal.Busy))
	for _, b := range cal.Busy {
		ranges = append(ranges, provider.BusyRange{Start: b.Start, End: b.End})
	}

	c.log.DebugContext(ctx, "freebusy response", slog.Int("busy", len(ranges)))
	return ranges, nil
}
