// Package ga runs reports against the analytics provider's Data API and maps
// the response down to the handful of metrics the dashboard charts.
package ga

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/apexlens/backoffice/internal/domain"
	"github.com/apexlens/backoffice/internal/provider"
)

const (
	defaultBaseURL = "https://analyticsdata.googleapis.com/v1beta"
	scope          = "https://www.googleapis.com/auth/analytics.readonly"
)

type tokenSource interface {
	Token(ctx context.Context, scope string) (string, error)
}

// Client calls the analytics provider.
type Client struct {
	propertyID string
	baseURL    string
	tokens     tokenSource
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a Client for the configured analytics property.
func NewClient(propertyID string, tokens tokenSource, logger *slog.Logger) *Client {
	return NewClientWithURL(propertyID, defaultBaseURL, tokens, logger)
}

// NewClientWithURL creates a Client with a custom base URL (for testing).
func NewClientWithURL(propertyID, baseURL string, tokens tokenSource, logger *slog.Logger) *Client {
	return &Client{
		propertyID: propertyID,
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        logger.With("adapter", "ga"),
	}
}

// RunReport fetches sessions, active users, and page views per day for the
// inclusive date range.
func (c *Client) RunReport(ctx context.Context, start, end time.Time) ([]provider.ReportRow, error) {
	token, err := c.tokens.Token(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("ga: token: %w", err)
	}

	reqBody, err := json.Marshal(map[string]any{
		"dateRanges": []map[string]string{{
			"startDate": start.Format("2006-01-02"),
			"endDate":   end.Format("2006-01-02"),
		}},
		"dimensions": []map[string]string{{"name": "date"}},
		"metrics": []map[string]string{
			{"name": "sessions"},
			{"name": "activeUsers"},
			{"name": "screenPageViews"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("ga: encode request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/%s:runReport", c.baseURL, c.propertyID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("ga: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.ErrorContext(ctx, "runReport failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("ga: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ga: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.UpstreamError{
			Provider: "ga",
			Status:   resp.StatusCode,
			Message:  strings.TrimSpace(string(body)),
		}
	}

	var out reportResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("ga: decode json: %w", err)
	}

	rows := mapRows(out)
	c.log.DebugContext(ctx, "runReport response", slog.Int("rows", len(rows)))
	return rows, nil
}

type reportResponse struct {
	Rows []struct {
		DimensionValues []struct {
			Value string `json:"value"`
		} `json:"dimensionValues"`
		MetricValues []struct {
			Value string `json:"value"`
		} `json:"metricValues"`
	} `json:"rows"`
}

// mapRows keeps only the mapped metrics; anything malformed becomes zero
// rather than failing the whole report.
func mapRows(resp reportResponse) []provider.ReportRow {
	rows := make([]provider.ReportRow, 0, len(resp.Rows))
	for _, r := range resp.Rows {
		var row provider.ReportRow
		if len(r.DimensionValues) > 0 {
			row.Date = r.DimensionValues[0].Value
		}
		if len(r.MetricValues) > 0 {
			row.Sessions, _ = strconv.ParseInt(r.MetricValues[0].Value, 10, 64)
		}
		if len(r.MetricValues) > 1 {
			row.ActiveUsers, _ = strconv.ParseInt(r.MetricValues[1].Value, 10, 64)
		}
		if len(r.MetricValues) > 2 {
			row.PageViews, _ = strconv.ParseInt(r.MetricValues[2].Value, 10, 64)
		}
		rows = append(rows, row)
	}
	return rows
}
