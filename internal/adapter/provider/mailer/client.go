// Package mailer sends transactional email through the provider's REST API.
package mailer

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

	"github.com/apexlens/backoffice/internal/config"
	"github.com/apexlens/backoffice/internal/domain"
)

// Client sends email via the provider's /emails endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	from       string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a Client from config.
func NewClient(cfg config.MailerConfig, logger *slog.Logger) *Client {
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		from:       cfg.FromAddress,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger.With("adapter", "mailer"),
	}
}

// NewClientWithURL creates a Client with a custom base URL (for testing).
func NewClientWithURL(apiKey, baseURL, from string, logger *slog.Logger) *Client {
	return NewClient(config.MailerConfig{
		APIKey:      apiKey,
		BaseURL:     baseURL,
		FromAddress: from,
		Timeout:     10 * time.Second,
	}, logger)
}

// Send delivers one message to one recipient.
func (c *Client) Send(ctx context.Context, to, subject, htmlBody string) error {
	payload, err := json.Marshal(map[string]any{
		"from":    c.from,
		"to":      []string{to},
		"subject": subject,
		"html":    htmlBody,
	})
	if err != nil {
		return fmt.Errorf("mailer: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("mailer: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.ErrorContext(ctx, "send failed", slog.String("to", to), slog.String("error", err.Error()))
		return fmt.Errorf("mailer: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return &domain.UpstreamError{
			Provider: "mailer",
			Status:   resp.StatusCode,
			Message:  strings.TrimSpace(string(body)),
		}
	}

	c.log.DebugContext(ctx, "sent", slog.String("to", to), slog.String("subject", subject))
	return nil
}
