// Package stripe is a thin client for the payment provider's invoice API.
// Only the handful of endpoints the back office calls are implemented.
package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/apexlens/backoffice/internal/config"
	"github.com/apexlens/backoffice/internal/domain"
	"github.com/apexlens/backoffice/internal/provider"
)

// Client calls the payment provider over its form-encoded REST API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a Client from config.
func NewClient(cfg config.StripeConfig, logger *slog.Logger) *Client {
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger.With("adapter", "stripe"),
	}
}

// NewClientWithURL creates a Client with a custom base URL (for testing).
func NewClientWithURL(apiKey, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        logger.With("adapter", "stripe"),
	}
}

// CreateCustomer registers a customer for the given email and returns its id.
func (c *Client) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("name", name)

	var out struct {
		ID string `json:"id"`
	}
	if err := c.postForm(ctx, "/customers", form, &out); err != nil {
		return "", err
	}

	c.log.InfoContext(ctx, "customer created", slog.String("customer_id", out.ID))
	return out.ID, nil
}

// CreateInvoice opens a draft invoice for the customer.
func (c *Client) CreateInvoice(ctx context.Context, customerID string) (string, error) {
	form := url.Values{}
	form.Set("customer", customerID)
	form.Set("collection_method", "send_invoice")
	form.Set("days_until_due", "30")

	var out invoicePayload
	if err := c.postForm(ctx, "/invoices", form, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// AddLineItem attaches one line item, in minor currency units, to the draft.
func (c *Client) AddLineItem(ctx context.Context, customerID, invoiceID string, amountCents int64, description string) error {
	form := url.Values{}
	form.Set("customer", customerID)
	form.Set("invoice", invoiceID)
	form.Set("amount", strconv.FormatInt(amountCents, 10))
	form.Set("currency", "usd")
	form.Set("description", description)

	var out struct {
		ID string `json:"id"`
	}
	return c.postForm(ctx, "/invoiceitems", form, &out)
}

// FinalizeInvoice moves the draft to the open state.
func (c *Client) FinalizeInvoice(ctx context.Context, invoiceID string) (*provider.Invoice, error) {
	var out invoicePayload
	if err := c.postForm(ctx, "/invoices/"+url.PathEscape(invoiceID)+"/finalize", url.Values{}, &out); err != nil {
		return nil, err
	}
	inv := out.toResult()
	return &inv, nil
}

// SendInvoice emails the finalized invoice to the customer.
func (c *Client) SendInvoice(ctx context.Context, invoiceID string) (*provider.Invoice, error) {
	var out invoicePayload
	if err := c.postForm(ctx, "/invoices/"+url.PathEscape(invoiceID)+"/send", url.Values{}, &out); err != nil {
		return nil, err
	}
	inv := out.toResult()
	return &inv, nil
}

// GetInvoice fetches the current provider state of an invoice.
func (c *Client) GetInvoice(ctx context.Context, invoiceID string) (*provider.Invoice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/invoices/"+url.PathEscape(invoiceID), nil)
	if err != nil {
		return nil, fmt.Errorf("stripe: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	var out invoicePayload
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	inv := out.toResult()
	return &inv, nil
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("stripe: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(ctx, req, out)
}

func (c *Client) do(ctx context.Context, req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.ErrorContext(ctx, "stripe request failed",
			slog.String("path", req.URL.Path), slog.String("error", err.Error()))
		return fmt.Errorf("stripe: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("stripe: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &domain.UpstreamError{
			Provider: "stripe",
			Status:   resp.StatusCode,
			Message:  errorMessage(body),
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("stripe: decode json: %w", err)
	}

	return nil
}

// invoicePayload is the subset of the provider's invoice object we read.
type invoicePayload struct {
	ID               string `json:"id"`
	Customer         string `json:"customer"`
	Status           string `json:"status"`
	AmountDue        int64  `json:"amount_due"`
	HostedInvoiceURL string `json:"hosted_invoice_url"`
	StatusTransitions struct {
		PaidAt int64 `json:"paid_at"`
	} `json:"status_transitions"`
}

func (p invoicePayload) toResult() provider.Invoice {
	inv := provider.Invoice{
		ID:          p.ID,
		CustomerID:  p.Customer,
		Status:      p.Status,
		AmountCents: p.AmountDue,
		HostedURL:   p.HostedInvoiceURL,
	}
	if p.StatusTransitions.PaidAt > 0 {
		t := time.Unix(p.StatusTransitions.PaidAt, 0).UTC()
		inv.PaidAt = &t
	}
	return inv
}

func errorMessage(body []byte) string {
	var e struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return strings.TrimSpace(string(body))
}
