// Package propdata calls the public property-records provider. Responses are
// normalized so the provider's field naming never leaks to API clients.
package propdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/apexlens/backoffice/internal/config"
	"github.com/apexlens/backoffice/internal/domain"
	"github.com/apexlens/backoffice/internal/provider"
)

// imageSizeLimit caps relayed image bodies at 10 MiB.
const imageSizeLimit = 10 << 20

// Client calls the property-records provider.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a Client from config.
func NewClient(cfg config.RecordsConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger.With("adapter", "propdata"),
	}
}

// NewClientWithURL creates a Client with a custom base URL (for testing).
func NewClientWithURL(baseURL, apiKey string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        logger.With("adapter", "propdata"),
	}
}

// Search looks up properties matching a free-text address query.
func (c *Client) Search(ctx context.Context, query string) ([]provider.Property, error) {
	reqURL := c.baseURL + "/properties?q=" + url.QueryEscape(query)

	var out struct {
		Results []propertyPayload `json:"results"`
	}
	if err := c.getJSON(ctx, reqURL, &out); err != nil {
		return nil, err
	}

	props := make([]provider.Property, 0, len(out.Results))
	for _, p := range out.Results {
		props = append(props, p.toResult())
	}
	return props, nil
}

// Get fetches one property record by provider id.
// Returns domain.ErrNotFound for an unknown id.
func (c *Client) Get(ctx context.Context, id string) (*provider.Property, error) {
	var out propertyPayload
	if err := c.getJSON(ctx, c.baseURL+"/properties/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}

	p := out.toResult()
	return &p, nil
}

// Image fetches the primary listing image for a property.
func (c *Client) Image(ctx context.Context, id string) (*provider.PropertyImage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/properties/"+url.PathEscape(id)+"/image", nil)
	if err != nil {
		return nil, fmt.Errorf("propdata: create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.ErrorContext(ctx, "image request failed", slog.String("id", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("propdata: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("propdata: property %s: %w", id, domain.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &domain.UpstreamError{
			Provider: "propdata",
			Status:   resp.StatusCode,
			Message:  strings.TrimSpace(string(body)),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, imageSizeLimit))
	if err != nil {
		return nil, fmt.Errorf("propdata: read image: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &provider.PropertyImage{ContentType: contentType, Data: data}, nil
}

func (c *Client) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("propdata: create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.ErrorContext(ctx, "request failed", slog.String("url", reqURL), slog.String("error", err.Error()))
		return fmt.Errorf("propdata: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("propdata: read body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("propdata: %w", domain.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return &domain.UpstreamError{
			Provider: "propdata",
			Status:   resp.StatusCode,
			Message:  strings.TrimSpace(string(body)),
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("propdata: decode json: %w", err)
	}
	return nil
}

type propertyPayload struct {
	ID       string  `json:"id"`
	Address  string  `json:"address"`
	City     string  `json:"city"`
	State    string  `json:"state"`
	Zip      string  `json:"zip"`
	Beds     int     `json:"bedrooms"`
	Baths    float64 `json:"bathrooms"`
	SqFt     int64   `json:"square_feet"`
	Built    int     `json:"year_built"`
	SalePrice int64  `json:"last_sale_price"`
	SaleDate string  `json:"last_sale_date"`
}

func (p propertyPayload) toResult() provider.Property {
	return provider.Property{
		ID:            p.ID,
		Address:       p.Address,
		City:          p.City,
		State:         p.State,
		Zip:           p.Zip,
		Beds:          p.Beds,
		Baths:         p.Baths,
		SquareFeet:    p.SqFt,
		YearBuilt:     p.Built,
		LastSalePrice: p.SalePrice,
		LastSaleDate:  p.SaleDate,
	}
}
