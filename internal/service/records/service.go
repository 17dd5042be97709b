// Package records proxies the public property-records lookups, keeping the
// provider API key server-side.
package records

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/apexlens/backoffice/internal/domain"
	"github.com/apexlens/backoffice/internal/provider"
)

const minQueryLen = 3

// recordsProvider is the upstream property-records API.
type recordsProvider interface {
	Search(ctx context.Context, query string) ([]provider.Property, error)
	Get(ctx context.Context, id string) (*provider.Property, error)
	Image(ctx context.Context, id string) (*provider.PropertyImage, error)
}

// Service implements the property-records proxy.
type Service struct {
	log     *slog.Logger
	records recordsProvider
}

// NewService creates a new records service instance.
func NewService(logger *slog.Logger, records recordsProvider) *Service {
	return &Service{
		log:     logger.With("service", "records"),
		records: records,
	}
}

// Search looks up properties by free-text address query.
func (s *Service) Search(ctx context.Context, query string) ([]provider.Property, error) {
	query = strings.TrimSpace(query)
	if len(query) < minQueryLen {
		return nil, domain.NewValidationError("q", fmt.Sprintf("must be at least %d characters", minQueryLen))
	}

	props, err := s.records.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("records.Search: %w", err)
	}
	return props, nil
}

// Get returns one property record.
func (s *Service) Get(ctx context.Context, id string) (*provider.Property, error) {
	if id == "" {
		return nil, domain.NewValidationError("id", "is required")
	}
	prop, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("records.Get: %w", err)
	}
	return prop, nil
}

// Image returns a property photo for relaying to the caller.
func (s *Service) Image(ctx context.Context, id string) (*provider.PropertyImage, error) {
	if id == "" {
		return nil, domain.NewValidationError("id", "is required")
	}
	img, err := s.records.Image(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("records.Image: %w", err)
	}
	return img, nil
}
