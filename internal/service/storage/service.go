// Package storage reports aggregate media storage consumption against the
// configured quota.
package storage

import (
	"context"
	"fmt"
	"log/slog"
)

// mediaRepo aggregates stored asset sizes.
type mediaRepo interface {
	TotalSize(ctx context.Context) (int64, error)
}

// Usage is the storage accounting snapshot.
type Usage struct {
	UsedBytes  int64
	QuotaBytes int64
	Percent    float64
}

// Service implements storage accounting.
type Service struct {
	log        *slog.Logger
	media      mediaRepo
	quotaBytes int64
}

// NewService creates a new storage service instance.
func NewService(logger *slog.Logger, media mediaRepo, quotaBytes int64) *Service {
	return &Service{
		log:        logger.With("service", "storage"),
		media:      media,
		quotaBytes: quotaBytes,
	}
}

// Usage returns current consumption. Percent may exceed 100 when the quota
// is overshot; callers decide how to present that.
func (s *Service) Usage(ctx context.Context) (*Usage, error) {
	used, err := s.media.TotalSize(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage.Usage: %w", err)
	}

	return &Usage{
		UsedBytes:  used,
		QuotaBytes: s.quotaBytes,
		Percent:    float64(used) / float64(s.quotaBytes) * 100,
	}, nil
}
