package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mediaRepoMock struct {
	TotalSizeFunc func(ctx context.Context) (int64, error)
}

var _ mediaRepo = &mediaRepoMock{}

func (m *mediaRepoMock) TotalSize(ctx context.Context) (int64, error) {
	return m.TotalSizeFunc(ctx)
}

func newTestService(media *mediaRepoMock, quota int64) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(log, media, quota)
}

func TestUsage(t *testing.T) {
	media := &mediaRepoMock{
		TotalSizeFunc: func(ctx context.Context) (int64, error) {
			return 40 << 30, nil
		},
	}
	svc := newTestService(media, 50<<30)

	usage, err := svc.Usage(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(40<<30), usage.UsedBytes)
	assert.Equal(t, int64(50<<30), usage.QuotaBytes)
	assert.InDelta(t, 80.0, usage.Percent, 0.01)
}

func TestUsage_OverQuota(t *testing.T) {
	media := &mediaRepoMock{
		TotalSizeFunc: func(ctx context.Context) (int64, error) {
			return 60 << 30, nil
		},
	}
	svc := newTestService(media, 50<<30)

	usage, err := svc.Usage(context.Background())
	require.NoError(t, err)
	assert.Greater(t, usage.Percent, 100.0)
}

func TestUsage_RepoError(t *testing.T) {
	media := &mediaRepoMock{
		TotalSizeFunc: func(ctx context.Context) (int64, error) {
			return 0, errors.New("connection refused")
		},
	}
	svc := newTestService(media, 50<<30)

	_, err := svc.Usage(context.Background())
	require.Error(t, err)
}
