package records

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexlens/backoffice/internal/domain"
	"github.com/apexlens/backoffice/internal/provider"
)

type recordsMock struct {
	SearchFunc func(ctx context.Context, query string) ([]provider.Property, error)
	GetFunc    func(ctx context.Context, id string) (*provider.Property, error)
	ImageFunc  func(ctx context.Context, id string) (*provider.PropertyImage, error)

	searchCalls int
}

var _ recordsProvider = &recordsMock{}

func (m *recordsMock) Search(ctx context.Context, query string) ([]provider.Property, error) {
	m.searchCalls++
	return m.SearchFunc(ctx, query)
}

func (m *recordsMock) Get(ctx context.Context, id string) (*provider.Property, error) {
	return m.GetFunc(ctx, id)
}

func (m *recordsMock) Image(ctx context.Context, id string) (*provider.PropertyImage, error) {
	return m.ImageFunc(ctx, id)
}

func newTestService(mock *recordsMock) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(log, mock)
}

func TestSearch_TrimsAndForwardsQuery(t *testing.T) {
	want := []provider.Property{{ID: "p-1", Address: "402 Birch Lane"}}
	mock := &recordsMock{
		SearchFunc: func(ctx context.Context, query string) ([]provider.Property, error) {
			assert.Equal(t, "402 Birch", query)
			return want, nil
		},
	}
	svc := newTestService(mock)

	got, err := svc.Search(context.Background(), "  402 Birch  ")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSearch_ShortQueryRejectedBeforeProvider(t *testing.T) {
	mock := &recordsMock{}
	svc := newTestService(mock)

	_, err := svc.Search(context.Background(), " 42 ")
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 0, mock.searchCalls)
}

func TestGet_NotFoundPassesThrough(t *testing.T) {
	mock := &recordsMock{
		GetFunc: func(ctx context.Context, id string) (*provider.Property, error) {
			return nil, domain.ErrNotFound
		},
	}
	svc := newTestService(mock)

	_, err := svc.Get(context.Background(), "p-404")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestImage(t *testing.T) {
	want := &provider.PropertyImage{ContentType: "image/jpeg", Data: []byte{0xff, 0xd8}}
	mock := &recordsMock{
		ImageFunc: func(ctx context.Context, id string) (*provider.PropertyImage, error) {
			assert.Equal(t, "p-1", id)
			return want, nil
		},
	}
	svc := newTestService(mock)

	got, err := svc.Image(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
