package client

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/apexlens/backoffice/internal/domain"
	"github.com/apexlens/backoffice/internal/realtime"
	"github.com/apexlens/backoffice/internal/service/storage"
)

type profileSourceMock struct {
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.Profile, error)

	calls atomic.Int64
}

func (m *profileSourceMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	m.calls.Add(1)
	return m.GetByIDFunc(ctx, id)
}

func (m *profileSourceMock) Calls() int64 { return m.calls.Load() }

type revokerMock struct {
	RevokeFunc func(ctx context.Context) error

	calls atomic.Int64
}

func (m *revokerMock) Revoke(ctx context.Context) error {
	m.calls.Add(1)
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx)
	}
	return nil
}

type eventSourceMock struct {
	ch chan realtime.Event
}

func newEventSourceMock() *eventSourceMock {
	return &eventSourceMock{ch: make(chan realtime.Event)}
}

func (m *eventSourceMock) Subscribe(ctx context.Context) <-chan realtime.Event {
	out := make(chan realtime.Event)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-m.ch:
				if !ok {
					return
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

type storageUsageMock struct {
	mu        sync.Mutex
	UsageFunc func(ctx context.Context) (*storage.Usage, error)

	calls int
}

func (m *storageUsageMock) Usage(ctx context.Context) (*storage.Usage, error) {
	m.mu.Lock()
	m.calls++
	fn := m.UsageFunc
	m.mu.Unlock()
	return fn(ctx)
}

func (m *storageUsageMock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *storageUsageMock) SetUsage(fn func(ctx context.Context) (*storage.Usage, error)) {
	m.mu.Lock()
	m.UsageFunc = fn
	m.mu.Unlock()
}

var (
	_ profileSource  = &profileSourceMock{}
	_ sessionRevoker = &revokerMock{}
	_ eventSource    = &eventSourceMock{}
	_ storageUsage   = &storageUsageMock{}
)
