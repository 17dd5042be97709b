package jobs

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/apexlens/backoffice/internal/domain"
	"github.com/apexlens/backoffice/internal/realtime"
)

type jobRepoMock struct {
	GetByIDFunc      func(ctx context.Context, id uuid.UUID) (*domain.Job, error)
	CreateFunc       func(ctx context.Context, j *domain.Job) (*domain.Job, error)
	UpdateFieldsFunc func(ctx context.Context, id uuid.UUID, fields map[string]any) (*domain.Job, *domain.Job, error)
	ListByStatusFunc func(ctx context.Context, status domain.JobStatus, limit int) ([]domain.Job, error)

	updateCalls int
}

var _ jobRepo = &jobRepoMock{}

func (m *jobRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *jobRepoMock) Create(ctx context.Context, j *domain.Job) (*domain.Job, error) {
	return m.CreateFunc(ctx, j)
}

func (m *jobRepoMock) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) (*domain.Job, *domain.Job, error) {
	m.updateCalls++
	return m.UpdateFieldsFunc(ctx, id, fields)
}

func (m *jobRepoMock) ListByStatus(ctx context.Context, status domain.JobStatus, limit int) ([]domain.Job, error) {
	return m.ListByStatusFunc(ctx, status, limit)
}

func (m *jobRepoMock) UpdateCalls() int { return m.updateCalls }

type eventPublisherMock struct {
	PublishFunc func(ctx context.Context, ev realtime.Event) error

	mu     sync.Mutex
	events []realtime.Event
}

var _ eventPublisher = &eventPublisherMock{}

func (m *eventPublisherMock) Publish(ctx context.Context, ev realtime.Event) error {
	m.mu.Lock()
	m.events = append(m.events, ev)
	m.mu.Unlock()
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, ev)
	}
	return nil
}

func (m *eventPublisherMock) Published() []realtime.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]realtime.Event, len(m.events))
	copy(out, m.events)
	return out
}

// txRunnerMock runs the callback directly unless a RunInTxFunc overrides it.
type txRunnerMock struct {
	RunInTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error

	runs int
}

var _ txRunner = &txRunnerMock{}

func (m *txRunnerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.runs++
	if m.RunInTxFunc != nil {
		return m.RunInTxFunc(ctx, fn)
	}
	return fn(ctx)
}
