package broadcast

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexlens/backoffice/internal/domain"
)

type subscriberRepoMock struct {
	ListSubscribedFunc func(ctx context.Context) ([]domain.Subscriber, error)
	AddFunc            func(ctx context.Context, email string) (*domain.Subscriber, error)
	UnsubscribeFunc    func(ctx context.Context, email string) error
}

var _ subscriberRepo = &subscriberRepoMock{}

func (m *subscriberRepoMock) ListSubscribed(ctx context.Context) ([]domain.Subscriber, error) {
	return m.ListSubscribedFunc(ctx)
}

func (m *subscriberRepoMock) Add(ctx context.Context, email string) (*domain.Subscriber, error) {
	return m.AddFunc(ctx, email)
}

func (m *subscriberRepoMock) Unsubscribe(ctx context.Context, email string) error {
	return m.UnsubscribeFunc(ctx, email)
}

// mailerMock is safe for the concurrent fan-out.
type mailerMock struct {
	SendFunc func(ctx context.Context, to, subject, htmlBody string) error

	mu   sync.Mutex
	sent []string

	inFlight    atomic.Int64
	maxInFlight atomic.Int64
}

var _ emailSender = &mailerMock{}

func (m *mailerMock) Send(ctx context.Context, to, subject, htmlBody string) error {
	cur := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		max := m.maxInFlight.Load()
		if cur <= max || m.maxInFlight.CompareAndSwap(max, cur) {
			break
		}
	}

	m.mu.Lock()
	m.sent = append(m.sent, to)
	m.mu.Unlock()

	if m.SendFunc != nil {
		return m.SendFunc(ctx, to, subject, htmlBody)
	}
	return nil
}

func (m *mailerMock) Sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sent))
	copy(out, m.sent)
	return out
}

func newTestService(repo *subscriberRepoMock, mailer *mailerMock, limit int64) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(log, repo, mailer, limit)
}

func subscribers(n int) []domain.Subscriber {
	subs := make([]domain.Subscriber, n)
	for i := range subs {
		subs[i] = domain.Subscriber{
			ID:         uuid.New(),
			Email:      fmt.Sprintf("reader%d@example.com", i),
			Subscribed: true,
		}
	}
	return subs
}

func TestSend_DeliversToAllSubscribers(t *testing.T) {
	repo := &subscriberRepoMock{
		ListSubscribedFunc: func(ctx context.Context) ([]domain.Subscriber, error) {
			return subscribers(20), nil
		},
	}
	mailer := &mailerMock{}
	svc := newTestService(repo, mailer, 4)

	result, err := svc.Send(context.Background(), "New listings up", "<p>Take a look.</p>")
	require.NoError(t, err)

	assert.Equal(t, 20, result.Recipients)
	assert.Equal(t, 20, result.Sent)
	assert.Equal(t, 0, result.Failed)
	assert.Len(t, mailer.Sent(), 20)
}

func TestSend_RespectsFanoutLimit(t *testing.T) {
	repo := &subscriberRepoMock{
		ListSubscribedFunc: func(ctx context.Context) ([]domain.Subscriber, error) {
			return subscribers(32), nil
		},
	}
	gate := make(chan struct{})
	mailer := &mailerMock{
		SendFunc: func(ctx context.Context, to, subject, htmlBody string) error {
			<-gate
			return nil
		},
	}
	svc := newTestService(repo, mailer, 4)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := svc.Send(context.Background(), "s", "b")
		assert.NoError(t, err)
	}()
	close(gate)
	<-done

	assert.LessOrEqual(t, mailer.maxInFlight.Load(), int64(4))
}

func TestSend_SingleFailureDoesNotAbortRun(t *testing.T) {
	repo := &subscriberRepoMock{
		ListSubscribedFunc: func(ctx context.Context) ([]domain.Subscriber, error) {
			return subscribers(10), nil
		},
	}
	mailer := &mailerMock{
		SendFunc: func(ctx context.Context, to, subject, htmlBody string) error {
			if to == "reader3@example.com" {
				return errors.New("mailbox full")
			}
			return nil
		},
	}
	svc := newTestService(repo, mailer, 4)

	result, err := svc.Send(context.Background(), "s", "b")
	require.NoError(t, err)

	assert.Equal(t, 10, result.Recipients)
	assert.Equal(t, 9, result.Sent)
	assert.Equal(t, 1, result.Failed)
}

func TestSend_EmptyList(t *testing.T) {
	repo := &subscriberRepoMock{
		ListSubscribedFunc: func(ctx context.Context) ([]domain.Subscriber, error) {
			return nil, nil
		},
	}
	mailer := &mailerMock{}
	svc := newTestService(repo, mailer, 4)

	result, err := svc.Send(context.Background(), "s", "b")
	require.NoError(t, err)
	assert.Equal(t, &Result{}, result)
	assert.Empty(t, mailer.Sent())
}

func TestSend_Validation(t *testing.T) {
	svc := newTestService(&subscriberRepoMock{}, &mailerMock{}, 4)

	_, err := svc.Send(context.Background(), "", "body")
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Send(context.Background(), "subject", "")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestSubscribe(t *testing.T) {
	want := &domain.Subscriber{ID: uuid.New(), Email: "dana@example.com", Subscribed: true}
	repo := &subscriberRepoMock{
		AddFunc: func(ctx context.Context, email string) (*domain.Subscriber, error) {
			assert.Equal(t, "dana@example.com", email)
			return want, nil
		},
	}
	svc := newTestService(repo, &mailerMock{}, 4)

	got, err := svc.Subscribe(context.Background(), "dana@example.com")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = svc.Subscribe(context.Background(), "not-an-email")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestUnsubscribe_NotFound(t *testing.T) {
	repo := &subscriberRepoMock{
		UnsubscribeFunc: func(ctx context.Context, email string) error {
			return domain.ErrNotFound
		},
	}
	svc := newTestService(repo, &mailerMock{}, 4)

	err := svc.Unsubscribe(context.Background(), "ghost@example.com")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
