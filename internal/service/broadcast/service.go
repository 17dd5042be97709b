// Package broadcast sends one-off announcement emails to the blog
// subscriber list.
package broadcast

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/apexlens/backoffice/internal/domain"
)

// subscriberRepo lists the active distribution list.
type subscriberRepo interface {
	ListSubscribed(ctx context.Context) ([]domain.Subscriber, error)
	Add(ctx context.Context, email string) (*domain.Subscriber, error)
	Unsubscribe(ctx context.Context, email string) error
}

// emailSender delivers a single email.
type emailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Service implements the subscriber broadcast.
type Service struct {
	log         *slog.Logger
	subscribers subscriberRepo
	mailer      emailSender
	fanoutLimit int64
}

// NewService creates a new broadcast service instance. fanoutLimit caps the
// number of in-flight mailer calls.
func NewService(logger *slog.Logger, subscribers subscriberRepo, mailer emailSender, fanoutLimit int64) *Service {
	return &Service{
		log:         logger.With("service", "broadcast"),
		subscribers: subscribers,
		mailer:      mailer,
		fanoutLimit: fanoutLimit,
	}
}

// Result summarizes one broadcast run.
type Result struct {
	Recipients int
	Sent       int
	Failed     int
}

// Send fans the message out to every active subscriber. A failed recipient is
// logged and counted but never aborts the rest of the run.
func (s *Service) Send(ctx context.Context, subject, htmlBody string) (*Result, error) {
	if subject == "" {
		return nil, domain.NewValidationError("subject", "is required")
	}
	if htmlBody == "" {
		return nil, domain.NewValidationError("body", "is required")
	}

	subs, err := s.subscribers.ListSubscribed(ctx)
	if err != nil {
		return nil, fmt.Errorf("broadcast.Send: %w", err)
	}
	if len(subs) == 0 {
		return &Result{}, nil
	}

	sem := semaphore.NewWeighted(s.fanoutLimit)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		sent   int
		failed int
	)
	for _, sub := range subs {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Context cancelled mid-run; report what was attempted so far.
			break
		}
		wg.Add(1)
		go func(email string) {
			defer wg.Done()
			defer sem.Release(1)

			err := s.mailer.Send(ctx, email, subject, htmlBody)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				s.log.WarnContext(ctx, "broadcast delivery failed",
					slog.String("to", email), slog.String("error", err.Error()))
				return
			}
			sent++
		}(sub.Email)
	}
	wg.Wait()

	s.log.InfoContext(ctx, "broadcast finished",
		slog.Int("recipients", len(subs)), slog.Int("sent", sent), slog.Int("failed", failed))

	return &Result{Recipients: len(subs), Sent: sent, Failed: failed}, nil
}

// Subscribe adds an address to the distribution list.
func (s *Service) Subscribe(ctx context.Context, email string) (*domain.Subscriber, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.NewValidationError("email", "must be a valid email address")
	}
	sub, err := s.subscribers.Add(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("broadcast.Subscribe: %w", err)
	}
	return sub, nil
}

// Unsubscribe removes an address from the distribution list.
func (s *Service) Unsubscribe(ctx context.Context, email string) error {
	if err := s.subscribers.Unsubscribe(ctx, email); err != nil {
		return fmt.Errorf("broadcast.Unsubscribe: %w", err)
	}
	return nil
}
