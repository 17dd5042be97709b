// Package client is the embeddable dashboard-side counterpart of the API:
// it tracks who is signed in, resolves their role, and turns server push
// events into in-memory notifications.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/apexlens/backoffice/internal/auth"
	"github.com/apexlens/backoffice/internal/domain"
)

// State is the session lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StateAnonymous
	StateResolving
	StateAuthenticated
	StateAuthenticatedNoProfile
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateAnonymous:
		return "anonymous"
	case StateResolving:
		return "resolving"
	case StateAuthenticated:
		return "authenticated"
	case StateAuthenticatedNoProfile:
		return "authenticated_no_profile"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// profileSource resolves an identity's Profile row.
type profileSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
}

// sessionRevoker invalidates the session at the identity provider.
type sessionRevoker interface {
	Revoke(ctx context.Context) error
}

type resolveCall struct {
	done chan struct{}
	err  error
}

// Session tracks the signed-in identity and its resolved role. All state
// changes go through one reducer under the mutex; concurrent Resolve calls
// for the same identity share a single profile fetch.
type Session struct {
	log      *slog.Logger
	profiles profileSource
	revoker  sessionRevoker

	mu       sync.Mutex
	state    State
	identity *auth.Identity
	profile  *domain.Profile
	inflight *resolveCall
}

// NewSession creates an uninitialized session. revoker may be nil when the
// identity provider has no revoke endpoint.
func NewSession(logger *slog.Logger, profiles profileSource, revoker sessionRevoker) *Session {
	return &Session{
		log:      logger.With("component", "session"),
		profiles: profiles,
		revoker:  revoker,
		state:    StateUninitialized,
	}
}

// Start seeds the session from the stored credential. A nil identity means
// no session was found and the caller stays anonymous.
func (s *Session) Start(ctx context.Context, identity *auth.Identity) error {
	if identity == nil {
		s.mu.Lock()
		s.state = StateAnonymous
		s.identity = nil
		s.profile = nil
		s.mu.Unlock()
		return nil
	}
	return s.Resolve(ctx, identity)
}

// Resolve moves the session to Resolving and fetches the identity's profile.
// Concurrent calls for the same identity coalesce onto one in-flight fetch;
// a call for a different identity replaces the session.
func (s *Session) Resolve(ctx context.Context, identity *auth.Identity) error {
	s.mu.Lock()

	if s.inflight != nil && s.identity != nil && s.identity.ID == identity.ID {
		call := s.inflight
		s.mu.Unlock()
		select {
		case <-call.done:
			return call.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	call := &resolveCall{done: make(chan struct{})}
	s.inflight = call
	s.identity = identity
	s.profile = nil
	s.state = StateResolving
	s.mu.Unlock()

	profile, err := s.profiles.GetByID(ctx, identity.ID)

	s.mu.Lock()
	defer s.mu.Unlock()

	// A newer resolution may have replaced this one; only the current
	// in-flight call is allowed to reduce the state.
	if s.inflight == call {
		s.inflight = nil
		switch {
		case err == nil:
			s.state = StateAuthenticated
			s.profile = profile
		case errors.Is(err, domain.ErrNotFound):
			s.state = StateAuthenticatedNoProfile
			err = nil
		default:
			// A transient fetch failure must not sign the user out. The
			// identity stays; without a profile the session is simply
			// non-privileged until a later Resolve succeeds.
			s.state = StateAuthenticatedNoProfile
			s.log.WarnContext(ctx, "profile fetch failed, session degraded",
				slog.String("error", err.Error()))
		}
	}

	call.err = err
	close(call.done)
	return err
}

// SignOut revokes the session remotely and always clears local state, even
// when the remote revoke fails. The revoke error is returned so the caller
// can surface it.
func (s *Session) SignOut(ctx context.Context) error {
	var revokeErr error
	if s.revoker != nil {
		revokeErr = s.revoker.Revoke(ctx)
		if revokeErr != nil {
			s.log.WarnContext(ctx, "remote revoke failed, clearing local state anyway",
				slog.String("error", revokeErr.Error()))
		}
	}

	s.mu.Lock()
	s.state = StateAnonymous
	s.identity = nil
	s.profile = nil
	s.inflight = nil
	s.mu.Unlock()

	return revokeErr
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Identity returns the signed-in identity, or nil.
func (s *Session) Identity() *auth.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Profile returns the resolved profile, or nil before resolution completes
// or when the identity has no profile row.
func (s *Session) Profile() *domain.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// IsPrivileged reports whether the resolved profile carries the admin role.
func (s *Session) IsPrivileged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile != nil && s.profile.Role.IsAdmin()
}
