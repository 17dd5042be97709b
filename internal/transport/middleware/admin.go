package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/apexlens/backoffice/internal/domain"
	"github.com/apexlens/backoffice/pkg/ctxutil"
)

// ProfileRepo loads the authorization record for an identity.
type ProfileRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
}

// RequireAdmin returns middleware that rejects requests whose caller is not
// an admin. The role comes from the Profile row, never from the token, so a
// revoked admin loses access as soon as the row changes. Runs after Auth.
func RequireAdmin(profiles ProfileRepo) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := ctxutil.UserIDFromCtx(r.Context())
			if !ok {
				errorJSON(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			profile, err := profiles.GetByID(r.Context(), userID)
			if errors.Is(err, domain.ErrNotFound) {
				// Authenticated identity without a profile row: the caller
				// exists but has no permissions here.
				errorJSON(w, http.StatusForbidden, "forbidden")
				return
			}
			if err != nil {
				errorJSON(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if !profile.Role.IsAdmin() {
				errorJSON(w, http.StatusForbidden, "forbidden")
				return
			}

			ctx := ctxutil.WithRole(r.Context(), profile.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
