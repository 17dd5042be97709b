package auth

import "github.com/google/uuid"

// Identity is the resolved caller behind a bearer credential: facts from
// the identity provider's token only, no authorization decisions. The
// role lives on the Profile row, never in the token.
type Identity struct {
	ID    uuid.UUID // token subject
	Email string
}
