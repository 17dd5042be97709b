package domain

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the authorization record for an identity. The ID equals the
// subject of the identity provider's token. Profiles are managed by an
// external administrative process; this service only reads them.
type Profile struct {
	ID        uuid.UUID
	Email     string
	Name      string
	Role      UserRole
	CreatedAt time.Time
	UpdatedAt time.Time
}
