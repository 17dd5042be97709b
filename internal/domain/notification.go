package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a dashboard alert derived client-side from push events
// or the storage watcher. It lives only in process memory and is discarded
// when the session ends.
type Notification struct {
	ID        uuid.UUID
	Kind      NotificationKind
	Title     string
	Message   string
	CreatedAt time.Time
	Read      bool
	Payload   map[string]string
}

// Subscriber is one entry on the blog notification distribution list.
type Subscriber struct {
	ID         uuid.UUID
	Email      string
	Subscribed bool
	CreatedAt  time.Time
}

// MediaAsset is a stored gallery file; only its size matters to this
// service (aggregate storage accounting).
type MediaAsset struct {
	ID        uuid.UUID
	JobID     uuid.UUID
	Filename  string
	SizeBytes int64
	CreatedAt time.Time
}
