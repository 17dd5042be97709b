// Package realtime carries row-change events from the API process to
// connected dashboard clients over a Redis pub/sub channel.
package realtime

import (
	"time"

	"github.com/google/uuid"

	"github.com/apexlens/backoffice/internal/domain"
)

// EventType distinguishes row inserts from row updates.
type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
)

// JobSnapshot is the wire form of a job row inside an event. Only the
// fields the notification center needs are carried.
type JobSnapshot struct {
	ID         uuid.UUID `json:"id"`
	ClientName string    `json:"clientName"`
	Address    string    `json:"address"`
	Service    string    `json:"service"`
	Status     string    `json:"status"`
	PriceCents int64     `json:"priceCents"`
}

// SnapshotFromJob projects a domain job onto the wire form.
func SnapshotFromJob(j *domain.Job) *JobSnapshot {
	if j == nil {
		return nil
	}
	return &JobSnapshot{
		ID:         j.ID,
		ClientName: j.ClientName,
		Address:    j.Address,
		Service:    j.Service.String(),
		Status:     j.Status.String(),
		PriceCents: j.PriceCents,
	}
}

// Event is one row change on the jobs table. Old is nil for inserts.
type Event struct {
	Type  EventType    `json:"type"`
	Table string       `json:"table"`
	At    time.Time    `json:"at"`
	Old   *JobSnapshot `json:"old,omitempty"`
	New   *JobSnapshot `json:"new,omitempty"`
}

// Inserted builds an insert event for a new job row.
func Inserted(j *domain.Job) Event {
	return Event{
		Type:  EventInsert,
		Table: "jobs",
		At:    time.Now().UTC(),
		New:   SnapshotFromJob(j),
	}
}

// Updated builds an update event carrying old and new row states.
func Updated(old, updated *domain.Job) Event {
	return Event{
		Type:  EventUpdate,
		Table: "jobs",
		At:    time.Now().UTC(),
		Old:   SnapshotFromJob(old),
		New:   SnapshotFromJob(updated),
	}
}
