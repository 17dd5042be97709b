package domain

import (
	"time"

	"github.com/google/uuid"
)

// Job is a work order: a shoot or appraisal for one property. It starts
// life as a quote request and carries billing state once invoiced.
type Job struct {
	ID               uuid.UUID
	ClientName       string
	ClientEmail      string
	Address          string
	Service          ServiceType
	Status           JobStatus
	ScheduledAt      *time.Time
	Photographer     *string
	Notes            *string
	PriceCents       int64
	StripeCustomerID *string
	InvoiceID        *string
	InvoiceStatus    *InvoiceStatus
	CompletedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// updatableJobFields maps the JSON field names an admin may PATCH to their
// database columns. Anything not listed here is rejected before any SQL is
// built.
var updatableJobFields = map[string]string{
	"clientName":   "client_name",
	"clientEmail":  "client_email",
	"address":      "address",
	"service":      "service",
	"status":       "status",
	"scheduledAt":  "scheduled_at",
	"photographer": "photographer",
	"notes":        "notes",
	"priceCents":   "price_cents",
}

// JobUpdateColumn resolves a PATCH field name to its column.
// Returns false for fields outside the allow-list.
func JobUpdateColumn(field string) (string, bool) {
	col, ok := updatableJobFields[field]
	return col, ok
}

// WeeklyJobStats aggregates one week of activity for the summary report.
type WeeklyJobStats struct {
	WeekStart    time.Time
	WeekEnd      time.Time
	NewRequests  int
	Completed    int
	RevenueCents int64
}
