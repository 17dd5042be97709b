package provider

import "time"

// Invoice is the structured result from the payment provider.
type Invoice struct {
	ID          string
	CustomerID  string
	Status      string
	AmountCents int64
	HostedURL   string
	PaidAt      *time.Time
}

// Paid reports whether the provider considers the invoice settled.
func (i Invoice) Paid() bool {
	return i.Status == "paid"
}

// BusyRange is one occupied interval from the calendar provider. Event
// titles and descriptions are never carried past the adapter.
type BusyRange struct {
	Start time.Time
	End   time.Time
}

// ReportRow is one mapped metric row from the analytics provider.
type ReportRow struct {
	Date        string
	Sessions    int64
	ActiveUsers int64
	PageViews   int64
}

// Property is a normalized property-records result.
type Property struct {
	ID            string
	Address       string
	City          string
	State         string
	Zip           string
	Beds          int
	Baths         float64
	SquareFeet    int64
	YearBuilt     int
	LastSalePrice int64
	LastSaleDate  string
}

// PropertyImage is raw image bytes plus the content type to relay.
type PropertyImage struct {
	ContentType string
	Data        []byte
}
