package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if err := c.Booking.validate(); err != nil {
		return fmt.Errorf("booking: %w", err)
	}

	if c.Mailer.FanoutLimit <= 0 {
		return fmt.Errorf("mailer.fanout_limit must be > 0 (got %d)", c.Mailer.FanoutLimit)
	}

	if c.Storage.QuotaBytes <= 0 {
		return fmt.Errorf("storage.quota_bytes must be > 0 (got %d)", c.Storage.QuotaBytes)
	}

	if c.Server.PublicRatePerMinute <= 0 {
		return fmt.Errorf("server.public_rate_per_minute must be > 0 (got %d)", c.Server.PublicRatePerMinute)
	}

	return nil
}

func (b *BookingConfig) validate() error {
	if b.DayStartHour < 0 || b.DayStartHour > 23 {
		return fmt.Errorf("day_start_hour must be in [0,23] (got %d)", b.DayStartHour)
	}
	if b.DayEndHour < 1 || b.DayEndHour > 24 {
		return fmt.Errorf("day_end_hour must be in [1,24] (got %d)", b.DayEndHour)
	}
	if b.DayStartHour >= b.DayEndHour {
		return fmt.Errorf("day_start_hour must be before day_end_hour (got %d >= %d)", b.DayStartHour, b.DayEndHour)
	}
	if _, err := time.LoadLocation(b.Timezone); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	return nil
}

// Location returns the parsed booking timezone. Validate must have
// succeeded before calling it.
func (b *BookingConfig) Location() *time.Location {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// RecipientList parses the comma-separated recipients string into a slice
// of addresses. An empty string returns a nil slice.
func (r ReportConfig) RecipientList() []string {
	raw := strings.TrimSpace(r.Recipients)
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
