// Command weekly-report sends the weekly activity summary once and exits.
// It is meant to run from cron every Monday morning; the same summary can
// also be triggered on demand through the admin API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apexlens/backoffice/internal/adapter/postgres"
	jobrepo "github.com/apexlens/backoffice/internal/adapter/postgres/job"
	"github.com/apexlens/backoffice/internal/adapter/provider/mailer"
	"github.com/apexlens/backoffice/internal/app"
	"github.com/apexlens/backoffice/internal/config"
	"github.com/apexlens/backoffice/internal/service/report"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := app.NewLogger(cfg.Log)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	svc := report.NewService(log,
		jobrepo.New(pool),
		mailer.NewClient(cfg.Mailer, log),
		cfg.Report.RecipientList(),
		cfg.Booking.Location(),
	)

	stats, err := svc.SendWeekly(ctx, time.Now())
	if err != nil {
		return err
	}

	log.Info("weekly report sent",
		"new_requests", stats.NewRequests,
		"completed", stats.Completed,
		"revenue_cents", stats.RevenueCents)
	return nil
}
