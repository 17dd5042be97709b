// Package app assembles configuration, storage, providers, services, and the
// HTTP transport into a runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/apexlens/backoffice/internal/adapter/postgres"
	jobrepo "github.com/apexlens/backoffice/internal/adapter/postgres/job"
	mediarepo "github.com/apexlens/backoffice/internal/adapter/postgres/media"
	profilerepo "github.com/apexlens/backoffice/internal/adapter/postgres/profile"
	subscriberrepo "github.com/apexlens/backoffice/internal/adapter/postgres/subscriber"
	"github.com/apexlens/backoffice/internal/adapter/provider/ga"
	"github.com/apexlens/backoffice/internal/adapter/provider/gcal"
	"github.com/apexlens/backoffice/internal/adapter/provider/googleauth"
	"github.com/apexlens/backoffice/internal/adapter/provider/mailer"
	"github.com/apexlens/backoffice/internal/adapter/provider/propdata"
	"github.com/apexlens/backoffice/internal/adapter/provider/stripe"
	"github.com/apexlens/backoffice/internal/auth"
	"github.com/apexlens/backoffice/internal/config"
	"github.com/apexlens/backoffice/internal/realtime"
	"github.com/apexlens/backoffice/internal/service/analytics"
	"github.com/apexlens/backoffice/internal/service/availability"
	"github.com/apexlens/backoffice/internal/service/billing"
	"github.com/apexlens/backoffice/internal/service/broadcast"
	"github.com/apexlens/backoffice/internal/service/jobs"
	"github.com/apexlens/backoffice/internal/service/records"
	"github.com/apexlens/backoffice/internal/service/report"
	"github.com/apexlens/backoffice/internal/service/storage"
	"github.com/apexlens/backoffice/internal/transport/middleware"
	"github.com/apexlens/backoffice/internal/transport/rest"
)

// App is the wired server plus everything it must release on shutdown.
type App struct {
	log             *slog.Logger
	httpServer      *http.Server
	shutdownTimeout time.Duration
	cleanup         []func()
}

// New builds the full dependency graph. Nothing is served until Run.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := NewLogger(cfg.Log)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("app: connect postgres: %w", err)
	}

	bus, err := realtime.NewBus(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("app: connect redis: %w", err)
	}

	jobsRepo := jobrepo.New(pool)
	profilesRepo := profilerepo.New(pool)
	subscribersRepo := subscriberrepo.New(pool)
	mediaRepo := mediarepo.New(pool)
	txManager := postgres.NewTxManager(pool)

	tokens, err := googleauth.NewTokenSource(cfg.Google, log)
	if err != nil {
		bus.Close()
		pool.Close()
		return nil, fmt.Errorf("app: google credentials: %w", err)
	}

	stripeClient := stripe.NewClient(cfg.Stripe, log)
	calendarClient := gcal.NewClient(cfg.Google.CalendarID, tokens, log)
	analyticsClient := ga.NewClient(cfg.Google.AnalyticsPropertyID, tokens, log)
	mailClient := mailer.NewClient(cfg.Mailer, log)
	recordsClient := propdata.NewClient(cfg.Records, log)

	jobsSvc := jobs.NewService(log, jobsRepo, bus, txManager)
	billingSvc := billing.NewService(log, jobsRepo, stripeClient, bus)
	availabilitySvc := availability.NewService(log, calendarClient, cfg.Booking)
	analyticsSvc := analytics.NewService(log, analyticsClient)
	broadcastSvc := broadcast.NewService(log, subscribersRepo, mailClient, cfg.Mailer.FanoutLimit)
	reportSvc := report.NewService(log, jobsRepo, mailClient, cfg.Report.RecipientList(), cfg.Booking.Location())
	recordsSvc := records.NewService(log, recordsClient)
	storageSvc := storage.NewService(log, mediaRepo, cfg.Storage.QuotaBytes)

	rateLimiter := middleware.NewRateLimiter(time.Minute)

	router := rest.NewRouter(rest.RouterConfig{
		Logger:        log,
		CORS:          cfg.CORS,
		TokenVerifier: auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer),
		Profiles:      profilesRepo,
		RateLimiter:   rateLimiter,
		PublicPerMin:  cfg.Server.PublicRatePerMinute,
	}, rest.Handlers{
		Health:       rest.NewHealthHandler(pool, bus, BuildVersion()),
		Billing:      rest.NewBillingHandler(billingSvc, log),
		Jobs:         rest.NewJobsHandler(jobsSvc, log),
		Analytics:    rest.NewAnalyticsHandler(analyticsSvc, log),
		Availability: rest.NewAvailabilityHandler(availabilitySvc, log),
		Broadcast:    rest.NewBroadcastHandler(broadcastSvc, log),
		Report:       rest.NewReportHandler(reportSvc, log),
		Records:      rest.NewRecordsHandler(recordsSvc, log),
		Storage:      rest.NewStorageHandler(storageSvc, log),
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		log:             log,
		httpServer:      httpServer,
		shutdownTimeout: cfg.Server.ShutdownTimeout,
		cleanup: []func(){
			rateLimiter.Stop,
			func() { _ = bus.Close() },
			pool.Close,
		},
	}, nil
}

// Run serves HTTP until the listener is closed. It returns nil on a clean
// Shutdown.
func (a *App) Run() error {
	a.log.Info("server starting",
		slog.String("addr", a.httpServer.Addr),
		slog.String("version", BuildVersion()))

	if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("app: serve: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and releases resources. Cleanup runs in
// the order registered, after the listener is fully closed.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	err := a.httpServer.Shutdown(ctx)

	for _, fn := range a.cleanup {
		fn()
	}

	a.log.Info("server stopped")
	return err
}
