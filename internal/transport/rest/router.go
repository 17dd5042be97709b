package rest

import (
	"log/slog"
	"net/http"

	"github.com/apexlens/backoffice/internal/config"
	"github.com/apexlens/backoffice/internal/transport/middleware"
)

// Handlers groups every REST handler the router mounts.
type Handlers struct {
	Health       *HealthHandler
	Billing      *BillingHandler
	Jobs         *JobsHandler
	Analytics    *AnalyticsHandler
	Availability *AvailabilityHandler
	Broadcast    *BroadcastHandler
	Report       *ReportHandler
	Records      *RecordsHandler
	Storage      *StorageHandler
}

// RouterConfig carries the cross-cutting pieces the router wires around the
// handlers.
type RouterConfig struct {
	Logger        *slog.Logger
	CORS          config.CORSConfig
	TokenVerifier middleware.TokenValidator
	Profiles      middleware.ProfileRepo
	RateLimiter   *middleware.RateLimiter
	PublicPerMin  int
}

// NewRouter builds the HTTP routing tree. Admin routes sit behind CORS for
// the configured dashboard origins plus bearer auth and the admin role
// check. Public routes answer any origin and are rate limited per IP.
// Health endpoints bypass both chains.
func NewRouter(cfg RouterConfig, h Handlers) http.Handler {
	adminMux := http.NewServeMux()
	adminMux.HandleFunc("POST /admin/invoices", h.Billing.CreateInvoice)
	adminMux.HandleFunc("GET /admin/invoices/{jobId}/status", h.Billing.InvoiceStatus)
	adminMux.HandleFunc("GET /admin/jobs/{id}", h.Jobs.Get)
	adminMux.HandleFunc("PATCH /admin/jobs/{id}", h.Jobs.Patch)
	adminMux.HandleFunc("GET /admin/quotes", h.Jobs.ListQuotes)
	adminMux.HandleFunc("GET /admin/analytics", h.Analytics.Traffic)
	adminMux.HandleFunc("POST /admin/broadcast", h.Broadcast.Send)
	adminMux.HandleFunc("POST /admin/reports/weekly", h.Report.SendWeekly)
	adminMux.HandleFunc("GET /admin/storage", h.Storage.Usage)

	adminChain := middleware.Chain(
		middleware.CORS(cfg.CORS),
		middleware.Auth(cfg.TokenVerifier),
		middleware.RequireAdmin(cfg.Profiles),
	)

	publicMux := http.NewServeMux()
	publicMux.HandleFunc("GET /availability", h.Availability.Day)
	publicMux.HandleFunc("POST /quotes", h.Jobs.CreateQuote)
	publicMux.HandleFunc("POST /subscribers", h.Broadcast.Subscribe)
	publicMux.HandleFunc("POST /subscribers/unsubscribe", h.Broadcast.Unsubscribe)
	publicMux.HandleFunc("GET /records/search", h.Records.Search)
	publicMux.HandleFunc("GET /records/{id}", h.Records.Get)
	publicMux.HandleFunc("GET /records/{id}/image", h.Records.Image)

	publicChain := middleware.Chain(
		middleware.CORS(config.CORSConfig{
			AllowedOrigins: "*",
			AllowedMethods: "GET,POST,OPTIONS",
			AllowedHeaders: "Content-Type",
		}),
		cfg.RateLimiter.Limit(cfg.PublicPerMin),
	)

	root := http.NewServeMux()
	root.Handle("/admin/", adminChain(adminMux))
	root.Handle("/availability", publicChain(publicMux))
	root.Handle("/quotes", publicChain(publicMux))
	root.Handle("/subscribers", publicChain(publicMux))
	root.Handle("/subscribers/", publicChain(publicMux))
	root.Handle("/records/", publicChain(publicMux))
	root.HandleFunc("GET /health", h.Health.Health)
	root.HandleFunc("GET /health/live", h.Health.Live)
	root.HandleFunc("GET /health/ready", h.Health.Ready)

	outer := middleware.Chain(
		middleware.RequestID(),
		middleware.Logger(cfg.Logger),
		middleware.Recovery(cfg.Logger),
	)

	return outer(root)
}
