package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Stripe   StripeConfig   `yaml:"stripe"`
	Google   GoogleConfig   `yaml:"google"`
	Mailer   MailerConfig   `yaml:"mailer"`
	Records  RecordsConfig  `yaml:"records"`
	Booking  BookingConfig  `yaml:"booking"`
	Report   ReportConfig   `yaml:"report"`
	Storage  StorageConfig  `yaml:"storage"`
	CORS     CORSConfig     `yaml:"cors"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host                string        `yaml:"host"                  env:"SERVER_HOST"                  env-default:"0.0.0.0"`
	Port                int           `yaml:"port"                  env:"SERVER_PORT"                  env-default:"8080"`
	ReadTimeout         time.Duration `yaml:"read_timeout"          env:"SERVER_READ_TIMEOUT"          env-default:"10s"`
	WriteTimeout        time.Duration `yaml:"write_timeout"         env:"SERVER_WRITE_TIMEOUT"         env-default:"30s"`
	IdleTimeout         time.Duration `yaml:"idle_timeout"          env:"SERVER_IDLE_TIMEOUT"          env-default:"60s"`
	ShutdownTimeout     time.Duration `yaml:"shutdown_timeout"      env:"SERVER_SHUTDOWN_TIMEOUT"      env-default:"10s"`
	PublicRatePerMinute int           `yaml:"public_rate_per_minute" env:"SERVER_PUBLIC_RATE_PER_MINUTE" env-default:"60"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// RedisConfig holds settings for the realtime event bus.
type RedisConfig struct {
	Addr     string `yaml:"addr"     env:"REDIS_ADDR"     env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	Channel  string `yaml:"channel"  env:"REDIS_CHANNEL"  env-default:"jobs.events"`
}

// AuthConfig holds identity-provider token verification settings.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" env:"AUTH_JWT_SECRET" env-required:"true"`
	JWTIssuer string `yaml:"jwt_issuer" env:"AUTH_JWT_ISSUER" env-default:"backoffice-idp"`
}

// StripeConfig holds payment provider credentials.
type StripeConfig struct {
	APIKey  string        `yaml:"api_key"  env:"STRIPE_API_KEY"`
	BaseURL string        `yaml:"base_url" env:"STRIPE_BASE_URL" env-default:"https://api.stripe.com/v1"`
	Timeout time.Duration `yaml:"timeout"  env:"STRIPE_TIMEOUT"  env-default:"15s"`
}

// GoogleConfig holds the service-account credential used for the calendar
// and analytics APIs, plus the resources those APIs are queried against.
type GoogleConfig struct {
	ServiceAccountEmail string `yaml:"service_account_email" env:"GOOGLE_SA_EMAIL"`
	PrivateKeyPEM       string `yaml:"private_key_pem"       env:"GOOGLE_SA_PRIVATE_KEY"`
	CalendarID          string `yaml:"calendar_id"           env:"GOOGLE_CALENDAR_ID"`
	AnalyticsPropertyID string `yaml:"analytics_property_id" env:"GOOGLE_ANALYTICS_PROPERTY_ID"`
	TokenURL            string `yaml:"token_url"             env:"GOOGLE_TOKEN_URL" env-default:"https://oauth2.googleapis.com/token"`
}

// MailerConfig holds email provider settings.
type MailerConfig struct {
	APIKey      string        `yaml:"api_key"      env:"MAILER_API_KEY"`
	BaseURL     string        `yaml:"base_url"     env:"MAILER_BASE_URL" env-default:"https://api.resend.com"`
	FromAddress string        `yaml:"from_address" env:"MAILER_FROM"     env-default:"no-reply@apexlens.example"`
	Timeout     time.Duration `yaml:"timeout"      env:"MAILER_TIMEOUT"  env-default:"10s"`
	// FanoutLimit bounds concurrent sends during a broadcast.
	FanoutLimit int64 `yaml:"fanout_limit" env:"MAILER_FANOUT_LIMIT" env-default:"8"`
}

// RecordsConfig holds property-records provider settings.
type RecordsConfig struct {
	BaseURL string        `yaml:"base_url" env:"RECORDS_BASE_URL" env-default:"https://api.propertyrecords.example/v2"`
	APIKey  string        `yaml:"api_key"  env:"RECORDS_API_KEY"`
	Timeout time.Duration `yaml:"timeout"  env:"RECORDS_TIMEOUT"  env-default:"10s"`
}

// BookingConfig defines the bookable window availability is clipped to.
type BookingConfig struct {
	DayStartHour int    `yaml:"day_start_hour" env:"BOOKING_DAY_START_HOUR" env-default:"9"`
	DayEndHour   int    `yaml:"day_end_hour"   env:"BOOKING_DAY_END_HOUR"   env-default:"18"`
	Timezone     string `yaml:"timezone"       env:"BOOKING_TIMEZONE"       env-default:"America/Chicago"`
}

// ReportConfig holds weekly summary settings.
type ReportConfig struct {
	// Recipients is a comma-separated list of admin addresses.
	Recipients string `yaml:"recipients" env:"REPORT_RECIPIENTS"`
}

// StorageConfig holds the gallery storage quota used by the usage endpoint
// and the client-side watcher.
type StorageConfig struct {
	QuotaBytes int64 `yaml:"quota_bytes" env:"STORAGE_QUOTA_BYTES" env-default:"53687091200"` // 50 GiB
}

// CORSConfig holds CORS settings for the admin routes. Public routes
// always answer with a wildcard origin.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PATCH,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
