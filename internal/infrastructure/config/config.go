package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Scheduler SchedulerConfig
	Payment   PaymentConfig
	Telemetry TelemetryConfig
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // minutes
	ConnMaxIdleTime int // minutes
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds token signing settings. RefreshSecret falls back to
// Secret when empty.
type JWTConfig struct {
	Secret                 string
	RefreshSecret          string
	AccessTokenExpiration  time.Duration
	RefreshTokenExpiration time.Duration
	Issuer                 string
	MaxRefreshCount        int
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string

	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// SchedulerConfig holds reservation sweep configuration.
type SchedulerConfig struct {
	Enabled       bool
	SweepInterval time.Duration // How often both sweeps run
	BatchSize     int           // Max reservations handled per sweep pass
	PendingTTL    time.Duration // Unpaid reservations older than this are expired
	StartCutoff   time.Duration // Unpaid reservations this close to start are expired
}

// PaymentConfig holds payment gateway settings.
type PaymentConfig struct {
	GatewayTimeout     time.Duration
	CheckoutSuccessURL string
	CheckoutCancelURL  string
	Stripe             StripeConfig
	PayPay             PayPayConfig
	BankTransfer       BankTransferConfig
}

// StripeConfig holds Stripe API credentials.
type StripeConfig struct {
	Enabled       bool
	APIKey        string
	WebhookSecret string
}

// PayPayConfig holds PayPay merchant API credentials.
type PayPayConfig struct {
	Enabled    bool
	BaseURL    string
	APIKey     string
	APISecret  string
	MerchantID string
}

// BankTransferConfig holds the manual transfer channel settings.
type BankTransferConfig struct {
	Enabled           bool
	AccountHolder     string
	BankName          string
	BranchName        string
	AccountNumber     string
	DeadlineDays      int // Default transfer window length
	LeadTimeBeforeDay int // Days before the event the deadline is pulled to
}

// TelemetryConfig holds OpenTelemetry and profiling configuration.
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string  // OTLP gRPC endpoint, e.g. "localhost:4317"
	SamplingRatio     float64 // 0.0 to 1.0
	ServiceName       string
	Insecure          bool // non-TLS collector connection, development only
	ProfilingEnabled  bool
	PyroscopeAddress  string // e.g. "http://localhost:4040"
}

// Load reads configuration in priority order: FARMEET_-prefixed environment
// variables, then config.toml, then built-in defaults. A missing config file
// is not an error.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("FARMEET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:                 v.GetString("jwt.secret"),
			RefreshSecret:          v.GetString("jwt.refresh_secret"),
			AccessTokenExpiration:  v.GetDuration("jwt.access_token_expiration"),
			RefreshTokenExpiration: v.GetDuration("jwt.refresh_token_expiration"),
			Issuer:                 v.GetString("jwt.issuer"),
			MaxRefreshCount:        v.GetInt("jwt.max_refresh_count"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),

			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
		},
		Scheduler: SchedulerConfig{
			Enabled:       v.GetBool("scheduler.enabled"),
			SweepInterval: v.GetDuration("scheduler.sweep_interval"),
			BatchSize:     v.GetInt("scheduler.batch_size"),
			PendingTTL:    v.GetDuration("scheduler.pending_ttl"),
			StartCutoff:   v.GetDuration("scheduler.start_cutoff"),
		},
		Payment: PaymentConfig{
			GatewayTimeout:     v.GetDuration("payment.gateway_timeout"),
			CheckoutSuccessURL: v.GetString("payment.checkout_success_url"),
			CheckoutCancelURL:  v.GetString("payment.checkout_cancel_url"),
			Stripe: StripeConfig{
				Enabled:       v.GetBool("payment.stripe.enabled"),
				APIKey:        v.GetString("payment.stripe.api_key"),
				WebhookSecret: v.GetString("payment.stripe.webhook_secret"),
			},
			PayPay: PayPayConfig{
				Enabled:    v.GetBool("payment.paypay.enabled"),
				BaseURL:    v.GetString("payment.paypay.base_url"),
				APIKey:     v.GetString("payment.paypay.api_key"),
				APISecret:  v.GetString("payment.paypay.api_secret"),
				MerchantID: v.GetString("payment.paypay.merchant_id"),
			},
			BankTransfer: BankTransferConfig{
				Enabled:           v.GetBool("payment.bank_transfer.enabled"),
				AccountHolder:     v.GetString("payment.bank_transfer.account_holder"),
				BankName:          v.GetString("payment.bank_transfer.bank_name"),
				BranchName:        v.GetString("payment.bank_transfer.branch_name"),
				AccountNumber:     v.GetString("payment.bank_transfer.account_number"),
				DeadlineDays:      v.GetInt("payment.bank_transfer.deadline_days"),
				LeadTimeBeforeDay: v.GetInt("payment.bank_transfer.lead_time_days"),
			},
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			ProfilingEnabled:  v.GetBool("telemetry.profiling_enabled"),
			PyroscopeAddress:  v.GetString("telemetry.pyroscope_address"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultString(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

func defaultInt(field *int, value int) {
	if *field == 0 {
		*field = value
	}
}

func defaultDuration(field *time.Duration, value time.Duration) {
	if *field == 0 {
		*field = value
	}
}

// applyDefaults fills zero-valued fields. CORS origins deliberately get no
// default; an empty list blocks all cross-origin requests until configured.
func applyDefaults(cfg *Config) {
	defaultString(&cfg.App.Name, "farmeet-backend")
	defaultString(&cfg.App.Env, "development")
	defaultString(&cfg.App.Port, "8080")

	defaultString(&cfg.Database.Host, "localhost")
	defaultInt(&cfg.Database.Port, 5432)
	defaultString(&cfg.Database.User, "postgres")
	defaultString(&cfg.Database.DBName, "farmeet")
	defaultString(&cfg.Database.SSLMode, "disable")
	defaultInt(&cfg.Database.MaxOpenConns, 25)
	defaultInt(&cfg.Database.MaxIdleConns, 5)
	defaultInt(&cfg.Database.ConnMaxLifetime, 60)
	defaultInt(&cfg.Database.ConnMaxIdleTime, 30)

	defaultString(&cfg.Redis.Host, "localhost")
	defaultInt(&cfg.Redis.Port, 6379)

	defaultDuration(&cfg.JWT.AccessTokenExpiration, 15*time.Minute)
	defaultDuration(&cfg.JWT.RefreshTokenExpiration, 7*24*time.Hour)
	defaultInt(&cfg.JWT.MaxRefreshCount, 10)
	defaultString(&cfg.JWT.Issuer, "farmeet-backend")

	defaultString(&cfg.Log.Level, "info")
	defaultString(&cfg.Log.Format, "console")
	defaultString(&cfg.Log.Output, "stdout")

	defaultDuration(&cfg.HTTP.ReadTimeout, 15*time.Second)
	defaultDuration(&cfg.HTTP.WriteTimeout, 15*time.Second)
	defaultDuration(&cfg.HTTP.IdleTimeout, 60*time.Second)
	defaultInt(&cfg.HTTP.MaxHeaderBytes, 1<<20)
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	defaultInt(&cfg.HTTP.RateLimitRequests, 100)
	defaultDuration(&cfg.HTTP.RateLimitWindow, time.Minute)

	defaultDuration(&cfg.Scheduler.SweepInterval, time.Minute)
	defaultInt(&cfg.Scheduler.BatchSize, 200)
	defaultDuration(&cfg.Scheduler.PendingTTL, 48*time.Hour)
	defaultDuration(&cfg.Scheduler.StartCutoff, 3*time.Hour)

	defaultDuration(&cfg.Payment.GatewayTimeout, 10*time.Second)
	defaultString(&cfg.Payment.PayPay.BaseURL, "https://stg-api.paypay.ne.jp")
	defaultInt(&cfg.Payment.BankTransfer.DeadlineDays, 7)
	defaultInt(&cfg.Payment.BankTransfer.LeadTimeBeforeDay, 3)

	defaultString(&cfg.Telemetry.CollectorEndpoint, "localhost:4317")
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	defaultString(&cfg.Telemetry.ServiceName, "farmeet-backend")
	defaultString(&cfg.Telemetry.PyroscopeAddress, "http://localhost:4040")
}

func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Payment.Stripe.Enabled {
			if c.Payment.Stripe.APIKey == "" {
				return fmt.Errorf("payment.stripe.api_key is required when the card channel is enabled")
			}
			if c.Payment.Stripe.WebhookSecret == "" {
				return fmt.Errorf("payment.stripe.webhook_secret is required when the card channel is enabled")
			}
			if strings.HasPrefix(c.Payment.Stripe.APIKey, "sk_test_") {
				return fmt.Errorf("payment.stripe.api_key must not be a test key in production")
			}
		}
		if c.Payment.PayPay.Enabled {
			if c.Payment.PayPay.APIKey == "" || c.Payment.PayPay.APISecret == "" {
				return fmt.Errorf("payment.paypay credentials are required when the paypay channel is enabled")
			}
		}
	}

	if c.Scheduler.Enabled && c.Scheduler.SweepInterval < time.Second {
		return fmt.Errorf("scheduler.sweep_interval must be at least 1s, got %s", c.Scheduler.SweepInterval)
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the PostgreSQL connection URL with escaped credentials.
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the host:port address for the Redis server.
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
