package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/secrets"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	DocStore  DocStoreConfig
	Redis     RedisConfig
	ApiKey    ApiKeyConfig
	Auth      AuthConfig
	Storage   StorageConfig
	Secrets   SecretsConfig
	Logging   LoggingConfig
	Server    ServerConfig
	CORS      CORSConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
	Jobs      JobsConfig
	Metrics   MetricsConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite"
	Driver          string
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

// DocStoreConfig selects and configures the document store backend
type DocStoreConfig struct {
	// Mode is "database" (documents table in the main database) or "http" (hosted content platform)
	Mode string
	// ProjectID and Dataset identify the hosted dataset
	ProjectID string
	Dataset   string
	// APIVersion is the dated API version, e.g. 2024-01-01
	APIVersion string
	// Endpoint overrides https://<projectId>.api.sanity.io
	Endpoint string
	// Token is the bearer token used for mutations (from DOCSTORE-TOKEN secret)
	Token string
	// RequestTimeout in seconds
	RequestTimeout int
}

// RedisConfig configures the snapshot cache. The cache is skipped when Enabled is false.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	// TTL in seconds for cached snapshots
	TTL int
}

type ApiKeyConfig struct {
	Value string // admin-api-key secret or ADMIN_API_KEY
}

// AuthConfig holds bearer token validation settings
type AuthConfig struct {
	JWTSecret string
	Issuer    string
	Audience  string
}

type StorageConfig struct {
	Mode                  string
	LocalBasePath         string
	CloudConnectionString string
	CloudContainer        string
}

type SecretsConfig struct {
	// Source determines where secrets are loaded from: "environment", "vault", or "auto"
	// "auto" uses environment in development, vault in staging/production
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
	EnableSwagger  bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	// AllowedOrigins is a list of allowed origins for CORS requests
	// Use "*" to allow all origins (not recommended for production)
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	// MaxAge is the max age (in seconds) for preflight cache
	MaxAge int
}

// JobsConfig holds cron schedules for background jobs (6-field, seconds first)
type JobsConfig struct {
	Enabled                 bool
	BudgetReconcileSchedule string
	FinanceReportSchedule   string
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	// EnableHSTS enables HTTP Strict Transport Security header
	EnableHSTS bool
	// HSTSMaxAge is the max age for HSTS in seconds (default: 31536000 = 1 year)
	HSTSMaxAge int
	// HSTSIncludeSubdomains includes subdomains in HSTS
	HSTSIncludeSubdomains bool
	// HSTSPreload enables HSTS preload
	HSTSPreload bool
	// ContentSecurityPolicy sets the Content-Security-Policy header
	ContentSecurityPolicy string
	// FrameOptions sets the X-Frame-Options header (DENY, SAMEORIGIN, or empty to disable)
	FrameOptions string
	// ContentTypeNosniff enables X-Content-Type-Options: nosniff
	ContentTypeNosniff bool
	// XSSProtection sets the X-XSS-Protection header
	XSSProtection string
	// ReferrerPolicy sets the Referrer-Policy header
	ReferrerPolicy string
	// PermissionsPolicy sets the Permissions-Policy header
	PermissionsPolicy string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// Enabled enables rate limiting
	Enabled bool
	// RequestsPerMinute is the default rate limit for unauthenticated requests (per IP)
	RequestsPerMinute int
	// RequestsPerMinuteAuth is the rate limit for authenticated requests (per user)
	RequestsPerMinuteAuth int
	// WhitelistIPs is a list of IPs that bypass rate limiting
	WhitelistIPs []string
	// WhitelistPaths is a list of paths that bypass rate limiting (e.g., /health)
	WhitelistPaths []string
}

// ConnectionString builds PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// RequestTimeoutDuration returns the document store request timeout as duration
func (d *DocStoreConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(d.RequestTimeout) * time.Second
}

// BaseURL returns the hosted platform endpoint
func (d *DocStoreConfig) BaseURL() string {
	if d.Endpoint != "" {
		return strings.TrimRight(d.Endpoint, "/")
	}
	return fmt.Sprintf("https://%s.api.sanity.io", d.ProjectID)
}

// TTLDuration returns the cache TTL as duration
func (r *RedisConfig) TTLDuration() time.Duration {
	return time.Duration(r.TTL) * time.Second
}

// Load loads configuration from file and environment variables
// This is a basic load that doesn't fetch secrets from vault
// Use LoadWithSecrets for full secret resolution
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.ApiKey.Value == "" {
		cfg.ApiKey.Value = v.GetString("ADMIN_API_KEY")
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = v.GetString("JWT_SECRET")
	}
	if cfg.DocStore.Token == "" {
		cfg.DocStore.Token = v.GetString("DOCSTORE_TOKEN")
	}
	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}

	return &cfg, nil
}

// Validate checks the combinations that cannot work at runtime
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	switch c.DocStore.Mode {
	case "database":
	case "http":
		if c.DocStore.ProjectID == "" && c.DocStore.Endpoint == "" {
			return fmt.Errorf("docStore.projectId or docStore.endpoint is required in http mode")
		}
		if c.DocStore.Dataset == "" {
			return fmt.Errorf("docStore.dataset is required in http mode")
		}
	default:
		return fmt.Errorf("unsupported document store mode: %s", c.DocStore.Mode)
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when redis is enabled")
	}
	return nil
}

// LoadWithSecrets loads configuration and overlays secrets from secrets.source. "auto" reads
// Azure Key Vault in staging and production and the environment elsewhere. Setting
// USE_AZURE_KEY_VAULT=true forces the vault in any environment.
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	source := secrets.ResolveSource(secrets.SecretSource(cfg.Secrets.Source), cfg.App.Environment)
	if strings.EqualFold(os.Getenv("USE_AZURE_KEY_VAULT"), "true") {
		source = secrets.SourceVault
	}
	if source != secrets.SourceVault {
		logger.Info("Using environment variables for secrets", zap.String("environment", cfg.App.Environment))
		return cfg, nil
	}
	if cfg.Secrets.KeyVaultName == "" {
		return nil, fmt.Errorf("AZURE_KEY_VAULT_NAME is required to read secrets from Key Vault")
	}

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider: %w", err)
	}

	applied := applySecrets(ctx, cfg, provider)
	logger.Info("Secrets loaded from Key Vault",
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
		zap.Int("applied", applied),
	)
	return cfg, nil
}

// secretSource is the part of the secrets provider LoadWithSecrets needs
type secretSource interface {
	GetSecretOrEnv(ctx context.Context, secretName, envName string) (string, error)
}

// secretBinding maps a Key Vault secret and its environment override onto a config field
type secretBinding struct {
	secret string
	env    string
	target func(*Config) *string
}

var secretBindings = []secretBinding{
	{"POSTGRES-MAIN-HOST", "DATABASE_HOST", func(c *Config) *string { return &c.Database.Host }},
	{"POSTGRES-MAIN-USER", "DATABASE_USER", func(c *Config) *string { return &c.Database.User }},
	{"POSTGRES-MAIN-PASSWORD", "DATABASE_PASSWORD", func(c *Config) *string { return &c.Database.Password }},
	{"docstore-token", "DOCSTORE_TOKEN", func(c *Config) *string { return &c.DocStore.Token }},
	{"redis-password", "REDIS_PASSWORD", func(c *Config) *string { return &c.Redis.Password }},
	{"admin-api-key", "ADMIN_API_KEY", func(c *Config) *string { return &c.ApiKey.Value }},
	{"jwt-secret", "JWT_SECRET", func(c *Config) *string { return &c.Auth.JWTSecret }},
	{"storage-connection-string", "STORAGE_CLOUDCONNECTIONSTRING", func(c *Config) *string { return &c.Storage.CloudConnectionString }},
}

// applySecrets overwrites every bound field whose secret resolves to a non-empty value and
// returns how many were set. Missing secrets keep the loaded value.
func applySecrets(ctx context.Context, cfg *Config, provider secretSource) int {
	applied := 0
	for _, b := range secretBindings {
		value, err := provider.GetSecretOrEnv(ctx, b.secret, b.env)
		if err != nil || value == "" {
			continue
		}
		*b.target(cfg) = value
		applied++
	}
	// Azure PostgreSQL requires sslmode=require
	if sslMode := os.Getenv("DATABASE_SSLMODE"); sslMode != "" {
		cfg.Database.SSLMode = sslMode
	}
	return applied
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "VDG Dashboard API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "vdg")
	v.SetDefault("database.user", "vdg_user")
	v.SetDefault("database.password", "vdg_password")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.sqlitePath", "vdg.db")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)

	v.SetDefault("docStore.mode", "database")
	v.SetDefault("docStore.projectId", "")
	v.SetDefault("docStore.endpoint", "")
	v.SetDefault("docStore.dataset", "production")
	v.SetDefault("docStore.apiVersion", "2024-01-01")
	v.SetDefault("docStore.requestTimeout", 15)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 300)

	v.SetDefault("auth.issuer", "vdg-dashboard")
	v.SetDefault("auth.audience", "vdg-api")

	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300) // 5 minutes

	v.SetDefault("storage.mode", "local")
	v.SetDefault("storage.localBasePath", "./storage")
	v.SetDefault("storage.cloudContainer", "reports")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.requestTimeout", 60)
	v.SetDefault("server.enableSwagger", true)

	// CORS defaults - restrictive by default
	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Location", "X-Request-ID", "Content-Disposition"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300)

	v.SetDefault("security.enableHSTS", false) // enable in production with HTTPS
	v.SetDefault("security.hstsMaxAge", 31536000)
	v.SetDefault("security.hstsIncludeSubdomains", true)
	v.SetDefault("security.hstsPreload", false)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.xssProtection", "1; mode=block")
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")
	v.SetDefault("security.permissionsPolicy", "geolocation=(), microphone=(), camera=()")

	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 60)
	v.SetDefault("rateLimit.requestsPerMinuteAuth", 120)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/db", "/health/ready", "/metrics"})

	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.budgetReconcileSchedule", "0 */15 * * * *")
	v.SetDefault("jobs.financeReportSchedule", "0 0 6 1 * *") // 06:00 on the 1st of every month

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}
