package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

// ErrNotFound is returned when a secret is not set in the active source
var ErrNotFound = errors.New("secret not found")

// SecretSource defines where secrets are loaded from
type SecretSource string

const (
	// SourceEnvironment loads secrets from environment variables
	SourceEnvironment SecretSource = "environment"
	// SourceVault loads secrets from Azure Key Vault
	SourceVault SecretSource = "vault"
	// SourceAuto picks vault in staging/production and environment elsewhere
	SourceAuto SecretSource = "auto"
)

// Fetcher reads one secret by name
type Fetcher interface {
	Fetch(ctx context.Context, name string) (string, error)
}

// ProviderConfig holds configuration for the secrets provider
type ProviderConfig struct {
	Source       SecretSource
	VaultName    string
	Environment  string // "development", "staging", "production"
	CacheEnabled bool
	CacheTTL     time.Duration
}

// Provider resolves secrets from the configured source, with environment overrides
type Provider struct {
	source  SecretSource
	fetcher Fetcher
	logger  *zap.Logger
}

// ResolveSource turns SourceAuto into a concrete source for the environment
func ResolveSource(source SecretSource, environment string) SecretSource {
	if source != SourceAuto && source != "" {
		return source
	}
	switch environment {
	case "staging", "production":
		return SourceVault
	default:
		return SourceEnvironment
	}
}

// NewProvider creates a new secrets provider
func NewProvider(cfg *ProviderConfig, logger *zap.Logger) (*Provider, error) {
	source := ResolveSource(cfg.Source, cfg.Environment)

	var fetcher Fetcher
	switch source {
	case SourceEnvironment:
		fetcher = EnvFetcher{}
	case SourceVault:
		vault, err := NewVaultClient(cfg.VaultName, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize vault client: %w", err)
		}
		fetcher = vault
	default:
		return nil, fmt.Errorf("unknown secret source: %s", source)
	}

	if cfg.CacheEnabled && source == SourceVault {
		fetcher = NewCachingFetcher(fetcher, cfg.CacheTTL)
	}

	logger.Info("Secrets provider initialized",
		zap.String("source", string(source)),
		zap.String("environment", cfg.Environment),
		zap.Bool("cache_enabled", cfg.CacheEnabled),
	)
	return NewProviderWithFetcher(source, fetcher, logger), nil
}

// NewProviderWithFetcher builds a provider around an existing fetcher
func NewProviderWithFetcher(source SecretSource, fetcher Fetcher, logger *zap.Logger) *Provider {
	return &Provider{source: source, fetcher: fetcher, logger: logger}
}

// GetSecret retrieves a secret by name from the active source
func (p *Provider) GetSecret(ctx context.Context, name string) (string, error) {
	return p.fetcher.Fetch(ctx, name)
}

// GetSecretOrEnv prefers an explicitly set environment variable, then the active source
func (p *Provider) GetSecretOrEnv(ctx context.Context, secretName, envName string) (string, error) {
	if envValue := os.Getenv(envName); envValue != "" {
		p.logger.Debug("Using environment variable override", zap.String("env_name", envName))
		return envValue, nil
	}
	return p.GetSecret(ctx, secretName)
}

// GetSecretWithDefault retrieves a secret, returning defaultValue when it cannot be read
func (p *Provider) GetSecretWithDefault(ctx context.Context, name, defaultValue string) string {
	value, err := p.GetSecret(ctx, name)
	if err != nil {
		p.logger.Debug("Using default value for secret",
			zap.String("secret_name", name),
			zap.String("source", string(p.source)),
		)
		return defaultValue
	}
	return value
}

// Source returns the current secret source
func (p *Provider) Source() SecretSource {
	return p.source
}

// IsVaultEnabled returns true if secrets are loaded from vault
func (p *Provider) IsVaultEnabled() bool {
	return p.source == SourceVault
}

// EnvFetcher reads secrets from environment variables of the same name
type EnvFetcher struct{}

func (EnvFetcher) Fetch(ctx context.Context, name string) (string, error) {
	value := os.Getenv(name)
	if value == "" {
		return "", fmt.Errorf("%w: environment variable %s", ErrNotFound, name)
	}
	return value, nil
}
