package secrets

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"go.uber.org/zap"
)

// DefaultCacheTTL applies when caching is enabled without a TTL
const DefaultCacheTTL = 5 * time.Minute

// VaultClient fetches secrets from Azure Key Vault
type VaultClient struct {
	client   *azsecrets.Client
	vaultURL string
	logger   *zap.Logger
}

// NewVaultClient authenticates with DefaultAzureCredential, which covers environment
// credentials, managed identity and the Azure CLI.
func NewVaultClient(vaultName string, logger *zap.Logger) (*VaultClient, error) {
	if vaultName == "" {
		return nil, fmt.Errorf("vault name is required")
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	vaultURL := fmt.Sprintf("https://%s.vault.azure.net/", vaultName)
	client, err := azsecrets.NewClient(vaultURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Key Vault client: %w", err)
	}

	logger.Info("Azure Key Vault client initialized", zap.String("vault_url", vaultURL))
	return &VaultClient{client: client, vaultURL: vaultURL, logger: logger}, nil
}

// Fetch reads the latest version of a secret
func (v *VaultClient) Fetch(ctx context.Context, name string) (string, error) {
	resp, err := v.client.GetSecret(ctx, name, "", nil)
	if err != nil {
		v.logger.Error("Failed to get secret from Key Vault", zap.String("secret_name", name), zap.Error(err))
		return "", fmt.Errorf("failed to get secret '%s': %w", name, err)
	}
	if resp.Value == nil {
		return "", fmt.Errorf("%w: secret '%s' has no value", ErrNotFound, name)
	}
	return *resp.Value, nil
}

// CachingFetcher memoizes successful fetches for a TTL. It is safe for concurrent use.
type CachingFetcher struct {
	next  Fetcher
	ttl   time.Duration
	now   func() time.Time
	mu    sync.Mutex
	items map[string]cachedSecret
}

type cachedSecret struct {
	value     string
	expiresAt time.Time
}

// NewCachingFetcher wraps next with a TTL cache
func NewCachingFetcher(next Fetcher, ttl time.Duration) *CachingFetcher {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachingFetcher{
		next:  next,
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]cachedSecret),
	}
}

func (c *CachingFetcher) Fetch(ctx context.Context, name string) (string, error) {
	c.mu.Lock()
	cached, ok := c.items[name]
	c.mu.Unlock()
	if ok && c.now().Before(cached.expiresAt) {
		return cached.value, nil
	}

	value, err := c.next.Fetch(ctx, name)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.items[name] = cachedSecret{value: value, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return value, nil
}

// Clear drops every cached secret
func (c *CachingFetcher) Clear() {
	c.mu.Lock()
	c.items = make(map[string]cachedSecret)
	c.mu.Unlock()
}
