package secrets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingFetcher struct {
	values map[string]string
	calls  int
}

func (f *countingFetcher) Fetch(ctx context.Context, name string) (string, error) {
	f.calls++
	v, ok := f.values[name]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func TestResolveSource(t *testing.T) {
	assert.Equal(t, SourceEnvironment, ResolveSource(SourceAuto, "development"))
	assert.Equal(t, SourceEnvironment, ResolveSource("", ""))
	assert.Equal(t, SourceVault, ResolveSource(SourceAuto, "production"))
	assert.Equal(t, SourceVault, ResolveSource(SourceAuto, "staging"))
	assert.Equal(t, SourceEnvironment, ResolveSource(SourceEnvironment, "production"))
}

func TestNewProvider_Environment(t *testing.T) {
	t.Setenv("VDG_TEST_SECRET", "from-env")

	p, err := NewProvider(&ProviderConfig{Source: SourceAuto, Environment: "development"}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, p.IsVaultEnabled())

	v, err := p.GetSecret(context.Background(), "VDG_TEST_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "from-env", v)

	_, err = p.GetSecret(context.Background(), "VDG_TEST_MISSING")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "fallback", p.GetSecretWithDefault(context.Background(), "VDG_TEST_MISSING", "fallback"))
}

func TestNewProvider_VaultRequiresName(t *testing.T) {
	_, err := NewProvider(&ProviderConfig{Source: SourceVault}, zap.NewNop())
	assert.Error(t, err)
}

func TestProvider_GetSecretOrEnv(t *testing.T) {
	fetcher := &countingFetcher{values: map[string]string{"jwt-secret": "vaulted"}}
	p := NewProviderWithFetcher(SourceVault, fetcher, zap.NewNop())

	v, err := p.GetSecretOrEnv(context.Background(), "jwt-secret", "VDG_TEST_JWT")
	require.NoError(t, err)
	assert.Equal(t, "vaulted", v)

	t.Setenv("VDG_TEST_JWT", "override")
	v, err = p.GetSecretOrEnv(context.Background(), "jwt-secret", "VDG_TEST_JWT")
	require.NoError(t, err)
	assert.Equal(t, "override", v)
	assert.Equal(t, 1, fetcher.calls)
}

func TestCachingFetcher(t *testing.T) {
	inner := &countingFetcher{values: map[string]string{"a": "1"}}
	c := NewCachingFetcher(inner, time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		v, err := c.Fetch(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "1", v)
	}
	assert.Equal(t, 1, inner.calls)

	now = now.Add(2 * time.Minute)
	_, err := c.Fetch(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)

	c.Clear()
	_, err = c.Fetch(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 3, inner.calls)

	// failures are not cached
	_, err = c.Fetch(ctx, "b")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = c.Fetch(ctx, "b")
	assert.Error(t, err)
	assert.Equal(t, 5, inner.calls)
}
