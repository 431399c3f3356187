package config

import (
	"context"
	"testing"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/secrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapSecrets map[string]string

func (m mapSecrets) GetSecretOrEnv(ctx context.Context, secretName, envName string) (string, error) {
	if v, ok := m[secretName]; ok {
		return v, nil
	}
	return "", secrets.ErrNotFound
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "database", cfg.DocStore.Mode)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 300, cfg.Redis.TTL)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, "0 */15 * * * *", cfg.Jobs.BudgetReconcileSchedule)
	assert.True(t, cfg.Security.ContentTypeNosniff)
	assert.True(t, cfg.Server.EnableSwagger)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("DOCSTORE_MODE", "http")
	t.Setenv("DOCSTORE_PROJECTID", "abc123")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("REDIS_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http", cfg.DocStore.Mode)
	assert.Equal(t, "abc123", cfg.DocStore.ProjectID)
	assert.Equal(t, "https://abc123.api.sanity.io", cfg.DocStore.BaseURL())
	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	assert.True(t, cfg.Redis.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database: DatabaseConfig{Driver: "sqlite"},
			DocStore: DocStoreConfig{Mode: "database"},
		}
	}
	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Database.Driver = "mssql"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.DocStore.Mode = "http"
	assert.Error(t, cfg.Validate(), "http mode needs a project")

	cfg.DocStore.Endpoint = "http://localhost:3333"
	assert.Error(t, cfg.Validate(), "http mode needs a dataset")

	cfg.DocStore.Dataset = "production"
	assert.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.Redis.Enabled = true
	assert.Error(t, cfg.Validate())
}

func TestApplySecrets(t *testing.T) {
	cfg := &Config{}
	applySecrets(context.Background(), cfg, mapSecrets{
		"POSTGRES-MAIN-HOST":        "db.internal",
		"docstore-token":            "sk-token",
		"jwt-secret":                "vault-jwt",
		"admin-api-key":             "vault-key",
		"storage-connection-string": "UseDevelopmentStorage=true",
	})

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "sk-token", cfg.DocStore.Token)
	assert.Equal(t, "vault-jwt", cfg.Auth.JWTSecret)
	assert.Equal(t, "vault-key", cfg.ApiKey.Value)
	assert.Equal(t, "UseDevelopmentStorage=true", cfg.Storage.CloudConnectionString)
	assert.Empty(t, cfg.Redis.Password)
}
