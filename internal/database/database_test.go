package database_test

import (
	"path/filepath"
	"testing"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/config"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatabase_SQLite(t *testing.T) {
	db, err := database.NewDatabase(&config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "vdg.db"),
	})
	require.NoError(t, err)

	require.NoError(t, database.HealthCheck(db))
	stats, err := database.HealthCheckWithStats(db)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MaxOpenConnections)

	require.NoError(t, database.Close(db))
	assert.Error(t, database.HealthCheck(db))
}

func TestNewDatabase_UnknownDriver(t *testing.T) {
	_, err := database.NewDatabase(&config.DatabaseConfig{Driver: "mssql"})
	assert.ErrorContains(t, err, "unsupported database driver")
}
