package testutil

import (
	"context"
	"testing"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/docstore"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a private in-memory sqlite database with the documents table migrated
func SetupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open test database")

	// every new connection to :memory: is a new database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, docstore.NewGormStore(db).AutoMigrate())
	return db
}

// SetupTestStore returns a document store backed by SetupTestDB
func SetupTestStore(t *testing.T) *docstore.GormStore {
	return docstore.NewGormStore(SetupTestDB(t))
}

// CreateDocument inserts a raw document and returns it with system fields filled in
func CreateDocument(t *testing.T, store docstore.Store, doc docstore.Document) docstore.Document {
	created, err := store.Create(context.Background(), doc)
	require.NoError(t, err)
	return created
}
