package docstore

import (
	"context"
	"fmt"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/config"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Store is the document-store client shared by every repository. It is constructed once at
// process start and passed explicitly to whatever needs it.
type Store interface {
	// Fetch returns the documents matching the query
	Fetch(ctx context.Context, q Query) ([]Document, error)
	// Get returns one document or ErrNotFound
	Get(ctx context.Context, id string) (Document, error)
	// Create inserts a document; the store assigns identity and timestamps when absent
	Create(ctx context.Context, doc Document) (Document, error)
	// Commit applies all operations of a patch atomically and returns the resulting document
	Commit(ctx context.Context, patch *Patch) (Document, error)
	// Delete removes a document; references to it are left dangling
	Delete(ctx context.Context, id string) error
}

// Store modes
const (
	ModeDatabase = "database"
	ModeHTTP     = "http"
)

// NewStore builds the configured backend. db is only used in database mode.
func NewStore(cfg *config.DocStoreConfig, db *gorm.DB, logger *zap.Logger) (Store, error) {
	switch cfg.Mode {
	case ModeDatabase, "":
		if db == nil {
			return nil, fmt.Errorf("database connection required for %s document store", ModeDatabase)
		}
		return NewGormStore(db), nil
	case ModeHTTP:
		return NewHTTPStore(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported document store mode: %s", cfg.Mode)
	}
}
