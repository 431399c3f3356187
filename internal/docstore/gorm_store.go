package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// documentRecord is the row shape of the documents table
type documentRecord struct {
	ID        string         `gorm:"column:id;type:varchar(64);primaryKey"`
	Type      string         `gorm:"column:type;type:varchar(64);not null;index"`
	Body      datatypes.JSON `gorm:"column:body;not null"`
	CreatedAt time.Time      `gorm:"column:created_at;not null"`
	UpdatedAt time.Time      `gorm:"column:updated_at;not null"`
}

func (documentRecord) TableName() string {
	return "documents"
}

// GormStore keeps every document as one JSON row. Type and identity filters run in SQL;
// field equality and ordering run over the decoded bodies so that postgres and sqlite behave
// the same.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStore creates a store over an open gorm connection
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// AutoMigrate creates the documents table. Production databases are migrated with goose;
// this is used by tests and the sqlite driver.
func (s *GormStore) AutoMigrate() error {
	return s.db.AutoMigrate(&documentRecord{})
}

// Fetch returns the documents matching the query
func (s *GormStore) Fetch(ctx context.Context, q Query) ([]Document, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Model(&documentRecord{})
	if q.Type != "" {
		query = query.Where("type = ?", q.Type)
	}
	if len(q.IDs) > 0 {
		query = query.Where("id IN ?", q.IDs)
	}

	var records []documentRecord
	if err := query.Order("created_at ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("docstore: fetch %s: %w", q.Type, err)
	}

	docs := make([]Document, 0, len(records))
	for i := range records {
		doc, err := records[i].document()
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return q.Apply(docs), nil
}

// Get returns one document or ErrNotFound
func (s *GormStore) Get(ctx context.Context, id string) (Document, error) {
	var record documentRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("docstore: get %s: %w", id, err)
	}
	return record.document()
}

// Create inserts a document, assigning _id when absent and the system timestamps
func (s *GormStore) Create(ctx context.Context, doc Document) (Document, error) {
	if doc.Type() == "" {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidDocument, FieldType)
	}

	out := doc.Clone()
	if out.ID() == "" {
		out[FieldID] = NewID()
	}
	for field, value := range out {
		if arr, ok := value.([]any); ok {
			ensureKeys(arr)
			out[field] = arr
		}
	}

	now := s.now()
	stamp(out, now, now)

	record, err := newRecord(out, now, now)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, fmt.Errorf("docstore: create %s: %w", out.Type(), err)
	}
	return out, nil
}

// Commit applies the patch inside one database transaction. The row is read with
// SELECT ... FOR UPDATE so concurrent patches to the same document apply one after the other.
func (s *GormStore) Commit(ctx context.Context, patch *Patch) (Document, error) {
	var result Document
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record documentRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", patch.ID()).
			First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		current, err := record.document()
		if err != nil {
			return err
		}
		next, err := patch.Apply(current)
		if err != nil {
			return err
		}

		now := s.now()
		if _, ok := next[FieldCreatedAt].(string); !ok {
			next[FieldCreatedAt] = record.CreatedAt.UTC().Format(time.RFC3339Nano)
		}
		next[FieldUpdatedAt] = now.Format(time.RFC3339Nano)
		updated, err := newRecord(next, record.CreatedAt, now)
		if err != nil {
			return err
		}
		if err := tx.Model(&documentRecord{}).
			Where("id = ?", record.ID).
			Updates(map[string]any{"body": updated.Body, "updated_at": now}).Error; err != nil {
			return err
		}
		result = next
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidPatch) {
			return nil, err
		}
		return nil, fmt.Errorf("docstore: commit %s: %w", patch.ID(), err)
	}
	return result, nil
}

// Delete removes a document. Deleting a missing document returns ErrNotFound.
func (s *GormStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&documentRecord{})
	if res.Error != nil {
		return fmt.Errorf("docstore: delete %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func stamp(doc Document, createdAt, updatedAt time.Time) {
	doc[FieldCreatedAt] = createdAt.UTC().Format(time.RFC3339Nano)
	doc[FieldUpdatedAt] = updatedAt.UTC().Format(time.RFC3339Nano)
}

func newRecord(doc Document, createdAt, updatedAt time.Time) (*documentRecord, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return &documentRecord{
		ID:        doc.ID(),
		Type:      doc.Type(),
		Body:      datatypes.JSON(body),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

func (r *documentRecord) document() (Document, error) {
	var doc Document
	if err := json.Unmarshal(r.Body, &doc); err != nil {
		return nil, fmt.Errorf("docstore: decode %s: %w", r.ID, err)
	}
	return doc, nil
}
