package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/docstore"
)

// ErrNotFound is returned when a document does not exist or has a different type
var ErrNotFound = docstore.ErrNotFound

// toFields encodes an entity into the user fields of a document, dropping system fields
func toFields(v any) (docstore.Document, error) {
	doc, err := docstore.Encode(v)
	if err != nil {
		return nil, err
	}
	delete(doc, docstore.FieldID)
	delete(doc, docstore.FieldType)
	delete(doc, docstore.FieldCreatedAt)
	delete(doc, docstore.FieldUpdatedAt)
	return doc, nil
}

// getTyped loads one document and checks its type
func getTyped[T any](ctx context.Context, store docstore.Store, docType, id string) (*T, error) {
	doc, err := store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Type() != docType {
		return nil, ErrNotFound
	}
	var out T
	if err := docstore.Decode(doc, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// fetchTyped runs a query and decodes every result
func fetchTyped[T any](ctx context.Context, store docstore.Store, q docstore.Query) ([]T, error) {
	docs, err := store.Fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var item T
		if err := docstore.Decode(doc, &item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// createTyped stores an entity and decodes the stored document back into it, picking up the
// assigned identity and timestamps
func createTyped[T any](ctx context.Context, store docstore.Store, docType string, entity *T) error {
	doc, err := toFields(entity)
	if err != nil {
		return err
	}
	doc[docstore.FieldType] = docType
	created, err := store.Create(ctx, doc)
	if err != nil {
		return err
	}
	return docstore.Decode(created, entity)
}

// commitTyped commits a patch and decodes the result
func commitTyped[T any](ctx context.Context, store docstore.Store, patch *docstore.Patch) (*T, error) {
	doc, err := store.Commit(ctx, patch)
	if err != nil {
		return nil, err
	}
	var out T
	if err := docstore.Decode(doc, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// deleteTyped removes a document after checking its type
func deleteTyped(ctx context.Context, store docstore.Store, docType, id string) error {
	doc, err := store.Get(ctx, id)
	if err != nil {
		return err
	}
	if doc.Type() != docType {
		return ErrNotFound
	}
	if err := store.Delete(ctx, id); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s: %w", docType, err)
	}
	return nil
}

// idSet collects distinct non-empty IDs in first-seen order
type idSet struct {
	seen map[string]struct{}
	ids  []string
}

func (s *idSet) add(id string) {
	if id == "" {
		return
	}
	if s.seen == nil {
		s.seen = map[string]struct{}{}
	}
	if _, ok := s.seen[id]; ok {
		return
	}
	s.seen[id] = struct{}{}
	s.ids = append(s.ids, id)
}
