// Package docstore is the client contract for the hosted document database the dashboard
// persists into: fetch by query, create, patch (set, setIfMissing, append, unset) and delete.
//
// Two backends implement Store. GormStore keeps documents in a single jsonb table and is used
// for self-hosted deployments and tests. HTTPStore talks to the hosted content platform over
// its query and mutate endpoints.
package docstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// System fields carried by every document.
const (
	FieldID        = "_id"
	FieldType      = "_type"
	FieldCreatedAt = "_createdAt"
	FieldUpdatedAt = "_updatedAt"
	FieldKey       = "_key"
	FieldRef       = "_ref"

	// ReferenceType is the _type value of a reference object.
	ReferenceType = "reference"
)

var (
	// ErrNotFound is returned when a document does not exist
	ErrNotFound = errors.New("document not found")

	// ErrInvalidPatch is returned when a patch cannot be applied to a document
	ErrInvalidPatch = errors.New("invalid patch")

	// ErrInvalidDocument is returned when a document is missing required system fields
	ErrInvalidDocument = errors.New("invalid document")
)

// Document is a schemaless JSON object as stored by the content platform.
type Document map[string]any

// ID returns the document identity
func (d Document) ID() string {
	id, _ := d[FieldID].(string)
	return id
}

// Type returns the document type
func (d Document) Type() string {
	t, _ := d[FieldType].(string)
	return t
}

// Clone returns a deep copy of the document
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return cloneValue(map[string]any(d)).(map[string]any)
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case Document:
		return cloneValue(map[string]any(val))
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return val
	}
}

// Encode converts a typed value into a Document using its JSON representation
func Encode(v any) (Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("docstore: encode: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("docstore: encode: %w", err)
	}
	return doc, nil
}

// Decode converts a Document into a typed value using its JSON representation
func Decode(doc Document, out any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("docstore: decode: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("docstore: decode: %w", err)
	}
	return nil
}

// normalize turns structs and typed slices into plain JSON values so that patches operate
// on the same shapes the store persists.
func normalize(v any) (any, error) {
	switch v.(type) {
	case nil, string, bool, float64:
		return v, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Reference builds a reference object pointing at the given document ID
func Reference(id string) map[string]any {
	return map[string]any{
		FieldType: ReferenceType,
		FieldRef:  id,
	}
}

// RefID extracts the referenced document ID from a field value. It accepts a bare string ID,
// a reference object or an already dereferenced document.
func RefID(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any:
		if ref, ok := val[FieldRef].(string); ok {
			return ref
		}
		if id, ok := val[FieldID].(string); ok {
			return id
		}
	case Document:
		return RefID(map[string]any(val))
	}
	return ""
}

// NewID returns a new document identity
func NewID() string {
	return uuid.NewString()
}

// NewKey returns a short unique key for an embedded array member
func NewKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// ensureKeys assigns a _key to every object member of an array that lacks one
func ensureKeys(items []any) {
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if key, _ := obj[FieldKey].(string); key == "" {
			obj[FieldKey] = NewKey()
		}
	}
}
