package domain

import (
	"encoding/json"
	"fmt"
)

// Ref is a reference to another document. It is either Unresolved (only the target ID is
// known, or the target no longer exists) or Resolved (the target was loaded). References are
// resolved once by the repositories; everything downstream reads the variant, never the raw
// stored shape.
type Ref[T any] struct {
	id    string
	value *T
}

// Unresolved returns a reference that only carries the target ID
func Unresolved[T any](id string) Ref[T] {
	return Ref[T]{id: id}
}

// Resolved returns a reference carrying the loaded target
func Resolved[T any](id string, value *T) Ref[T] {
	if value == nil {
		return Ref[T]{id: id}
	}
	return Ref[T]{id: id, value: value}
}

// ID returns the referenced document ID, empty when the field was not set
func (r Ref[T]) ID() string {
	return r.id
}

// Get returns the target and whether it was resolved
func (r Ref[T]) Get() (*T, bool) {
	return r.value, r.value != nil
}

// IsResolved reports whether the target was loaded
func (r Ref[T]) IsResolved() bool {
	return r.value != nil
}

// IsZero reports whether the reference is empty
func (r Ref[T]) IsZero() bool {
	return r.id == ""
}

// Resolve returns a copy resolved against a lookup table keyed by ID. Missing targets stay
// unresolved.
func (r Ref[T]) Resolve(byID map[string]*T) Ref[T] {
	if r.id == "" {
		return r
	}
	return Resolved(r.id, byID[r.id])
}

// MarshalJSON writes the stored reference shape
func (r Ref[T]) MarshalJSON() ([]byte, error) {
	if r.id == "" {
		return []byte("null"), nil
	}
	return json.Marshal(map[string]string{"_type": "reference", "_ref": r.id})
}

// UnmarshalJSON accepts a bare ID, a reference object or a dereferenced document. The result
// is always unresolved.
func (r *Ref[T]) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*r = Ref[T]{}
	case string:
		*r = Unresolved[T](v)
	case map[string]any:
		if id, ok := v["_ref"].(string); ok {
			*r = Unresolved[T](id)
			return nil
		}
		if id, ok := v["_id"].(string); ok {
			*r = Unresolved[T](id)
			return nil
		}
		*r = Ref[T]{}
	default:
		return fmt.Errorf("unsupported reference value %s", string(data))
	}
	return nil
}
