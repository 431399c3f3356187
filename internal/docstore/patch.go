package docstore

import (
	"fmt"
	"regexp"
	"strconv"
)

// OpKind identifies a patch operation
type OpKind string

const (
	OpSet          OpKind = "set"
	OpSetIfMissing OpKind = "setIfMissing"
	OpAppend       OpKind = "append"
	OpUnset        OpKind = "unset"
)

// Operation is a single step of a patch. Operations are applied in the order they were added.
type Operation struct {
	Kind   OpKind
	Fields map[string]any // set, setIfMissing
	Field  string         // append
	Items  []any          // append
	Paths  []string       // unset
}

// Patch is a list of operations against one document, committed atomically by the store.
//
//	docstore.NewPatch(id).
//		SetIfMissing(map[string]any{"additionalCosts": []any{}}).
//		Append("additionalCosts", cost).
//		Set(map[string]any{"totalBudget": total})
type Patch struct {
	id  string
	ops []Operation
}

// NewPatch starts a patch against the document with the given ID
func NewPatch(id string) *Patch {
	return &Patch{id: id}
}

// ID returns the target document ID
func (p *Patch) ID() string {
	return p.id
}

// Operations returns the operations in application order
func (p *Patch) Operations() []Operation {
	return p.ops
}

// Set overwrites the given fields. A key of the form field[_key=="k"] replaces one member of
// an embedded array.
func (p *Patch) Set(fields map[string]any) *Patch {
	p.ops = append(p.ops, Operation{Kind: OpSet, Fields: fields})
	return p
}

// SetIfMissing sets the given fields only where they are absent or null
func (p *Patch) SetIfMissing(fields map[string]any) *Patch {
	p.ops = append(p.ops, Operation{Kind: OpSetIfMissing, Fields: fields})
	return p
}

// Append adds items to the end of an existing array field
func (p *Patch) Append(field string, items ...any) *Patch {
	p.ops = append(p.ops, Operation{Kind: OpAppend, Field: field, Items: items})
	return p
}

// Unset removes fields, or single array members addressed as field[_key=="k"]
func (p *Patch) Unset(paths ...string) *Patch {
	p.ops = append(p.ops, Operation{Kind: OpUnset, Paths: paths})
	return p
}

// KeyPath addresses the member of an embedded array with the given _key. The key is
// written as a quoted string literal, so quotes and backslashes in it survive parsePath.
func KeyPath(field, key string) string {
	return field + "[_key==" + strconv.Quote(key) + "]"
}

var (
	fieldPattern   = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)
	keyPathPattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_]*)\[_key\s*==\s*("(?:[^"\\]|\\.)+")\]$`)
)

// parsePath splits a patch path into its field and optional member key
func parsePath(path string) (field, key string, err error) {
	if fieldPattern.MatchString(path) {
		return path, "", nil
	}
	if m := keyPathPattern.FindStringSubmatch(path); m != nil {
		unquoted, uerr := strconv.Unquote(m[2])
		if uerr != nil || unquoted == "" {
			return "", "", fmt.Errorf("%w: invalid member key in %q", ErrInvalidPatch, path)
		}
		return m[1], unquoted, nil
	}
	return "", "", fmt.Errorf("%w: unsupported path %q", ErrInvalidPatch, path)
}

func isSystemField(field string) bool {
	switch field {
	case FieldID, FieldType, FieldCreatedAt, FieldUpdatedAt:
		return true
	}
	return false
}

// Apply runs the patch against a copy of doc and returns the result. doc is not modified.
func (p *Patch) Apply(doc Document) (Document, error) {
	out := doc.Clone()
	if out == nil {
		out = Document{}
	}
	for _, op := range p.ops {
		var err error
		switch op.Kind {
		case OpSet:
			err = applySet(out, op.Fields, false)
		case OpSetIfMissing:
			err = applySet(out, op.Fields, true)
		case OpAppend:
			err = applyAppend(out, op.Field, op.Items)
		case OpUnset:
			err = applyUnset(out, op.Paths)
		default:
			err = fmt.Errorf("%w: unknown operation %q", ErrInvalidPatch, op.Kind)
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func applySet(doc Document, fields map[string]any, onlyMissing bool) error {
	for path, value := range fields {
		field, key, err := parsePath(path)
		if err != nil {
			return err
		}
		if isSystemField(field) {
			return fmt.Errorf("%w: cannot set system field %s", ErrInvalidPatch, field)
		}
		norm, err := normalize(value)
		if err != nil {
			return fmt.Errorf("%w: field %s: %v", ErrInvalidPatch, field, err)
		}
		if arr, ok := norm.([]any); ok {
			ensureKeys(arr)
		}

		if key == "" {
			if onlyMissing && doc[field] != nil {
				continue
			}
			doc[field] = norm
			continue
		}

		arr, _ := doc[field].([]any)
		idx := indexOfKey(arr, key)
		if idx < 0 {
			// setting a member that is not there is a no-op, like the hosted platform
			continue
		}
		if onlyMissing {
			continue
		}
		if obj, ok := norm.(map[string]any); ok {
			obj[FieldKey] = key
		}
		arr[idx] = norm
	}
	return nil
}

func applyAppend(doc Document, field string, items []any) error {
	if !fieldPattern.MatchString(field) {
		return fmt.Errorf("%w: invalid field %q", ErrInvalidPatch, field)
	}
	current, exists := doc[field]
	if !exists || current == nil {
		return fmt.Errorf("%w: append to missing field %s", ErrInvalidPatch, field)
	}
	arr, ok := current.([]any)
	if !ok {
		return fmt.Errorf("%w: field %s is not an array", ErrInvalidPatch, field)
	}
	for _, item := range items {
		norm, err := normalize(item)
		if err != nil {
			return fmt.Errorf("%w: field %s: %v", ErrInvalidPatch, field, err)
		}
		arr = append(arr, norm)
	}
	ensureKeys(arr)
	doc[field] = arr
	return nil
}

func applyUnset(doc Document, paths []string) error {
	for _, path := range paths {
		field, key, err := parsePath(path)
		if err != nil {
			return err
		}
		if isSystemField(field) {
			return fmt.Errorf("%w: cannot unset system field %s", ErrInvalidPatch, field)
		}
		if key == "" {
			delete(doc, field)
			continue
		}
		arr, _ := doc[field].([]any)
		idx := indexOfKey(arr, key)
		if idx < 0 {
			continue
		}
		doc[field] = append(arr[:idx:idx], arr[idx+1:]...)
	}
	return nil
}

func indexOfKey(arr []any, key string) int {
	for i, item := range arr {
		if obj, ok := item.(map[string]any); ok {
			if k, _ := obj[FieldKey].(string); k == key {
				return i
			}
		}
	}
	return -1
}
