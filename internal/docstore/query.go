package docstore

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Query selects documents by type, identity and top-level field equality.
// Where values match either a plain field value or the _ref of a reference field.
type Query struct {
	Type    string
	IDs     []string
	Where   map[string]any
	OrderBy string // field name, "-" prefix for descending
	Limit   int
}

// Validate checks that every field named by the query is a plain identifier
func (q Query) Validate() error {
	for field := range q.Where {
		if !fieldPattern.MatchString(field) && field != FieldID {
			return fmt.Errorf("docstore: invalid where field %q", field)
		}
	}
	if q.OrderBy != "" {
		field := strings.TrimPrefix(q.OrderBy, "-")
		if !fieldPattern.MatchString(field) && !isSystemField(field) {
			return fmt.Errorf("docstore: invalid order field %q", q.OrderBy)
		}
	}
	return nil
}

// Matches reports whether a document satisfies the query filters
func (q Query) Matches(doc Document) bool {
	if q.Type != "" && doc.Type() != q.Type {
		return false
	}
	if len(q.IDs) > 0 {
		found := false
		for _, id := range q.IDs {
			if doc.ID() == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for field, want := range q.Where {
		if !valueEquals(doc[field], want) {
			return false
		}
	}
	return true
}

func valueEquals(got, want any) bool {
	switch w := want.(type) {
	case string:
		if s, ok := got.(string); ok {
			return s == w
		}
		return RefID(got) == w && w != ""
	case bool:
		b, ok := got.(bool)
		return ok && b == w
	case nil:
		return got == nil
	}
	if wf, ok := toFloat(want); ok {
		gf, ok := toFloat(got)
		return ok && gf == wf
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	return 0, false
}

// Apply filters, orders and limits an in-memory document set
func (q Query) Apply(docs []Document) []Document {
	out := make([]Document, 0, len(docs))
	for _, doc := range docs {
		if q.Matches(doc) {
			out = append(out, doc)
		}
	}
	SortDocuments(out, q.OrderBy)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// SortDocuments orders documents by a field; "-field" sorts descending. Documents missing the
// field sort last. Ties keep their existing order.
func SortDocuments(docs []Document, orderBy string) {
	if orderBy == "" {
		return
	}
	desc := strings.HasPrefix(orderBy, "-")
	field := strings.TrimPrefix(orderBy, "-")
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i][field], docs[j][field]
		if a == nil || b == nil {
			return a != nil
		}
		c := compareValues(a, b)
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compareValues(a, b any) int {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
	}
	as, bs := fmt.Sprint(a), fmt.Sprint(b)
	if at, err := time.Parse(time.RFC3339Nano, as); err == nil {
		if bt, err := time.Parse(time.RFC3339Nano, bs); err == nil {
			return at.Compare(bt)
		}
	}
	return strings.Compare(strings.ToLower(as), strings.ToLower(bs))
}

// GROQ renders the query in the hosted platform's query language together with its parameters
func (q Query) GROQ() (string, map[string]any) {
	var filters []string
	params := map[string]any{}

	if q.Type != "" {
		filters = append(filters, "_type == $type")
		params["type"] = q.Type
	}
	if len(q.IDs) > 0 {
		filters = append(filters, "_id in $ids")
		params["ids"] = q.IDs
	}

	fields := make([]string, 0, len(q.Where))
	for field := range q.Where {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for i, field := range fields {
		name := fmt.Sprintf("w%d", i)
		if _, isString := q.Where[field].(string); isString {
			filters = append(filters, fmt.Sprintf("(%s == $%s || %s._ref == $%s)", field, name, field, name))
		} else {
			filters = append(filters, fmt.Sprintf("%s == $%s", field, name))
		}
		params[name] = q.Where[field]
	}

	filter := "true"
	if len(filters) > 0 {
		filter = strings.Join(filters, " && ")
	}
	groq := "*[" + filter + "]"

	if q.OrderBy != "" {
		dir := "asc"
		field := q.OrderBy
		if strings.HasPrefix(field, "-") {
			dir = "desc"
			field = strings.TrimPrefix(field, "-")
		}
		groq += fmt.Sprintf(" | order(%s %s)", field, dir)
	}
	if q.Limit > 0 {
		groq += fmt.Sprintf(" [0...%d]", q.Limit)
	}
	return groq, params
}
