package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/config"
	"go.uber.org/zap"
)

// HTTPStore talks to the hosted content platform. Reads go through the query endpoint, writes
// through the mutate endpoint. All mutations of one call are sent in a single request, which
// the platform applies as one transaction.
type HTTPStore struct {
	httpClient *http.Client
	baseURL    string
	apiVersion string
	dataset    string
	token      string
	logger     *zap.Logger
	now        func() time.Time
}

// NewHTTPStore creates a client for the configured project and dataset
func NewHTTPStore(cfg *config.DocStoreConfig, logger *zap.Logger) (*HTTPStore, error) {
	if cfg.Dataset == "" {
		return nil, fmt.Errorf("dataset required for %s document store", ModeHTTP)
	}
	if cfg.ProjectID == "" && cfg.Endpoint == "" {
		return nil, fmt.Errorf("project id or endpoint required for %s document store", ModeHTTP)
	}
	timeout := cfg.RequestTimeoutDuration()
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	version := strings.TrimPrefix(cfg.APIVersion, "v")
	if version == "" {
		version = "2024-01-01"
	}

	logger.Info("Hosted document store configured",
		zap.String("endpoint", cfg.BaseURL()),
		zap.String("dataset", cfg.Dataset),
		zap.String("apiVersion", version),
	)

	return &HTTPStore{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL(),
		apiVersion: version,
		dataset:    cfg.Dataset,
		token:      cfg.Token,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

type queryResponse struct {
	Result json.RawMessage `json:"result"`
}

type mutateResponse struct {
	TransactionID string `json:"transactionId"`
	Results       []struct {
		ID        string   `json:"id"`
		Operation string   `json:"operation"`
		Document  Document `json:"document"`
	} `json:"results"`
}

type platformError struct {
	Error struct {
		Type        string `json:"type"`
		Description string `json:"description"`
	} `json:"error"`
	Message string `json:"message"`
}

// Fetch returns the documents matching the query
func (s *HTTPStore) Fetch(ctx context.Context, q Query) ([]Document, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	groq, params := q.GROQ()

	var docs []Document
	if err := s.query(ctx, groq, params, &docs); err != nil {
		return nil, fmt.Errorf("docstore: fetch %s: %w", q.Type, err)
	}
	if docs == nil {
		docs = []Document{}
	}
	return docs, nil
}

// Get returns one document or ErrNotFound
func (s *HTTPStore) Get(ctx context.Context, id string) (Document, error) {
	var doc Document
	if err := s.query(ctx, "*[_id == $id][0]", map[string]any{"id": id}, &doc); err != nil {
		return nil, fmt.Errorf("docstore: get %s: %w", id, err)
	}
	if doc == nil {
		return nil, ErrNotFound
	}
	return doc, nil
}

// Create inserts a document. The _id is generated client side so the created document can be
// addressed without a second read.
func (s *HTTPStore) Create(ctx context.Context, doc Document) (Document, error) {
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

	resp, err := s.mutate(ctx, []map[string]any{{"create": out}})
	if err != nil {
		return nil, fmt.Errorf("docstore: create %s: %w", out.Type(), err)
	}
	if created := resp.lastDocument(); created != nil {
		return created, nil
	}
	now := s.now()
	stamp(out, now, now)
	return out, nil
}

// Commit sends every operation of the patch as one mutation list
func (s *HTTPStore) Commit(ctx context.Context, patch *Patch) (Document, error) {
	mutations, err := patchMutations(patch)
	if err != nil {
		return nil, err
	}
	if len(mutations) == 0 {
		return s.Get(ctx, patch.ID())
	}

	resp, err := s.mutate(ctx, mutations)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("docstore: commit %s: %w", patch.ID(), err)
	}
	if doc := resp.lastDocument(); doc != nil {
		return doc, nil
	}
	return s.Get(ctx, patch.ID())
}

// Delete removes a document
func (s *HTTPStore) Delete(ctx context.Context, id string) error {
	resp, err := s.mutate(ctx, []map[string]any{{"delete": map[string]any{"id": id}}})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("docstore: delete %s: %w", id, err)
	}
	if len(resp.Results) == 0 {
		return ErrNotFound
	}
	return nil
}

// patchMutations translates a patch into platform mutations, one per operation, in order
func patchMutations(patch *Patch) ([]map[string]any, error) {
	mutations := make([]map[string]any, 0, len(patch.Operations()))
	for _, op := range patch.Operations() {
		body := map[string]any{"id": patch.ID()}
		switch op.Kind {
		case OpSet, OpSetIfMissing:
			fields := make(map[string]any, len(op.Fields))
			for path, value := range op.Fields {
				field, _, err := parsePath(path)
				if err != nil {
					return nil, err
				}
				if isSystemField(field) {
					return nil, fmt.Errorf("%w: cannot set system field %s", ErrInvalidPatch, field)
				}
				norm, err := normalize(value)
				if err != nil {
					return nil, fmt.Errorf("%w: field %s: %v", ErrInvalidPatch, field, err)
				}
				if arr, ok := norm.([]any); ok {
					ensureKeys(arr)
				}
				fields[path] = norm
			}
			body[string(op.Kind)] = fields
		case OpAppend:
			if !fieldPattern.MatchString(op.Field) {
				return nil, fmt.Errorf("%w: invalid field %q", ErrInvalidPatch, op.Field)
			}
			items := make([]any, 0, len(op.Items))
			for _, item := range op.Items {
				norm, err := normalize(item)
				if err != nil {
					return nil, fmt.Errorf("%w: field %s: %v", ErrInvalidPatch, op.Field, err)
				}
				items = append(items, norm)
			}
			ensureKeys(items)
			body["insert"] = map[string]any{
				"after": op.Field + "[-1]",
				"items": items,
			}
		case OpUnset:
			for _, path := range op.Paths {
				field, _, err := parsePath(path)
				if err != nil {
					return nil, err
				}
				if isSystemField(field) {
					return nil, fmt.Errorf("%w: cannot unset system field %s", ErrInvalidPatch, field)
				}
			}
			body["unset"] = op.Paths
		default:
			return nil, fmt.Errorf("%w: unknown operation %q", ErrInvalidPatch, op.Kind)
		}
		mutations = append(mutations, map[string]any{"patch": body})
	}
	return mutations, nil
}

func (s *HTTPStore) query(ctx context.Context, groq string, params map[string]any, out any) error {
	values := url.Values{}
	values.Set("query", groq)
	for name, value := range params {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode parameter %s: %w", name, err)
		}
		values.Set("$"+name, string(raw))
	}
	endpoint := fmt.Sprintf("%s/v%s/data/query/%s?%s", s.baseURL, s.apiVersion, url.PathEscape(s.dataset), values.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create query request: %w", err)
	}
	s.authorize(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call query endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodePlatformError(resp)
	}

	var qr queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		return fmt.Errorf("failed to decode query response: %w", err)
	}
	if len(qr.Result) == 0 || string(qr.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(qr.Result, out); err != nil {
		return fmt.Errorf("failed to decode query result: %w", err)
	}
	return nil
}

func (s *HTTPStore) mutate(ctx context.Context, mutations []map[string]any) (*mutateResponse, error) {
	payload, err := json.Marshal(map[string]any{"mutations": mutations})
	if err != nil {
		return nil, fmt.Errorf("failed to encode mutations: %w", err)
	}
	endpoint := fmt.Sprintf("%s/v%s/data/mutate/%s?returnDocuments=true&visibility=sync", s.baseURL, s.apiVersion, url.PathEscape(s.dataset))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create mutate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	s.authorize(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call mutate endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodePlatformError(resp)
	}

	var mr mutateResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, fmt.Errorf("failed to decode mutate response: %w", err)
	}
	s.logger.Debug("Document mutation committed",
		zap.String("transactionId", mr.TransactionID),
		zap.Int("mutations", len(mutations)),
	)
	return &mr, nil
}

func (s *HTTPStore) authorize(req *http.Request) {
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
}

func (r *mutateResponse) lastDocument() Document {
	for i := len(r.Results) - 1; i >= 0; i-- {
		if r.Results[i].Document != nil {
			return r.Results[i].Document
		}
	}
	return nil
}

func decodePlatformError(resp *http.Response) error {
	var perr platformError
	if err := json.NewDecoder(resp.Body).Decode(&perr); err != nil {
		return fmt.Errorf("document store returned status %d", resp.StatusCode)
	}
	description := perr.Error.Description
	if description == "" {
		description = perr.Message
	}
	if resp.StatusCode == http.StatusNotFound || strings.Contains(strings.ToLower(description), "not found") {
		return ErrNotFound
	}
	if description != "" {
		return fmt.Errorf("document store error (%d): %s", resp.StatusCode, description)
	}
	return fmt.Errorf("document store returned status %d", resp.StatusCode)
}
