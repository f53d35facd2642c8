package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Page is the paginated envelope some endpoints answer List with
type Page[T any] struct {
	Results []T `json:"results"`
	Count   int `json:"count"`
}

// Resource binds the CRUD verbs of one REST endpoint, e.g. "books/"
type Resource[T any] struct {
	client   *Client
	endpoint string
}

// NewResource creates a resource rooted at endpoint
func NewResource[T any](client *Client, endpoint string) *Resource[T] {
	return &Resource[T]{
		client:   client,
		endpoint: strings.Trim(endpoint, "/") + "/",
	}
}

// Endpoint returns the resource path with a trailing slash
func (r *Resource[T]) Endpoint() string {
	return r.endpoint
}

func (r *Resource[T]) itemPath(id int) string {
	return fmt.Sprintf("%s%d/", r.endpoint, id)
}

// List fetches every record. Both a bare JSON array and a {results, count}
// page are accepted.
func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	var raw json.RawMessage
	if err := r.client.Do(ctx, http.MethodGet, r.endpoint, nil, &raw); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.endpoint, err)
	}
	items, err := decodeList[T](raw)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.endpoint, err)
	}
	return items, nil
}

func decodeList[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}
	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("failed to parse list: %w", err)
		}
		return items, nil
	}
	var page Page[T]
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	if page.Results == nil {
		page.Results = []T{}
	}
	return page.Results, nil
}

// Get fetches one record
func (r *Resource[T]) Get(ctx context.Context, id int) (T, error) {
	var item T
	if err := r.client.Do(ctx, http.MethodGet, r.itemPath(id), nil, &item); err != nil {
		return item, fmt.Errorf("get %s%d: %w", r.endpoint, id, err)
	}
	return item, nil
}

// Create posts a new record and returns what the server stored
func (r *Resource[T]) Create(ctx context.Context, values map[string]any) (T, error) {
	var item T
	if err := r.client.Do(ctx, http.MethodPost, r.endpoint, withoutID(values), &item); err != nil {
		return item, fmt.Errorf("create %s: %w", r.endpoint, err)
	}
	return item, nil
}

// Update replaces a record with PUT
func (r *Resource[T]) Update(ctx context.Context, id int, values map[string]any) (T, error) {
	var item T
	if err := r.client.Do(ctx, http.MethodPut, r.itemPath(id), withoutID(values), &item); err != nil {
		return item, fmt.Errorf("update %s%d: %w", r.endpoint, id, err)
	}
	return item, nil
}

// Delete removes a record
func (r *Resource[T]) Delete(ctx context.Context, id int) error {
	if err := r.client.Do(ctx, http.MethodDelete, r.itemPath(id), nil, nil); err != nil {
		return fmt.Errorf("delete %s%d: %w", r.endpoint, id, err)
	}
	return nil
}

// withoutID drops the id key; the server owns it and it travels in the path
func withoutID(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		if k == "id" {
			continue
		}
		out[k] = v
	}
	return out
}
