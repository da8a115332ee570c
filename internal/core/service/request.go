package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/galacash/gateway/internal/core/ports"
)

func get(ctx context.Context, api ports.APIClient, path string, q url.Values, out any) error {
	return api.Do(ctx, ports.Request{Method: http.MethodGet, Path: path, Query: q}, out)
}

func post(ctx context.Context, api ports.APIClient, path string, body, out any) error {
	return api.Do(ctx, ports.Request{Method: http.MethodPost, Path: path, JSON: body}, out)
}

func put(ctx context.Context, api ports.APIClient, path string, body, out any) error {
	return api.Do(ctx, ports.Request{Method: http.MethodPut, Path: path, JSON: body}, out)
}

func list[T any](ctx context.Context, api ports.APIClient, path string, q url.Values) (*ports.Page[T], error) {
	var raw json.RawMessage
	if err := get(ctx, api, path, q, &raw); err != nil {
		return nil, err
	}
	page := NormalizePage[T](raw)
	return &page, nil
}

// multipart builds an upload request. A nil file sends only the text fields.
func multipart(path string, form map[string]string, file *ports.FilePart) ports.Request {
	return ports.Request{Method: http.MethodPost, Path: path, Form: form, File: file}
}

func escape(id string) string {
	return url.PathEscape(id)
}
