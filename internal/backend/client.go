// internal/backend/client.go
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"taskbridge/pkg/faults"
)

// Client is the RPC surface of the task-orchestration service consumed by
// the bridge. Safe for concurrent use.
type Client interface {
	GetTenant(ctx context.Context, token, tenantID string) (Tenant, error)
	SearchTaskRuns(ctx context.Context, token string, req SearchRequest) (SearchResponse, error)
	GetTaskRun(ctx context.Context, token, id string) (TaskRecord, error)
	GetTaskDef(ctx context.Context, token, name string) (TaskDef, error)
}

// HTTPClient talks JSON over HTTP to the orchestration service.
type HTTPClient struct {
	baseURL string
	httpc   *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *HTTPClient) GetTenant(ctx context.Context, token, tenantID string) (Tenant, error) {
	var t Tenant
	err := c.do(ctx, token, http.MethodGet, "/v1/tenants/"+url.PathEscape(tenantID), nil, &t)
	return t, err
}

func (c *HTTPClient) SearchTaskRuns(ctx context.Context, token string, req SearchRequest) (SearchResponse, error) {
	var resp SearchResponse
	err := c.do(ctx, token, http.MethodPost, "/v1/task-runs/search", req, &resp)
	return resp, err
}

func (c *HTTPClient) GetTaskRun(ctx context.Context, token, id string) (TaskRecord, error) {
	var rec TaskRecord
	err := c.do(ctx, token, http.MethodGet, "/v1/task-runs/"+url.PathEscape(id), nil, &rec)
	return rec, err
}

func (c *HTTPClient) GetTaskDef(ctx context.Context, token, name string) (TaskDef, error) {
	var def TaskDef
	err := c.do(ctx, token, http.MethodGet, "/v1/task-defs/"+url.PathEscape(name), nil, &def)
	return def, err
}

func (c *HTTPClient) do(ctx context.Context, token, method, path string, body, out any) error {
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return faults.Backend(method+" "+path, err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return faults.Backend(method+" "+path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return faults.Backend(method+" "+path, err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, faults.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return faults.Backend(method+" "+path, fmt.Errorf("status %d", resp.StatusCode))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return faults.Backend(method+" "+path, err)
		}
	}
	return nil
}
