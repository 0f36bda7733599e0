package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskbridge/pkg/faults"
)

func TestGetTenant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/tenants/acme" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("auth header = %q", got)
		}
		json.NewEncoder(w).Encode(Tenant{ID: "acme", Name: "Acme"})
	}))
	defer srv.Close()

	tn, err := NewHTTPClient(srv.URL).GetTenant(context.Background(), "tok", "acme")
	if err != nil {
		t.Fatalf("get tenant: %v", err)
	}
	if tn.ID != "acme" || tn.Name != "Acme" {
		t.Fatalf("tenant = %+v", tn)
	}
}

func TestGetTenantNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL).GetTenant(context.Background(), "tok", "ghost")
	if !errors.Is(err, faults.ErrNotFound) {
		t.Fatalf("err = %v, want NotFound", err)
	}
}

func TestSearchTaskRunsRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/task-runs/search" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var req SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.UserID != "u1" || req.Limit != 25 {
			t.Errorf("request = %+v", req)
		}
		json.NewEncoder(w).Encode(SearchResponse{IDs: []string{"t1"}, Cursor: []byte("next")})
	}))
	defer srv.Close()

	resp, err := NewHTTPClient(srv.URL).SearchTaskRuns(context.Background(), "tok", SearchRequest{UserID: "u1", Limit: 25})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(resp.IDs) != 1 || string(resp.Cursor) != "next" {
		t.Fatalf("response = %+v", resp)
	}
}

func TestServerErrorIsBackendFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL).GetTaskRun(context.Background(), "tok", "t1")
	if !errors.Is(err, faults.ErrBackend) {
		t.Fatalf("err = %v, want Backend", err)
	}
	if errors.Is(err, faults.ErrNotFound) {
		t.Fatal("a 502 must not classify as NotFound")
	}
}

func TestRegistryFallback(t *testing.T) {
	// Built from a directory where only one tenant overrides the endpoint.
	c := NewHTTPClient("http://default")
	r := &Registry{byTenant: map[string]Client{}, fallback: c}
	if r.ForTenant("anyone") != c {
		t.Fatal("expected fallback client")
	}
	other := NewHTTPClient("http://special")
	r.Override("acme", other)
	if r.ForTenant("acme") != other {
		t.Fatal("expected per-tenant override")
	}
}
