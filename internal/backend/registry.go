// internal/backend/registry.go
package backend

import (
	"taskbridge/pkg/directory"
)

// Registry holds one backend client per tenant, constructed once at startup
// from the tenant directory. No ambient globals; handlers receive it by
// reference.
type Registry struct {
	byTenant map[string]Client
	fallback Client
}

// NewRegistry builds per-tenant clients. Descriptors without a backend_url
// override share the default client.
func NewRegistry(dir *directory.Directory, defaultBaseURL string) *Registry {
	r := &Registry{
		byTenant: make(map[string]Client, dir.Len()),
		fallback: NewHTTPClient(defaultBaseURL),
	}
	for _, d := range dir.All() {
		if d.BackendURL != "" {
			r.byTenant[d.TenantID] = NewHTTPClient(d.BackendURL)
		}
	}
	return r
}

// Override replaces the client for one tenant. Used for wiring fakes in
// tests and for late-bound endpoints.
func (r *Registry) Override(tenantID string, c Client) {
	r.byTenant[tenantID] = c
}

// ForTenant returns the client bound to tenantID, falling back to the
// default endpoint.
func (r *Registry) ForTenant(tenantID string) Client {
	if c, ok := r.byTenant[tenantID]; ok {
		return c
	}
	return r.fallback
}
