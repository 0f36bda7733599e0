// internal/identity/registry.go
package identity

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"taskbridge/pkg/directory"
)

// Factory builds a vendor adapter for one tenant descriptor.
type Factory func(desc directory.Descriptor, adminURL string) (Adapter, error)

// Registry maps the closed set of vendor tags to factories and holds one
// adapter per tenant, constructed at startup from the directory. Adding a
// vendor means registering one factory, not touching callers.
type Registry struct {
	factories map[directory.Vendor]Factory
	byTenant  map[string]Adapter
}

func NewRegistry() *Registry {
	r := &Registry{
		factories: map[directory.Vendor]Factory{},
		byTenant:  map[string]Adapter{},
	}
	r.RegisterFactory(directory.VendorKeycloak, func(desc directory.Descriptor, adminURL string) (Adapter, error) {
		return NewKeycloak(adminURL, desc.EffectiveRealm()), nil
	})
	return r
}

func (r *Registry) RegisterFactory(v directory.Vendor, f Factory) { r.factories[v] = f }

// Build instantiates one adapter per descriptor, wrapping each with the
// redis lookup cache when configured.
func (r *Registry) Build(dir *directory.Directory, adminURL string, rdb *redis.Client, ttl time.Duration) error {
	for _, desc := range dir.All() {
		f, ok := r.factories[desc.Vendor]
		if !ok {
			return fmt.Errorf("tenant %s: no adapter for vendor %q", desc.TenantID, desc.Vendor)
		}
		a, err := f(desc, adminURL)
		if err != nil {
			return fmt.Errorf("tenant %s: build adapter: %w", desc.TenantID, err)
		}
		r.byTenant[desc.TenantID] = WithCache(a, rdb, ttl, desc.TenantID)
	}
	return nil
}

// ForTenant returns the adapter bound to tenantID.
func (r *Registry) ForTenant(tenantID string) (Adapter, bool) {
	a, ok := r.byTenant[tenantID]
	return a, ok
}
