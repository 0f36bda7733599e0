package directory

import (
	"fmt"
)

// Directory is the immutable snapshot of all configured tenant descriptors.
// Built once at startup; safe for unsynchronized concurrent reads.
type Directory struct {
	byKey map[string]Descriptor
	all   []Descriptor
}

// New validates and indexes descriptors. Two descriptors sharing an
// (issuer, tenantId) pair make resolution ambiguous, so loading fails.
func New(descs []Descriptor) (*Directory, error) {
	d := &Directory{byKey: make(map[string]Descriptor, len(descs))}
	for _, desc := range descs {
		if desc.Issuer == "" || desc.TenantID == "" {
			return nil, fmt.Errorf("descriptor %q: issuer and tenant_id are required", desc.DisplayLabel)
		}
		if desc.ClientIDClaim == "" {
			desc.ClientIDClaim = "azp"
		}
		if desc.Vendor == "" {
			desc.Vendor = VendorKeycloak
		}
		key := desc.Key()
		if _, dup := d.byKey[key]; dup {
			return nil, fmt.Errorf("duplicate tenant descriptor for issuer=%s tenant=%s", desc.Issuer, desc.TenantID)
		}
		d.byKey[key] = desc
		d.all = append(d.all, desc)
	}
	return d, nil
}

// Find returns the unique descriptor for (issuer, tenantID), if any.
func (d *Directory) Find(issuer, tenantID string) (Descriptor, bool) {
	desc, ok := d.byKey[IssuerKey(issuer)+"|"+tenantID]
	return desc, ok
}

// All returns every configured descriptor.
func (d *Directory) All() []Descriptor { return d.all }

// Len reports the number of configured descriptors.
func (d *Directory) Len() int { return len(d.all) }
