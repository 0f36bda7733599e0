package directory

import "strings"

// Vendor tags the identity-provider implementation bound to a tenant.
// Closed set: adding a vendor means adding one adapter variant.
type Vendor string

const (
	VendorKeycloak Vendor = "keycloak"
)

// Descriptor binds an issuer + tenant id to one identity-provider
// configuration. Loaded once at startup, immutable afterwards.
type Descriptor struct {
	Issuer              string   `yaml:"issuer" json:"issuer"`
	TenantID            string   `yaml:"tenant_id" json:"tenant_id"`
	AcceptedClientIDs   []string `yaml:"accepted_client_ids" json:"accepted_client_ids"`
	ClientIDClaim       string   `yaml:"client_id_claim" json:"client_id_claim"` // default "azp"
	Vendor              Vendor   `yaml:"vendor" json:"vendor"`
	DisplayLabel        string   `yaml:"display_label" json:"display_label"`
	AuthorityClaimPaths []string `yaml:"authority_claim_paths" json:"authority_claim_paths"`

	// Realm is the identity-provider realm; derived from the issuer path
	// ("…/realms/<realm>") when empty.
	Realm string `yaml:"realm" json:"realm"`
	// BackendURL overrides the default orchestration-service endpoint.
	BackendURL string `yaml:"backend_url" json:"backend_url"`
	// AuthzPolicy is an optional Rego module evaluated after the client check.
	AuthzPolicy string `yaml:"authz_policy" json:"authz_policy"`
}

// Key returns the (issuer, tenantId) lookup key. Issuer comparison is
// case-insensitive with trailing slashes ignored.
func (d Descriptor) Key() string {
	return IssuerKey(d.Issuer) + "|" + d.TenantID
}

// EffectiveRealm returns the configured realm, else the last issuer path
// segment after "/realms/".
func (d Descriptor) EffectiveRealm() string {
	if d.Realm != "" {
		return d.Realm
	}
	iss := strings.TrimRight(d.Issuer, "/")
	if i := strings.LastIndex(iss, "/realms/"); i >= 0 {
		return iss[i+len("/realms/"):]
	}
	return d.TenantID
}

// IssuerKey normalizes an issuer URL for comparison.
func IssuerKey(issuer string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(issuer), "/"))
}
