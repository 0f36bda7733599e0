package directory

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewRejectsDuplicatePairs(t *testing.T) {
	_, err := New([]Descriptor{
		{Issuer: "https://idp.example/realms/acme", TenantID: "acme", AcceptedClientIDs: []string{"a"}},
		{Issuer: "https://idp.example/realms/acme/", TenantID: "acme", AcceptedClientIDs: []string{"b"}},
	})
	if err == nil {
		t.Fatal("expected duplicate (issuer, tenant) pair to be rejected")
	}
}

func TestNewRequiresIssuerAndTenant(t *testing.T) {
	if _, err := New([]Descriptor{{Issuer: "", TenantID: "acme"}}); err == nil {
		t.Fatal("expected error for missing issuer")
	}
	if _, err := New([]Descriptor{{Issuer: "https://idp.example", TenantID: ""}}); err == nil {
		t.Fatal("expected error for missing tenant id")
	}
}

func TestFindIsCaseInsensitiveOnIssuer(t *testing.T) {
	dir, err := New([]Descriptor{
		{Issuer: "https://IdP.example/realms/Acme", TenantID: "acme"},
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, ok := dir.Find("https://idp.example/realms/acme/", "acme"); !ok {
		t.Fatal("expected case-insensitive issuer match with trailing slash ignored")
	}
	if _, ok := dir.Find("https://idp.example/realms/acme", "other"); ok {
		t.Fatal("unexpected match for wrong tenant id")
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	dir, err := New([]Descriptor{{Issuer: "https://idp.example/realms/acme", TenantID: "acme"}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	d, _ := dir.Find("https://idp.example/realms/acme", "acme")
	if d.ClientIDClaim != "azp" {
		t.Fatalf("default client id claim = %q, want azp", d.ClientIDClaim)
	}
	if d.Vendor != VendorKeycloak {
		t.Fatalf("default vendor = %q, want keycloak", d.Vendor)
	}
}

func TestEffectiveRealm(t *testing.T) {
	d := Descriptor{Issuer: "https://idp.example/realms/acme/", TenantID: "acme"}
	if got := d.EffectiveRealm(); got != "acme" {
		t.Fatalf("realm = %q, want acme", got)
	}
	d.Realm = "override"
	if got := d.EffectiveRealm(); got != "override" {
		t.Fatalf("realm = %q, want override", got)
	}
	plain := Descriptor{Issuer: "https://idp.example", TenantID: "fallback"}
	if got := plain.EffectiveRealm(); got != "fallback" {
		t.Fatalf("realm = %q, want fallback to tenant id", got)
	}
}

func TestFromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tenants.yaml")
	content := `tenants:
  - issuer: https://idp.example/realms/acme
    tenant_id: acme
    accepted_client_ids: [acme-client]
    vendor: keycloak
    display_label: Acme Corp
    authority_claim_paths:
      - groups
      - "realm_access.roles"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	descs, err := FromYAMLFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(descs) != 1 {
		t.Fatalf("got %d descriptors, want 1", len(descs))
	}
	d := descs[0]
	if d.TenantID != "acme" || d.DisplayLabel != "Acme Corp" {
		t.Fatalf("unexpected descriptor: %+v", d)
	}
	if len(d.AuthorityClaimPaths) != 2 || d.AuthorityClaimPaths[0] != "groups" {
		t.Fatalf("authority claim paths not preserved: %v", d.AuthorityClaimPaths)
	}
	if len(d.AcceptedClientIDs) != 1 || d.AcceptedClientIDs[0] != "acme-client" {
		t.Fatalf("accepted client ids not preserved: %v", d.AcceptedClientIDs)
	}
}
