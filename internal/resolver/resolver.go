// internal/resolver/resolver.go
package resolver

import (
	"context"

	jmes "github.com/jmespath/go-jmespath"
	"github.com/open-policy-agent/opa/rego"

	"taskbridge/pkg/claims"
	"taskbridge/pkg/directory"
	"taskbridge/pkg/faults"
	"taskbridge/pkg/metrics"
)

// Context is the per-request outcome of a successful resolution. It dies
// with the request and is never persisted.
type Context struct {
	Descriptor  directory.Descriptor
	AccessToken string
	// Authorities are group/authority values pulled from the claim document
	// via the descriptor's ordered claim paths.
	Authorities []string
}

// Resolver applies authorization policy on top of already-authenticated
// claims. It is a pure function of (claims, directory snapshot) plus the
// descriptor's in-process Rego policy; it never calls the network.
type Resolver struct {
	dir         *directory.Directory
	tenantClaim string
}

func New(dir *directory.Directory, tenantClaim string) *Resolver {
	if tenantClaim == "" {
		tenantClaim = "tenant"
	}
	return &Resolver{dir: dir, tenantClaim: tenantClaim}
}

// Resolve selects the unique descriptor matching the issuer and tenant
// claims and checks the client-id policy. Zero matches or a client
// mismatch fail closed with Unauthorized.
func (r *Resolver) Resolve(ctx context.Context, cs claims.ClaimSet, accessToken string) (Context, error) {
	issuer := cs.Issuer()
	tenantID := cs.String(r.tenantClaim)
	if issuer == "" || tenantID == "" {
		metrics.TenantResolutions.WithLabelValues("missing_claims").Inc()
		return Context{}, faults.Unauthorized("missing issuer or tenant claim")
	}
	desc, ok := r.dir.Find(issuer, tenantID)
	if !ok {
		metrics.TenantResolutions.WithLabelValues("no_match").Inc()
		return Context{}, faults.Unauthorized("no tenant configured for issuer=%s tenant=%s", issuer, tenantID)
	}
	clientID := cs.String(desc.ClientIDClaim)
	if clientID == "" || !contains(desc.AcceptedClientIDs, clientID) {
		metrics.TenantResolutions.WithLabelValues("client_mismatch").Inc()
		return Context{}, faults.Unauthorized("client %q not accepted for tenant %s", clientID, tenantID)
	}
	authorities := extractAuthorities(cs, desc.AuthorityClaimPaths)
	if desc.AuthzPolicy != "" {
		if err := evalPolicy(ctx, desc.AuthzPolicy, cs, desc, clientID); err != nil {
			metrics.TenantResolutions.WithLabelValues("policy_denied").Inc()
			return Context{}, err
		}
	}
	metrics.TenantResolutions.WithLabelValues("ok").Inc()
	return Context{Descriptor: desc, AccessToken: accessToken, Authorities: authorities}, nil
}

// extractAuthorities evaluates the ordered claim paths against the claim
// document; the first path yielding values wins.
func extractAuthorities(cs claims.ClaimSet, paths []string) []string {
	doc := cs.Document()
	for _, p := range paths {
		v, err := jmes.Search(p, doc)
		if err != nil || v == nil {
			continue
		}
		var out []string
		switch t := v.(type) {
		case string:
			out = []string{t}
		case []any:
			for _, e := range t {
				if s, ok := e.(string); ok {
					out = append(out, s)
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// evalPolicy runs the descriptor's Rego module at data.authz.allow.
func evalPolicy(ctx context.Context, module string, cs claims.ClaimSet, desc directory.Descriptor, clientID string) error {
	q := rego.New(
		rego.Query("data.authz.allow"),
		rego.Module("authz.rego", module),
		rego.Input(map[string]any{
			"claims":    cs.Document(),
			"tenant_id": desc.TenantID,
			"client_id": clientID,
		}),
	)
	rs, err := q.Eval(ctx)
	if err != nil || len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return faults.Forbidden("tenant policy evaluation failed")
	}
	if allow, ok := rs[0].Expressions[0].Value.(bool); !ok || !allow {
		return faults.Forbidden("denied by tenant policy")
	}
	return nil
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
