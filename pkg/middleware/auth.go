// pkg/middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"taskbridge/internal/resolver"
	"taskbridge/pkg/claims"
	"taskbridge/pkg/problems"
)

// Authorizer turns a verified claim set into a resolved tenant context.
type Authorizer interface {
	Authorize(ctx context.Context, cs claims.ClaimSet, accessToken string) (resolver.Context, error)
}

type tenantCtxKey struct{}
type claimsCtxKey struct{}

// BearerAuth extracts the bearer credential, decodes its (pre-verified)
// claims, and resolves the tenant context. Health and metrics endpoints
// bypass auth.
func BearerAuth(az Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/healthz" || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}
			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				http.Error(w, "missing bearer", http.StatusUnauthorized)
				return
			}
			raw := strings.TrimSpace(authz[len("Bearer "):])
			cs, err := claims.Extract(raw)
			if err != nil {
				// Upstream validator contract violation, not an auth failure.
				http.Error(w, "credential decode failed", http.StatusInternalServerError)
				return
			}
			rctx, err := az.Authorize(r.Context(), cs, raw)
			if err != nil {
				problems.Write(w, err)
				return
			}
			ctx := context.WithValue(r.Context(), tenantCtxKey{}, rctx)
			ctx = context.WithValue(ctx, claimsCtxKey{}, cs)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TenantContextFrom returns the resolved tenant context stored by BearerAuth.
func TenantContextFrom(ctx context.Context) resolver.Context {
	if v := ctx.Value(tenantCtxKey{}); v != nil {
		return v.(resolver.Context)
	}
	return resolver.Context{}
}

// ClaimsFrom returns the request claim set stored by BearerAuth.
func ClaimsFrom(ctx context.Context) claims.ClaimSet {
	if v := ctx.Value(claimsCtxKey{}); v != nil {
		return v.(claims.ClaimSet)
	}
	return nil
}
