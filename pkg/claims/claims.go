// pkg/claims/claims.go
package claims

import (
	"context"
	"fmt"
	"strings"

	"github.com/lestrrat-go/jwx/v2/jwt"
)

// ClaimSet is the verified claim mapping of one request. Signature and
// lifetime validation happen upstream; this layer only reads claims.
type ClaimSet map[string]any

// Extract decodes the payload of a bearer credential into a ClaimSet.
// A decode failure here means the upstream validator handed us garbage,
// so it is surfaced as a fatal error, not an auth failure.
func Extract(raw string) (ClaimSet, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty credential")
	}
	tok, err := jwt.ParseInsecure([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("decode credential: %w", err)
	}
	m, err := tok.AsMap(context.Background())
	if err != nil {
		return nil, fmt.Errorf("flatten claims: %w", err)
	}
	return ClaimSet(m), nil
}

// String returns the named claim as a string, or "" when absent or non-string.
func (c ClaimSet) String(name string) string {
	if v, ok := c[name]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Strings returns the named claim as a string slice. A scalar string claim
// is returned as a one-element slice.
func (c ClaimSet) Strings(name string) []string {
	v, ok := c[name]
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case string:
		return []string{t}
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Document exposes the claim set as a plain map for path expressions.
func (c ClaimSet) Document() map[string]any { return map[string]any(c) }

// Issuer returns the iss claim.
func (c ClaimSet) Issuer() string { return c.String("iss") }

// Subject returns the sub claim.
func (c ClaimSet) Subject() string { return c.String("sub") }
