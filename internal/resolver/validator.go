// internal/resolver/validator.go
package resolver

import (
	"context"
	"errors"

	"taskbridge/internal/backend"
	"taskbridge/pkg/faults"
)

// Validator checks that a locally configured tenant still exists in the
// orchestration service. Independent of, and composable with, Resolve.
type Validator struct {
	backends *backend.Registry
}

func NewValidator(backends *backend.Registry) *Validator {
	return &Validator{backends: backends}
}

// IsValidTenant asks the backend for the tenant. A not-found answer is a
// legitimate negative result; any other failure propagates.
func (v *Validator) IsValidTenant(ctx context.Context, tenantID, accessToken string) (bool, error) {
	_, err := v.backends.ForTenant(tenantID).GetTenant(ctx, accessToken, tenantID)
	if err != nil {
		if errors.Is(err, faults.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
