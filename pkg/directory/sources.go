// pkg/directory/sources.go
package directory

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// FromEnv reads descriptors from the TENANT_SEED_JSON environment variable.
// Returns nil when the variable is unset.
func FromEnv(log *zap.SugaredLogger) ([]Descriptor, error) {
	seed := os.Getenv("TENANT_SEED_JSON")
	if seed == "" {
		return nil, nil
	}
	var descs []Descriptor
	if err := json.Unmarshal([]byte(seed), &descs); err != nil {
		return nil, fmt.Errorf("TENANT_SEED_JSON: %w", err)
	}
	log.Infow("tenant seed loaded", "count", len(descs))
	return descs, nil
}

type directoryFile struct {
	Tenants []Descriptor `yaml:"tenants"`
}

// FromYAMLFile reads descriptors from a YAML directory file:
//
//	tenants:
//	  - issuer: https://idp.example/realms/acme
//	    tenant_id: acme
//	    accepted_client_ids: [acme-client]
//	    vendor: keycloak
func FromYAMLFile(path string) ([]Descriptor, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read directory file: %w", err)
	}
	var f directoryFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse directory file: %w", err)
	}
	return f.Tenants, nil
}
