// pkg/directory/postgres.go
package directory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// EnsureSchema creates the tenant directory table if it does not exist.
// Safe to call repeatedly (idempotent).
func EnsureSchema(ctx context.Context, dbPool *pgxpool.Pool) error {
	_, err := dbPool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS tenant_descriptors (
  issuer text NOT NULL,
  tenant_id text NOT NULL,
  accepted_client_ids text[] NOT NULL DEFAULT '{}',
  client_id_claim text NOT NULL DEFAULT 'azp',
  vendor text NOT NULL DEFAULT 'keycloak',
  display_label text NOT NULL DEFAULT '',
  authority_claim_paths text[] NOT NULL DEFAULT '{}',
  realm text NOT NULL DEFAULT '',
  backend_url text NOT NULL DEFAULT '',
  authz_policy text NOT NULL DEFAULT '',
  created_at timestamptz NOT NULL DEFAULT NOW(),
  updated_at timestamptz NOT NULL DEFAULT NOW(),
  PRIMARY KEY (issuer, tenant_id)
);
ALTER TABLE tenant_descriptors ADD COLUMN IF NOT EXISTS realm text NOT NULL DEFAULT '';
ALTER TABLE tenant_descriptors ADD COLUMN IF NOT EXISTS backend_url text NOT NULL DEFAULT '';
ALTER TABLE tenant_descriptors ADD COLUMN IF NOT EXISTS authz_policy text NOT NULL DEFAULT '';
`)
	return err
}

// Seed upserts descriptors into the table (used at startup when a seed
// source and a database are both configured).
func Seed(ctx context.Context, dbPool *pgxpool.Pool, descs []Descriptor) error {
	for _, d := range descs {
		_, err := dbPool.Exec(ctx, `INSERT INTO tenant_descriptors
		  (issuer,tenant_id,accepted_client_ids,client_id_claim,vendor,display_label,authority_claim_paths,realm,backend_url,authz_policy,updated_at)
		  VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW())
		  ON CONFLICT (issuer,tenant_id) DO UPDATE SET
		    accepted_client_ids=EXCLUDED.accepted_client_ids,
		    client_id_claim=EXCLUDED.client_id_claim,
		    vendor=EXCLUDED.vendor,
		    display_label=EXCLUDED.display_label,
		    authority_claim_paths=EXCLUDED.authority_claim_paths,
		    realm=EXCLUDED.realm,
		    backend_url=EXCLUDED.backend_url,
		    authz_policy=EXCLUDED.authz_policy,
		    updated_at=NOW()`,
			d.Issuer, d.TenantID, d.AcceptedClientIDs, orDefault(d.ClientIDClaim, "azp"),
			string(orDefault(string(d.Vendor), string(VendorKeycloak))), d.DisplayLabel,
			d.AuthorityClaimPaths, d.Realm, d.BackendURL, d.AuthzPolicy)
		if err != nil {
			return fmt.Errorf("seed tenant %s/%s: %w", d.Issuer, d.TenantID, err)
		}
	}
	return nil
}

// FromPostgres loads all descriptors from the table.
func FromPostgres(ctx context.Context, dbPool *pgxpool.Pool, log *zap.SugaredLogger) ([]Descriptor, error) {
	rows, err := dbPool.Query(ctx, `SELECT issuer,tenant_id,accepted_client_ids,client_id_claim,vendor,display_label,authority_claim_paths,realm,backend_url,authz_policy FROM tenant_descriptors`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var descs []Descriptor
	for rows.Next() {
		var d Descriptor
		var vendor string
		if err := rows.Scan(&d.Issuer, &d.TenantID, &d.AcceptedClientIDs, &d.ClientIDClaim, &vendor,
			&d.DisplayLabel, &d.AuthorityClaimPaths, &d.Realm, &d.BackendURL, &d.AuthzPolicy); err != nil {
			return nil, err
		}
		d.Vendor = Vendor(vendor)
		descs = append(descs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	log.Infow("tenant directory loaded from postgres", "count", len(descs))
	return descs, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
