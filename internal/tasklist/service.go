// internal/tasklist/service.go
package tasklist

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"taskbridge/internal/backend"
	"taskbridge/internal/identity"
	"taskbridge/internal/resolver"
	"taskbridge/internal/tasks"
	"taskbridge/pkg/claims"
	"taskbridge/pkg/config"
	"taskbridge/pkg/faults"
)

// Service exposes the bridge core: credential resolution, aggregated task
// search, and task detail, each followed by identity enrichment.
type Service struct {
	resolver  *resolver.Resolver
	validator *resolver.Validator
	backends  *backend.Registry
	adapters  *identity.Registry
	enricher  *tasks.Enricher
	cfg       config.Config
	log       *zap.SugaredLogger
}

func New(res *resolver.Resolver, val *resolver.Validator, backends *backend.Registry, adapters *identity.Registry, cfg config.Config, log *zap.SugaredLogger) *Service {
	return &Service{
		resolver:  res,
		validator: val,
		backends:  backends,
		adapters:  adapters,
		enricher:  tasks.NewEnricher(cfg.EnrichWorkers, log),
		cfg:       cfg,
		log:       log,
	}
}

// Authorize resolves the claim set against the tenant directory and then
// confirms the tenant still exists upstream. The two checks are
// independent; both must pass.
func (s *Service) Authorize(ctx context.Context, cs claims.ClaimSet, accessToken string) (resolver.Context, error) {
	rctx, err := s.resolver.Resolve(ctx, cs, accessToken)
	if err != nil {
		return resolver.Context{}, err
	}
	ok, err := s.validator.IsValidTenant(ctx, rctx.Descriptor.TenantID, accessToken)
	if err != nil {
		return resolver.Context{}, err
	}
	if !ok {
		return resolver.Context{}, faults.Unauthorized("tenant %s not known upstream", rctx.Descriptor.TenantID)
	}
	return rctx, nil
}

// SearchMyTasks aggregates every page of matching task runs and enriches
// the merged set. An empty result is returned as an empty slice.
func (s *Service) SearchMyTasks(ctx context.Context, rctx resolver.Context, q tasks.Query) ([]tasks.EnrichedTask, error) {
	tenantID := rctx.Descriptor.TenantID
	agg := tasks.NewAggregator(s.backends.ForTenant(tenantID), s.cfg.SearchPageSize, s.cfg.SearchMaxPages, s.cfg.FetchWorkers, s.log)
	records, err := agg.Search(ctx, rctx.AccessToken, q)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []tasks.EnrichedTask{}, nil
	}
	ad, ok := s.adapters.ForTenant(tenantID)
	if !ok {
		return nil, fmt.Errorf("no identity adapter for tenant %s", tenantID)
	}
	return s.enricher.Enrich(ctx, ad, rctx.AccessToken, records), nil
}

// GetTaskDetail fetches one full task record, backfilling field
// definitions from the task definition when the run lacks them, and
// enriches its identity annotations.
func (s *Service) GetTaskDetail(ctx context.Context, rctx resolver.Context, taskID string) (*tasks.EnrichedTask, error) {
	tenantID := rctx.Descriptor.TenantID
	client := s.backends.ForTenant(tenantID)
	rec, err := client.GetTaskRun(ctx, rctx.AccessToken, taskID)
	if err != nil {
		return nil, err
	}
	if len(rec.Fields) == 0 && rec.TaskDefName != "" {
		def, err := client.GetTaskDef(ctx, rctx.AccessToken, rec.TaskDefName)
		switch {
		case err == nil:
			rec.Fields = def.Fields
		case errors.Is(err, faults.ErrNotFound):
			// Definition gone; the record stands on its own.
		default:
			return nil, err
		}
	}
	ad, ok := s.adapters.ForTenant(tenantID)
	if !ok {
		return nil, fmt.Errorf("no identity adapter for tenant %s", tenantID)
	}
	enriched := s.enricher.Enrich(ctx, ad, rctx.AccessToken, []backend.TaskRecord{rec})
	return &enriched[0], nil
}
