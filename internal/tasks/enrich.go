// internal/tasks/enrich.go
package tasks

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"taskbridge/internal/backend"
	"taskbridge/internal/identity"
	"taskbridge/pkg/metrics"
)

// IdentityRef is either a resolved identity or a stale marker. A stale
// marker keeps the original id and never carries display fields.
type IdentityRef struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Valid       bool   `json:"valid"`
}

// EnrichedTask decorates an immutable task record with resolved identity
// annotations.
type EnrichedTask struct {
	backend.TaskRecord
	AssignedUser  *IdentityRef `json:"assigned_user,omitempty"`
	AssignedGroup *IdentityRef `json:"assigned_group,omitempty"`
}

// Enricher resolves assigned user/group ids into display identities via
// the tenant's identity adapter.
type Enricher struct {
	workers int
	log     *zap.SugaredLogger
}

func NewEnricher(workers int, log *zap.SugaredLogger) *Enricher {
	if workers <= 0 {
		workers = 8
	}
	return &Enricher{workers: workers, log: log}
}

// Enrich annotates every record. A failed or not-found lookup degrades
// that one annotation to a stale marker; records are never dropped, so the
// output always has one entry per input, in input order.
func (e *Enricher) Enrich(ctx context.Context, ad identity.Adapter, token string, records []backend.TaskRecord) []EnrichedTask {
	out := make([]EnrichedTask, len(records))
	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup
	for i := range records {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			out[i] = e.enrichOne(ctx, ad, token, records[i])
		}(i)
	}
	wg.Wait()
	return out
}

func (e *Enricher) enrichOne(ctx context.Context, ad identity.Adapter, token string, rec backend.TaskRecord) EnrichedTask {
	et := EnrichedTask{TaskRecord: rec}
	if rec.AssignedUserID != "" {
		u, err := ad.LookupUser(ctx, identity.UserParams{AccessToken: token, UserID: rec.AssignedUserID})
		if err != nil {
			metrics.EnrichLookups.WithLabelValues("user", "stale").Inc()
			e.log.Debugw("stale user reference", "task", rec.ID, "user", rec.AssignedUserID, "err", err)
			et.AssignedUser = &IdentityRef{ID: rec.AssignedUserID, Valid: false}
		} else {
			metrics.EnrichLookups.WithLabelValues("user", "ok").Inc()
			et.AssignedUser = &IdentityRef{ID: u.ID, DisplayName: u.DisplayName(), Email: u.Email, Valid: true}
		}
	}
	if rec.AssignedGroupID != "" {
		g, err := ad.LookupGroup(ctx, identity.GroupParams{AccessToken: token, GroupID: rec.AssignedGroupID})
		if err != nil {
			metrics.EnrichLookups.WithLabelValues("group", "stale").Inc()
			e.log.Debugw("stale group reference", "task", rec.ID, "group", rec.AssignedGroupID, "err", err)
			et.AssignedGroup = &IdentityRef{ID: rec.AssignedGroupID, Valid: false}
		} else {
			metrics.EnrichLookups.WithLabelValues("group", "ok").Inc()
			et.AssignedGroup = &IdentityRef{ID: g.ID, DisplayName: g.Name, Valid: true}
		}
	}
	return et
}
