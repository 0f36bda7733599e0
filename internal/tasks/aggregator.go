// internal/tasks/aggregator.go
package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"taskbridge/internal/backend"
	"taskbridge/pkg/faults"
	"taskbridge/pkg/metrics"
)

// Aggregator walks the backend's cursor pagination to completion and
// merges all pages into one deduplicated result set.
type Aggregator struct {
	client   backend.Client
	pageSize int
	maxPages int
	workers  int
	log      *zap.SugaredLogger
}

func NewAggregator(client backend.Client, pageSize, maxPages, workers int, log *zap.SugaredLogger) *Aggregator {
	if pageSize <= 0 {
		pageSize = 25
	}
	if maxPages <= 0 {
		maxPages = 1000
	}
	if workers <= 0 {
		workers = 8
	}
	return &Aggregator{client: client, pageSize: pageSize, maxPages: maxPages, workers: workers, log: log}
}

// Search validates the query, then iterates pages until the backend stops
// returning a cursor. Duplicate ids across pages collapse to one record.
// An empty result is not an error. Any backend failure mid-walk aborts the
// whole search; no partial set is returned.
func (a *Aggregator) Search(ctx context.Context, token string, q Query) ([]backend.TaskRecord, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() { metrics.SearchDuration.Observe(time.Since(start).Seconds()) }()

	req := backend.SearchRequest{
		UserID:    q.UserID,
		UserGroup: q.UserGroup,
		Limit:     a.pageSize,
	}
	if f := q.Filter; f != nil {
		req.EarliestStart = f.EarliestScheduled
		req.LatestStart = f.LatestScheduled
		req.Status = f.Status
		req.TaskDefName = f.TaskDefName
	}

	seen := map[string]struct{}{}
	var merged []backend.TaskRecord
	var cursor []byte
	for page := 0; ; page++ {
		if page >= a.maxPages {
			return nil, faults.Backend("task search", fmt.Errorf("page ceiling %d exceeded", a.maxPages))
		}
		if err := ctx.Err(); err != nil {
			return nil, faults.Backend("task search", err)
		}
		req.Cursor = cursor
		resp, err := a.client.SearchTaskRuns(ctx, token, req)
		if err != nil {
			return nil, err
		}
		metrics.SearchPages.Inc()

		fresh := make([]string, 0, len(resp.IDs))
		for _, id := range resp.IDs {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			fresh = append(fresh, id)
		}
		if len(fresh) > 0 {
			records, err := a.fetchRecords(ctx, token, fresh)
			if err != nil {
				return nil, err
			}
			merged = append(merged, records...)
		}
		if len(resp.Cursor) == 0 {
			break
		}
		cursor = resp.Cursor
	}
	a.log.Debugw("task search aggregated", "user", q.UserID, "records", len(merged))
	return merged, nil
}

// fetchRecords pulls full records for one page of ids with a bounded
// worker pool. The first failure cancels the remaining fetches.
func (a *Aggregator) fetchRecords(ctx context.Context, token string, ids []string) ([]backend.TaskRecord, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, a.workers)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	out := make([]backend.TaskRecord, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}
			rec, err := a.client.GetTaskRun(ctx, token, id)
			if err != nil {
				metrics.TaskFetches.WithLabelValues("error").Inc()
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				cancel()
				return
			}
			metrics.TaskFetches.WithLabelValues("ok").Inc()
			out[i] = rec
		}(i, id)
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, faults.Backend("task fetch", err)
	}
	return out, nil
}
