package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"taskbridge/internal/backend"
	"taskbridge/pkg/faults"
)

type fakeClient struct {
	mu           sync.Mutex
	searchCalls  int
	fetchCalls   int
	searchFn     func(call int, req backend.SearchRequest) (backend.SearchResponse, error)
	fetchFn      func(id string) (backend.TaskRecord, error)
	lastRequests []backend.SearchRequest
}

func (f *fakeClient) SearchTaskRuns(_ context.Context, _ string, req backend.SearchRequest) (backend.SearchResponse, error) {
	f.mu.Lock()
	call := f.searchCalls
	f.searchCalls++
	f.lastRequests = append(f.lastRequests, req)
	f.mu.Unlock()
	return f.searchFn(call, req)
}

func (f *fakeClient) GetTaskRun(_ context.Context, _ string, id string) (backend.TaskRecord, error) {
	f.mu.Lock()
	f.fetchCalls++
	f.mu.Unlock()
	if f.fetchFn != nil {
		return f.fetchFn(id)
	}
	return backend.TaskRecord{ID: id}, nil
}

func (f *fakeClient) GetTenant(context.Context, string, string) (backend.Tenant, error) {
	panic("unexpected call")
}
func (f *fakeClient) GetTaskDef(context.Context, string, string) (backend.TaskDef, error) {
	panic("unexpected call")
}

func newAgg(c backend.Client, maxPages int) *Aggregator {
	return NewAggregator(c, 25, maxPages, 4, zap.NewNop().Sugar())
}

func TestSearchTwoPages(t *testing.T) {
	c := &fakeClient{searchFn: func(call int, req backend.SearchRequest) (backend.SearchResponse, error) {
		switch call {
		case 0:
			if len(req.Cursor) != 0 {
				t.Errorf("first page must not carry a cursor")
			}
			return backend.SearchResponse{IDs: []string{"t1", "t2"}, Cursor: []byte("c1")}, nil
		case 1:
			if string(req.Cursor) != "c1" {
				t.Errorf("second page cursor = %q, want c1", req.Cursor)
			}
			return backend.SearchResponse{IDs: []string{"t3", "t4"}}, nil
		}
		t.Errorf("unexpected third search call")
		return backend.SearchResponse{}, nil
	}}
	got, err := newAgg(c, 1000).Search(context.Background(), "tok", Query{UserID: "u1"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if c.searchCalls != 2 {
		t.Fatalf("search calls = %d, want 2", c.searchCalls)
	}
	if c.fetchCalls != 4 {
		t.Fatalf("fetch calls = %d, want 4", c.fetchCalls)
	}
	if len(got) != 4 {
		t.Fatalf("merged set = %d records, want 4", len(got))
	}
}

func TestSearchDeduplicatesAcrossPages(t *testing.T) {
	c := &fakeClient{searchFn: func(call int, _ backend.SearchRequest) (backend.SearchResponse, error) {
		if call == 0 {
			return backend.SearchResponse{IDs: []string{"t1", "t2"}, Cursor: []byte("c1")}, nil
		}
		return backend.SearchResponse{IDs: []string{"t2", "t3"}}, nil
	}}
	got, err := newAgg(c, 1000).Search(context.Background(), "tok", Query{UserID: "u1"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("merged set = %d records, want 3 distinct", len(got))
	}
	if c.fetchCalls != 3 {
		t.Fatalf("fetch calls = %d, want 3 (duplicate id not refetched)", c.fetchCalls)
	}
	seen := map[string]int{}
	for _, r := range got {
		seen[r.ID]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("task %s appears %d times", id, n)
		}
	}
}

func TestSearchInvertedRangeNeverCallsBackend(t *testing.T) {
	c := &fakeClient{searchFn: func(int, backend.SearchRequest) (backend.SearchResponse, error) {
		return backend.SearchResponse{}, nil
	}}
	later := time.Now()
	earlier := later.Add(-time.Hour)
	_, err := newAgg(c, 1000).Search(context.Background(), "tok", Query{
		UserID: "u1",
		Filter: &Filter{EarliestScheduled: &later, LatestScheduled: &earlier},
	})
	if !errors.Is(err, faults.ErrValidation) {
		t.Fatalf("err = %v, want Validation", err)
	}
	if c.searchCalls != 0 {
		t.Fatalf("backend called %d times for an invalid filter", c.searchCalls)
	}
}

func TestSearchEqualBoundsRejected(t *testing.T) {
	now := time.Now()
	f := &Filter{EarliestScheduled: &now, LatestScheduled: &now}
	if err := f.Validate(); !errors.Is(err, faults.ErrValidation) {
		t.Fatalf("equal bounds must be rejected, got %v", err)
	}
}

func TestSearchRequiresUserID(t *testing.T) {
	c := &fakeClient{searchFn: func(int, backend.SearchRequest) (backend.SearchResponse, error) {
		return backend.SearchResponse{}, nil
	}}
	_, err := newAgg(c, 1000).Search(context.Background(), "tok", Query{})
	if !errors.Is(err, faults.ErrValidation) {
		t.Fatalf("err = %v, want Validation", err)
	}
}

func TestSearchEndlessCursorTerminates(t *testing.T) {
	c := &fakeClient{searchFn: func(call int, _ backend.SearchRequest) (backend.SearchResponse, error) {
		return backend.SearchResponse{IDs: []string{fmt.Sprintf("t%d", call)}, Cursor: []byte("again")}, nil
	}}
	_, err := newAgg(c, 5).Search(context.Background(), "tok", Query{UserID: "u1"})
	if !errors.Is(err, faults.ErrBackend) {
		t.Fatalf("err = %v, want Backend (page ceiling)", err)
	}
	if c.searchCalls != 5 {
		t.Fatalf("search calls = %d, want exactly the page ceiling", c.searchCalls)
	}
}

func TestSearchAbortsOnFetchFailure(t *testing.T) {
	c := &fakeClient{
		searchFn: func(call int, _ backend.SearchRequest) (backend.SearchResponse, error) {
			if call == 0 {
				return backend.SearchResponse{IDs: []string{"t1", "t2"}, Cursor: []byte("c1")}, nil
			}
			t.Error("pagination must stop after a fetch failure")
			return backend.SearchResponse{}, nil
		},
		fetchFn: func(id string) (backend.TaskRecord, error) {
			if id == "t2" {
				return backend.TaskRecord{}, faults.Backend("get task run", fmt.Errorf("boom"))
			}
			return backend.TaskRecord{ID: id}, nil
		},
	}
	_, err := newAgg(c, 1000).Search(context.Background(), "tok", Query{UserID: "u1"})
	if !errors.Is(err, faults.ErrBackend) {
		t.Fatalf("err = %v, want Backend", err)
	}
}

func TestSearchEmptyResultIsNotAnError(t *testing.T) {
	c := &fakeClient{searchFn: func(int, backend.SearchRequest) (backend.SearchResponse, error) {
		return backend.SearchResponse{}, nil
	}}
	got, err := newAgg(c, 1000).Search(context.Background(), "tok", Query{UserID: "u1"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d records, want none", len(got))
	}
}

func TestSearchTranslatesFilter(t *testing.T) {
	earliest := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	latest := earliest.Add(48 * time.Hour)
	c := &fakeClient{searchFn: func(int, backend.SearchRequest) (backend.SearchResponse, error) {
		return backend.SearchResponse{}, nil
	}}
	_, err := newAgg(c, 1000).Search(context.Background(), "tok", Query{
		UserID:    "u1",
		UserGroup: "ops",
		Filter: &Filter{
			EarliestScheduled: &earliest,
			LatestScheduled:   &latest,
			Status:            backend.StatusPending,
			TaskDefName:       "approve-invoice",
		},
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	req := c.lastRequests[0]
	if req.UserID != "u1" || req.UserGroup != "ops" || req.Limit != 25 {
		t.Fatalf("request basics wrong: %+v", req)
	}
	if req.Status != backend.StatusPending || req.TaskDefName != "approve-invoice" {
		t.Fatalf("filter fields not translated: %+v", req)
	}
	if !req.EarliestStart.Equal(earliest) || !req.LatestStart.Equal(latest) {
		t.Fatalf("date bounds not translated: %+v", req)
	}
}

func TestSearchStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &fakeClient{searchFn: func(int, backend.SearchRequest) (backend.SearchResponse, error) {
		t.Error("cancelled search must not reach the backend")
		return backend.SearchResponse{}, nil
	}}
	if _, err := newAgg(c, 1000).Search(ctx, "tok", Query{UserID: "u1"}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
