// internal/tasklist/handler.go
package tasklist

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"taskbridge/internal/backend"
	"taskbridge/internal/tasks"
	"taskbridge/pkg/faults"
	"taskbridge/pkg/middleware"
	"taskbridge/pkg/problems"
)

// Routes mounts the task endpoints. BearerAuth must run earlier in the
// chain so the tenant context is present.
func Routes(r chi.Router, svc *Service) {
	r.Get("/v1/tasks", handleSearch(svc))
	r.Get("/v1/tasks/{id}", handleDetail(svc))
}

func handleSearch(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := middleware.TenantContextFrom(r.Context())
		cs := middleware.ClaimsFrom(r.Context())
		q := tasks.Query{
			UserID:    cs.Subject(),
			UserGroup: r.URL.Query().Get("user_group"),
		}
		if q.UserGroup == "" && len(rctx.Authorities) > 0 {
			q.UserGroup = rctx.Authorities[0]
		}
		f, err := filterFromQuery(r)
		if err != nil {
			problems.Write(w, err)
			return
		}
		q.Filter = f
		list, err := svc.SearchMyTasks(r.Context(), rctx, q)
		if err != nil {
			problems.Write(w, err)
			return
		}
		writeJSON(w, map[string]any{"tasks": list, "count": len(list)})
	}
}

func handleDetail(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := middleware.TenantContextFrom(r.Context())
		rec, err := svc.GetTaskDetail(r.Context(), rctx, chi.URLParam(r, "id"))
		if err != nil {
			problems.Write(w, err)
			return
		}
		writeJSON(w, rec)
	}
}

func filterFromQuery(r *http.Request) (*tasks.Filter, error) {
	qv := r.URL.Query()
	f := &tasks.Filter{
		Status:      backend.Status(qv.Get("status")),
		TaskDefName: qv.Get("task_def"),
	}
	var used bool
	if v := qv.Get("earliest"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, faults.Validation("bad earliest bound %q", v)
		}
		f.EarliestScheduled = &t
		used = true
	}
	if v := qv.Get("latest"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, faults.Validation("bad latest bound %q", v)
		}
		f.LatestScheduled = &t
		used = true
	}
	if !used && f.Status == "" && f.TaskDefName == "" {
		return nil, nil
	}
	return f, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
