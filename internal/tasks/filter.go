// internal/tasks/filter.go
package tasks

import (
	"time"

	"taskbridge/internal/backend"
	"taskbridge/pkg/faults"
)

// Filter narrows a task search. All fields optional.
type Filter struct {
	EarliestScheduled *time.Time
	LatestScheduled   *time.Time
	Status            backend.Status
	TaskDefName       string
}

// Validate rejects an inverted date range before any backend call is made.
func (f *Filter) Validate() error {
	if f == nil {
		return nil
	}
	if f.EarliestScheduled != nil && f.LatestScheduled != nil && !f.EarliestScheduled.Before(*f.LatestScheduled) {
		return faults.Validation("earliest scheduled bound %s must precede latest %s",
			f.EarliestScheduled.Format(time.RFC3339), f.LatestScheduled.Format(time.RFC3339))
	}
	return nil
}

// Query is one aggregated search: the user, an optional group, and an
// optional filter.
type Query struct {
	UserID    string
	UserGroup string
	Filter    *Filter
}

func (q Query) validate() error {
	if q.UserID == "" {
		return faults.Validation("user id is required")
	}
	return q.Filter.Validate()
}
