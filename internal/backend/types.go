package backend

import "time"

// Tenant is the orchestration service's view of a tenant.
type Tenant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Status of a user task run.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// SearchRequest is the wire form of one task-run search page.
type SearchRequest struct {
	UserID        string     `json:"user_id"`
	UserGroup     string     `json:"user_group,omitempty"`
	Limit         int        `json:"limit"`
	Cursor        []byte     `json:"cursor,omitempty"`
	EarliestStart *time.Time `json:"earliest_start,omitempty"`
	LatestStart   *time.Time `json:"latest_start,omitempty"`
	Status        Status     `json:"status,omitempty"`
	TaskDefName   string     `json:"task_def_name,omitempty"`
}

// SearchResponse carries one page of matching run ids plus an opaque
// continuation cursor; a missing cursor means the last page.
type SearchResponse struct {
	IDs    []string `json:"ids"`
	Cursor []byte   `json:"cursor,omitempty"`
}

// FieldDef describes one input field of a user task, in definition order.
type FieldDef struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
}

// AuditEvent records one state transition of a task run.
type AuditEvent struct {
	Type      string    `json:"type"`
	Actor     string    `json:"actor,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// TaskRecord is a full user-task run as owned by the orchestration service.
// Immutable once fetched; enrichment decorates a copy.
type TaskRecord struct {
	ID              string         `json:"id"`
	WorkflowRunID   string         `json:"workflow_run_id"`
	TaskDefName     string         `json:"task_def_name"`
	AssignedUserID  string         `json:"assigned_user_id,omitempty"`
	AssignedGroupID string         `json:"assigned_group_id,omitempty"`
	Status          Status         `json:"status"`
	Notes           string         `json:"notes,omitempty"`
	ScheduledTime   time.Time      `json:"scheduled_time"`
	Fields          []FieldDef     `json:"fields,omitempty"`
	ResultValues    map[string]any `json:"result_values,omitempty"`
	AuditEvents     []AuditEvent   `json:"audit_events,omitempty"`
}

// TaskDef is a task definition looked up by name.
type TaskDef struct {
	Name   string     `json:"name"`
	Fields []FieldDef `json:"fields"`
}
