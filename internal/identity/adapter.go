// internal/identity/adapter.go
package identity

import (
	"context"
)

// User is the uniform user DTO across vendors.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Enabled   bool   `json:"enabled"`
}

// DisplayName is the human-readable form used for enrichment.
func (u User) DisplayName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Group is the uniform group DTO across vendors.
type Group struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path,omitempty"`
}

// Typed parameter structs, one per operation shape. Every call carries the
// caller's access token; the vendor client is scoped to the tenant realm.

type UserParams struct {
	AccessToken string
	UserID      string
}

type GroupParams struct {
	AccessToken string
	GroupID     string
}

type ListParams struct {
	AccessToken string
	Max         int
}

type MembershipParams struct {
	AccessToken string
	UserID      string
	GroupID     string
}

type CreateUserParams struct {
	AccessToken string
	Username    string
	FirstName   string
	LastName    string
	Email       string
	Enabled     bool
}

type UpdateUserParams struct {
	AccessToken string
	UserID      string
	FirstName   string
	LastName    string
	Email       string
	Enabled     *bool
}

type PasswordParams struct {
	AccessToken string
	UserID      string
	Password    string
	Temporary   bool
}

type RoleParams struct {
	AccessToken string
	UserID      string
	RoleName    string
}

// Adapter is the vendor-neutral capability interface over one tenant's
// identity provider. Implementations are stateless given (token, params).
type Adapter interface {
	LookupUser(ctx context.Context, p UserParams) (User, error)
	LookupGroup(ctx context.Context, p GroupParams) (Group, error)
	ListGroups(ctx context.Context, p ListParams) ([]Group, error)
	ListGroupMembers(ctx context.Context, p GroupParams) ([]User, error)
	ListUsers(ctx context.Context, p ListParams) ([]User, error)
	// ValidateGroupMembership fails with Forbidden when the user is
	// authenticated but lacks the group.
	ValidateGroupMembership(ctx context.Context, p MembershipParams) error

	// Managed (non-federated) identity operations.
	CreateUser(ctx context.Context, p CreateUserParams) (User, error)
	UpdateUser(ctx context.Context, p UpdateUserParams) error
	DeleteUser(ctx context.Context, p UserParams) error
	SetPassword(ctx context.Context, p PasswordParams) error
	AssignRole(ctx context.Context, p RoleParams) error
	RemoveRole(ctx context.Context, p RoleParams) error
	JoinGroup(ctx context.Context, p MembershipParams) error
	LeaveGroup(ctx context.Context, p MembershipParams) error
}
