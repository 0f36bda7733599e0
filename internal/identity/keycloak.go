// internal/identity/keycloak.go
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"taskbridge/pkg/faults"
)

// Keycloak implements Adapter against the Keycloak Admin REST API, scoped
// to one realm. Calls are made with the caller's access token; the handle
// holds no session state between calls.
type Keycloak struct {
	adminURL string
	realm    string
	httpc    *http.Client
}

func NewKeycloak(adminURL, realm string) *Keycloak {
	return &Keycloak{
		adminURL: adminURL,
		realm:    realm,
		httpc:    &http.Client{Timeout: 10 * time.Second},
	}
}

type kcUser struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Enabled   bool   `json:"enabled"`
}

func (u kcUser) toUser() User {
	return User{ID: u.ID, Username: u.Username, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email, Enabled: u.Enabled}
}

type kcGroup struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

type kcRole struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (k *Keycloak) LookupUser(ctx context.Context, p UserParams) (User, error) {
	var u kcUser
	if err := k.call(ctx, p.AccessToken, http.MethodGet, "/users/"+url.PathEscape(p.UserID), nil, &u); err != nil {
		return User{}, err
	}
	return u.toUser(), nil
}

func (k *Keycloak) LookupGroup(ctx context.Context, p GroupParams) (Group, error) {
	var g kcGroup
	if err := k.call(ctx, p.AccessToken, http.MethodGet, "/groups/"+url.PathEscape(p.GroupID), nil, &g); err != nil {
		return Group{}, err
	}
	return Group{ID: g.ID, Name: g.Name, Path: g.Path}, nil
}

func (k *Keycloak) ListGroups(ctx context.Context, p ListParams) ([]Group, error) {
	var gs []kcGroup
	if err := k.call(ctx, p.AccessToken, http.MethodGet, "/groups"+maxQuery(p.Max), nil, &gs); err != nil {
		return nil, err
	}
	out := make([]Group, 0, len(gs))
	for _, g := range gs {
		out = append(out, Group{ID: g.ID, Name: g.Name, Path: g.Path})
	}
	return out, nil
}

func (k *Keycloak) ListGroupMembers(ctx context.Context, p GroupParams) ([]User, error) {
	var us []kcUser
	if err := k.call(ctx, p.AccessToken, http.MethodGet, "/groups/"+url.PathEscape(p.GroupID)+"/members", nil, &us); err != nil {
		return nil, err
	}
	return toUsers(us), nil
}

func (k *Keycloak) ListUsers(ctx context.Context, p ListParams) ([]User, error) {
	var us []kcUser
	if err := k.call(ctx, p.AccessToken, http.MethodGet, "/users"+maxQuery(p.Max), nil, &us); err != nil {
		return nil, err
	}
	return toUsers(us), nil
}

// ValidateGroupMembership lists the user's groups and requires GroupID
// among them.
func (k *Keycloak) ValidateGroupMembership(ctx context.Context, p MembershipParams) error {
	var gs []kcGroup
	if err := k.call(ctx, p.AccessToken, http.MethodGet, "/users/"+url.PathEscape(p.UserID)+"/groups", nil, &gs); err != nil {
		return err
	}
	for _, g := range gs {
		if g.ID == p.GroupID || g.Name == p.GroupID {
			return nil
		}
	}
	return faults.Forbidden("user %s is not a member of group %s", p.UserID, p.GroupID)
}

func (k *Keycloak) CreateUser(ctx context.Context, p CreateUserParams) (User, error) {
	body := kcUser{Username: p.Username, FirstName: p.FirstName, LastName: p.LastName, Email: p.Email, Enabled: p.Enabled}
	if err := k.call(ctx, p.AccessToken, http.MethodPost, "/users", body, nil); err != nil {
		return User{}, err
	}
	// Keycloak returns 201 with a Location header and no body; re-read by username.
	var us []kcUser
	if err := k.call(ctx, p.AccessToken, http.MethodGet, "/users?exact=true&username="+url.QueryEscape(p.Username), nil, &us); err != nil {
		return User{}, err
	}
	if len(us) == 0 {
		return User{}, faults.Adapter("keycloak create user", fmt.Errorf("created user %q not readable", p.Username))
	}
	return us[0].toUser(), nil
}

func (k *Keycloak) UpdateUser(ctx context.Context, p UpdateUserParams) error {
	body := map[string]any{}
	if p.FirstName != "" {
		body["firstName"] = p.FirstName
	}
	if p.LastName != "" {
		body["lastName"] = p.LastName
	}
	if p.Email != "" {
		body["email"] = p.Email
	}
	if p.Enabled != nil {
		body["enabled"] = *p.Enabled
	}
	return k.call(ctx, p.AccessToken, http.MethodPut, "/users/"+url.PathEscape(p.UserID), body, nil)
}

func (k *Keycloak) DeleteUser(ctx context.Context, p UserParams) error {
	return k.call(ctx, p.AccessToken, http.MethodDelete, "/users/"+url.PathEscape(p.UserID), nil, nil)
}

func (k *Keycloak) SetPassword(ctx context.Context, p PasswordParams) error {
	body := map[string]any{"type": "password", "value": p.Password, "temporary": p.Temporary}
	return k.call(ctx, p.AccessToken, http.MethodPut, "/users/"+url.PathEscape(p.UserID)+"/reset-password", body, nil)
}

func (k *Keycloak) AssignRole(ctx context.Context, p RoleParams) error {
	role, err := k.realmRole(ctx, p.AccessToken, p.RoleName)
	if err != nil {
		return err
	}
	return k.call(ctx, p.AccessToken, http.MethodPost, "/users/"+url.PathEscape(p.UserID)+"/role-mappings/realm", []kcRole{role}, nil)
}

func (k *Keycloak) RemoveRole(ctx context.Context, p RoleParams) error {
	role, err := k.realmRole(ctx, p.AccessToken, p.RoleName)
	if err != nil {
		return err
	}
	return k.call(ctx, p.AccessToken, http.MethodDelete, "/users/"+url.PathEscape(p.UserID)+"/role-mappings/realm", []kcRole{role}, nil)
}

func (k *Keycloak) JoinGroup(ctx context.Context, p MembershipParams) error {
	return k.call(ctx, p.AccessToken, http.MethodPut, "/users/"+url.PathEscape(p.UserID)+"/groups/"+url.PathEscape(p.GroupID), nil, nil)
}

func (k *Keycloak) LeaveGroup(ctx context.Context, p MembershipParams) error {
	return k.call(ctx, p.AccessToken, http.MethodDelete, "/users/"+url.PathEscape(p.UserID)+"/groups/"+url.PathEscape(p.GroupID), nil, nil)
}

func (k *Keycloak) realmRole(ctx context.Context, token, name string) (kcRole, error) {
	var r kcRole
	if err := k.call(ctx, token, http.MethodGet, "/roles/"+url.PathEscape(name), nil, &r); err != nil {
		return kcRole{}, err
	}
	return r, nil
}

func (k *Keycloak) call(ctx context.Context, token, method, path string, body, out any) error {
	u := fmt.Sprintf("%s/admin/realms/%s%s", k.adminURL, url.PathEscape(k.realm), path)
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return faults.Adapter("keycloak "+path, err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return faults.Adapter("keycloak "+path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := k.httpc.Do(req)
	if err != nil {
		return faults.Adapter("keycloak "+path, err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("keycloak %s: %w", path, faults.ErrNotFound)
	case resp.StatusCode == http.StatusForbidden:
		return faults.Forbidden("keycloak %s: status 403", path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return faults.Adapter("keycloak "+path, fmt.Errorf("status %d", resp.StatusCode))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return faults.Adapter("keycloak "+path, err)
		}
	}
	return nil
}

func toUsers(us []kcUser) []User {
	out := make([]User, 0, len(us))
	for _, u := range us {
		out = append(out, u.toUser())
	}
	return out
}

func maxQuery(max int) string {
	if max <= 0 {
		max = 1000
	}
	return "?max=" + strconv.Itoa(max)
}
