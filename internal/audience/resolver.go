// Package audience decides which users should receive an inbox notification
// for a given event. Resolution is a pluggable policy: the engine treats any
// resolver failure as "zero recipients" and never lets it block the event
// pipeline.
package audience

import (
	"context"

	"github.com/threadcraft/pulse/internal/model"
)

// Resolver computes the set of user IDs that should be notified about an
// event. Implementations must be side-effect free and safe for concurrent use.
type Resolver interface {
	Resolve(ctx context.Context, ev *model.Event) ([]string, error)
}

// Func adapts a plain function to the Resolver interface.
type Func func(ctx context.Context, ev *model.Event) ([]string, error)

func (f Func) Resolve(ctx context.Context, ev *model.Event) ([]string, error) {
	return f(ctx, ev)
}

// NopResolver resolves every event to zero recipients. Used when no policy
// is configured.
type NopResolver struct{}

func (NopResolver) Resolve(ctx context.Context, ev *model.Event) ([]string, error) {
	return nil, nil
}

// RoleDirectory looks up role membership within a tenant. The concrete
// directory (HR service, RBAC tables, LDAP) is owned by the host application.
type RoleDirectory interface {
	UsersInRoles(ctx context.Context, tenantID string, roles []string) ([]string, error)
}

// RoleResolver resolves an event's broadcast_to_roles to concrete users via a
// RoleDirectory. Events without role filters resolve to zero recipients.
type RoleResolver struct {
	dir RoleDirectory
}

func NewRoleResolver(dir RoleDirectory) *RoleResolver {
	return &RoleResolver{dir: dir}
}

func (r *RoleResolver) Resolve(ctx context.Context, ev *model.Event) ([]string, error) {
	if len(ev.BroadcastToRoles) == 0 {
		return nil, nil
	}
	users, err := r.dir.UsersInRoles(ctx, ev.TenantID, ev.BroadcastToRoles)
	if err != nil {
		return nil, err
	}
	return dedupe(users), nil
}

// StaticDirectory is a map-backed RoleDirectory for tests and development:
// tenant ID -> role -> user IDs.
type StaticDirectory map[string]map[string][]string

func (d StaticDirectory) UsersInRoles(ctx context.Context, tenantID string, roles []string) ([]string, error) {
	byRole, ok := d[tenantID]
	if !ok {
		return nil, nil
	}
	var users []string
	for _, role := range roles {
		users = append(users, byRole[role]...)
	}
	return users, nil
}

// dedupe removes duplicate user IDs while preserving first-seen order, so a
// user in several matching roles gets a single notification.
func dedupe(users []string) []string {
	seen := make(map[string]struct{}, len(users))
	var out []string
	for _, u := range users {
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
