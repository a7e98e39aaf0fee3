// Package gate is the console's authorization checkpoint: profile
// permissions ("resource:action" with wildcards) first, then optional
// record-level policies registered per resource.
package gate

import "context"

// Gate combines a profile resolver with per-resource policies.
// U is the subject type and must be comparable for the zero-value check.
type Gate[U comparable] struct {
	resolver ProfileResolver[U]
	policies map[string]Policy[U]
	fallback Policy[U]
}

func New[U comparable](resolver ProfileResolver[U]) *Gate[U] {
	return &Gate[U]{
		resolver: resolver,
		policies: make(map[string]Policy[U]),
	}
}

// Register adds a record-level policy for one resource. An empty resource
// name registers the policy used by every resource without its own.
func (g *Gate[U]) Register(resource string, p Policy[U]) {
	if resource == "" {
		g.fallback = p
		return
	}
	g.policies[resource] = p
}

// Authorize checks, in order: a non-zero subject, a profile granting
// resource:action, then the record policy when a record is given.
func (g *Gate[U]) Authorize(ctx context.Context, user U, action Action, resource string, record any) error {
	var zero U
	if user == zero {
		return ErrUnauthorized
	}
	profile, err := g.resolver.Resolve(ctx, user)
	if err != nil || profile == nil {
		return ErrNoProfile
	}
	if !profile.HasPermission(NewPermission(resource, action)) {
		return ErrUnauthorized
	}
	if record == nil {
		return nil
	}
	p, ok := g.policies[resource]
	if !ok {
		p = g.fallback
	}
	if p != nil && !p.Can(ctx, user, action, record) {
		return ErrUnauthorized
	}
	return nil
}

// Can is Authorize as a bool.
func (g *Gate[U]) Can(ctx context.Context, user U, action Action, resource string, record any) bool {
	return g.Authorize(ctx, user, action, resource, record) == nil
}

// CanProfile only checks the profile; templates use it to show or hide buttons.
func (g *Gate[U]) CanProfile(ctx context.Context, user U, action Action, resource string) bool {
	return g.Authorize(ctx, user, action, resource, nil) == nil
}

// IsAdmin reports whether the subject holds the super permission.
func (g *Gate[U]) IsAdmin(ctx context.Context, user U) bool {
	var zero U
	if user == zero {
		return false
	}
	profile, err := g.resolver.Resolve(ctx, user)
	if err != nil || profile == nil {
		return false
	}
	return profile.HasPermission(PermissionSuperAdmin)
}
