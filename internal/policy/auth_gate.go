// Package policy binds the gate package to the console: profiles come from
// the local store, operators are identified by the session, and records are
// scoped to the operator's site.
package policy

import (
	"context"
	"net/http"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/payfisc/payfisc-admin/auth"
	"github.com/payfisc/payfisc-admin/gate"
	"github.com/payfisc/payfisc-admin/httpx"
	"github.com/payfisc/payfisc-admin/i18n"
	"github.com/payfisc/payfisc-admin/internal/models"
)

// AuthGate is the console's single authorization point.
type AuthGate struct {
	Gate          *gate.Gate[uint]
	CacheResolver *gate.CachedResolver[uint]
	sites         *SiteDirectory
}

// NewAuthGate wires a cached DB resolver and the site policy.
func NewAuthGate(db *gorm.DB, cacheTTL time.Duration) *AuthGate {
	cached := gate.NewCachedResolver[uint](NewDBProfileResolver(db), cacheTTL)
	sites := NewSiteDirectory(db)
	g := gate.New[uint](cached)
	g.Register("", gate.NewSitePolicy(sites.SiteOf))
	return &AuthGate{Gate: g, CacheResolver: cached, sites: sites}
}

// Authorize checks the operator in ctx. record may be nil.
func (ag *AuthGate) Authorize(ctx context.Context, action gate.Action, resource string, record any) error {
	id, ok := auth.OperatorIDFromContext(ctx)
	if !ok {
		return gate.ErrUnauthorized
	}
	return ag.Gate.Authorize(ctx, id, action, resource, record)
}

func (ag *AuthGate) Can(ctx context.Context, action gate.Action, resource string, record any) bool {
	return ag.Authorize(ctx, action, resource, record) == nil
}

// CanProfile checks profile permissions only, for showing or hiding buttons.
func (ag *AuthGate) CanProfile(ctx context.Context, action gate.Action, resource string) bool {
	id, ok := auth.OperatorIDFromContext(ctx)
	if !ok {
		return false
	}
	return ag.Gate.CanProfile(ctx, id, action, resource)
}

func (ag *AuthGate) IsAdmin(ctx context.Context) bool {
	id, ok := auth.OperatorIDFromContext(ctx)
	if !ok {
		return false
	}
	return ag.Gate.IsAdmin(ctx, id)
}

// SiteOf returns the site of the operator in ctx, 0 when national.
func (ag *AuthGate) SiteOf(ctx context.Context) int {
	id, ok := auth.OperatorIDFromContext(ctx)
	if !ok {
		return 0
	}
	return ag.sites.SiteOf(ctx, id)
}

// Operator returns the signed-in operator.
func (ag *AuthGate) Operator(ctx context.Context) (models.Operator, bool) {
	id, ok := auth.OperatorIDFromContext(ctx)
	if !ok {
		return models.Operator{}, false
	}
	return ag.sites.Operator(ctx, id)
}

// InvalidateOperator drops cached data after a profile or site change.
func (ag *AuthGate) InvalidateOperator(id uint) {
	ag.CacheResolver.Invalidate(id)
	ag.sites.Invalidate(id)
}

// RequireAdmin only lets administrators through.
func (ag *AuthGate) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ag.IsAdmin(r.Context()) {
				msg := i18n.T(i18n.LangFrom(r.Context()), "err.forbidden")
				if httpx.WantsJSON(r) {
					httpx.JSONError(w, http.StatusForbidden, msg, nil)
					return
				}
				http.Error(w, msg, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SiteDirectory caches each operator's identity and site id.
type SiteDirectory struct {
	db    *gorm.DB
	mu    sync.RWMutex
	cache map[uint]models.Operator
}

func NewSiteDirectory(db *gorm.DB) *SiteDirectory {
	return &SiteDirectory{db: db, cache: make(map[uint]models.Operator)}
}

// Operator returns the cached id, email, name and site of operator id.
func (d *SiteDirectory) Operator(ctx context.Context, id uint) (models.Operator, bool) {
	d.mu.RLock()
	op, ok := d.cache[id]
	d.mu.RUnlock()
	if ok {
		return op, true
	}
	if err := d.db.WithContext(ctx).Select("id", "email", "name", "site_id").First(&op, id).Error; err != nil {
		return models.Operator{}, false
	}
	d.mu.Lock()
	d.cache[id] = op
	d.mu.Unlock()
	return op, true
}

// SiteOf returns 0 for unknown operators, which the site policy treats as
// national: the profile check has already rejected them.
func (d *SiteDirectory) SiteOf(ctx context.Context, id uint) int {
	op, _ := d.Operator(ctx, id)
	return op.SiteID
}

func (d *SiteDirectory) Invalidate(id uint) {
	d.mu.Lock()
	delete(d.cache, id)
	d.mu.Unlock()
}
