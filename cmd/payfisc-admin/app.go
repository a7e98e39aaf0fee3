package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/payfisc/payfisc-admin/auth"
	"github.com/payfisc/payfisc-admin/gate"
	"github.com/payfisc/payfisc-admin/internal/analytics"
	"github.com/payfisc/payfisc-admin/internal/audit"
	"github.com/payfisc/payfisc-admin/internal/handlers"
	"github.com/payfisc/payfisc-admin/internal/metrics"
	"github.com/payfisc/payfisc-admin/internal/policy"
	"github.com/payfisc/payfisc-admin/internal/services"
	"github.com/payfisc/payfisc-admin/view"
)

// Deps are the long-lived collaborators of the HTTP surface.
type Deps struct {
	DB        *gorm.DB
	Catalog   *services.Catalog
	Gate      *policy.AuthGate
	Journal   *audit.Store
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	Beacon    *analytics.Beacon
	Log       *zap.Logger
	StaticDir string
}

// App is the console's root handler.
type App struct {
	mux     *http.ServeMux
	handler http.Handler
	deps    Deps
}

func NewApp(d Deps) *App {
	if d.StaticDir == "" {
		d.StaticDir = "static"
	}
	a := &App{mux: http.NewServeMux(), deps: d}

	// templates only see callbacks, never the gate itself
	view.SetCanResolver(func(r *http.Request, resource, action string) bool {
		return d.Gate.CanProfile(r.Context(), gate.Action(action), resource)
	})
	view.SetIsAdminResolver(func(r *http.Request) bool {
		return d.Gate.IsAdmin(r.Context())
	})
	view.SetOperatorNameResolver(func(r *http.Request) string {
		op, ok := d.Gate.Operator(r.Context())
		if !ok {
			return ""
		}
		return op.DisplayName()
	})

	a.setupRoutes()
	var h http.Handler = a.mux
	h = handlers.Observe(d.Log, d.Metrics, d.Beacon)(h)
	h = auth.Middleware(h)
	h = handlers.Prefs(h)
	h = handlers.Recover(d.Log, d.Beacon)(h)
	h = handlers.RequestID(d.Log)(h)
	a.handler = h
	return a
}

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

func (a *App) setupRoutes() {
	d := a.deps
	inflight := handlers.NewInflight()
	ah := handlers.NewAuthHandler(d.DB, d.Log)
	dh := handlers.NewDashboardHandler(d.Catalog, d.Gate, d.Log)
	rh := handlers.NewResourceHandler(d.Catalog, d.Gate, d.Journal, inflight, d.Metrics, d.Log)
	ih := handlers.NewFiscalAIHandler(d.Catalog, d.Gate, d.Metrics, d.Log)
	adm := handlers.NewAdminHandler(d.DB, d.Gate, d.Journal, d.Catalog, d.Log)

	// Public
	a.mux.HandleFunc("GET /login", ah.Login)
	a.mux.HandleFunc("POST /login", ah.Login)
	a.mux.HandleFunc("GET /logout", ah.Logout)
	a.mux.HandleFunc("POST /logout", ah.Logout)
	a.mux.HandleFunc("GET /healthz", handlers.Healthz(d.DB))
	a.mux.Handle("GET /metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	a.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(d.StaticDir))))

	// Signed-in operators
	a.mux.Handle("GET /{$}", auth.RequireAuth(http.RedirectHandler("/dashboard", http.StatusSeeOther)))
	a.mux.Handle("GET /dashboard", auth.RequireAuth(http.HandlerFunc(dh.Show)))
	a.mux.Handle("GET /ia", auth.RequireAuth(http.HandlerFunc(ih.Ask)))
	a.mux.Handle("POST /ia", auth.RequireAuth(http.HandlerFunc(ih.Ask)))

	// Resources: the handler checks resource:action itself since the
	// resource comes from the path.
	a.mux.Handle("GET /r/{resource}", auth.RequireAuth(http.HandlerFunc(rh.List)))
	a.mux.Handle("POST /r/{resource}", auth.RequireAuth(http.HandlerFunc(rh.Create)))
	a.mux.Handle("GET /r/{resource}/{id}", auth.RequireAuth(http.HandlerFunc(rh.View)))
	a.mux.Handle("POST /r/{resource}/{id}", auth.RequireAuth(http.HandlerFunc(rh.Update)))
	a.mux.Handle("POST /r/{resource}/{id}/delete", auth.RequireAuth(http.HandlerFunc(rh.Delete)))
	a.mux.Handle("POST /r/{resource}/{id}/toggle", auth.RequireAuth(http.HandlerFunc(rh.Toggle)))

	// Administration
	admin := func(h http.HandlerFunc) http.Handler {
		return auth.RequireAuth(d.Gate.RequireAdmin()(h))
	}
	a.mux.Handle("GET /admin/operators", admin(adm.Operators))
	a.mux.Handle("POST /admin/operators/{id}/profile", admin(adm.AssignProfile))
	a.mux.Handle("GET /admin/profiles", admin(adm.Profiles))
	a.mux.Handle("POST /admin/profiles/{id}/permissions", admin(adm.SavePermissions))
	a.mux.Handle("GET /admin/journal", admin(adm.Journal))
}
