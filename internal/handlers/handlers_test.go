package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/payfisc/payfisc-admin/auth"
	"github.com/payfisc/payfisc-admin/gate"
	"github.com/payfisc/payfisc-admin/internal/apiclient"
	"github.com/payfisc/payfisc-admin/internal/audit"
	"github.com/payfisc/payfisc-admin/internal/config"
	"github.com/payfisc/payfisc-admin/internal/db"
	"github.com/payfisc/payfisc-admin/internal/metrics"
	"github.com/payfisc/payfisc-admin/internal/models"
	"github.com/payfisc/payfisc-admin/internal/policy"
	"github.com/payfisc/payfisc-admin/internal/services"
	"github.com/payfisc/payfisc-admin/view"
)

func TestMain(m *testing.M) {
	view.SetBaseDir("../../templates")
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		// sqlite shared-cache connections opened by gorm
		goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"),
	)
}

// backend is a fake PHP API: handlers by path plus a call counter.
type backend struct {
	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	calls  map[string]int
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")
	b.mu.Lock()
	h, ok := b.routes[path]
	b.calls[path]++
	b.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	h(w, r)
}

func (b *backend) on(path string, h http.HandlerFunc) {
	b.mu.Lock()
	b.routes[path] = h
	b.mu.Unlock()
}

// reply registers a fixed JSON answer.
func (b *backend) reply(path, body string) {
	b.on(path, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, body)
	})
}

func (b *backend) count(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[path]
}

type fixture struct {
	conn     *gorm.DB
	backend  *backend
	catalog  *services.Catalog
	gate     *policy.AuthGate
	journal  *audit.Store
	metrics  *metrics.Metrics
	inflight *Inflight

	admin, agent, reader *models.Operator
	noProfile            *models.Operator
}

func setup(t *testing.T) *fixture {
	t.Helper()
	conn, err := db.Open(config.DatabaseConfig{Driver: "sqlite", URL: "file:" + t.Name() + "?mode=memory&cache=shared"}, zap.NewNop(), false)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	require.NoError(t, db.SeedProfiles(conn))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	be := &backend{routes: map[string]http.HandlerFunc{}, calls: map[string]int{}}
	srv := httptest.NewServer(be)
	t.Cleanup(srv.Close)
	m := metrics.NewMetrics(prometheus.NewRegistry())
	api, err := apiclient.New(apiclient.Config{BaseURL: srv.URL, Timeout: time.Second}, apiclient.WithMetrics(m))
	require.NoError(t, err)

	mk := func(email, profile string, site int) *models.Operator {
		op, err := db.CreateOperator(conn, email, "", "secret-pw", profile, site)
		require.NoError(t, err)
		return op
	}
	f := &fixture{
		conn:     conn,
		backend:  be,
		catalog:  services.NewCatalog(api),
		gate:     policy.NewAuthGate(conn, time.Minute),
		journal:  audit.NewStore(conn),
		metrics:  m,
		inflight: NewInflight(),
		admin:    mk("admin@payfisc.test", gate.ProfileAdministrateur, 0),
		agent:    mk("agent@payfisc.test", gate.ProfileAgent, 10),
		reader:   mk("reader@payfisc.test", gate.ProfileConsultation, 0),
	}
	f.noProfile = &models.Operator{Email: "nobody@payfisc.test", Password: "x"}
	require.NoError(t, conn.Create(f.noProfile).Error)
	return f
}

func (f *fixture) resources() *ResourceHandler {
	return NewResourceHandler(f.catalog, f.gate, f.journal, f.inflight, f.metrics, zap.NewNop())
}

// request builds a request signed in as op with the mux path values set.
func request(op *models.Operator, method, target string, body io.Reader, pathValues ...string) *http.Request {
	r := httptest.NewRequest(method, target, body)
	if op != nil {
		r = r.WithContext(auth.WithOperatorID(context.Background(), op.ID))
	}
	for i := 0; i+1 < len(pathValues); i += 2 {
		r.SetPathValue(pathValues[i], pathValues[i+1])
	}
	return r
}

func asJSON(r *http.Request) *http.Request {
	r.Header.Set("Accept", "application/json")
	return r
}

func form(r *http.Request) *http.Request {
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}
