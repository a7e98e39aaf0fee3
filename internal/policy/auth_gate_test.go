package policy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/payfisc/payfisc-admin/auth"
	"github.com/payfisc/payfisc-admin/gate"
	"github.com/payfisc/payfisc-admin/internal/config"
	"github.com/payfisc/payfisc-admin/internal/db"
	"github.com/payfisc/payfisc-admin/internal/models"
)

type fixture struct {
	conn                 *gorm.DB
	admin, agent, reader *models.Operator
	noProfile            *models.Operator
}

func setup(t *testing.T) fixture {
	t.Helper()
	conn, err := db.Open(config.DatabaseConfig{Driver: "sqlite", URL: "file:" + t.Name() + "?mode=memory&cache=shared"}, zap.NewNop(), false)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	require.NoError(t, db.SeedProfiles(conn))

	mk := func(email, profile string, site int) *models.Operator {
		op, err := db.CreateOperator(conn, email, "", "pw", profile, site)
		require.NoError(t, err)
		return op
	}
	f := fixture{
		conn:   conn,
		admin:  mk("admin@x", gate.ProfileAdministrateur, 0),
		agent:  mk("agent@x", gate.ProfileAgent, 10),
		reader: mk("reader@x", gate.ProfileConsultation, 0),
	}
	f.noProfile = &models.Operator{Email: "nobody@x", Password: "x"}
	require.NoError(t, conn.Create(f.noProfile).Error)
	return f
}

func as(id uint) context.Context {
	return auth.WithOperatorID(context.Background(), id)
}

func TestAuthGateProfiles(t *testing.T) {
	f := setup(t)
	ag := NewAuthGate(f.conn, time.Minute)

	assert.True(t, ag.Can(as(f.admin.ID), gate.ActionDelete, "plaques", nil))
	assert.True(t, ag.IsAdmin(as(f.admin.ID)))

	assert.True(t, ag.Can(as(f.agent.ID), gate.ActionCreate, "plaques", nil))
	assert.False(t, ag.Can(as(f.agent.ID), gate.ActionDelete, "plaques", nil))
	assert.False(t, ag.IsAdmin(as(f.agent.ID)))

	assert.True(t, ag.CanProfile(as(f.reader.ID), gate.ActionList, "paiements"))
	assert.False(t, ag.CanProfile(as(f.reader.ID), gate.ActionToggle, "energies"))

	assert.ErrorIs(t, ag.Authorize(as(f.noProfile.ID), gate.ActionList, "plaques", nil), gate.ErrNoProfile)
	assert.ErrorIs(t, ag.Authorize(context.Background(), gate.ActionList, "plaques", nil), gate.ErrUnauthorized)
}

func TestAuthGateSiteScope(t *testing.T) {
	f := setup(t)
	ag := NewAuthGate(f.conn, time.Minute)

	own := models.Plaque{ID: 1, SiteID: 10}
	other := models.Plaque{ID: 2, SiteID: 20}
	national := models.MarqueEngin{ID: 3}

	assert.Equal(t, 10, ag.SiteOf(as(f.agent.ID)))
	assert.True(t, ag.Can(as(f.agent.ID), gate.ActionUpdate, "plaques", own))
	assert.False(t, ag.Can(as(f.agent.ID), gate.ActionUpdate, "plaques", other))
	assert.True(t, ag.Can(as(f.agent.ID), gate.ActionUpdate, "marques-engins", national))

	assert.True(t, ag.Can(as(f.admin.ID), gate.ActionUpdate, "plaques", other))
}

func TestAuthGateInvalidateOperator(t *testing.T) {
	f := setup(t)
	ag := NewAuthGate(f.conn, time.Hour)
	ctx := as(f.agent.ID)
	require.Equal(t, 10, ag.SiteOf(ctx))

	require.NoError(t, f.conn.Model(f.agent).Update("site_id", 20).Error)
	assert.Equal(t, 10, ag.SiteOf(ctx), "cached")

	ag.InvalidateOperator(f.agent.ID)
	assert.Equal(t, 20, ag.SiteOf(ctx))
}

func TestRequireAdmin(t *testing.T) {
	f := setup(t)
	ag := NewAuthGate(f.conn, time.Minute)
	h := ag.RequireAdmin()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for _, tt := range []struct {
		id   uint
		want int
	}{
		{f.admin.ID, http.StatusNoContent},
		{f.agent.ID, http.StatusForbidden},
	} {
		r := httptest.NewRequest(http.MethodGet, "/admin/operators", nil)
		r = r.WithContext(as(tt.id))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Equal(t, tt.want, w.Code)
	}
}
