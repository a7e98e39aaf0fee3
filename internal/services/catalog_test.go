package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payfisc/payfisc-admin/gate"
	"github.com/payfisc/payfisc-admin/internal/apiclient"
	"github.com/payfisc/payfisc-admin/internal/resource"
)

func newCatalog(t *testing.T, h http.Handler) *Catalog {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	api, err := apiclient.New(apiclient.Config{BaseURL: srv.URL, Timeout: time.Second})
	require.NoError(t, err)
	return NewCatalog(api)
}

func TestCatalogIndex(t *testing.T) {
	c := newCatalog(t, http.NotFoundHandler())

	names := c.Names()
	assert.Len(t, names, 13)
	assert.Equal(t, "particuliers", names[0])

	for _, name := range names {
		h, ok := c.Handle(name)
		require.True(t, ok, name)
		def := h.Definition()
		assert.Equal(t, name, def.Name)
		assert.NotEmpty(t, def.Endpoints.List, name)
		assert.True(t, strings.HasPrefix(def.Label, "res."), name)
		for _, f := range def.Form {
			if f.Kind == resource.KindSelect && f.Options != "" {
				_, ok := c.Handle(f.Options)
				assert.True(t, ok, "%s.%s options %q", name, f.Name, f.Options)
			}
		}
	}
	_, ok := c.Handle("factures")
	assert.False(t, ok)
}

func TestCatalogStatusFieldQuirks(t *testing.T) {
	c := newCatalog(t, http.NotFoundHandler())
	assert.Equal(t, "status", c.Plaques.Definition().StatusField)
	assert.Equal(t, "statut", c.Cartes.Definition().StatusField)
	assert.Equal(t, "actif", c.Marques.Definition().StatusField)
	assert.Equal(t, "marques-engins/update_marque.php", c.Marques.Definition().Endpoints.Update)
	assert.Equal(t, "particuliers/get_particuliers.php", c.Particuliers.Definition().Endpoints.List)
}

func TestCatalogReadOnly(t *testing.T) {
	c := newCatalog(t, http.NotFoundHandler())
	assert.True(t, c.Paiements.Definition().ReadOnly())
	assert.True(t, c.Beneficiaires.Definition().ReadOnly())
	assert.False(t, c.Plaques.Definition().ReadOnly())
	assert.True(t, c.Plaques.Definition().Supports(gate.ActionToggle))
}

func TestCatalogStats(t *testing.T) {
	c := newCatalog(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dashboard/get_stats.php", r.URL.Path)
		_, _ = io.WriteString(w, `{"status":"success","data":{"total_particuliers":"12","plaques_disponibles":4,"montant_total":"15000.5"}}`)
	}))
	env := c.Stats(context.Background())
	require.True(t, env.OK(), env.Message)
	assert.EqualValues(t, 12, env.Data.TotalParticuliers)
	assert.EqualValues(t, 4, env.Data.PlaquesDisponibles)
	assert.EqualValues(t, 15000.5, env.Data.MontantTotal)
}
